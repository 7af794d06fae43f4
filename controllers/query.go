package controllers

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPage  = 1
	defaultItems = 10
	searchLimit  = 20
)

// ListQuery is the store query derived from the list parameters of a request.
type ListQuery struct {
	Page   int
	Limit  int64
	Skip   int64
	Sort   bson.D
	Filter bson.M
}

type Pagination struct {
	Page  int   `json:"page"`
	Pages int64 `json:"pages"`
	Count int64 `json:"count"`
}

// parsePage falls back to 1 when page is absent or not a number.
func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil {
		return defaultPage
	}
	return page
}

// parseItems falls back to 10 when items is absent, not a number or zero.
// Negative values pass through.
func parseItems(raw string) int64 {
	items, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || items == 0 {
		return defaultItems
	}
	return items
}

// sortValue keeps a supplied sortValue as the raw string; "-1" and -1 are not
// the same value here.
func sortValue(c *gin.Context) interface{} {
	if v, ok := c.GetQuery("sortValue"); ok && v != "" {
		return v
	}
	return -1
}

// searchClause builds the case-insensitive $or over fields for q.
func searchClause(fields, q string) bson.A {
	or := bson.A{}
	for _, field := range strings.Split(fields, ",") {
		or = append(or, bson.M{field: primitive.Regex{Pattern: q, Options: "i"}})
	}
	return or
}

// ParseListQuery reads page, items, sortBy, sortValue, filter, equal, fields
// and q. The filter always excludes removed documents.
func ParseListQuery(c *gin.Context) ListQuery {
	page := parsePage(c.Query("page"))
	limit := parseItems(c.Query("items"))

	sortBy := c.Query("sortBy")
	if sortBy == "" {
		sortBy = "enabled"
	}

	filter := bson.M{"removed": false}
	if field, ok := c.GetQuery("filter"); ok && field != "" {
		filter[field] = c.Query("equal")
	}
	if fields := c.Query("fields"); fields != "" {
		filter["$or"] = searchClause(fields, c.Query("q"))
	}

	return ListQuery{
		Page:   page,
		Limit:  limit,
		Skip:   int64(page)*limit - limit,
		Sort:   bson.D{{Key: sortBy, Value: sortValue(c)}},
		Filter: filter,
	}
}

func (q ListQuery) Pagination(count int64) Pagination {
	return Pagination{
		Page:  q.Page,
		Pages: int64(math.Ceil(float64(count) / float64(q.Limit))),
		Count: count,
	}
}
