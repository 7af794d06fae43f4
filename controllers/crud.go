package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"erpbackend/middleware"
	"erpbackend/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

// CRUD serves the generic operations of one entity. Populate is applied to
// read and list results.
type CRUD struct {
	Entity     string
	Collection store.Collection
	Populate   []store.Populate
}

func NewCRUD(entity string, coll store.Collection, populate ...store.Populate) *CRUD {
	return &CRUD{Entity: entity, Collection: coll, Populate: populate}
}

func (h *CRUD) Create(c *gin.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	body, err := readBody(c)
	if err != nil {
		return err
	}
	body["removed"] = false

	result, err := h.Collection.InsertOne(ctx, body)
	if err != nil {
		return fmt.Errorf("create %s: %w", h.Entity, err)
	}
	middleware.DocumentsCreatedTotal.WithLabelValues(h.Entity).Inc()

	success(c, result, "Successfully Created the document in Model ")
	return nil
}

func (h *CRUD) Read(c *gin.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := findOptional(ctx, h.Collection, bson.M{"_id": store.ID(c.Param("id")), "removed": false}, h.Populate...)
	if err != nil {
		return fmt.Errorf("read %s: %w", h.Entity, err)
	}
	if result == nil {
		notFound(c, "No document found ")
		return nil
	}

	success(c, result, "we found this document ")
	return nil
}

// Update applies the body as a partial update. removed is always reset to
// false so an update cannot delete or restore a document.
func (h *CRUD) Update(c *gin.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	body, err := readBody(c)
	if err != nil {
		return err
	}
	delete(body, "_id")
	body["removed"] = false

	result, err := updateOptional(ctx, h.Collection, bson.M{"_id": store.ID(c.Param("id")), "removed": false}, body)
	if err != nil {
		return fmt.Errorf("update %s: %w", h.Entity, err)
	}
	if result == nil {
		notFound(c, "No document found ")
		return nil
	}

	success(c, result, "we update this document ")
	return nil
}

// Remove soft deletes by id. An already removed document matches again.
func (h *CRUD) Remove(c *gin.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := updateOptional(ctx, h.Collection, bson.M{"_id": store.ID(c.Param("id"))}, bson.M{"$set": bson.M{"removed": true}})
	if err != nil {
		return fmt.Errorf("remove %s: %w", h.Entity, err)
	}
	if result == nil {
		notFound(c, "No document found ")
		return nil
	}

	success(c, result, "Successfully Deleted the document ")
	return nil
}

func (h *CRUD) ListAll(c *gin.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	sort := c.Query("sort")
	if sort == "" {
		sort = "desc"
	}

	filter := bson.M{"removed": false}
	if enabled, ok := c.GetQuery("enabled"); ok {
		if b, err := strconv.ParseBool(enabled); err == nil {
			filter["enabled"] = b
		} else {
			filter["enabled"] = enabled
		}
	}

	result, err := h.Collection.Find(ctx, filter, store.FindOptions{
		Sort:     bson.D{{Key: "created", Value: sort}},
		Populate: h.Populate,
	})
	if err != nil {
		return fmt.Errorf("list %s: %w", h.Entity, err)
	}

	if len(result) == 0 {
		c.JSON(http.StatusNonAuthoritativeInfo, gin.H{
			"success": false,
			"result":  []bson.M{},
			"message": "Collection is Empty",
		})
		return nil
	}
	success(c, result, "Successfully found all documents")
	return nil
}

// PaginatedList runs the page query and the count concurrently.
func (h *CRUD) PaginatedList(c *gin.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	q := ParseListQuery(c)

	var (
		result []bson.M
		count  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		result, err = h.Collection.Find(gctx, q.Filter, store.FindOptions{
			Sort:     q.Sort,
			Skip:     q.Skip,
			Limit:    q.Limit,
			Populate: h.Populate,
		})
		return err
	})
	g.Go(func() error {
		var err error
		count, err = h.Collection.CountDocuments(gctx, q.Filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("paginate %s: %w", h.Entity, err)
	}

	if len(result) == 0 {
		c.JSON(http.StatusNonAuthoritativeInfo, gin.H{
			"success":    true,
			"result":     []bson.M{},
			"pagination": Pagination{Page: q.Page},
			"message":    "Collection is Empty",
		})
		return nil
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"result":     result,
		"pagination": q.Pagination(count),
		"message":    "Successfully found all documents",
	})
	return nil
}

func (h *CRUD) Filter(c *gin.Context) error {
	field := c.Query("filter")
	equal := c.Query("equal")
	if field == "" || equal == "" {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"result":  nil,
			"message": "filter not provided correctly",
		})
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.Collection.Find(ctx, bson.M{"removed": false, field: equal}, store.FindOptions{})
	if err != nil {
		return fmt.Errorf("filter %s: %w", h.Entity, err)
	}
	if len(result) == 0 {
		notFound(c, "No document found ")
		return nil
	}

	success(c, result, "Successfully found all documents  ")
	return nil
}

func (h *CRUD) Search(c *gin.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	fields := c.Query("fields")
	if fields == "" {
		fields = "name"
	}
	filter := bson.M{
		"$or":     searchClause(fields, c.Query("q")),
		"removed": false,
	}

	result, err := h.Collection.Find(ctx, filter, store.FindOptions{Limit: searchLimit})
	if err != nil {
		return fmt.Errorf("search %s: %w", h.Entity, err)
	}

	if len(result) == 0 {
		c.JSON(http.StatusAccepted, gin.H{
			"success": false,
			"result":  []bson.M{},
			"message": "No document found by this request",
		})
		return nil
	}
	success(c, result, "Successfully found all documents")
	return nil
}
