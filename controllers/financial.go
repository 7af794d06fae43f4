package controllers

import (
	"net/http"
	"strconv"
	"time"

	"erpbackend/middleware"
	"erpbackend/models"
	"erpbackend/store"
	"erpbackend/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var summaryTypes = map[string]bool{"week": true, "month": true, "year": true}

// summaryType reads ?type, defaulting to month. An unknown type is answered
// with 400 and reported as false.
func summaryType(c *gin.Context) (string, bool) {
	typ := c.Query("type")
	if typ == "" {
		typ = "month"
	}
	if !summaryTypes[typ] {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"result":  nil,
			"message": "Invalid type",
		})
		return "", false
	}
	return typ, true
}

// periodRange returns the start and end of the week (Sunday first), month or
// year that contains now.
func periodRange(typ string, now time.Time, loc *time.Location) (time.Time, time.Time) {
	now = now.In(loc)
	y, m, d := now.Date()

	var start, end time.Time
	switch typ {
	case "week":
		start = time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, loc)
		end = start.AddDate(0, 0, 7)
	case "year":
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(1, 0, 0)
	default:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, 0)
	}
	return start, end.Add(-time.Millisecond)
}

// validateDocument checks an invoice or quote payload and answers 400 with
// the first problem.
func validateDocument(c *gin.Context, body bson.M) (bool, error) {
	var input models.InvoiceInput
	msg, err := decodeInto(body, &input)
	if err != nil {
		return false, err
	}
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"result":  nil,
			"message": msg,
		})
		return false, nil
	}
	return true, nil
}

// applyTotals writes item totals, subTotal, taxTotal and total into body.
func applyTotals(body bson.M) utils.Totals {
	items := utils.ItemsFrom(body["items"])
	taxRate := utils.FloatOr(body["taxRate"], 0)
	discount := utils.FloatOr(body["discount"], 0)

	totals := utils.ComputeTotals(items, taxRate)
	body["items"] = items
	body["taxRate"] = taxRate
	body["discount"] = discount
	body["subTotal"] = totals.SubTotal
	body["taxTotal"] = totals.TaxTotal
	body["total"] = totals.Total
	return totals
}

// normalizeDocument turns date strings into times and reference ids into
// ObjectIDs so that they are stored with their proper types.
func normalizeDocument(body bson.M, refs ...string) {
	for _, key := range []string{"date", "expiredDate"} {
		if s, ok := body[key].(string); ok {
			if t, ok := parseDate(s); ok {
				body[key] = t
			}
		}
	}
	for _, key := range refs {
		if s, ok := body[key].(string); ok {
			body[key] = store.ID(s)
		}
	}
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func currentAdminID(c *gin.Context) (primitive.ObjectID, bool) {
	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := admin["_id"].(primitive.ObjectID)
	return id, ok
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// facetEntries reads one $facet output array.
func facetEntries(doc bson.M, key string) []bson.M {
	var raw []interface{}
	switch t := doc[key].(type) {
	case bson.A:
		raw = t
	case []interface{}:
		raw = t
	case []bson.M:
		return t
	default:
		return nil
	}
	entries := make([]bson.M, 0, len(raw))
	for _, r := range raw {
		switch e := r.(type) {
		case bson.M:
			entries = append(entries, e)
		case map[string]interface{}:
			entries = append(entries, e)
		}
	}
	return entries
}

// facetCount returns the count of the first entry of a $count facet.
func facetCount(doc bson.M, key string) float64 {
	entries := facetEntries(doc, key)
	if len(entries) == 0 {
		return 0
	}
	return utils.FloatOr(entries[0]["count"], 0)
}

type StatusCount struct {
	Status     string  `json:"status"`
	Count      float64 `json:"count"`
	Percentage float64 `json:"percentage"`
}

// statusCounts turns {_id: status, count} groups into a status to count map.
func statusCounts(groups []bson.M) map[string]float64 {
	counts := make(map[string]float64, len(groups))
	for _, g := range groups {
		status, ok := g["_id"].(string)
		if !ok {
			continue
		}
		counts[status] += utils.FloatOr(g["count"], 0)
	}
	return counts
}
