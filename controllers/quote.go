package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"erpbackend/middleware"
	"erpbackend/models"
	"erpbackend/store"
	"erpbackend/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

const premiumMessage = "Please Upgrade to Premium  Version to have full features"

var errNoAdmin = errors.New("no authenticated admin on the request")

type QuoteController struct {
	*CRUD
	Settings *SettingsStore
	Location *time.Location
	now      func() time.Time
}

func NewQuoteController(quotes store.Collection, settings *SettingsStore, loc *time.Location) *QuoteController {
	return &QuoteController{
		CRUD:     NewCRUD("quote", quotes, createdByPopulate),
		Settings: settings,
		Location: loc,
		now:      time.Now,
	}
}

func (h *QuoteController) Create(c *gin.Context) error {
	adminID, found := currentAdminID(c)
	if !found {
		return errNoAdmin
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	body, err := readBody(c)
	if err != nil {
		return err
	}
	if valid, err := validateDocument(c, body); !valid {
		return err
	}

	applyTotals(body)
	body["createdBy"] = adminID
	body["removed"] = false
	normalizeDocument(body, "client")

	created, err := h.Collection.InsertOne(ctx, body)
	if err != nil {
		return fmt.Errorf("create quote: %w", err)
	}
	middleware.DocumentsCreatedTotal.WithLabelValues(h.Entity).Inc()

	id := created["_id"]
	result, err := h.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"pdf": "quote-" + store.IDString(id) + ".pdf"})
	if err != nil {
		return fmt.Errorf("set quote pdf: %w", err)
	}

	h.Settings.IncreaseBySettingKey(ctx, models.SettingLastQuoteNumber)

	success(c, result, "Quote created successfully")
	return nil
}

func (h *QuoteController) Update(c *gin.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	body, err := readBody(c)
	if err != nil {
		return err
	}
	if len(utils.ItemsFrom(body["items"])) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"result":  nil,
			"message": "Items cannot be empty",
		})
		return nil
	}

	id := c.Param("id")
	applyTotals(body)
	body["pdf"] = "quote-" + id + ".pdf"
	delete(body, "_id")
	delete(body, "currency")
	normalizeDocument(body, "client")

	result, err := updateOptional(ctx, h.Collection, bson.M{"_id": store.ID(id), "removed": false}, body)
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	if result == nil {
		notFound(c, "No document found ")
		return nil
	}

	success(c, result, "we update this document by this id: "+id)
	return nil
}

type QuoteSummary struct {
	Total       float64       `json:"total"`
	Type        string        `json:"type"`
	Performance []StatusCount `json:"performance"`
}

// Summary reports quote totals and status shares for quotes dated within the
// current week, month or year.
func (h *QuoteController) Summary(c *gin.Context) error {
	typ, valid := summaryType(c)
	if !valid {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	start, end := periodRange(typ, h.now(), h.Location)
	facets, err := h.Collection.Aggregate(ctx, []bson.M{
		{"$match": bson.M{
			"removed": false,
			"date":    bson.M{"$gte": start, "$lte": end},
		}},
		{"$facet": bson.M{
			"totalQuote": bson.A{
				bson.M{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$total"}, "count": bson.M{"$sum": 1}}},
			},
			"statusCounts": bson.A{
				bson.M{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("quote summary: %w", err)
	}
	if len(facets) == 0 {
		return errors.New("quote summary: empty aggregation result")
	}

	var total, count float64
	if totals := facetEntries(facets[0], "totalQuote"); len(totals) > 0 {
		total = utils.FloatOr(totals[0]["total"], 0)
		count = utils.FloatOr(totals[0]["count"], 0)
	}

	status := statusCounts(facetEntries(facets[0], "statusCounts"))
	performance := []StatusCount{}
	for _, s := range models.QuoteStatuses {
		if n, found := status[s]; found {
			performance = append(performance, StatusCount{Status: s, Count: n, Percentage: percentage(n, count)})
		}
	}

	success(c, QuoteSummary{
		Total:       total,
		Type:        typ,
		Performance: performance,
	}, "Successfully found all Quotations for the last "+typ)
	return nil
}

func (h *QuoteController) Convert(c *gin.Context) error {
	success(c, nil, premiumMessage)
	return nil
}

func (h *QuoteController) Mail(c *gin.Context) error {
	success(c, nil, premiumMessage)
	return nil
}
