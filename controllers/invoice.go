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

type InvoiceController struct {
	*CRUD
	Payments store.Collection
	Settings *SettingsStore
	now      func() time.Time
}

func NewInvoiceController(invoices, payments store.Collection, settings *SettingsStore) *InvoiceController {
	return &InvoiceController{
		CRUD:     NewCRUD("invoice", invoices, createdByPopulate),
		Payments: payments,
		Settings: settings,
		now:      time.Now,
	}
}

func (h *InvoiceController) Create(c *gin.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	body, err := readBody(c)
	if err != nil {
		return err
	}
	if valid, err := validateDocument(c, body); !valid {
		return err
	}

	totals := applyTotals(body)
	body["paymentStatus"] = utils.InitialPaymentStatus(totals.Total, utils.FloatOr(body["discount"], 0))
	body["credit"] = 0.0
	body["removed"] = false
	normalizeDocument(body, "client")
	if adminID, ok := currentAdminID(c); ok {
		body["createdBy"] = adminID
	}

	created, err := h.Collection.InsertOne(ctx, body)
	if err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	middleware.DocumentsCreatedTotal.WithLabelValues(h.Entity).Inc()

	id := created["_id"]
	result, err := h.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"pdf": "invoice-" + store.IDString(id) + ".pdf"})
	if err != nil {
		return fmt.Errorf("set invoice pdf: %w", err)
	}

	h.Settings.IncreaseBySettingKey(ctx, models.SettingLastInvoiceNumber)

	success(c, result, "Invoice created successfully")
	return nil
}

// Update recomputes the totals and derives the payment status from the
// credit already received.
func (h *InvoiceController) Update(c *gin.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Param("id")
	previous, err := findOptional(ctx, h.Collection, bson.M{"_id": store.ID(id), "removed": false})
	if err != nil {
		return fmt.Errorf("read invoice: %w", err)
	}
	if previous == nil {
		notFound(c, "No document found ")
		return nil
	}

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

	totals := applyTotals(body)
	credit := utils.FloatOr(previous["credit"], 0)
	body["paymentStatus"] = utils.PaymentStatus(totals.Total, utils.FloatOr(body["discount"], 0), credit)
	body["pdf"] = "invoice-" + id + ".pdf"
	delete(body, "_id")
	delete(body, "currency")
	normalizeDocument(body, "client")

	result, err := updateOptional(ctx, h.Collection, bson.M{"_id": store.ID(id), "removed": false}, body)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if result == nil {
		notFound(c, "No document found ")
		return nil
	}

	success(c, result, "we update this document by this id: "+id)
	return nil
}

// Remove soft deletes the invoice and every payment recorded against it.
func (h *InvoiceController) Remove(c *gin.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	id := store.ID(c.Param("id"))
	removed, err := updateOptional(ctx, h.Collection, bson.M{"_id": id, "removed": false}, bson.M{"$set": bson.M{"removed": true}})
	if err != nil {
		return fmt.Errorf("remove invoice: %w", err)
	}
	if removed == nil {
		notFound(c, "Invoice not found")
		return nil
	}

	if _, err = h.Payments.UpdateMany(ctx, bson.M{"invoice": removed["_id"]}, bson.M{"$set": bson.M{"removed": true}}); err != nil {
		return fmt.Errorf("remove invoice payments: %w", err)
	}

	success(c, removed, "Invoice deleted successfully")
	return nil
}

type InvoiceSummary struct {
	Total       float64       `json:"total"`
	TotalUndue  float64       `json:"total_undue"`
	Type        string        `json:"type"`
	Performance []StatusCount `json:"performance"`
}

func (h *InvoiceController) Summary(c *gin.Context) error {
	typ, valid := summaryType(c)
	if !valid {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	facets, err := h.Collection.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"removed": false}},
		{"$facet": bson.M{
			"totalInvoice": bson.A{
				bson.M{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$total"}, "count": bson.M{"$sum": 1}}},
			},
			"statusCounts": bson.A{
				bson.M{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
			},
			"paymentStatusCounts": bson.A{
				bson.M{"$group": bson.M{"_id": "$paymentStatus", "count": bson.M{"$sum": 1}}},
			},
			"overdueCounts": bson.A{
				bson.M{"$match": bson.M{"expiredDate": bson.M{"$lt": h.now()}}},
				bson.M{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("invoice summary: %w", err)
	}
	if len(facets) == 0 {
		return errors.New("invoice summary: empty aggregation result")
	}
	facet := facets[0]

	var total, count float64
	if totals := facetEntries(facet, "totalInvoice"); len(totals) > 0 {
		total = utils.FloatOr(totals[0]["total"], 0)
		count = utils.FloatOr(totals[0]["count"], 0)
	}

	payment := statusCounts(facetEntries(facet, "paymentStatusCounts"))
	status := statusCounts(facetEntries(facet, "statusCounts"))
	var overdue float64
	for _, n := range statusCounts(facetEntries(facet, "overdueCounts")) {
		overdue += n
	}

	performance := []StatusCount{}
	for _, s := range models.InvoiceStatuses {
		n, found := payment[s]
		if !found {
			n, found = status[s]
		}
		if !found && s == "overdue" && overdue > 0 {
			n, found = overdue, true
		}
		if found {
			performance = append(performance, StatusCount{Status: s, Count: n, Percentage: percentage(n, count)})
		}
	}

	unpaid, err := h.Collection.Aggregate(ctx, []bson.M{
		{"$match": bson.M{
			"removed":       false,
			"paymentStatus": bson.M{"$in": bson.A{models.PaymentStatusUnpaid, models.PaymentStatusPartially}},
		}},
		{"$group": bson.M{
			"_id":          nil,
			"total_amount": bson.M{"$sum": bson.M{"$subtract": bson.A{"$total", "$credit"}}},
		}},
	})
	if err != nil {
		return fmt.Errorf("invoice unpaid summary: %w", err)
	}
	var undue float64
	if len(unpaid) > 0 {
		undue = utils.FloatOr(unpaid[0]["total_amount"], 0)
	}

	success(c, InvoiceSummary{
		Total:       total,
		TotalUndue:  undue,
		Type:        typ,
		Performance: performance,
	}, "Successfully found all invoices for the last "+typ)
	return nil
}
