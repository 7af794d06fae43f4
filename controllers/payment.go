package controllers

import (
	"context"
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

// PaymentController records payments against invoices and keeps the invoice
// credit and payment status in step.
type PaymentController struct {
	*CRUD
	Invoices store.Collection
	Settings *SettingsStore
	now      func() time.Time
}

func NewPaymentController(payments, invoices store.Collection, settings *SettingsStore) *PaymentController {
	return &PaymentController{
		CRUD:     NewCRUD("payment", payments, createdByPopulate),
		Invoices: invoices,
		Settings: settings,
		now:      time.Now,
	}
}

func zeroAmount(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"result":  nil,
		"message": "The Minimum Amount couldn't be 0",
	})
}

func maxAmountExceeded(c *gin.Context, limit float64) {
	c.JSON(http.StatusAccepted, gin.H{
		"success": false,
		"result":  nil,
		"message": "The Max Amount you can add is " + formatAmount(limit),
	})
}

type invoiceBalance struct {
	Total    float64
	Discount float64
	Credit   float64
}

func balanceOf(invoice bson.M) invoiceBalance {
	return invoiceBalance{
		Total:    utils.FloatOr(invoice["total"], 0),
		Discount: utils.FloatOr(invoice["discount"], 0),
		Credit:   utils.FloatOr(invoice["credit"], 0),
	}
}

func (h *PaymentController) Create(c *gin.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	body, err := readBody(c)
	if err != nil {
		return err
	}

	amount := utils.FloatOr(body["amount"], 0)
	if amount == 0 {
		zeroAmount(c)
		return nil
	}

	invoiceRef, _ := body["invoice"].(string)
	invoice, err := findOptional(ctx, h.Invoices, bson.M{"_id": store.ID(invoiceRef), "removed": false})
	if err != nil {
		return fmt.Errorf("read invoice: %w", err)
	}
	if invoice == nil {
		notFound(c, "No document found ")
		return nil
	}

	balance := balanceOf(invoice)
	limit := utils.Sub(utils.Sub(balance.Total, balance.Discount), balance.Credit)
	if amount > limit {
		maxAmountExceeded(c, limit)
		return nil
	}

	if adminID, ok := currentAdminID(c); ok {
		body["createdBy"] = adminID
	}
	if number, _ := body["number"].(string); number == "" {
		body["number"] = h.nextNumber(ctx)
	}
	body["amount"] = amount
	body["invoice"] = invoice["_id"]
	if client, ok := invoice["client"]; ok {
		body["client"] = client
	}
	body["removed"] = false
	normalizeDocument(body, "paymentMode")

	created, err := h.Collection.InsertOne(ctx, body)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	middleware.DocumentsCreatedTotal.WithLabelValues(h.Entity).Inc()

	id := created["_id"]
	result, err := h.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"pdf": "payment-" + store.IDString(id) + ".pdf"})
	if err != nil {
		return fmt.Errorf("set payment pdf: %w", err)
	}

	status := utils.PaymentStatus(balance.Total, balance.Discount, utils.Add(balance.Credit, amount))
	_, err = h.Invoices.FindOneAndUpdate(ctx, bson.M{"_id": invoice["_id"]}, bson.M{
		"$push": bson.M{"payment": id},
		"$inc":  bson.M{"credit": amount},
		"$set":  bson.M{"paymentStatus": status},
	})
	if err != nil {
		return fmt.Errorf("credit invoice: %w", err)
	}

	success(c, result, "Payment Invoice created successfully")
	return nil
}

// nextNumber derives a payment number from the last_payment_number setting
// and advances it.
func (h *PaymentController) nextNumber(ctx context.Context) string {
	var last int
	if setting := h.Settings.ReadBySettingKey(ctx, models.SettingLastPaymentNumber); setting != nil {
		last = int(utils.FloatOr(setting["settingValue"], 0))
	}
	h.Settings.IncreaseBySettingKey(ctx, models.SettingLastPaymentNumber)
	return utils.GenerateUniqueNumber(last)
}

func (h *PaymentController) Update(c *gin.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	id := store.ID(c.Param("id"))
	previous, err := findOptional(ctx, h.Collection, bson.M{"_id": id, "removed": false})
	if err != nil {
		return fmt.Errorf("read payment: %w", err)
	}
	if previous == nil {
		notFound(c, "No document found ")
		return nil
	}

	body, err := readBody(c)
	if err != nil {
		return err
	}
	amount := utils.FloatOr(body["amount"], 0)
	if amount == 0 {
		zeroAmount(c)
		return nil
	}

	invoice, err := findOptional(ctx, h.Invoices, bson.M{"_id": previous["invoice"]})
	if err != nil {
		return fmt.Errorf("read invoice: %w", err)
	}
	if invoice == nil {
		notFound(c, "No document found ")
		return nil
	}

	balance := balanceOf(invoice)
	previousAmount := utils.FloatOr(previous["amount"], 0)
	changed := utils.Sub(amount, previousAmount)
	limit := utils.Sub(balance.Total, utils.Add(balance.Discount, balance.Credit))
	if changed > limit {
		maxAmountExceeded(c, utils.Add(limit, previousAmount))
		return nil
	}

	set := bson.M{"amount": amount, "updated": h.now()}
	for _, key := range []string{"number", "date", "paymentMode", "ref", "description"} {
		if v, ok := body[key]; ok {
			set[key] = v
		}
	}
	normalizeDocument(set, "paymentMode")

	result, err := updateOptional(ctx, h.Collection, bson.M{"_id": id, "removed": false}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if result == nil {
		notFound(c, "No document found ")
		return nil
	}

	status := utils.PaymentStatus(balance.Total, balance.Discount, utils.Add(balance.Credit, changed))
	_, err = h.Invoices.FindOneAndUpdate(ctx, bson.M{"_id": invoice["_id"]}, bson.M{
		"$inc": bson.M{"credit": changed},
		"$set": bson.M{"paymentStatus": status},
	})
	if err != nil {
		return fmt.Errorf("credit invoice: %w", err)
	}

	success(c, result, "Successfully updated the Payment ")
	return nil
}

// Remove soft deletes the payment and takes its amount back off the invoice.
func (h *PaymentController) Remove(c *gin.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	id := store.ID(c.Param("id"))
	previous, err := findOptional(ctx, h.Collection, bson.M{"_id": id, "removed": false})
	if err != nil {
		return fmt.Errorf("read payment: %w", err)
	}
	if previous == nil {
		notFound(c, "No document found ")
		return nil
	}

	invoice, err := findOptional(ctx, h.Invoices, bson.M{"_id": previous["invoice"]})
	if err != nil {
		return fmt.Errorf("read invoice: %w", err)
	}
	if invoice == nil {
		notFound(c, "No document found ")
		return nil
	}

	removed, err := h.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "removed": false}, bson.M{"$set": bson.M{"removed": true}})
	if err != nil {
		return fmt.Errorf("remove payment: %w", err)
	}

	amount := utils.FloatOr(previous["amount"], 0)
	balance := balanceOf(invoice)
	status := utils.PaymentStatus(balance.Total, balance.Discount, utils.Sub(balance.Credit, amount))
	_, err = h.Invoices.FindOneAndUpdate(ctx, bson.M{"_id": invoice["_id"]}, bson.M{
		"$pull": bson.M{"payment": previous["_id"]},
		"$inc":  bson.M{"credit": -amount},
		"$set":  bson.M{"paymentStatus": status},
	})
	if err != nil {
		return fmt.Errorf("debit invoice: %w", err)
	}

	success(c, removed, "Successfully Deleted the document ")
	return nil
}

type PaymentSummary struct {
	Count float64 `json:"count"`
	Total float64 `json:"total"`
}

func (h *PaymentController) Summary(c *gin.Context) error {
	typ, valid := summaryType(c)
	if !valid {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	groups, err := h.Collection.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"removed": false}},
		{"$group": bson.M{
			"_id":   nil,
			"count": bson.M{"$sum": 1},
			"total": bson.M{"$sum": "$amount"},
		}},
		{"$project": bson.M{"_id": 0, "count": 1, "total": 1}},
	})
	if err != nil {
		return fmt.Errorf("payment summary: %w", err)
	}

	summary := PaymentSummary{}
	if len(groups) > 0 {
		summary.Count = utils.FloatOr(groups[0]["count"], 0)
		summary.Total = utils.FloatOr(groups[0]["total"], 0)
	}

	success(c, summary, "paid invoices summary for the last "+typ)
	return nil
}
