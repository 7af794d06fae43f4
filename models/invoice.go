package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentStatusUnpaid    = "unpaid"
	PaymentStatusPartially = "partially"
	PaymentStatusPaid      = "paid"
)

// InvoiceStatuses is the order in which invoice performance is reported.
var InvoiceStatuses = []string{"draft", "pending", "overdue", "paid", "unpaid", "partially"}

var QuoteStatuses = []string{"draft", "pending", "sent", "expired", "declined", "accepted"}

type Item struct {
	ItemName    string  `bson:"itemName" json:"itemName"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	Quantity    float64 `bson:"quantity" json:"quantity"`
	Price       float64 `bson:"price" json:"price"`
	Total       float64 `bson:"total" json:"total"`
}

type Invoice struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"_id,omitempty"`
	Removed       bool                 `bson:"removed" json:"removed"`
	CreatedBy     primitive.ObjectID   `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	Number        float64              `bson:"number" json:"number"`
	Year          float64              `bson:"year" json:"year"`
	Date          time.Time            `bson:"date" json:"date"`
	ExpiredDate   time.Time            `bson:"expiredDate" json:"expiredDate"`
	Client        primitive.ObjectID   `bson:"client,omitempty" json:"client,omitempty"`
	Items         []Item               `bson:"items" json:"items"`
	TaxRate       float64              `bson:"taxRate" json:"taxRate"`
	SubTotal      float64              `bson:"subTotal" json:"subTotal"`
	TaxTotal      float64              `bson:"taxTotal" json:"taxTotal"`
	Total         float64              `bson:"total" json:"total"`
	Credit        float64              `bson:"credit" json:"credit"`
	Discount      float64              `bson:"discount" json:"discount"`
	Payment       []primitive.ObjectID `bson:"payment,omitempty" json:"payment,omitempty"`
	PaymentStatus string               `bson:"paymentStatus" json:"paymentStatus"`
	Status        string               `bson:"status" json:"status"`
	IsOverdue     bool                 `bson:"isOverdue" json:"isOverdue"`
	Notes         string               `bson:"notes,omitempty" json:"notes,omitempty"`
	Pdf           string               `bson:"pdf,omitempty" json:"pdf,omitempty"`
}

// InvoiceInput is the validated part of an invoice or quote payload. Fields
// not listed here are stored as sent.
type InvoiceInput struct {
	Client   interface{} `json:"client" validate:"required"`
	Items    []ItemInput `json:"items" validate:"required,dive"`
	TaxRate  interface{} `json:"taxRate"`
	Discount float64     `json:"discount" validate:"gte=0"`
}

type ItemInput struct {
	ItemName string  `json:"itemName"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}
