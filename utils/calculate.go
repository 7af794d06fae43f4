package utils

import (
	"encoding/json"
	"math"
	"strconv"

	"erpbackend/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Money arithmetic is done in floats rounded to cents after every step.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func Add(a, b float64) float64 {
	return roundCents(a + b)
}

func Sub(a, b float64) float64 {
	return roundCents(a - b)
}

func Multiply(a, b float64) float64 {
	return roundCents(a * b)
}

// ToFloat reads a number out of a decoded JSON or BSON value. Numeric strings
// are accepted.
func ToFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func FloatOr(v interface{}, def float64) float64 {
	if f, ok := ToFloat(v); ok {
		return f
	}
	return def
}

type Totals struct {
	SubTotal float64
	TaxTotal float64
	Total    float64
}

// ComputeTotals writes item.total = quantity * price into every item and
// returns subTotal, taxTotal = subTotal * taxRate / 100 and total.
func ComputeTotals(items []map[string]interface{}, taxRate float64) Totals {
	var subTotal float64
	for _, item := range items {
		total := Multiply(FloatOr(item["quantity"], 0), FloatOr(item["price"], 0))
		item["total"] = total
		subTotal = Add(subTotal, total)
	}

	taxTotal := Multiply(subTotal, taxRate/100)
	return Totals{
		SubTotal: subTotal,
		TaxTotal: taxTotal,
		Total:    Add(subTotal, taxTotal),
	}
}

// InitialPaymentStatus is the status of a freshly created invoice.
func InitialPaymentStatus(total, discount float64) string {
	if Sub(total, discount) == 0 {
		return models.PaymentStatusPaid
	}
	return models.PaymentStatusUnpaid
}

// PaymentStatus derives the status of an invoice that has received credit.
func PaymentStatus(total, discount, credit float64) string {
	switch {
	case Sub(total, discount) == roundCents(credit):
		return models.PaymentStatusPaid
	case credit > 0:
		return models.PaymentStatusPartially
	default:
		return models.PaymentStatusUnpaid
	}
}

// ItemsFrom converts a decoded items array into mutable item maps. Entries
// that are not objects are skipped.
func ItemsFrom(v interface{}) []map[string]interface{} {
	var raw []interface{}
	switch t := v.(type) {
	case []interface{}:
		raw = t
	case bson.A:
		raw = t
	case []map[string]interface{}:
		return t
	default:
		return []map[string]interface{}{}
	}

	items := make([]map[string]interface{}, 0, len(raw))
	for _, r := range raw {
		switch item := r.(type) {
		case map[string]interface{}:
			items = append(items, item)
		case bson.M:
			items = append(items, item)
		}
	}
	return items
}
