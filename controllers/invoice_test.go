package controllers

import (
	"net/http"
	"testing"
	"time"

	"erpbackend/store/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type invoiceFixture struct {
	invoices *mocks.MockCollection
	payments *mocks.MockCollection
	settings *mocks.MockCollection
	ctrl     *InvoiceController
}

func newInvoiceFixture() invoiceFixture {
	f := invoiceFixture{
		invoices: mocks.NewMockCollection("invoices"),
		payments: mocks.NewMockCollection("payments"),
		settings: mocks.NewMockCollection("settings"),
	}
	f.ctrl = NewInvoiceController(f.invoices, f.payments, testSettings(f.settings))
	return f
}

func TestInvoiceCreateValidation(t *testing.T) {
	tests := []struct {
		name        string
		body        map[string]interface{}
		wantMessage string
	}{
		{
			name:        "client missing",
			body:        map[string]interface{}{"items": []interface{}{}},
			wantMessage: `"client" is required`,
		},
		{
			name:        "items missing",
			body:        map[string]interface{}{"client": primitive.NewObjectID().Hex()},
			wantMessage: `"items" is required`,
		},
		{
			name: "quantity not a number",
			body: map[string]interface{}{
				"client": primitive.NewObjectID().Hex(),
				"items":  []interface{}{map[string]interface{}{"itemName": "a", "quantity": "two", "price": 1}},
			},
			wantMessage: `"quantity" must be a number`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInvoiceFixture()

			w := call{
				method: http.MethodPost, route: "/create", target: "/create",
				body:    tt.body,
				handler: f.ctrl.Create,
			}.do(t)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Nil(t, body["result"])
			assert.Equal(t, tt.wantMessage, body["message"])
			f.invoices.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
		})
	}
}

func TestInvoiceCreate(t *testing.T) {
	tests := []struct {
		name       string
		items      []interface{}
		taxRate    float64
		discount   float64
		wantTotal  float64
		wantStatus string
	}{
		{
			name:       "unpaid when total exceeds discount",
			items:      []interface{}{map[string]interface{}{"itemName": "a", "quantity": 2, "price": 50}},
			taxRate:    10,
			discount:   5,
			wantTotal:  110,
			wantStatus: "unpaid",
		},
		{
			name:       "paid when discount covers total",
			items:      []interface{}{map[string]interface{}{"itemName": "a", "quantity": 1, "price": 50}},
			taxRate:    0,
			discount:   50,
			wantTotal:  50,
			wantStatus: "paid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInvoiceFixture()
			adminID := primitive.NewObjectID()
			clientID := primitive.NewObjectID()
			invoiceID := primitive.NewObjectID()

			f.invoices.On("InsertOne", mock.Anything, mock.MatchedBy(func(doc bson.M) bool {
				return doc["total"] == tt.wantTotal &&
					doc["paymentStatus"] == tt.wantStatus &&
					doc["createdBy"] == adminID &&
					doc["client"] == clientID &&
					doc["removed"] == false &&
					doc["credit"] == 0.0
			})).Return(bson.M{"_id": invoiceID}, nil)
			f.invoices.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": invoiceID}, bson.M{"pdf": "invoice-" + invoiceID.Hex() + ".pdf"}).
				Return(bson.M{"_id": invoiceID, "pdf": "invoice-" + invoiceID.Hex() + ".pdf", "paymentStatus": tt.wantStatus}, nil)
			f.settings.On("FindOneAndUpdate", mock.Anything, bson.M{"settingKey": "last_invoice_number"}, bson.M{"$inc": bson.M{"settingValue": 1}}).
				Return(bson.M{"settingValue": 2}, nil)

			w := call{
				method: http.MethodPost, route: "/create", target: "/create",
				admin: bson.M{"_id": adminID},
				body: map[string]interface{}{
					"client":   clientID.Hex(),
					"items":    tt.items,
					"taxRate":  tt.taxRate,
					"discount": tt.discount,
					"date":     "2024-05-01",
				},
				handler: f.ctrl.Create,
			}.do(t)

			assert.Equal(t, http.StatusOK, w.Code)
			body := decode(t, w)
			assert.Equal(t, "Invoice created successfully", body["message"])
			result := body["result"].(map[string]interface{})
			assert.Equal(t, "invoice-"+invoiceID.Hex()+".pdf", result["pdf"])
			assert.Equal(t, tt.wantStatus, result["paymentStatus"])
			f.invoices.AssertExpectations(t)
			f.settings.AssertExpectations(t)
		})
	}
}

func TestInvoiceCreateCounterFailureIsIgnored(t *testing.T) {
	f := newInvoiceFixture()
	invoiceID := primitive.NewObjectID()
	f.invoices.On("InsertOne", mock.Anything, mock.Anything).Return(bson.M{"_id": invoiceID}, nil)
	f.invoices.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything).Return(bson.M{"_id": invoiceID}, nil)
	f.settings.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	w := call{
		method: http.MethodPost, route: "/create", target: "/create",
		body: map[string]interface{}{
			"client": primitive.NewObjectID().Hex(),
			"items":  []interface{}{},
		},
		handler: f.ctrl.Create,
	}.do(t)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInvoiceUpdate(t *testing.T) {
	id := primitive.NewObjectID()
	items := []interface{}{map[string]interface{}{"itemName": "a", "quantity": 2, "price": 50}}

	t.Run("missing invoice", func(t *testing.T) {
		f := newInvoiceFixture()
		f.invoices.On("FindOne", mock.Anything, bson.M{"_id": id, "removed": false}).Return(nil, mongo.ErrNoDocuments)

		w := call{
			method: http.MethodPatch, route: "/update/:id", target: "/update/" + id.Hex(),
			body:    map[string]interface{}{"items": items},
			handler: f.ctrl.Update,
		}.do(t)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "No document found ", decode(t, w)["message"])
	})

	t.Run("empty items", func(t *testing.T) {
		f := newInvoiceFixture()
		f.invoices.On("FindOne", mock.Anything, mock.Anything).Return(bson.M{"_id": id, "credit": 0.0}, nil)

		w := call{
			method: http.MethodPatch, route: "/update/:id", target: "/update/" + id.Hex(),
			body:    map[string]interface{}{"items": []interface{}{}},
			handler: f.ctrl.Update,
		}.do(t)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Items cannot be empty", decode(t, w)["message"])
	})

	t.Run("status follows existing credit", func(t *testing.T) {
		f := newInvoiceFixture()
		f.invoices.On("FindOne", mock.Anything, mock.Anything).Return(bson.M{"_id": id, "credit": int32(50)}, nil)
		f.invoices.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": id, "removed": false}, mock.MatchedBy(func(doc bson.M) bool {
			_, hasCurrency := doc["currency"]
			return doc["total"] == 110.0 &&
				doc["paymentStatus"] == "partially" &&
				doc["pdf"] == "invoice-"+id.Hex()+".pdf" &&
				!hasCurrency
		})).Return(bson.M{"_id": id}, nil)

		w := call{
			method: http.MethodPatch, route: "/update/:id", target: "/update/" + id.Hex(),
			body:    map[string]interface{}{"items": items, "taxRate": 10, "currency": "USD"},
			handler: f.ctrl.Update,
		}.do(t)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "we update this document by this id: "+id.Hex(), decode(t, w)["message"])
		f.invoices.AssertExpectations(t)
	})
}

func TestInvoiceRemove(t *testing.T) {
	id := primitive.NewObjectID()

	t.Run("not found", func(t *testing.T) {
		f := newInvoiceFixture()
		f.invoices.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

		w := call{
			method: http.MethodDelete, route: "/delete/:id", target: "/delete/" + id.Hex(),
			handler: f.ctrl.Remove,
		}.do(t)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Invoice not found", decode(t, w)["message"])
		f.payments.AssertNotCalled(t, "UpdateMany", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cascades to payments", func(t *testing.T) {
		f := newInvoiceFixture()
		f.invoices.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": id, "removed": false}, bson.M{"$set": bson.M{"removed": true}}).
			Return(bson.M{"_id": id, "removed": true}, nil)
		f.payments.On("UpdateMany", mock.Anything, bson.M{"invoice": id}, bson.M{"$set": bson.M{"removed": true}}).
			Return(int64(2), nil)

		w := call{
			method: http.MethodDelete, route: "/delete/:id", target: "/delete/" + id.Hex(),
			handler: f.ctrl.Remove,
		}.do(t)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Invoice deleted successfully", decode(t, w)["message"])
		f.payments.AssertExpectations(t)
	})
}

func TestInvoiceSummary(t *testing.T) {
	t.Run("invalid type", func(t *testing.T) {
		f := newInvoiceFixture()

		w := call{
			method: http.MethodGet, route: "/summary", target: "/summary?type=decade",
			handler: f.ctrl.Summary,
		}.do(t)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Invalid type", body["message"])
		assert.Nil(t, body["result"])
		f.invoices.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything)
	})

	t.Run("performance", func(t *testing.T) {
		f := newInvoiceFixture()
		f.ctrl.now = func() time.Time { return time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC) }
		f.invoices.On("Aggregate", mock.Anything, mock.Anything).Return([]bson.M{{
			"totalInvoice":        bson.A{bson.M{"_id": nil, "total": 1000.0, "count": int32(4)}},
			"statusCounts":        bson.A{bson.M{"_id": "draft", "count": int32(1)}, bson.M{"_id": "pending", "count": int32(3)}},
			"paymentStatusCounts": bson.A{bson.M{"_id": "paid", "count": int32(1)}, bson.M{"_id": "unpaid", "count": int32(3)}},
			"overdueCounts":       bson.A{bson.M{"_id": "pending", "count": int32(2)}},
		}}, nil).Once()
		f.invoices.On("Aggregate", mock.Anything, mock.Anything).Return([]bson.M{{"_id": nil, "total_amount": 600.0}}, nil).Once()

		w := call{
			method: http.MethodGet, route: "/summary", target: "/summary?type=week",
			handler: f.ctrl.Summary,
		}.do(t)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Successfully found all invoices for the last week", body["message"])
		result := body["result"].(map[string]interface{})
		assert.Equal(t, 1000.0, result["total"])
		assert.Equal(t, 600.0, result["total_undue"])
		assert.Equal(t, "week", result["type"])
		assert.Equal(t, []interface{}{
			map[string]interface{}{"status": "draft", "count": 1.0, "percentage": 25.0},
			map[string]interface{}{"status": "pending", "count": 3.0, "percentage": 75.0},
			map[string]interface{}{"status": "overdue", "count": 2.0, "percentage": 50.0},
			map[string]interface{}{"status": "paid", "count": 1.0, "percentage": 25.0},
			map[string]interface{}{"status": "unpaid", "count": 3.0, "percentage": 75.0},
		}, result["performance"])
	})
}
