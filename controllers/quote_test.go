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
)

func newQuoteController() (*QuoteController, *mocks.MockCollection, *mocks.MockCollection) {
	quotes := mocks.NewMockCollection("quotes")
	settings := mocks.NewMockCollection("settings")
	return NewQuoteController(quotes, testSettings(settings), time.UTC), quotes, settings
}

func TestQuoteCreate(t *testing.T) {
	body := map[string]interface{}{
		"client": primitive.NewObjectID().Hex(),
		"items":  []interface{}{map[string]interface{}{"itemName": "a", "quantity": 3, "price": 10}},
	}

	t.Run("requires an admin", func(t *testing.T) {
		ctrl, quotes, _ := newQuoteController()

		w := call{
			method: http.MethodPost, route: "/create", target: "/create",
			body:    body,
			handler: ctrl.Create,
		}.do(t)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, errNoAdmin.Error(), decode(t, w)["message"])
		quotes.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
	})

	t.Run("created", func(t *testing.T) {
		ctrl, quotes, settings := newQuoteController()
		adminID := primitive.NewObjectID()
		quoteID := primitive.NewObjectID()
		pdf := "quote-" + quoteID.Hex() + ".pdf"

		quotes.On("InsertOne", mock.Anything, mock.MatchedBy(func(doc bson.M) bool {
			return doc["subTotal"] == 30.0 && doc["total"] == 30.0 && doc["createdBy"] == adminID
		})).Return(bson.M{"_id": quoteID}, nil)
		quotes.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": quoteID}, bson.M{"pdf": pdf}).
			Return(bson.M{"_id": quoteID, "pdf": pdf}, nil)
		settings.On("FindOneAndUpdate", mock.Anything, bson.M{"settingKey": "last_quote_number"}, mock.Anything).
			Return(bson.M{"settingValue": int32(4)}, nil)

		w := call{
			method: http.MethodPost, route: "/create", target: "/create",
			admin:   bson.M{"_id": adminID},
			body:    body,
			handler: ctrl.Create,
		}.do(t)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Quote created successfully", decode(t, w)["message"])
		quotes.AssertExpectations(t)
		settings.AssertExpectations(t)
	})
}

func TestQuoteUpdateRejectsEmptyItems(t *testing.T) {
	ctrl, quotes, _ := newQuoteController()
	id := primitive.NewObjectID().Hex()

	w := call{
		method: http.MethodPatch, route: "/update/:id", target: "/update/" + id,
		body:    map[string]interface{}{"items": []interface{}{}},
		handler: ctrl.Update,
	}.do(t)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Items cannot be empty", decode(t, w)["message"])
	quotes.AssertNotCalled(t, "FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestQuoteSummary(t *testing.T) {
	ctrl, quotes, _ := newQuoteController()
	ctrl.now = func() time.Time { return time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC) }
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 29, 23, 59, 59, int(999*time.Millisecond), time.UTC)

	quotes.On("Aggregate", mock.Anything, mock.MatchedBy(func(pipeline []bson.M) bool {
		match := pipeline[0]["$match"].(bson.M)
		window := match["date"].(bson.M)
		return window["$gte"].(time.Time).Equal(start) && window["$lte"].(time.Time).Equal(end)
	})).Return([]bson.M{{
		"totalQuote":   bson.A{bson.M{"_id": nil, "total": 400.0, "count": int32(4)}},
		"statusCounts": bson.A{bson.M{"_id": "sent", "count": int32(3)}, bson.M{"_id": "draft", "count": int32(1)}},
	}}, nil)

	w := call{
		method: http.MethodGet, route: "/summary", target: "/summary",
		handler: ctrl.Summary,
	}.do(t)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Successfully found all Quotations for the last month", body["message"])
	result := body["result"].(map[string]interface{})
	assert.Equal(t, 400.0, result["total"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"status": "draft", "count": 1.0, "percentage": 25.0},
		map[string]interface{}{"status": "sent", "count": 3.0, "percentage": 75.0},
	}, result["performance"])
	quotes.AssertExpectations(t)
}

func TestQuotePremiumOnly(t *testing.T) {
	ctrl, _, _ := newQuoteController()

	for _, handler := range []func() call{
		func() call {
			return call{method: http.MethodGet, route: "/convert/:id", target: "/convert/1", handler: ctrl.Convert}
		},
		func() call { return call{method: http.MethodPost, route: "/mail", target: "/mail", handler: ctrl.Mail} },
	} {
		w := handler().do(t)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, premiumMessage, decode(t, w)["message"])
	}
}
