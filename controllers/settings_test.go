package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"erpbackend/models"
	"erpbackend/store"
	"erpbackend/store/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestSettingListBySettingKey(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		setupMock   func(coll *mocks.MockCollection)
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "no keys",
			target:      "/list",
			setupMock:   func(coll *mocks.MockCollection) {},
			wantStatus:  http.StatusAccepted,
			wantMessage: "No settingKey provided ",
		},
		{
			name:   "found",
			target: "/list?settingKeyArray=currency,timezone",
			setupMock: func(coll *mocks.MockCollection) {
				coll.On("Find", mock.Anything, bson.M{
					"$or":     bson.A{bson.M{"settingKey": "currency"}, bson.M{"settingKey": "timezone"}},
					"removed": false,
				}, store.FindOptions{}).Return([]bson.M{{"settingKey": "currency"}}, nil)
			},
			wantStatus:  http.StatusOK,
			wantMessage: "Successfully found all documents",
		},
		{
			name:   "nothing found",
			target: "/list?settingKeyArray=currency",
			setupMock: func(coll *mocks.MockCollection) {
				coll.On("Find", mock.Anything, mock.Anything, mock.Anything).Return([]bson.M{}, nil)
			},
			wantStatus:  http.StatusAccepted,
			wantMessage: "No document found by this request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coll := mocks.NewMockCollection("settings")
			tt.setupMock(coll)

			w := call{
				method: http.MethodGet, route: "/list", target: tt.target,
				handler: NewSettingController(coll).ListBySettingKey,
			}.do(t)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMessage, decode(t, w)["message"])
			coll.AssertExpectations(t)
		})
	}
}

func TestSettingReadBySettingKey(t *testing.T) {
	t.Run("no key", func(t *testing.T) {
		coll := mocks.NewMockCollection("settings")

		w := call{
			method: http.MethodGet, route: "/read", target: "/read",
			handler: NewSettingController(coll).ReadBySettingKey,
		}.do(t)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "No settingKey provided ", decode(t, w)["message"])
		coll.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
	})

	t.Run("found", func(t *testing.T) {
		coll := mocks.NewMockCollection("settings")
		coll.On("FindOne", mock.Anything, bson.M{"settingKey": "currency"}).
			Return(bson.M{"settingKey": "currency", "settingValue": "USD"}, nil)

		w := call{
			method: http.MethodGet, route: "/read/:settingKey", target: "/read/currency",
			handler: NewSettingController(coll).ReadBySettingKey,
		}.do(t)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "we found this document by this settingKey: currency", decode(t, w)["message"])
	})

	t.Run("missing", func(t *testing.T) {
		coll := mocks.NewMockCollection("settings")
		coll.On("FindOne", mock.Anything, bson.M{"settingKey": "test"}).Return(nil, mongo.ErrNoDocuments)

		w := call{
			method: http.MethodGet, route: "/read/:settingKey", target: "/read/test",
			handler: NewSettingController(coll).ReadBySettingKey,
		}.do(t)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "No document found by this settingKey: test", decode(t, w)["message"])
	})
}

func TestSettingUpdateBySettingKey(t *testing.T) {
	tests := []struct {
		name        string
		body        map[string]interface{}
		setupMock   func(coll *mocks.MockCollection)
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "missing value",
			body:        map[string]interface{}{},
			setupMock:   func(coll *mocks.MockCollection) {},
			wantStatus:  http.StatusAccepted,
			wantMessage: "No settingValue provided ",
		},
		{
			name:        "empty value",
			body:        map[string]interface{}{"settingValue": ""},
			setupMock:   func(coll *mocks.MockCollection) {},
			wantStatus:  http.StatusAccepted,
			wantMessage: "No settingValue provided ",
		},
		{
			name: "updated",
			body: map[string]interface{}{"settingValue": "EUR"},
			setupMock: func(coll *mocks.MockCollection) {
				coll.On("FindOneAndUpdate", mock.Anything, bson.M{"settingKey": "currency"}, bson.M{"settingValue": "EUR"}).
					Return(bson.M{"settingKey": "currency", "settingValue": "EUR"}, nil)
			},
			wantStatus:  http.StatusOK,
			wantMessage: "we update this document by this settingKey: currency",
		},
		{
			name: "unknown key",
			body: map[string]interface{}{"settingValue": false},
			setupMock: func(coll *mocks.MockCollection) {
				coll.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)
			},
			wantStatus:  http.StatusNotFound,
			wantMessage: "No document found by this settingKey: currency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coll := mocks.NewMockCollection("settings")
			tt.setupMock(coll)

			w := call{
				method: http.MethodPatch, route: "/update/:settingKey", target: "/update/currency",
				body:    tt.body,
				handler: NewSettingController(coll).UpdateBySettingKey,
			}.do(t)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMessage, decode(t, w)["message"])
			coll.AssertExpectations(t)
		})
	}
}

func TestSettingUpdateManySetting(t *testing.T) {
	tests := []struct {
		name        string
		body        map[string]interface{}
		setupMock   func(coll *mocks.MockCollection)
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "empty list",
			body:        map[string]interface{}{"settings": []interface{}{}},
			setupMock:   func(coll *mocks.MockCollection) {},
			wantStatus:  http.StatusAccepted,
			wantMessage: "No settings provided ",
		},
		{
			name: "entry without value",
			body: map[string]interface{}{"settings": []interface{}{
				map[string]interface{}{"settingKey": "key1", "settingValue": "value1"},
				map[string]interface{}{"settingKey": "key2"},
			}},
			setupMock:   func(coll *mocks.MockCollection) {},
			wantStatus:  http.StatusAccepted,
			wantMessage: "Settings provided has Error",
		},
		{
			name: "nothing matched",
			body: map[string]interface{}{"settings": []interface{}{
				map[string]interface{}{"settingKey": "missing", "settingValue": "x"},
			}},
			setupMock: func(coll *mocks.MockCollection) {
				coll.On("BulkUpdate", mock.Anything, mock.Anything).Return(int64(0), nil)
			},
			wantStatus:  http.StatusNotFound,
			wantMessage: "No settings found by to update",
		},
		{
			name: "falsy values are valid",
			body: map[string]interface{}{"settings": []interface{}{
				map[string]interface{}{"settingKey": "enabled", "settingValue": false},
				map[string]interface{}{"settingKey": "note", "settingValue": nil},
			}},
			setupMock: func(coll *mocks.MockCollection) {
				coll.On("BulkUpdate", mock.Anything, []store.UpdateOp{
					{Filter: bson.M{"settingKey": "enabled"}, Update: bson.M{"settingValue": false}},
					{Filter: bson.M{"settingKey": "note"}, Update: bson.M{"settingValue": nil}},
				}).Return(int64(2), nil)
			},
			wantStatus:  http.StatusOK,
			wantMessage: "we update all settings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coll := mocks.NewMockCollection("settings")
			tt.setupMock(coll)

			w := call{
				method: http.MethodPatch, route: "/updateManySetting", target: "/updateManySetting",
				body:    tt.body,
				handler: NewSettingController(coll).UpdateManySetting,
			}.do(t)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMessage, decode(t, w)["message"])
			coll.AssertExpectations(t)
		})
	}
}

func TestSettingListAllHidesPrivate(t *testing.T) {
	coll := mocks.NewMockCollection("settings")
	coll.On("Find", mock.Anything, bson.M{"removed": false, "isPrivate": false}, store.FindOptions{
		Sort: bson.D{{Key: "created", Value: 1}},
	}).Return([]bson.M{}, nil)

	w := call{
		method: http.MethodGet, route: "/listAll", target: "/listAll?sort=1",
		handler: NewSettingController(coll).ListAll,
	}.do(t)

	assert.Equal(t, http.StatusNonAuthoritativeInfo, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
	coll.AssertExpectations(t)
}

func TestSettingsStore(t *testing.T) {
	t.Run("errors are swallowed", func(t *testing.T) {
		coll := mocks.NewMockCollection("settings")
		coll.On("FindOneAndUpdate", mock.Anything, bson.M{"settingKey": "last_invoice_number"}, bson.M{"$inc": bson.M{"settingValue": 1}}).
			Return(nil, errors.New("down"))
		coll.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)
		coll.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("down"))

		s := testSettings(coll)
		assert.Nil(t, s.IncreaseBySettingKey(context.Background(), "last_invoice_number"))
		assert.Nil(t, s.ReadBySettingKey(context.Background(), "idurar_base_url"))

		settings := s.LoadSettings(context.Background())
		assert.Nil(t, settings)
		assert.Equal(t, "fallback", settings.StringOr("idurar_base_url", "fallback"))
	})

	t.Run("load as map", func(t *testing.T) {
		coll := mocks.NewMockCollection("settings")
		coll.On("Find", mock.Anything, bson.M{"removed": false}, store.FindOptions{}).Return([]bson.M{
			{"settingKey": "currency", "settingValue": "USD", "settingCategory": "money_format"},
			{"settingKey": "last_invoice_number", "settingValue": int32(7)},
			{"settingKey": int32(5), "settingValue": "unreadable key"},
			{"settingValue": "no key"},
		}, nil)

		settings := testSettings(coll).LoadSettings(context.Background())
		assert.Equal(t, models.Settings{"currency": "USD", "last_invoice_number": int32(7)}, settings)
		assert.Equal(t, "USD", settings.StringOr("currency", "EUR"))
		assert.Equal(t, "7", settings.StringOr("last_invoice_number", "7"))
	})
}
