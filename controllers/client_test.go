package controllers

import (
	"net/http"
	"testing"
	"time"

	"erpbackend/store/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
)

func TestClientSummary(t *testing.T) {
	tests := []struct {
		name       string
		facet      bson.M
		wantNew    float64
		wantActive float64
	}{
		{
			name: "shares of total",
			facet: bson.M{
				"totalClients":  bson.A{bson.M{"count": int32(7)}},
				"newClients":    bson.A{bson.M{"count": int32(2)}},
				"activeClients": bson.A{bson.M{"count": int32(3)}},
			},
			wantNew:    29,
			wantActive: 43,
		},
		{
			name: "no clients",
			facet: bson.M{
				"totalClients":  bson.A{},
				"newClients":    bson.A{},
				"activeClients": bson.A{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clients := mocks.NewMockCollection("clients")
			clients.On("Aggregate", mock.Anything, mock.Anything).Return([]bson.M{tt.facet}, nil)

			w := call{
				method: http.MethodGet, route: "/summary", target: "/summary?type=week",
				handler: NewClientController(clients, time.UTC).Summary,
			}.do(t)

			assert.Equal(t, http.StatusOK, w.Code)
			body := decode(t, w)
			assert.Equal(t, "Successfully get summery of new clients", body["message"])
			assert.Equal(t, map[string]interface{}{"new": tt.wantNew, "active": tt.wantActive}, body["result"])
		})
	}
}

func TestClientSummaryInvalidType(t *testing.T) {
	clients := mocks.NewMockCollection("clients")

	w := call{
		method: http.MethodGet, route: "/summary", target: "/summary?type=day",
		handler: NewClientController(clients, time.UTC).Summary,
	}.do(t)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid type", decode(t, w)["message"])
	clients.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything)
}

func TestPeriodRange(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 5, 15, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		typ       string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"week", time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 18, 23, 59, 59, 999000000, time.UTC)},
		{"month", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 31, 23, 59, 59, 999000000, time.UTC)},
		{"year", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 23, 59, 59, 999000000, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			start, end := periodRange(tt.typ, now, time.UTC)
			assert.True(t, tt.wantStart.Equal(start), "start %s", start)
			assert.True(t, tt.wantEnd.Equal(end), "end %s", end)
		})
	}
}
