package controllers

import (
	"errors"
	"fmt"
	"time"

	"erpbackend/config"
	"erpbackend/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

type ClientController struct {
	*CRUD
	Location *time.Location
	now      func() time.Time
}

func NewClientController(clients store.Collection, loc *time.Location) *ClientController {
	return &ClientController{
		CRUD:     NewCRUD("client", clients, createdByPopulate),
		Location: loc,
		now:      time.Now,
	}
}

type ClientSummary struct {
	New    float64 `json:"new"`
	Active float64 `json:"active"`
}

// Summary reports the share of clients created in the current period and the
// share of clients with at least one live invoice.
func (h *ClientController) Summary(c *gin.Context) error {
	typ, valid := summaryType(c)
	if !valid {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	start, end := periodRange(typ, h.now(), h.Location)
	facets, err := h.Collection.Aggregate(ctx, []bson.M{
		{"$facet": bson.M{
			"totalClients": bson.A{
				bson.M{"$match": bson.M{"removed": false, "enabled": true}},
				bson.M{"$count": "count"},
			},
			"newClients": bson.A{
				bson.M{"$match": bson.M{
					"removed": false,
					"enabled": true,
					"created": bson.M{"$gte": start, "$lte": end},
				}},
				bson.M{"$count": "count"},
			},
			"activeClients": bson.A{
				bson.M{"$lookup": bson.M{
					"from":         config.InvoiceCollection,
					"localField":   "_id",
					"foreignField": "client",
					"as":           "invoice",
				}},
				bson.M{"$match": bson.M{"invoice.removed": false}},
				bson.M{"$group": bson.M{"_id": "$_id"}},
				bson.M{"$count": "count"},
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("client summary: %w", err)
	}
	if len(facets) == 0 {
		return errors.New("client summary: empty aggregation result")
	}

	total := facetCount(facets[0], "totalClients")
	success(c, ClientSummary{
		New:    percentage(facetCount(facets[0], "newClients"), total),
		Active: percentage(facetCount(facets[0], "activeClients"), total),
	}, "Successfully get summery of new clients")
	return nil
}
