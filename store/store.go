// Package store is the document-store boundary used by every controller.
// Documents travel as bson.M; a missing document is reported as
// mongo.ErrNoDocuments.
package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Populate replaces the reference stored at Path with the referenced document
// from collection From, projected to Fields.
type Populate struct {
	Path   string
	From   string
	Fields []string
}

type FindOptions struct {
	Sort     bson.D
	Skip     int64
	Limit    int64
	Populate []Populate
}

type UpdateOp struct {
	Filter bson.M
	Update bson.M
}

type Collection interface {
	Name() string
	InsertOne(ctx context.Context, doc bson.M) (bson.M, error)
	FindOne(ctx context.Context, filter bson.M, populate ...Populate) (bson.M, error)
	Find(ctx context.Context, filter bson.M, opts FindOptions) ([]bson.M, error)
	CountDocuments(ctx context.Context, filter bson.M) (int64, error)
	// FindOneAndUpdate returns the document as it is after the update.
	FindOneAndUpdate(ctx context.Context, filter bson.M, update bson.M) (bson.M, error)
	UpdateMany(ctx context.Context, filter bson.M, update bson.M) (int64, error)
	// BulkUpdate applies every op as an updateOne and returns the matched count.
	BulkUpdate(ctx context.Context, ops []UpdateOp) (int64, error)
	Aggregate(ctx context.Context, pipeline []bson.M) ([]bson.M, error)
}

// ID converts a hex string to an ObjectID. Anything else is returned as is so
// that a malformed id simply matches nothing.
func ID(id string) interface{} {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return id
	}
	return oid
}

// IDString renders a document id for messages and file names.
func IDString(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
