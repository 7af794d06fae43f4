package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Decode converts a raw document into one of the typed models.
func Decode(doc bson.M, out interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err = bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	return nil
}
