package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Payment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Removed     bool               `bson:"removed" json:"removed"`
	CreatedBy   primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	Number      string             `bson:"number" json:"number"`
	Client      primitive.ObjectID `bson:"client,omitempty" json:"client,omitempty"`
	Invoice     primitive.ObjectID `bson:"invoice" json:"invoice"`
	Date        time.Time          `bson:"date" json:"date"`
	Amount      float64            `bson:"amount" json:"amount"`
	PaymentMode primitive.ObjectID `bson:"paymentMode,omitempty" json:"paymentMode,omitempty"`
	Ref         string             `bson:"ref,omitempty" json:"ref,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Pdf         string             `bson:"pdf,omitempty" json:"pdf,omitempty"`
}
