package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names of every entity the API serves.
const (
	AdminCollection         = "admins"
	AdminPasswordCollection = "adminpasswords"
	ClientCollection        = "clients"
	InvoiceCollection       = "invoices"
	QuoteCollection         = "quotes"
	PaymentCollection       = "payments"
	PaymentModeCollection   = "paymentmodes"
	TaxesCollection         = "taxes"
	SettingCollection       = "settings"
)

func ConnectDatabase(ctx context.Context, cfg *Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, client.Database(cfg.MongoDatabase), nil
}
