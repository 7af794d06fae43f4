package utils

import (
	"context"
	"fmt"
	"time"

	"erpbackend/models"
	"erpbackend/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// PruneExpiredSessions removes session tokens that no longer verify from every
// credential record and returns how many tokens were dropped.
func PruneExpiredSessions(ctx context.Context, passwords store.Collection, secret []byte, log *zap.Logger) (int, error) {
	docs, err := passwords.Find(ctx, bson.M{
		"removed":          false,
		"loggedSessions.0": bson.M{"$exists": true},
	}, store.FindOptions{})
	if err != nil {
		return 0, fmt.Errorf("list credentials: %w", err)
	}

	pruned := 0
	for _, doc := range docs {
		var record models.AdminPassword
		if err := models.Decode(doc, &record); err != nil {
			log.Warn("skip undecodable credential record", zap.Any("id", doc["_id"]), zap.Error(err))
			continue
		}

		var stale []string
		for _, token := range record.LoggedSessions {
			if _, err := ValidateToken(token, secret); err != nil {
				stale = append(stale, token)
			}
		}
		if len(stale) == 0 {
			continue
		}

		_, err := passwords.FindOneAndUpdate(ctx,
			bson.M{"_id": record.ID},
			bson.M{"$pull": bson.M{"loggedSessions": bson.M{"$in": stale}}},
		)
		if err != nil {
			return pruned, fmt.Errorf("prune sessions of %s: %w", record.User.Hex(), err)
		}
		pruned += len(stale)
	}

	log.Info("expired sessions pruned", zap.Int("tokens", pruned))
	return pruned, nil
}

// FlagOverdueInvoices marks unpaid invoices past their expiry date.
func FlagOverdueInvoices(ctx context.Context, invoices store.Collection, now time.Time, log *zap.Logger) (int64, error) {
	n, err := invoices.UpdateMany(ctx, bson.M{
		"removed":       false,
		"isOverdue":     bson.M{"$ne": true},
		"paymentStatus": bson.M{"$ne": models.PaymentStatusPaid},
		"expiredDate":   bson.M{"$lt": now},
	}, bson.M{"$set": bson.M{"isOverdue": true}})
	if err != nil {
		return 0, fmt.Errorf("flag overdue invoices: %w", err)
	}

	log.Info("overdue invoices flagged", zap.Int64("count", n))
	return n, nil
}
