// internal/app/system/txn/txn.go

// Package txn wraps multi-document Mongo transactions with a fallback
// for deployments that cannot run them (standalone servers, some hosted
// tiers). Callers get best-effort atomicity: a real transaction where
// the server supports it, plain sequential execution where it doesn't.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a multi-document transaction when the server
// supports them. When the server reports transactions as unsupported,
// fn is re-run directly, outside any transaction; callers must order
// their writes so this degraded mode stays acceptable.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			log.Debug("sessions unsupported; running without transaction")
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		log.Debug("transactions unsupported; running without transaction")
		return fn(ctx)
	}
	return err
}

// IsNotSupported reports whether err indicates the server cannot run
// multi-document transactions (as opposed to the transaction failing).
// Codes: 20 (IllegalOperation on standalone), 51, 263.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263:
			return true
		}
	}

	// Driver and server wordings vary; sniff for the usual pairings.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "transaction") &&
		(strings.Contains(msg, "replica set") ||
			strings.Contains(msg, "session") ||
			strings.Contains(msg, "illegal operation")) {
		return true
	}
	return strings.Contains(msg, "session") && strings.Contains(msg, "not supported")
}
