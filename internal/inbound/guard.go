package inbound

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/procureflow/procureflow-backend/pkg/redis"
)

// DedupeGuard suppresses duplicate webhook deliveries. Inbound email
// providers retry aggressively, so the same message can arrive more than
// once within the retry window.
type DedupeGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

// NewDedupeGuard builds a guard over the given store.
func NewDedupeGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*DedupeGuard, error) {
	if store == nil {
		return nil, errors.New("dedupe store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &DedupeGuard{store: store, ttl: ttl, scope: scope}, nil
}

// CheckAndMark reports whether this message was already seen, marking it as
// seen when it was not.
func (g *DedupeGuard) CheckAndMark(ctx context.Context, messageKey string) (bool, error) {
	if messageKey == "" {
		return false, errors.New("message key is required")
	}
	key := g.store.IdempotencyKey(g.scope, messageKey)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set dedupe key: %w", err)
	}
	return !set, nil
}

// Release removes the seen-marker so a failed message can be retried.
func (g *DedupeGuard) Release(ctx context.Context, messageKey string) error {
	if messageKey == "" {
		return errors.New("message key is required")
	}
	key := g.store.IdempotencyKey(g.scope, messageKey)
	return g.store.Del(ctx, key)
}

// MessageKey derives a stable dedupe key from the envelope fields. Inbound
// parse webhooks carry no provider message id, so the content hash stands in
// for one.
func MessageKey(from, subject, body string) string {
	sum := sha256.Sum256([]byte(from + "\x00" + subject + "\x00" + body))
	return hex.EncodeToString(sum[:])
}
