package inbound

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type stubDedupeStore struct {
	seen   map[string]bool
	setErr error

	deleted []string
}

func (s *stubDedupeStore) Get(context.Context, string) (string, error) {
	return "", errors.New("not used")
}

func (s *stubDedupeStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if s.setErr != nil {
		return false, s.setErr
	}
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *stubDedupeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("prf:idempotency:%s:%s", scope, id)
}

func (s *stubDedupeStore) Del(_ context.Context, keys ...string) error {
	s.deleted = append(s.deleted, keys...)
	return nil
}

func TestDedupeGuardMarksFirstDeliveryOnly(t *testing.T) {
	guard, err := NewDedupeGuard(&stubDedupeStore{}, time.Hour, "inbound-email")
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	duplicate, err := guard.CheckAndMark(context.Background(), "msg-1")
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if duplicate {
		t.Fatal("first delivery flagged as duplicate")
	}

	duplicate, err = guard.CheckAndMark(context.Background(), "msg-1")
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if !duplicate {
		t.Fatal("second delivery not flagged as duplicate")
	}
}

func TestDedupeGuardReleaseAllowsRetry(t *testing.T) {
	store := &stubDedupeStore{}
	guard, err := NewDedupeGuard(store, time.Hour, "inbound-email")
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	if _, err := guard.CheckAndMark(context.Background(), "msg-1"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := guard.Release(context.Background(), "msg-1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected one deleted key, got %v", store.deleted)
	}
}

func TestDedupeGuardRequiresConfig(t *testing.T) {
	if _, err := NewDedupeGuard(nil, time.Hour, "scope"); err == nil {
		t.Fatal("expected error without store")
	}
	if _, err := NewDedupeGuard(&stubDedupeStore{}, -time.Hour, "scope"); err == nil {
		t.Fatal("expected error for negative ttl")
	}
	if _, err := NewDedupeGuard(&stubDedupeStore{}, time.Hour, ""); err == nil {
		t.Fatal("expected error without scope")
	}
}

func TestMessageKeyIsStable(t *testing.T) {
	a := MessageKey("from@x.test", "subject", "body")
	b := MessageKey("from@x.test", "subject", "body")
	if a != b {
		t.Fatal("expected identical keys for identical input")
	}
	if a == MessageKey("from@x.test", "subject", "other body") {
		t.Fatal("expected different keys for different bodies")
	}
}
