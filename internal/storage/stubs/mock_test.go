package stubs

import (
	"context"
	"testing"
	"time"

	"helpdesk/internal/storage"
)

func TestMockStore_SaveAndGet(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}

	err := store.SaveToken(ctx, 123, "token-abc", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Failed to save token: %v", err)
	}

	token, err := store.GetToken(ctx, 123)
	if err != nil {
		t.Fatalf("Failed to get token: %v", err)
	}
	if token != "token-abc" {
		t.Errorf("Expected token 'token-abc', got '%s'", token)
	}
}

func TestMockStore_MissingToken(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	_, err := store.GetToken(ctx, 999)
	if err != storage.ErrTokenNotFound {
		t.Errorf("Expected ErrTokenNotFound, got %v", err)
	}
}

func TestMockStore_ExpiredTokenIsPurged(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	now := time.Now()
	store.SetNow(func() time.Time { return now })

	err := store.SaveToken(ctx, 123, "token-abc", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Failed to save token: %v", err)
	}

	// Advance the clock past the expiry
	store.SetNow(func() time.Time { return now.Add(2 * time.Hour) })

	_, err = store.GetToken(ctx, 123)
	if err != storage.ErrTokenNotFound {
		t.Fatalf("Expected ErrTokenNotFound for expired token, got %v", err)
	}

	// Second lookup must also report not found without error (idempotent purge)
	_, err = store.GetToken(ctx, 123)
	if err != storage.ErrTokenNotFound {
		t.Errorf("Expected ErrTokenNotFound on repeat lookup, got %v", err)
	}
}

func TestMockStore_SaveOverwrites(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	if err := store.SaveToken(ctx, 123, "old", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Failed to save token: %v", err)
	}
	if err := store.SaveToken(ctx, 123, "new", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Failed to overwrite token: %v", err)
	}

	token, err := store.GetToken(ctx, 123)
	if err != nil {
		t.Fatalf("Failed to get token: %v", err)
	}
	if token != "new" {
		t.Errorf("Expected overwritten token 'new', got '%s'", token)
	}
}
