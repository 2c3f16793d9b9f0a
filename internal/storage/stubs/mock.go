package stubs

import (
	"context"
	"sync"
	"time"

	"helpdesk/internal/models"
	"helpdesk/internal/storage"
)

// MockStore is an in-memory implementation of the TokenStore interface for
// testing and local development.
type MockStore struct {
	mu     sync.RWMutex
	tokens map[int64]models.UserToken

	// now is overridable so tests can control expiry
	now func() time.Time
}

// NewMockStore creates a new in-memory token store
func NewMockStore() *MockStore {
	return &MockStore{
		tokens: make(map[int64]models.UserToken),
		now:    time.Now,
	}
}

// Initialize does nothing for the mock store
func (m *MockStore) Initialize(ctx context.Context) error {
	return nil
}

// GetToken returns the stored token, lazily removing it once expired
func (m *MockStore) GetToken(ctx context.Context, userID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.tokens[userID]
	if !ok {
		return "", storage.ErrTokenNotFound
	}
	if !entry.ExpiresAt.After(m.now()) {
		delete(m.tokens, userID)
		return "", storage.ErrTokenNotFound
	}
	return entry.Token, nil
}

// SaveToken stores or replaces the token for the user
func (m *MockStore) SaveToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[userID] = models.UserToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	return nil
}

// Tokens returns a snapshot of every stored token. Test helper.
func (m *MockStore) Tokens() map[int64]models.UserToken {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make(map[int64]models.UserToken, len(m.tokens))
	for id, entry := range m.tokens {
		snapshot[id] = entry
	}
	return snapshot
}

// SetNow replaces the store's clock. Test helper.
func (m *MockStore) SetNow(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Close does nothing for the mock store
func (m *MockStore) Close() error {
	return nil
}
