package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return fmt.Sprintf("sess:%s", accessID)
}

func TestManagerOpenHasRevoke(t *testing.T) {
	store := newMockStore()
	manager := &Manager{
		store: store,
		keyer: store,
		ttl:   time.Hour,
	}

	ctx := context.Background()
	accessID := "access-123"
	if err := manager.Open(ctx, accessID, "ops@ocl"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if stored := store.data[store.AccessSessionKey(accessID)]; stored != "ops@ocl" {
		t.Fatalf("expected subject stored, got %q", stored)
	}

	ok, err := manager.HasSession(ctx, accessID)
	if err != nil || !ok {
		t.Fatalf("expected live session, got ok=%v err=%v", ok, err)
	}

	if err := manager.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = manager.HasSession(ctx, accessID)
	if err != nil || ok {
		t.Fatalf("expected revoked session, got ok=%v err=%v", ok, err)
	}
}

func TestManagerRejectsBlankAccessID(t *testing.T) {
	store := newMockStore()
	manager := &Manager{store: store, keyer: store, ttl: time.Hour}
	ctx := context.Background()

	if err := manager.Open(ctx, " ", "x"); err == nil {
		t.Fatal("expected open to reject blank id")
	}
	if _, err := manager.HasSession(ctx, ""); err == nil {
		t.Fatal("expected has-session to reject blank id")
	}
	if err := manager.Revoke(ctx, ""); err == nil {
		t.Fatal("expected revoke to reject blank id")
	}
}

type failingStore struct{ *mockStore }

func (f failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("redis down")
}

func TestHasSessionPropagatesStoreErrors(t *testing.T) {
	store := failingStore{newMockStore()}
	manager := &Manager{store: store, keyer: store, ttl: time.Hour}
	if _, err := manager.HasSession(context.Background(), "access-1"); err == nil {
		t.Fatal("expected store error to propagate")
	}
}
