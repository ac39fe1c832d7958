package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/ragdex/internal/db"
	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/schema"
)

type fakeKV struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	setKeys []string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte) error {
	f.data[key] = value
	return nil
}

func (f *fakeKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	f.ttls[key] = ttl
	f.setKeys = append(f.setKeys, key)
	return nil
}

func (f *fakeKV) Del(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func turn(role schema.Role, content string) schema.ChatMessage {
	return schema.ChatMessage{Role: role, Content: content}
}

func TestLoad_UnknownSession(t *testing.T) {
	store := New(newFakeKV(), "ragdex:", time.Hour, 20)

	history, err := store.Load(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if history == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(history) != 0 {
		t.Errorf("expected empty history, got %d turns", len(history))
	}
}

func TestAppendThenLoad(t *testing.T) {
	kv := newFakeKV()
	store := New(kv, "ragdex:", time.Hour, 20)
	ctx := context.Background()

	err := store.Append(ctx, "s1",
		turn(schema.RoleUser, "hello"),
		turn(schema.RoleAssistant, "hi there"),
	)
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	history, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(history))
	}
	if history[0].Role != schema.RoleUser || history[0].Content != "hello" {
		t.Errorf("unexpected first turn: %+v", history[0])
	}
	if history[1].Role != schema.RoleAssistant {
		t.Errorf("unexpected second turn: %+v", history[1])
	}
}

func TestAppend_KeyAndTTL(t *testing.T) {
	kv := newFakeKV()
	store := New(kv, "ragdex:", 24*time.Hour, 20)

	if err := store.Append(context.Background(), "abc-123", turn(schema.RoleUser, "q")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	const wantKey = "ragdex:session:abc-123"
	if len(kv.setKeys) != 1 || kv.setKeys[0] != wantKey {
		t.Errorf("expected write under %q, got %v", wantKey, kv.setKeys)
	}
	if kv.ttls[wantKey] != 24*time.Hour {
		t.Errorf("expected 24h TTL, got %v", kv.ttls[wantKey])
	}
}

func TestAppend_TrimsToMaxTurns(t *testing.T) {
	kv := newFakeKV()
	store := New(kv, "ragdex:", time.Hour, 4)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := store.Append(ctx, "s1",
			turn(schema.RoleUser, "q"),
			turn(schema.RoleAssistant, "a"),
		)
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	history, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(history) != 4 {
		t.Errorf("expected history trimmed to 4 turns, got %d", len(history))
	}
	// Oldest turns are dropped first.
	if history[0].Role != schema.RoleUser {
		t.Errorf("expected trimmed history to start with a user turn, got %q", history[0].Role)
	}
}

func TestAppend_StoreErrorPropagates(t *testing.T) {
	kv := newFakeKV()
	kv.setErr = errors.New("connection reset")
	store := New(kv, "ragdex:", time.Hour, 20)

	err := store.Append(context.Background(), "s1", turn(schema.RoleUser, "q"))
	if !errors.Is(err, domain.ErrSessionStoreError) {
		t.Fatalf("expected session store sentinel, got %v", err)
	}
}

func TestAppend_LoadErrorPropagates(t *testing.T) {
	kv := newFakeKV()
	kv.getErr = errors.New("connection reset")
	store := New(kv, "ragdex:", time.Hour, 20)

	err := store.Append(context.Background(), "s1", turn(schema.RoleUser, "q"))
	if !errors.Is(err, domain.ErrSessionStoreError) {
		t.Fatalf("expected session store sentinel, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	kv := newFakeKV()
	store := New(kv, "ragdex:", time.Hour, 20)
	ctx := context.Background()

	if err := store.Append(ctx, "s1", turn(schema.RoleUser, "q")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	history, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected empty history after delete, got %d turns", len(history))
	}
}
