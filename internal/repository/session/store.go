// Package session persists per-session chat history in a key-value store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/ragdex/internal/db"
	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/schema"
)

// Store keeps one JSON-encoded history per session id, refreshed with a
// TTL on every write so idle conversations expire.
type Store struct {
	kv       db.KVStore
	prefix   string
	ttl      time.Duration
	maxTurns int
}

// New creates a session store. maxTurns bounds the retained history;
// older turns are dropped first.
func New(kv db.KVStore, prefix string, ttl time.Duration, maxTurns int) *Store {
	return &Store{kv: kv, prefix: prefix, ttl: ttl, maxTurns: maxTurns}
}

// Load returns the stored history for the session, oldest turn first.
// An unknown session yields an empty history, not an error.
func (s *Store) Load(ctx context.Context, sessionID string) ([]schema.ChatMessage, error) {
	data, err := s.kv.Get(ctx, s.key(sessionID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return []schema.ChatMessage{}, nil
		}
		return nil, fmt.Errorf("load session %s: %v: %w", sessionID, err, domain.ErrSessionStoreError)
	}

	var history []schema.ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("decode session %s: %v: %w", sessionID, err, domain.ErrSessionStoreError)
	}
	return history, nil
}

// Append adds turns to the session history, trims it to maxTurns, and
// refreshes the TTL.
func (s *Store) Append(ctx context.Context, sessionID string, turns ...schema.ChatMessage) error {
	history, err := s.Load(ctx, sessionID)
	if err != nil {
		return err
	}

	history = append(history, turns...)
	if len(history) > s.maxTurns {
		history = history[len(history)-s.maxTurns:]
	}

	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}
	if err := s.kv.SetWithTTL(ctx, s.key(sessionID), data, s.ttl); err != nil {
		return fmt.Errorf("store session %s: %v: %w", sessionID, err, domain.ErrSessionStoreError)
	}
	return nil
}

// Delete removes a session's history.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.kv.Del(ctx, s.key(sessionID)); err != nil {
		return fmt.Errorf("delete session %s: %v: %w", sessionID, err, domain.ErrSessionStoreError)
	}
	return nil
}

func (s *Store) key(sessionID string) string {
	return s.prefix + "session:" + sessionID
}
