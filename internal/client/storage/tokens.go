package storage

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/milktracker/internal/common"
)

// TokenStore holds the credential token. Token returns "" when logged out.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// KVTokenStore persists the token under common.TokenStorageKey. Reads go to
// the backing store every time, so a token written by one operation is seen
// by the very next request.
type KVTokenStore struct {
	mu sync.Mutex
	kv KV
}

func NewKVTokenStore(kv KV) *KVTokenStore {
	return &KVTokenStore{kv: kv}
}

func (s *KVTokenStore) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, _, err := s.kv.Get(ctx, common.TokenStorageKey)
	return v, err
}

func (s *KVTokenStore) SaveToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Set(ctx, common.TokenStorageKey, token)
}

func (s *KVTokenStore) ClearToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Delete(ctx, common.TokenStorageKey)
}

// MemoryTokenStore keeps the token in process memory.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemoryTokenStore) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryTokenStore) SaveToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) ClearToken(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
