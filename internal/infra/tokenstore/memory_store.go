package tokenstore

import (
	"context"
	"sync"

	"golang.org/x/oauth2"

	"github.com/yanqian/meteo-tuya/internal/infra/tuya"
)

// MemoryStore keeps tokens in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]oauth2.Token
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]oauth2.Token)}
}

// Load implements tuya.TokenStore.
func (s *MemoryStore) Load(_ context.Context, key string) (*oauth2.Token, bool, error) {
	s.mu.RLock()
	tok, ok := s.tokens[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if hasExpired(&tok) {
		s.mu.Lock()
		delete(s.tokens, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return &tok, true, nil
}

// Save implements tuya.TokenStore.
func (s *MemoryStore) Save(_ context.Context, key string, token *oauth2.Token) error {
	if token == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = *token
	return nil
}

func hasExpired(tok *oauth2.Token) bool {
	return !tok.Valid()
}

var _ tuya.TokenStore = (*MemoryStore)(nil)
