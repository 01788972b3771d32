package credstore

import (
	"context"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore holds the credential for the life of the process.
type MemoryStore struct {
	mu         sync.Mutex
	credential string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credential == "" {
		return "", NewNoCredentialError("no credential in memory")
	}
	return s.credential, nil
}

func (s *MemoryStore) Save(ctx context.Context, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = credential
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = ""
	return nil
}
