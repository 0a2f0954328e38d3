package fsm

import (
	"context"
	"sync"
)

// MemoryStorage is an in-process Storage used in tests. Entries never expire.
type MemoryStorage struct {
	mu            sync.RWMutex
	conversations map[int64]Conversation
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{conversations: make(map[int64]Conversation)}
}

func (s *MemoryStorage) Get(_ context.Context, telegramID int64) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[telegramID]
	if !ok {
		return nil, nil
	}
	return &conv, nil
}

func (s *MemoryStorage) Set(_ context.Context, telegramID int64, conv *Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[telegramID] = *conv
	return nil
}

func (s *MemoryStorage) Clear(_ context.Context, telegramID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, telegramID)
	return nil
}
