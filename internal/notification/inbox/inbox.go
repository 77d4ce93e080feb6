// Package inbox stores in-app notifications per user.
package inbox

import (
	"context"
	"sort"
	"sync"

	"estudios/internal/notification/models"
	id "estudios/pkg/domain"
)

// Store is the inbox persistence contract.
type Store interface {
	Add(ctx context.Context, n models.Notificacion) error
	List(ctx context.Context, userID id.UserID, unreadOnly bool) ([]models.Notificacion, error)
	MarkAllRead(ctx context.Context, userID id.UserID) (int, error)
}

// InMemory is the process-local inbox used when Redis is not configured.
type InMemory struct {
	mu     sync.RWMutex
	byUser map[id.UserID][]models.Notificacion
}

func NewInMemory() *InMemory {
	return &InMemory{byUser: make(map[id.UserID][]models.Notificacion)}
}

func (s *InMemory) Add(_ context.Context, n models.Notificacion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[n.UserID] = append(s.byUser[n.UserID], n)
	return nil
}

// List returns newest first.
func (s *InMemory) List(_ context.Context, userID id.UserID, unreadOnly bool) ([]models.Notificacion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Notificacion, 0, len(s.byUser[userID]))
	for _, n := range s.byUser[userID] {
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemory) MarkAllRead(_ context.Context, userID id.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	marked := 0
	entries := s.byUser[userID]
	for i := range entries {
		if !entries[i].IsRead {
			entries[i].IsRead = true
			marked++
		}
	}
	return marked, nil
}

func sortNewestFirst(ns []models.Notificacion) {
	sort.SliceStable(ns, func(i, j int) bool {
		return ns[i].CreatedAt.After(ns[j].CreatedAt)
	})
}
