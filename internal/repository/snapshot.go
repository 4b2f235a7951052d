package repository

import (
	"fmt"
	"sync"

	"github.com/RoGogDBD/pantry/internal/models"
)

// Snapshot хранит последний снимок коллекции, доставленный подпиской.
// Каждый вызов Replace полностью замещает содержимое, слияния нет.
type Snapshot struct {
	mu    sync.RWMutex
	items []models.Item
	byID  map[string]int
}

func NewSnapshot() *Snapshot {
	return &Snapshot{byID: make(map[string]int)}
}

// Replace замещает снимок целиком, сохраняя порядок из подписки.
func (s *Snapshot) Replace(items []models.Item) {
	byID := make(map[string]int, len(items))
	for i, it := range items {
		byID[it.ID] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.byID = byID
}

// List возвращает копию текущего снимка.
func (s *Snapshot) List() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Item, len(s.items))
	copy(out, s.items)
	return out
}

// GetByID возвращает позицию из снимка по идентификатору.
func (s *Snapshot) GetByID(id string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, exists := s.byID[id]
	if !exists {
		return nil, fmt.Errorf("item not found in snapshot")
	}
	item := s.items[i]
	return &item, nil
}

func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
