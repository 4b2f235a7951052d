// Package notifier реализует живую подписку на коллекцию позиций.
package notifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/RoGogDBD/pantry/internal/models"
	"github.com/RoGogDBD/pantry/internal/repository"
)

// Hub рассылает подписчикам полный снимок коллекции после каждого изменения.
// Подписчик всегда получает снимок целиком, никогда дифф.
type Hub struct {
	store repository.ItemStore

	mu     sync.Mutex
	subs   map[int]func([]models.Item)
	nextID int
	last   []models.Item
	primed bool
}

func NewHub(store repository.ItemStore) *Hub {
	return &Hub{
		store: store,
		subs:  make(map[int]func([]models.Item)),
	}
}

// Subscribe регистрирует подписчика и возвращает функцию отписки.
// Если снимок уже загружался, подписчик получает его сразу.
func (h *Hub) Subscribe(fn func([]models.Item)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	primed := h.primed
	last := h.last
	h.mu.Unlock()

	if primed {
		fn(copyItems(last))
	}

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Publish перечитывает коллекцию из хранилища и рассылает снимок подписчикам.
func (h *Hub) Publish(ctx context.Context) error {
	items, err := h.store.GetAllItems(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	h.mu.Lock()
	h.last = items
	h.primed = true
	fns := make([]func([]models.Item), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	// Колбэки зовутся без блокировки, подписчик может снова обратиться к хабу.
	for _, fn := range fns {
		fn(copyItems(items))
	}
	return nil
}

// Size возвращает число позиций в последнем снимке.
func (h *Hub) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.last)
}

func copyItems(items []models.Item) []models.Item {
	out := make([]models.Item, len(items))
	copy(out, items)
	return out
}
