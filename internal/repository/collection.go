package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// collection is an ordered list of records persisted as one JSON blob.
// New state is written to the store before it replaces the in-memory copy.
type collection[T any] struct {
	store Store
	key   string
	idOf  func(*T) string

	mu    sync.RWMutex
	items []T
}

func newCollection[T any](store Store, key string, idOf func(*T) string) *collection[T] {
	return &collection[T]{store: store, key: key, idOf: idOf}
}

func (c *collection[T]) load(ctx context.Context) error {
	data, found, err := c.store.Get(ctx, c.key)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.key, err)
	}

	var items []T
	if found && len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorruptState, c.key, err)
		}
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

func (c *collection[T]) list() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *collection[T]) get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.items {
		if c.idOf(&c.items[i]) == id {
			return c.items[i], true
		}
	}
	var zero T
	return zero, false
}

// upsert replaces the record with the same identifier in place or appends it.
// It reports whether the record was appended.
func (c *collection[T]) upsert(ctx context.Context, item T) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.idOf(&item)
	next := make([]T, len(c.items), len(c.items)+1)
	copy(next, c.items)

	created := true
	for i := range next {
		if c.idOf(&next[i]) == id {
			next[i] = item
			created = false
			break
		}
	}
	if created {
		next = append(next, item)
	}

	if err := c.persist(ctx, next); err != nil {
		return false, err
	}
	return created, nil
}

// remove drops the record with id. A missing id is not an error.
func (c *collection[T]) remove(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]T, 0, len(c.items))
	for i := range c.items {
		if c.idOf(&c.items[i]) != id {
			next = append(next, c.items[i])
		}
	}
	if len(next) == len(c.items) {
		return false, nil
	}

	if err := c.persist(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// partition keeps the records for which keep returns true and returns the rest.
func (c *collection[T]) partition(ctx context.Context, keep func(*T) bool) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := make([]T, 0, len(c.items))
	var removed []T
	for i := range c.items {
		if keep(&c.items[i]) {
			kept = append(kept, c.items[i])
		} else {
			removed = append(removed, c.items[i])
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}

	if err := c.persist(ctx, kept); err != nil {
		return nil, err
	}
	return removed, nil
}

func (c *collection[T]) replaceAll(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]T, len(items))
	copy(next, items)
	return c.persist(ctx, next)
}

// persist must be called with c.mu held.
func (c *collection[T]) persist(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.store.Put(ctx, c.key, data); err != nil {
		return fmt.Errorf("write %s: %w", c.key, err)
	}
	c.items = items
	return nil
}
