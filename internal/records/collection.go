package records

import (
	"sync"

	"github.com/farmkeep/shell/internal/domain"
	"github.com/google/uuid"
)

// ChangeKind says what happened to a record.
type ChangeKind string

const (
	Added   ChangeKind = "added"
	Updated ChangeKind = "updated"
	Deleted ChangeKind = "deleted"
)

// Change is delivered to subscribers after every mutation.
type Change struct {
	Kind ChangeKind
	ID   uuid.UUID
}

const subscriberBuffer = 16

// collection is an ordered in-memory list of records keyed by ID whose
// mutations are fanned out to subscribers. A subscriber that falls behind
// loses events rather than blocking writers.
type collection[T any] struct {
	idOf func(T) uuid.UUID

	mu    sync.RWMutex
	items []T
	subs  map[int]chan Change
	next  int
}

func newCollection[T any](idOf func(T) uuid.UUID) *collection[T] {
	return &collection[T]{idOf: idOf, subs: map[int]chan Change{}}
}

func (c *collection[T]) add(item T) {
	c.mu.Lock()
	c.items = append(c.items, item)
	c.notifyLocked(Change{Kind: Added, ID: c.idOf(item)})
	c.mu.Unlock()
}

func (c *collection[T]) update(id uuid.UUID, fn func(old T) T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if c.idOf(item) == id {
			c.items[i] = fn(item)
			c.notifyLocked(Change{Kind: Updated, ID: id})
			return c.items[i], nil
		}
	}
	var zero T
	return zero, domain.ErrNotFound
}

func (c *collection[T]) remove(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if c.idOf(item) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.notifyLocked(Change{Kind: Deleted, ID: id})
			return nil
		}
	}
	return domain.ErrNotFound
}

func (c *collection[T]) get(id uuid.UUID) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if c.idOf(item) == id {
			return item, nil
		}
	}
	var zero T
	return zero, domain.ErrNotFound
}

func (c *collection[T]) list() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *collection[T]) subscribe() (<-chan Change, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.next
	c.next++
	ch := make(chan Change, subscriberBuffer)
	c.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			close(ch)
			c.mu.Unlock()
		})
	}
	return ch, cancel
}

func (c *collection[T]) notifyLocked(change Change) {
	for _, ch := range c.subs {
		select {
		case ch <- change:
		default:
		}
	}
}
