package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// fields gives a table access to the identity and creation time of an entity.
type fields[T any] struct {
	id         func(*T) *string
	createdAt  func(*T) *time.Time
	clone      func(*T) *T
	idPrefix   string
	notFound   error
	duplicated error
}

// table is a thread-safe in-memory collection keyed by entity ID.
// Values are copied in and out so callers never share memory with the store.
type table[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
	seq   int64
	f     fields[T]
}

func newTable[T any](f fields[T]) *table[T] {
	if f.clone == nil {
		f.clone = func(v *T) *T {
			cp := *v
			return &cp
		}
	}
	return &table[T]{items: map[string]*T{}, f: f}
}

func (t *table[T]) nextID() string {
	t.seq++
	return fmt.Sprintf("%s-%d-%d", t.f.idPrefix, time.Now().UnixNano(), t.seq)
}

func (t *table[T]) Create(_ context.Context, v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.f.id(v)
	if *id == "" {
		*id = t.nextID()
	}
	if _, exists := t.items[*id]; exists {
		if t.f.duplicated != nil {
			return t.f.duplicated
		}
		return fmt.Errorf("duplicate id %s", *id)
	}
	t.items[*id] = t.f.clone(v)
	return nil
}

func (t *table[T]) Get(_ context.Context, id string) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.items[id]
	if !ok {
		return nil, t.f.notFound
	}
	return t.f.clone(v), nil
}

// List returns all items ordered by creation time, then ID.
func (t *table[T]) List(_ context.Context) ([]*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*T, 0, len(t.items))
	for _, v := range t.items {
		out = append(out, t.f.clone(v))
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := *t.f.createdAt(out[i]), *t.f.createdAt(out[j])
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return *t.f.id(out[i]) < *t.f.id(out[j])
	})
	return out, nil
}

func (t *table[T]) Update(_ context.Context, v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := *t.f.id(v)
	existing, ok := t.items[id]
	if !ok {
		return t.f.notFound
	}
	cp := t.f.clone(v)
	// Preserve CreatedAt if caller accidentally changed it.
	*t.f.createdAt(cp) = *t.f.createdAt(existing)
	t.items[id] = cp
	return nil
}

func (t *table[T]) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		return t.f.notFound
	}
	delete(t.items, id)
	return nil
}
