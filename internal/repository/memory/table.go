package memory

import (
	"maps"
	"slices"

	"github.com/google/uuid"
)

type row[T any] struct {
	seq   uint64
	value T
}

// table keeps rows by id and remembers insertion order so listings are
// stable across calls.
type table[T any] struct {
	rows map[uuid.UUID]row[T]
	next uint64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[uuid.UUID]row[T])}
}

func (t *table[T]) get(id uuid.UUID) (T, bool) {
	r, ok := t.rows[id]
	return r.value, ok
}

func (t *table[T]) insert(id uuid.UUID, value T) {
	t.next++
	t.rows[id] = row[T]{seq: t.next, value: value}
}

func (t *table[T]) replace(id uuid.UUID, value T) bool {
	r, ok := t.rows[id]
	if !ok {
		return false
	}
	r.value = value
	t.rows[id] = r
	return true
}

func (t *table[T]) remove(id uuid.UUID) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

func (t *table[T]) all() []T {
	rows := slices.Collect(maps.Values(t.rows))
	slices.SortFunc(rows, func(a, b row[T]) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})

	values := make([]T, 0, len(rows))
	for _, r := range rows {
		values = append(values, r.value)
	}
	return values
}

func (t *table[T]) clone() *table[T] {
	return &table[T]{rows: maps.Clone(t.rows), next: t.next}
}
