// Package pmap is a typed, persistent string-keyed map over an immutable radix
// tree. Every update returns a new Map that shares unchanged structure with
// the old one; old values stay valid forever, which is what snapshots rely on.
package pmap

import (
	iradix "github.com/hashicorp/go-immutable-radix"
)

// Map is an immutable map from string to V. The zero value is an empty map.
type Map[V any] struct {
	t *iradix.Tree
}

// New returns an empty map.
func New[V any]() Map[V] {
	return Map[V]{t: iradix.New()}
}

func (m Map[V]) tree() *iradix.Tree {
	if m.t == nil {
		return iradix.New()
	}
	return m.t
}

// Len returns the number of entries.
func (m Map[V]) Len() int {
	if m.t == nil {
		return 0
	}
	return m.t.Len()
}

func (m Map[V]) Get(k string) (V, bool) {
	var zero V
	if m.t == nil {
		return zero, false
	}
	raw, ok := m.t.Get([]byte(k))
	if !ok {
		return zero, false
	}
	v, _ := raw.(V)
	return v, true
}

func (m Map[V]) Has(k string) bool {
	_, ok := m.Get(k)
	return ok
}

// Set returns a map with k bound to v.
func (m Map[V]) Set(k string, v V) Map[V] {
	t, _, _ := m.tree().Insert([]byte(k), v)
	return Map[V]{t: t}
}

// Delete returns a map without k. The receiver is returned unchanged when k
// is absent.
func (m Map[V]) Delete(k string) Map[V] {
	if m.t == nil {
		return m
	}
	t, _, ok := m.t.Delete([]byte(k))
	if !ok {
		return m
	}
	return Map[V]{t: t}
}

// Range calls fn for every entry in key order until fn returns false.
func (m Map[V]) Range(fn func(k string, v V) bool) {
	if m.t == nil {
		return
	}
	m.t.Root().Walk(func(k []byte, raw interface{}) bool {
		v, _ := raw.(V)
		return !fn(string(k), v)
	})
}

// Same reports whether both maps share the same root, which implies equal
// contents without looking at any entry.
func (m Map[V]) Same(o Map[V]) bool {
	if m.Len() == 0 && o.Len() == 0 {
		return true
	}
	if m.t == nil || o.t == nil {
		return false
	}
	return m.t.Root() == o.t.Root()
}

// Equal reports whether both maps hold the same keys with values equal
// under eq.
func (m Map[V]) Equal(o Map[V], eq func(a, b V) bool) bool {
	if m.Same(o) {
		return true
	}
	if m.Len() != o.Len() {
		return false
	}
	equal := true
	m.Range(func(k string, v V) bool {
		ov, ok := o.Get(k)
		if !ok || !eq(v, ov) {
			equal = false
		}
		return equal
	})
	return equal
}

// Builder batches many updates into one new version of a map.
type Builder[V any] struct {
	txn *iradix.Txn
}

// Builder starts a batch of updates on top of m.
func (m Map[V]) Builder() *Builder[V] {
	return &Builder[V]{txn: m.tree().Txn()}
}

func (b *Builder[V]) Get(k string) (V, bool) {
	var zero V
	raw, ok := b.txn.Get([]byte(k))
	if !ok {
		return zero, false
	}
	v, _ := raw.(V)
	return v, true
}

func (b *Builder[V]) Set(k string, v V) {
	b.txn.Insert([]byte(k), v)
}

func (b *Builder[V]) Delete(k string) {
	b.txn.Delete([]byte(k))
}

// Map returns the map holding every update applied so far.
func (b *Builder[V]) Map() Map[V] {
	return Map[V]{t: b.txn.Commit()}
}
