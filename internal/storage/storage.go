// Package storage provides the small key-value port used to persist client state:
// the entry metadata cache, liked ids and pager cursors.
//
// Every backend is fallible. Callers treat read failures as a cold start and
// ignore write failures.
package storage

import "errors"

// ErrClosed is returned by stores used after Close
var ErrClosed = errors.New("store is closed")

// Store is a string key-value store
type Store interface {
	// Get returns the value for key and whether it was present
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Namespaced prefixes every key before delegating to the wrapped store
type Namespaced struct {
	store  Store
	prefix string
}

// WithPrefix scopes store to keys starting with prefix
func WithPrefix(store Store, prefix string) *Namespaced {
	return &Namespaced{store: store, prefix: prefix}
}

func (n *Namespaced) Get(key string) (string, bool, error) {
	return n.store.Get(n.prefix + key)
}

func (n *Namespaced) Set(key, value string) error {
	return n.store.Set(n.prefix+key, value)
}

func (n *Namespaced) Remove(key string) error {
	return n.store.Remove(n.prefix + key)
}
