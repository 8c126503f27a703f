// Package uniforms holds the named shader inputs that are uploaded on every frame.
//
// The set of names is fixed when the Store is built. Values are overwritten in
// place and never removed. A Store is owned by the render thread and is not safe
// for concurrent use.
package uniforms

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownUniform = errors.New("unknown uniform")
	ErrKindMismatch   = errors.New("uniform kind mismatch")
)

// Range is the [Min, Max] interval and Step a panel widget exposes for an entry.
type Range struct {
	Min  float64
	Max  float64
	Step float64
}

// Uniform is one named entry of the store.
type Uniform struct {
	Name  string
	Value Value
	Range *Range
}

type Store struct {
	entries []Uniform
	index   map[string]int
}

// NewStore builds a store from its definitions, preserving their order.
func NewStore(defs ...Uniform) (*Store, error) {
	s := &Store{
		entries: make([]Uniform, 0, len(defs)),
		index:   make(map[string]int, len(defs)),
	}
	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("uniform definition without a name")
		}
		if _, exists := s.index[def.Name]; exists {
			return nil, fmt.Errorf("duplicate uniform %q", def.Name)
		}
		s.index[def.Name] = len(s.entries)
		s.entries = append(s.entries, def)
	}
	return s, nil
}

// Set overwrites the value of an existing entry. The kind must match the
// declared kind; ranges are not enforced here.
func (s *Store) Set(name string, v Value) error {
	i, ok := s.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUniform, name)
	}
	if s.entries[i].Value.Kind() != v.Kind() {
		return fmt.Errorf("%w: %s is %s, got %s", ErrKindMismatch, name, s.entries[i].Value.Kind(), v.Kind())
	}
	s.entries[i].Value = v
	return nil
}

func (s *Store) Get(name string) (Value, bool) {
	i, ok := s.index[name]
	if !ok {
		return Value{}, false
	}
	return s.entries[i].Value, true
}

// Lookup returns a copy of the full entry, including its panel range.
func (s *Store) Lookup(name string) (Uniform, bool) {
	i, ok := s.index[name]
	if !ok {
		return Uniform{}, false
	}
	return s.entries[i], true
}

// Each visits every entry in declaration order.
func (s *Store) Each(fn func(u Uniform)) {
	for _, u := range s.entries {
		fn(u)
	}
}

func (s *Store) Len() int { return len(s.entries) }

// Snapshot copies all current values, keyed by name.
func (s *Store) Snapshot() map[string]Value {
	out := make(map[string]Value, len(s.entries))
	for _, u := range s.entries {
		out[u.Name] = u.Value
	}
	return out
}
