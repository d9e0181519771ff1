// Package cart holds the session cart: encoded cart keys mapped to
// quantities, iterated in insertion order.
package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// MaxQty caps a single line. Every quantity stored or computed stays in
// [1, MaxQty], so line and cart totals cannot overflow.
const MaxQty = 9999

// ClampDelta bounds a stepper delta to what can change a capped quantity.
func ClampDelta(delta int) int {
	switch {
	case delta > MaxQty:
		return MaxQty
	case delta < -MaxQty:
		return -MaxQty
	}
	return delta
}

// Entry is one cart line.
type Entry struct {
	Key string `json:"key"`
	Qty int    `json:"qty"`
}

// Store is not safe for concurrent use. Callers serialize access per
// session.
type Store struct {
	order []string
	qty   map[string]int
}

func New() *Store {
	return &Store{qty: make(map[string]int)}
}

// Add increases the quantity of key by qty, creating the line if needed.
// An add that would take the line past MaxQty is refused.
func (s *Store) Add(key string, qty int) error {
	if qty <= 0 || qty > MaxQty-s.qty[key] {
		return fmt.Errorf("add %d to %q: %w", qty, key, ErrInvalidQuantity)
	}
	s.set(key, s.qty[key]+qty)
	return nil
}

// SetQty sets the quantity exactly; zero or below removes the line and
// values above MaxQty are capped.
func (s *Store) SetQty(key string, qty int) {
	if qty <= 0 {
		s.Remove(key)
		return
	}
	s.set(key, min(qty, MaxQty))
}

// Step applies a relative change, the way the cart +/- buttons do.
func (s *Store) Step(key string, delta int) {
	s.SetQty(key, s.qty[key]+ClampDelta(delta))
}

func (s *Store) Remove(key string) {
	if _, ok := s.qty[key]; !ok {
		return
	}
	delete(s.qty, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) Clear() {
	s.order = nil
	s.qty = make(map[string]int)
}

// Qty returns 0 for absent keys.
func (s *Store) Qty(key string) int {
	return s.qty[key]
}

func (s *Store) Has(key string) bool {
	_, ok := s.qty[key]
	return ok
}

func (s *Store) Len() int {
	return len(s.order)
}

func (s *Store) TotalQty() int {
	total := 0
	for _, k := range s.order {
		total += s.qty[k]
	}
	return total
}

// Entries returns a copy of the lines in insertion order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, Entry{Key: k, Qty: s.qty[k]})
	}
	return out
}

// Clone returns an independent copy.
func (s *Store) Clone() *Store {
	c := New()
	for _, e := range s.Entries() {
		c.set(e.Key, e.Qty)
	}
	return c
}

func (s *Store) set(key string, qty int) {
	if _, ok := s.qty[key]; !ok {
		s.order = append(s.order, key)
	}
	s.qty[key] = qty
}

// MarshalJSON encodes the cart as an ordered list of entries.
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Entries())
}

// UnmarshalJSON restores a cart, dropping non-positive quantities, merging
// duplicate keys and capping lines at MaxQty.
func (s *Store) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if !bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("decode cart: %w", err)
		}
	}
	s.Clear()
	for _, e := range entries {
		if e.Qty > 0 {
			s.set(e.Key, min(e.Qty, MaxQty-s.qty[e.Key])+s.qty[e.Key])
		}
	}
	return nil
}
