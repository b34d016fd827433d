// Package results holds the ordered key/value mapping an extraction run
// produces.
package results

import (
	"errors"
	"fmt"
	"io"
)

// ErrDuplicateKey is returned when a key is set twice; result keys are
// unique by contract.
var ErrDuplicateKey = errors.New("results: duplicate key")

// Results is an insertion-ordered mapping from composite feature keys to
// numeric or descriptive values.
type Results struct {
	keys   []string
	values map[string]interface{}
}

func New() *Results {
	return &Results{values: make(map[string]interface{})}
}

// Set appends a key/value pair, preserving insertion order.
func (r *Results) Set(key string, value interface{}) error {
	if _, exists := r.values[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	r.keys = append(r.keys, key)
	r.values[key] = value
	return nil
}

// Get looks a value up by key.
func (r *Results) Get(key string) (interface{}, bool) {
	value, ok := r.values[key]
	return value, ok
}

// Float returns a numeric value by key; ok is false for missing or
// non-numeric entries.
func (r *Results) Float(key string) (float64, bool) {
	value, ok := r.values[key]
	if !ok {
		return 0, false
	}
	f, ok := value.(float64)
	return f, ok
}

// Keys returns the keys in insertion order.
func (r *Results) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of entries.
func (r *Results) Len() int {
	return len(r.keys)
}

// Each visits entries in insertion order until fn returns false.
func (r *Results) Each(fn func(key string, value interface{}) bool) {
	for _, key := range r.keys {
		if !fn(key, r.values[key]) {
			return
		}
	}
}

// WriteTo renders entries as "key: value" lines in insertion order.
func (r *Results) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, key := range r.keys {
		n, err := fmt.Fprintf(w, "%s: %v\n", key, r.values[key])
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
