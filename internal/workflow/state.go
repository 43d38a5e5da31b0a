package workflow

import (
	"sort"

	"bluemedix-workflow/internal/common/errors"
)

// State carries the identifiers earlier steps produced. It is a value: With
// returns a copy, so a failed step can never leak partial writes.
type State struct {
	values map[string]string
}

func NewState() State {
	return State{values: map[string]string{}}
}

func (s State) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok && v != ""
}

// Value returns the stored value or "".
func (s State) Value(key string) string {
	return s.values[key]
}

// Require returns the named values in order, or an assertion error naming the
// first missing key.
func (s State) Require(keys ...string) ([]string, error) {
	out := make([]string, len(keys))
	for i, k := range keys {
		v, ok := s.Get(k)
		if !ok {
			return nil, errors.NewAssertionError("required value %q was not produced by an earlier step", k)
		}
		out[i] = v
	}
	return out, nil
}

func (s State) With(key, value string) State {
	next := make(map[string]string, len(s.values)+1)
	for k, v := range s.values {
		next[k] = v
	}
	next[key] = value
	return State{values: next}
}

func (s State) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot copies the state into a plain map.
func (s State) Snapshot() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
