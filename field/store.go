package field

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/tbxark/reliefwizard/patch"
)

// Store holds the current value of every field of a form. Writes are never
// validated; consumers read through immutable snapshots.
type Store struct {
	schema *Schema
	mu     sync.RWMutex
	values map[string]any
}

func NewStore(schema *Schema) *Store {
	s := &Store{schema: schema}
	s.values = s.initialValues()
	return s
}

func (s *Store) initialValues() map[string]any {
	values := make(map[string]any, len(s.schema.defs))
	for _, d := range s.schema.defs {
		values[d.Name] = normalize(d.Kind, d.Default)
	}
	return values
}

func (s *Store) Schema() *Schema {
	return s.schema
}

// Set writes value to the named field. Names outside the schema are dropped.
func (s *Store) Set(name string, value any) {
	def, ok := s.schema.Lookup(name)
	if !ok {
		slog.Warn("ignoring write to unknown field", "field", name)
		return
	}
	v := normalize(def.Kind, value)
	s.mu.Lock()
	s.values[name] = v
	s.mu.Unlock()
}

// Get returns a copy of the current value, or the empty sentinel.
func (s *Store) Get(name string) any {
	def, ok := s.schema.Lookup(name)
	if !ok {
		return nil
	}
	s.mu.RLock()
	v, exists := s.values[name]
	s.mu.RUnlock()
	if !exists {
		return Empty(def.Kind)
	}
	return copyValue(v)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newSnapshot(s.schema, s.values)
}

// Reset puts every field back to its default.
func (s *Store) Reset() {
	values := s.initialValues()
	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
}

// Restore replaces all values, e.g. from a saved draft. Missing names fall
// back to their defaults and unknown names are dropped.
func (s *Store) Restore(values map[string]any) {
	next := s.initialValues()
	for _, d := range s.schema.defs {
		if v, ok := values[d.Name]; ok {
			next[d.Name] = normalize(d.Kind, v)
		}
	}
	s.mu.Lock()
	s.values = next
	s.mu.Unlock()
}

// ApplyPatch applies RFC6902 operations restricted to schema paths. Either
// all operations apply or the store is left untouched.
func (s *Store) ApplyPatch(ops []patch.Operation) error {
	if len(ops) == 0 {
		return nil
	}
	if err := patch.ValidatePatchOperations(ops, s.schema.AllowedPaths()); err != nil {
		return fmt.Errorf("patch validation failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := make(map[string]any, len(s.values))
	for k, v := range s.values {
		current[k] = copyValue(v)
	}
	patched, err := patch.ApplyRFC6902(current, ops)
	if err != nil {
		return err
	}

	next := make(map[string]any, len(s.schema.defs))
	for _, d := range s.schema.defs {
		v, ok := patched[d.Name]
		if !ok {
			next[d.Name] = Empty(d.Kind)
			continue
		}
		next[d.Name] = normalize(d.Kind, v)
	}
	s.values = next
	slog.Debug("applied patch to field store", "ops", len(ops))
	return nil
}

// Prefill seeds fields that are still empty, typically with identity data
// from the auth source. It returns the number of operations applied.
func (s *Store) Prefill(values map[string]any) (int, error) {
	initial := make(map[string]any, len(values))
	for name, v := range values {
		def, ok := s.schema.Lookup(name)
		if !ok {
			continue
		}
		initial[name] = normalize(def.Kind, v)
	}

	s.mu.RLock()
	current := make(map[string]any, len(s.values))
	for k, v := range s.values {
		current[k] = copyValue(v)
	}
	s.mu.RUnlock()

	ops, err := patch.SeedPatches(current, initial)
	if err != nil {
		return 0, fmt.Errorf("failed to generate prefill patches: %w", err)
	}
	if err := s.ApplyPatch(ops); err != nil {
		return 0, fmt.Errorf("failed to apply prefill: %w", err)
	}
	return len(ops), nil
}
