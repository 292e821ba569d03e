package fields

import (
	"context"
	"errors"
	"sync"
)

// ErrTemplateNotFound is returned by a RegistryStore for unknown template ids
var ErrTemplateNotFound = errors.New("template not found")

// RegistryStore is the persistence boundary for declared fields
type RegistryStore interface {
	Load(ctx context.Context, templateID string) ([]BuilderField, error)
	Save(ctx context.Context, templateID string, fields []BuilderField) error
}

// MemoryStore keeps registries in process memory
type MemoryStore struct {
	mu        sync.RWMutex
	templates map[string][]BuilderField
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{templates: make(map[string][]BuilderField)}
}

// Load returns a copy of the stored fields
func (s *MemoryStore) Load(ctx context.Context, templateID string) ([]BuilderField, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.templates[templateID]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	out := make([]BuilderField, len(stored))
	copy(out, stored)
	return out, nil
}

// Save replaces the fields stored for a template
func (s *MemoryStore) Save(ctx context.Context, templateID string, fields []BuilderField) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := make([]BuilderField, len(fields))
	copy(stored, fields)

	s.mu.Lock()
	s.templates[templateID] = stored
	s.mu.Unlock()
	return nil
}

// Delete removes a template's fields; the registry lives as long as its template
func (s *MemoryStore) Delete(ctx context.Context, templateID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.templates, templateID)
	s.mu.Unlock()
	return nil
}
