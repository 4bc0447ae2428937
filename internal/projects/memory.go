package projects

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository used in development and tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*Project
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*Project)}
}

func (m *MemoryRepo) Create(ctx context.Context, p *Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.TemplateType == p.TemplateType && existing.Slug == p.Slug {
			return ErrSlugTaken
		}
	}
	m.store[p.ID] = clone(p)
	return nil
}

func (m *MemoryRepo) GetByID(ctx context.Context, id string) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.store[id]; ok {
		return clone(p), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) FindByOwner(ctx context.Context, email, template string) ([]*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*Project{}
	for _, p := range m.store {
		if p.OwnerEmail == email && p.TemplateType == template {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (m *MemoryRepo) FindPublishedBySlug(ctx context.Context, slug, template string) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.Slug == slug && p.TemplateType == template && p.IsPublished {
			return clone(p), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) UpdateData(ctx context.Context, id string, data json.RawMessage, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	p.Data = append(json.RawMessage(nil), data...)
	p.UpdatedAt = at
	return nil
}

func (m *MemoryRepo) SetPublished(ctx context.Context, id string, published bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	p.IsPublished = published
	p.UpdatedAt = at
	return nil
}
