package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogotex/gogotex/backend/go-attachments/internal/document"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrExists   = errors.New("document already exists")
)

// Repository is the document lookup the attachments service depends on.
type Repository interface {
	Create(ctx context.Context, doc *document.Document) (string, error)
	Get(ctx context.Context, id string) (*document.Document, error)
	GetByPath(ctx context.Context, locale, slug string) (*document.Document, error)
	List(ctx context.Context) ([]*document.Document, error)
}

// MemoryRepo is a simple in-memory repository used for local development
// and unit tests.
type MemoryRepo struct {
	mu     sync.RWMutex
	store  map[string]*document.Document
	byPath map[string]string
	seq    int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*document.Document), byPath: make(map[string]string)}
}

func pathKey(locale, slug string) string { return locale + "\x00" + slug }

func (m *MemoryRepo) Create(ctx context.Context, doc *document.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk := pathKey(doc.Locale, doc.Slug)
	if _, ok := m.byPath[pk]; ok {
		return "", ErrExists
	}
	if doc.ID == "" {
		m.seq++
		doc.ID = fmt.Sprintf("doc_%d", m.seq)
	}
	doc.CreatedAt = time.Now().UTC()
	doc.UpdatedAt = doc.CreatedAt
	cp := *doc
	m.store[doc.ID] = &cp
	m.byPath[pk] = doc.ID
	return doc.ID, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.store[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) GetByPath(ctx context.Context, locale, slug string) (*document.Document, error) {
	m.mu.RLock()
	id, ok := m.byPath[pathKey(locale, slug)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return m.Get(ctx, id)
}

func (m *MemoryRepo) List(ctx context.Context) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*document.Document, 0, len(m.store))
	for _, d := range m.store {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}
