package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gogotex/gogotex/backend/go-attachments/internal/document"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/document/repository"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid document")
)

// Service defines the document lookups used by the handler layer.
type Service interface {
	Create(ctx context.Context, d *document.Document) (string, error)
	Get(ctx context.Context, id string) (*document.Document, error)
	GetByPath(ctx context.Context, locale, slug string) (*document.Document, error)
	List(ctx context.Context) ([]*document.Document, error)
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService() Service {
	return New(repository.NewMemoryRepo())
}

// NewMongoService returns a Service backed by a MongoDB collection.
// Caller is responsible for creating the collection (and client) and passing it in.
func NewMongoService(col *mongo.Collection) Service {
	return New(repository.NewMongoRepo(col))
}

func New(repo repository.Repository) Service {
	return &service{repo: repo}
}

type service struct {
	repo repository.Repository
}

func (s *service) Create(ctx context.Context, d *document.Document) (string, error) {
	d.Locale = strings.TrimSpace(d.Locale)
	d.Slug = strings.Trim(strings.TrimSpace(d.Slug), "/")
	if d.Locale == "" || d.Slug == "" {
		return "", ErrInvalid
	}
	return s.repo.Create(ctx, d)
}

func (s *service) Get(ctx context.Context, id string) (*document.Document, error) {
	d, err := s.repo.Get(ctx, id)
	return d, translate(err)
}

// GetByPath resolves a document from its locale and slug. A leading or
// trailing slash on the slug is ignored.
func (s *service) GetByPath(ctx context.Context, locale, slug string) (*document.Document, error) {
	d, err := s.repo.GetByPath(ctx, locale, strings.Trim(slug, "/"))
	return d, translate(err)
}

func (s *service) List(ctx context.Context) ([]*document.Document, error) {
	return s.repo.List(ctx)
}

func translate(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
