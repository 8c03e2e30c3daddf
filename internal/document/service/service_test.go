package service

import (
	"context"
	"testing"

	"github.com/gogotex/gogotex/backend/go-attachments/internal/document"
	"github.com/stretchr/testify/require"
)

func TestService_GetByPathTrimsSlashes(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	id, err := svc.Create(ctx, &document.Document{Locale: "en-US", Slug: "/Web/HTML/", Title: "HTML"})
	require.NoError(t, err)

	d, err := svc.GetByPath(ctx, "en-US", "/Web/HTML")
	require.NoError(t, err)
	require.Equal(t, id, d.ID)
	require.Equal(t, "Web/HTML", d.Slug)
}

func TestService_NotFound(t *testing.T) {
	svc := NewMemoryService()
	_, err := svc.GetByPath(context.Background(), "en-US", "Missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(context.Background(), "doc_404")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_CreateRejectsEmptyPath(t *testing.T) {
	_, err := NewMemoryService().Create(context.Background(), &document.Document{Locale: "en-US"})
	require.ErrorIs(t, err, ErrInvalid)
}
