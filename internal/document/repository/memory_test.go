package repository

import (
	"context"
	"testing"

	"github.com/gogotex/gogotex/backend/go-attachments/internal/document"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepo(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	d := &document.Document{Locale: "en-US", Slug: "Web/HTML", Title: "HTML"}
	id, err := r.Create(ctx, d)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "HTML", got.Title)

	byPath, err := r.GetByPath(ctx, "en-US", "Web/HTML")
	require.NoError(t, err)
	require.Equal(t, id, byPath.ID)

	_, err = r.GetByPath(ctx, "fr", "Web/HTML")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = r.Create(ctx, &document.Document{Locale: "en-US", Slug: "Web/HTML"})
	require.ErrorIs(t, err, ErrExists)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
