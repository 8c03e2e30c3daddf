package repository

import (
	"context"
	"testing"
	"time"

	"github.com/gogotex/gogotex/backend/go-attachments/internal/attachment"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepo_SaveRevisionBecomesCurrent(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	a := &attachment.Attachment{Title: "draft"}
	require.NoError(t, r.CreateAttachment(ctx, a))
	require.Equal(t, int64(1), a.ID)

	got, err := r.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Nil(t, got.CurrentRevisionID)

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rev := &attachment.Revision{AttachmentID: a.ID, Title: "Logo", Filename: "logo.png", Created: created}
	require.NoError(t, r.SaveRevision(ctx, rev))
	require.NotZero(t, rev.ID)

	got, err = r.Get(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentRevisionID)
	require.Equal(t, rev.ID, *got.CurrentRevisionID)
	require.Equal(t, "Logo", got.Title)
	require.Equal(t, created, got.Modified)

	second := &attachment.Revision{AttachmentID: a.ID, Title: "Logo v2", Filename: "logo.png", Created: created.Add(time.Hour)}
	require.NoError(t, r.SaveRevision(ctx, second))
	revs, err := r.ListRevisions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, revs, 2)
	require.Equal(t, second.ID, revs[0].ID)
}

func TestMemoryRepo_SaveRevisionUnknownAttachment(t *testing.T) {
	err := NewMemoryRepo().SaveRevision(context.Background(), &attachment.Revision{AttachmentID: 99})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepo_MindtouchLookup(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	legacy := int64(1234)
	a := &attachment.Attachment{Title: "old", MindtouchAttachmentID: &legacy}
	require.NoError(t, r.CreateAttachment(ctx, a))

	got, err := r.GetByMindtouchID(ctx, 1234)
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)

	_, err = r.GetByMindtouchID(ctx, 9)
	require.ErrorIs(t, err, ErrNotFound)

	dup := int64(1234)
	require.ErrorIs(t, r.CreateAttachment(ctx, &attachment.Attachment{MindtouchAttachmentID: &dup}), ErrDuplicateLegacyID)
}

func TestMemoryRepo_AttachUpdatesExistingLink(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	a := &attachment.Attachment{Title: "x"}
	require.NoError(t, r.CreateAttachment(ctx, a))

	require.NoError(t, r.Attach(ctx, &attachment.DocumentAttachment{DocumentID: "doc_1", AttachmentID: a.ID, AttachedByID: "alice", Name: "a.png", IsOriginal: true}))
	require.NoError(t, r.Attach(ctx, &attachment.DocumentAttachment{DocumentID: "doc_1", AttachmentID: a.ID, AttachedByID: "bob", Name: "b.png", IsOriginal: true}))

	links, err := r.ListByDocument(ctx, "doc_1")
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, "bob", links[0].AttachedByID)
	require.Equal(t, "b.png", links[0].Name)

	empty, err := r.ListByDocument(ctx, "doc_2")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestMemoryRepo_DeleteAttachmentCascades(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	a := &attachment.Attachment{Title: "x"}
	require.NoError(t, r.CreateAttachment(ctx, a))
	rev := &attachment.Revision{AttachmentID: a.ID}
	require.NoError(t, r.SaveRevision(ctx, rev))
	require.NoError(t, r.Attach(ctx, &attachment.DocumentAttachment{DocumentID: "doc_1", AttachmentID: a.ID}))

	require.NoError(t, r.DeleteAttachment(ctx, a.ID))
	_, err := r.Get(ctx, a.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.GetRevision(ctx, rev.ID)
	require.ErrorIs(t, err, ErrNotFound)
	links, _ := r.ListByDocument(ctx, "doc_1")
	require.Empty(t, links)
	require.ErrorIs(t, r.DeleteAttachment(ctx, a.ID), ErrNotFound)
}
