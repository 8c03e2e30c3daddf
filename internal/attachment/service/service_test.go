package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/gogotex/gogotex/backend/go-attachments/internal/attachment"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/attachment/repository"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/storage"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	objects map[string][]byte
	saveErr error
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

type memFile struct{ *bytes.Reader }

func (memFile) Close() error           { return nil }
func (f memFile) Size() (int64, error) { return f.Reader.Size(), nil }

func (s *memStore) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = b
	return nil
}

func (s *memStore) Open(ctx context.Context, key string) (storage.File, error) {
	b, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return memFile{bytes.NewReader(b)}, nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

// failingRevisions makes SaveRevision fail.
type failingRevisions struct{ *repository.MemoryRepo }

func (failingRevisions) SaveRevision(ctx context.Context, rev *attachment.Revision) error {
	return errors.New("write conflict")
}

func upload(body string) Upload {
	return Upload{
		Revision: &attachment.Revision{Title: "Notes", Filename: "notes.txt", MimeType: "text/plain", Size: int64(len(body))},
		Body:     strings.NewReader(body),
	}
}

func TestCreateFromUpload(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	store := newMemStore()
	svc := New(repo, store)

	a, err := svc.CreateFromUpload(ctx, "doc_1", "alice", upload("hello"))
	require.NoError(t, err)
	require.NotNil(t, a.CurrentRevisionID)

	got, rev, err := svc.Current(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "Notes", got.Title)
	require.Equal(t, "alice", rev.CreatorID)
	require.Equal(t, a.ID, rev.AttachmentID)
	require.Equal(t, []byte("hello"), store.objects[rev.StorageKey])

	f, err := svc.Open(ctx, rev)
	require.NoError(t, err)
	defer f.Close()
	b, _ := io.ReadAll(f)
	require.Equal(t, "hello", string(b))

	listed, err := svc.ListForDocument(ctx, "doc_1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "alice", listed[0].Link.AttachedByID)
	require.Equal(t, "notes.txt", listed[0].Link.Name)
	require.True(t, listed[0].Link.IsOriginal)
}

func TestCreateFromUpload_StoreFailureLeavesNothing(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	store := newMemStore()
	store.saveErr = errors.New("bucket unavailable")
	svc := New(repo, store)

	_, err := svc.CreateFromUpload(ctx, "doc_1", "alice", upload("hello"))
	require.Error(t, err)
	_, err = repo.Get(ctx, 1)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateFromUpload_RevisionFailureDeletesBlob(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewMemoryRepo()
	store := newMemStore()
	svc := New(failingRevisions{mem}, store)

	_, err := svc.CreateFromUpload(ctx, "doc_1", "alice", upload("hello"))
	require.ErrorContains(t, err, "save revision")
	require.Empty(t, store.objects)
	_, err = mem.Get(ctx, 1)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCurrent_NoRevisionIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	a := &attachment.Attachment{Title: "empty"}
	require.NoError(t, repo.CreateAttachment(ctx, a))

	svc := New(repo, newMemStore())
	_, _, err := svc.Current(ctx, a.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, _, err = svc.Current(ctx, 404)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCurrentByMindtouchID(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	legacy := int64(77)
	a := &attachment.Attachment{Title: "legacy", MindtouchAttachmentID: &legacy}
	require.NoError(t, repo.CreateAttachment(ctx, a))
	svc := New(repo, newMemStore())

	_, _, err := svc.CurrentByMindtouchID(ctx, 77)
	require.ErrorIs(t, err, ErrNotFound, "no current revision yet")

	require.NoError(t, repo.SaveRevision(ctx, &attachment.Revision{AttachmentID: a.ID, Filename: "old.gif"}))
	got, rev, err := svc.CurrentByMindtouchID(ctx, 77)
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)
	require.Equal(t, "old.gif", rev.Filename)

	_, _, err = svc.CurrentByMindtouchID(ctx, 78)
	require.ErrorIs(t, err, ErrNotFound)
}
