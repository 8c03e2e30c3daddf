package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gogotex/gogotex/backend/go-attachments/internal/attachment"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/attachment/repository"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/storage"
	"github.com/gogotex/gogotex/backend/go-attachments/pkg/logger"
)

// ErrNotFound means the attachment does not exist or has nothing to serve.
var ErrNotFound = errors.New("not found")

// Upload is a validated revision waiting to be stored.
type Upload struct {
	Revision *attachment.Revision
	Body     io.Reader
}

// Listed is an attachment linked to a document together with its current
// revision.
type Listed struct {
	Link       *attachment.DocumentAttachment `json:"link"`
	Attachment *attachment.Attachment         `json:"attachment"`
	Revision   *attachment.Revision           `json:"revision"`
}

// Service coordinates attachment persistence and blob storage.
type Service struct {
	repo  repository.Repository
	store storage.Storage
	now   func() time.Time
}

func New(repo repository.Repository, store storage.Storage) *Service {
	return &Service{repo: repo, store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Current returns an attachment with its current revision. An attachment
// without a current revision is reported as ErrNotFound.
func (s *Service) Current(ctx context.Context, id int64) (*attachment.Attachment, *attachment.Revision, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, translate(err)
	}
	return s.withCurrent(ctx, a)
}

// CurrentByMindtouchID is Current keyed by the legacy MindTouch file id.
func (s *Service) CurrentByMindtouchID(ctx context.Context, legacyID int64) (*attachment.Attachment, *attachment.Revision, error) {
	a, err := s.repo.GetByMindtouchID(ctx, legacyID)
	if err != nil {
		return nil, nil, translate(err)
	}
	return s.withCurrent(ctx, a)
}

func (s *Service) withCurrent(ctx context.Context, a *attachment.Attachment) (*attachment.Attachment, *attachment.Revision, error) {
	if a.CurrentRevisionID == nil {
		return nil, nil, ErrNotFound
	}
	rev, err := s.repo.GetRevision(ctx, *a.CurrentRevisionID)
	if err != nil {
		return nil, nil, translate(err)
	}
	return a, rev, nil
}

// Revisions lists an attachment's revisions, newest first.
func (s *Service) Revisions(ctx context.Context, id int64) ([]*attachment.Revision, error) {
	return s.repo.ListRevisions(ctx, id)
}

// Open returns a read handle on the revision's stored file. The caller
// closes it.
func (s *Service) Open(ctx context.Context, rev *attachment.Revision) (storage.File, error) {
	f, err := s.store.Open(ctx, rev.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("open revision %d: %w", rev.ID, err)
	}
	return f, nil
}

// CreateFromUpload creates a new attachment from an upload: the attachment
// record, the stored file, its first revision (made current) and the link to
// the document, attributed to userRef. There is no transaction; when a later
// step fails the earlier records and blob are removed best-effort.
func (s *Service) CreateFromUpload(ctx context.Context, documentID, userRef string, up Upload) (*attachment.Attachment, error) {
	rev := up.Revision
	now := s.now()
	rev.CreatorID = userRef
	if rev.Created.IsZero() {
		rev.Created = now
	}

	a := &attachment.Attachment{Title: rev.Title, Modified: now}
	if err := s.repo.CreateAttachment(ctx, a); err != nil {
		return nil, fmt.Errorf("create attachment: %w", err)
	}

	key := storage.RevisionKey(a.ID, rev.Filename, now)
	if err := s.store.Save(ctx, key, up.Body, rev.Size, rev.MimeType); err != nil {
		s.discard(ctx, a.ID, "")
		return nil, fmt.Errorf("store file: %w", err)
	}

	rev.AttachmentID = a.ID
	rev.StorageKey = key
	if err := s.repo.SaveRevision(ctx, rev); err != nil {
		s.discard(ctx, a.ID, key)
		return nil, fmt.Errorf("save revision: %w", err)
	}

	link := &attachment.DocumentAttachment{
		DocumentID:   documentID,
		AttachmentID: a.ID,
		AttachedByID: userRef,
		Name:         rev.Filename,
		IsOriginal:   true,
		Created:      now,
	}
	if err := s.repo.Attach(ctx, link); err != nil {
		s.discard(ctx, a.ID, key)
		return nil, fmt.Errorf("attach to document: %w", err)
	}

	id := rev.ID
	a.CurrentRevisionID = &id
	a.Title = rev.Title
	a.Modified = rev.Created
	return a, nil
}

func (s *Service) discard(ctx context.Context, attachmentID int64, key string) {
	if key != "" {
		if err := s.store.Delete(ctx, key); err != nil {
			logger.Warnf("attachments: delete orphaned blob %s: %v", key, err)
		}
	}
	if err := s.repo.DeleteAttachment(ctx, attachmentID); err != nil {
		logger.Warnf("attachments: delete orphaned attachment %d: %v", attachmentID, err)
	}
}

// ListForDocument returns the document's attachments that have a current
// revision.
func (s *Service) ListForDocument(ctx context.Context, documentID string) ([]Listed, error) {
	links, err := s.repo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	out := make([]Listed, 0, len(links))
	for _, l := range links {
		a, rev, err := s.Current(ctx, l.AttachmentID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Listed{Link: l, Attachment: a, Revision: rev})
	}
	return out, nil
}

func translate(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
