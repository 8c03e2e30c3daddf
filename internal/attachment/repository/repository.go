package repository

import (
	"context"
	"errors"

	"github.com/gogotex/gogotex/backend/go-attachments/internal/attachment"
)

var (
	ErrNotFound          = errors.New("attachment not found")
	ErrDuplicateLegacyID = errors.New("mindtouch attachment id already in use")
)

// Repository persists attachments, their revisions and document links.
type Repository interface {
	// CreateAttachment assigns a.ID and stores a.
	CreateAttachment(ctx context.Context, a *attachment.Attachment) error
	Get(ctx context.Context, id int64) (*attachment.Attachment, error)
	GetByMindtouchID(ctx context.Context, legacyID int64) (*attachment.Attachment, error)
	DeleteAttachment(ctx context.Context, id int64) error

	// SaveRevision assigns rev.ID, stores rev and makes it the attachment's
	// current revision. The attachment's title and modified time follow it.
	SaveRevision(ctx context.Context, rev *attachment.Revision) error
	GetRevision(ctx context.Context, id int64) (*attachment.Revision, error)
	ListRevisions(ctx context.Context, attachmentID int64) ([]*attachment.Revision, error)

	// Attach links an attachment to a document. Linking the same pair again
	// updates the existing link.
	Attach(ctx context.Context, link *attachment.DocumentAttachment) error
	ListByDocument(ctx context.Context, documentID string) ([]*attachment.DocumentAttachment, error)
}
