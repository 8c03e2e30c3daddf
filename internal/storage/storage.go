package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Open when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// File is an open read handle on a stored object. Size may fail on backends
// that cannot report it; callers treat that as "unknown".
type File interface {
	io.ReadCloser
	Size() (int64, error)
}

// Storage is the blob abstraction behind attachment revisions.
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (File, error)
	Delete(ctx context.Context, key string) error
}

// RevisionKey builds the object key for a newly uploaded revision file:
// attachments/<yyyy>/<mm>/<dd>/<attachment id>/<random>/<filename>.
// The random segment keeps repeated uploads of the same filename apart.
func RevisionKey(attachmentID int64, filename string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == ".." || name == "/" || name == "" {
		name = "file"
	}
	return fmt.Sprintf("attachments/%s/%d/%s/%s",
		now.UTC().Format("2006/01/02"), attachmentID, uuid.NewString()[:8], name)
}
