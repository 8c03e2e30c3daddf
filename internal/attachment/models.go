package attachment

import (
	"fmt"
	"net/url"
	"time"
)

// Attachment groups the revisions of one uploaded file. Only the current
// revision is ever served.
type Attachment struct {
	ID                    int64     `json:"id" bson:"_id"`
	Title                 string    `json:"title" bson:"title"`
	MindtouchAttachmentID *int64    `json:"mindtouchAttachmentId,omitempty" bson:"mindtouchAttachmentId,omitempty"`
	CurrentRevisionID     *int64    `json:"currentRevisionId,omitempty" bson:"currentRevisionId,omitempty"`
	Modified              time.Time `json:"modified" bson:"modified"`
}

// Revision is an immutable version of an attachment's file. StorageKey is a
// handle into the blob store, never the bytes themselves.
type Revision struct {
	ID           int64     `json:"id" bson:"_id"`
	AttachmentID int64     `json:"attachmentId" bson:"attachmentId"`
	Title        string    `json:"title" bson:"title"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	Comment      string    `json:"comment,omitempty" bson:"comment,omitempty"`
	Filename     string    `json:"filename" bson:"filename"`
	StorageKey   string    `json:"-" bson:"storageKey"`
	MimeType     string    `json:"mimeType" bson:"mimeType"`
	Size         int64     `json:"size" bson:"size"`
	Created      time.Time `json:"created" bson:"created"`
	CreatorID    string    `json:"creatorId" bson:"creatorId"`
}

// DocumentAttachment links an attachment to a document it was uploaded to.
type DocumentAttachment struct {
	DocumentID   string    `json:"documentId" bson:"documentId"`
	AttachmentID int64     `json:"attachmentId" bson:"attachmentId"`
	AttachedByID string    `json:"attachedById" bson:"attachedById"`
	Name         string    `json:"name" bson:"name"`
	IsOriginal   bool      `json:"isOriginal" bson:"isOriginal"`
	Created      time.Time `json:"created" bson:"created"`
}

// URLBuilder renders canonical attachment file URLs.
type URLBuilder struct {
	// Host is the dedicated attachments host. Empty yields relative URLs.
	Host   string
	UseSSL bool
}

// FileURL returns the canonical URL of an attachment's file:
// {scheme}://{host}/files/{id}/{escaped filename}.
func (b URLBuilder) FileURL(attachmentID int64, filename string) string {
	p := fmt.Sprintf("/files/%d/%s", attachmentID, url.PathEscape(filename))
	if b.Host == "" {
		return p
	}
	scheme := "https"
	if !b.UseSSL {
		scheme = "http"
	}
	return scheme + "://" + b.Host + p
}
