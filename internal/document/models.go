package document

import (
	"net/url"
	"strings"
	"time"
)

// Document is the minimal view of a wiki document the attachments service
// needs: its identity and the (locale, slug) path it is addressed by.
type Document struct {
	ID        string    `json:"id" bson:"id"`
	Locale    string    `json:"locale" bson:"locale"`
	Slug      string    `json:"slug" bson:"slug"`
	Title     string    `json:"title" bson:"title"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// URL returns the document's public path, e.g. /en-US/docs/Web/HTML.
func (d *Document) URL() string {
	segs := strings.Split(d.Slug, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return "/" + url.PathEscape(d.Locale) + "/docs/" + strings.Join(segs, "/")
}

// EditURL returns the path of the document editor.
func (d *Document) EditURL() string {
	return d.URL() + "$edit"
}

// UploadURL returns the path the attachment upload form posts to.
func (d *Document) UploadURL() string {
	return "/attachments/upload/" + url.PathEscape(d.Locale) + "/" + strings.TrimPrefix(d.URL(), "/"+url.PathEscape(d.Locale)+"/docs/")
}
