package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/attachment"
	attsvc "github.com/gogotex/gogotex/backend/go-attachments/internal/attachment/service"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/config"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/document"
	docsvc "github.com/gogotex/gogotex/backend/go-attachments/internal/document/service"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/models"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/storage"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/trust"
	"github.com/gogotex/gogotex/backend/go-attachments/pkg/logger"
	"github.com/gogotex/gogotex/backend/go-attachments/pkg/metrics"
	"github.com/gogotex/gogotex/backend/go-attachments/pkg/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// multipart framing allowance on top of the file size limit
const formOverhead = 1 << 20

// AttachmentHandler serves attachment files and accepts uploads.
type AttachmentHandler struct {
	cfg         config.AttachmentsConfig
	attachments *attsvc.Service
	documents   docsvc.Service
	classifier  *trust.Classifier
	urls        attachment.URLBuilder
	form        attachment.FormOptions
	canAdd      func(*models.User) bool
	tmpl        *template.Template
}

// NewAttachmentHandler wires the handler. canAdd decides whether an
// authenticated user may upload.
func NewAttachmentHandler(cfg config.AttachmentsConfig, atts *attsvc.Service, docs docsvc.Service, canAdd func(*models.User) bool) *AttachmentHandler {
	return &AttachmentHandler{
		cfg:         cfg,
		attachments: atts,
		documents:   docs,
		classifier:  trust.NewClassifier(cfg.Host, cfg.Origin, cfg.TrustForwardedHost),
		urls:        attachment.URLBuilder{Host: cfg.Host, UseSSL: cfg.UseSSL},
		form:        attachment.FormOptions{MaxUploadSize: cfg.MaxUploadSize, AllowedTypes: cfg.AllowedTypes},
		canAdd:      canAdd,
		tmpl:        template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// Register mounts the file, legacy and upload routes. uploadGuards run on
// the upload route after the login check (e.g. a rate limiter).
func (h *AttachmentHandler) Register(r gin.IRoutes, uploadGuards ...gin.HandlerFunc) {
	r.GET("/files/:attachment_id/:filename", h.RawFile)
	r.GET("/@api/deki/files/:file_id/*filename", h.MindtouchFileRedirect)

	upload := []gin.HandlerFunc{middleware.FrameOptions("SAMEORIGIN"), middleware.LoginRequired(h.cfg.LoginURL)}
	upload = append(upload, uploadGuards...)
	upload = append(upload, h.EditAttachment)
	r.Any("/attachments/upload/:locale/*slug", upload...)

	r.GET("/api/attachments/:attachment_id", h.GetAttachment)
	r.GET("/api/documents/:locale/attachments", h.ListDocumentAttachments)
}

// RawFile streams the current revision's file on the attachments host and
// redirects everywhere else. The filename segment is ignored.
func (h *AttachmentHandler) RawFile(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := strconv.ParseInt(c.Param("attachment_id"), 10, 64)
	if err != nil {
		h.notFound(c)
		return
	}
	a, rev, err := h.attachments.Current(ctx, id)
	if err != nil {
		h.lookupFailed(c, err)
		return
	}

	if h.classifier.Classify(c.Request) == trust.Trusted {
		metrics.FilesServed.WithLabelValues("redirect").Inc()
		c.Redirect(http.StatusMovedPermanently, h.urls.FileURL(a.ID, rev.Filename))
		return
	}

	f, err := h.attachments.Open(ctx, rev)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.Warnf("raw file: attachment %d revision %d has no stored file", a.ID, rev.ID)
			h.notFound(c)
			return
		}
		logger.Errorf("raw file: %v", err)
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	defer f.Close()

	size := int64(-1)
	if n, err := f.Size(); err == nil {
		size = n
	} else {
		logger.Debugf("raw file: size of %s unavailable: %v", rev.StorageKey, err)
	}
	contentType := rev.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	metrics.FilesServed.WithLabelValues("stream").Inc()
	c.DataFromReader(http.StatusOK, size, contentType, f, map[string]string{
		"Cache-Control":   "public, max-age=900",
		"Last-Modified":   rev.Created.UTC().Format(http.TimeFormat),
		"X-Frame-Options": "ALLOW-FROM " + h.cfg.Domain,
	})
}

// MindtouchFileRedirect sends legacy MindTouch file URLs to the canonical
// file URL.
func (h *AttachmentHandler) MindtouchFileRedirect(c *gin.Context) {
	legacyID, err := strconv.ParseInt(c.Param("file_id"), 10, 64)
	if err != nil {
		h.notFound(c)
		return
	}
	a, rev, err := h.attachments.CurrentByMindtouchID(c.Request.Context(), legacyID)
	if err != nil {
		h.lookupFailed(c, err)
		return
	}
	metrics.FilesServed.WithLabelValues("legacy_redirect").Inc()
	c.Redirect(http.StatusMovedPermanently, h.urls.FileURL(a.ID, rev.Filename))
}

type editAttachmentPage struct {
	Form     *attachment.RevisionForm
	Document *document.Document
	Hint     string
}

// EditAttachment accepts the upload form for a document. GET and other
// non-POST requests go back to the document editor.
func (h *AttachmentHandler) EditAttachment(c *gin.Context) {
	ctx := c.Request.Context()
	doc, err := h.documents.GetByPath(ctx, c.Param("locale"), c.Param("slug"))
	if err != nil {
		if errors.Is(err, docsvc.ErrNotFound) {
			c.String(http.StatusNotFound, "document not found")
			return
		}
		logger.Errorf("edit attachment: document lookup: %v", err)
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	if c.Request.Method != http.MethodPost {
		c.Redirect(http.StatusFound, doc.EditURL())
		return
	}

	user := middleware.CurrentUser(c)
	if !h.canAdd(user) {
		metrics.Uploads.WithLabelValues("forbidden").Inc()
		c.String(http.StatusForbidden, "permission denied")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.form.MaxUploadSize+formOverhead)
	form := attachment.BindRevisionForm(c.Request, h.form)
	if !form.Valid() {
		metrics.Uploads.WithLabelValues("invalid").Inc()
		c.Render(http.StatusOK, render.HTML{
			Template: h.tmpl,
			Name:     "edit_attachment.html",
			Data:     editAttachmentPage{Form: form, Document: doc, Hint: h.form.ExtensionHint()},
		})
		return
	}

	body, err := form.Open()
	if err != nil {
		logger.Errorf("edit attachment: open upload: %v", err)
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	defer body.Close()

	a, err := h.attachments.CreateFromUpload(ctx, doc.ID, userRef(user), attsvc.Upload{Revision: form.Revision(), Body: body})
	if err != nil {
		metrics.Uploads.WithLabelValues("error").Inc()
		logger.Errorf("edit attachment: %s/%s: %v", doc.Locale, doc.Slug, err)
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	metrics.Uploads.WithLabelValues("created").Inc()
	metrics.UploadedBytes.Add(float64(form.Size))
	logger.Infof("attachment %d uploaded to %s/%s by %s", a.ID, doc.Locale, doc.Slug, userRef(user))
	c.Redirect(http.StatusFound, doc.EditURL())
}

func (h *AttachmentHandler) notFound(c *gin.Context) {
	metrics.FilesServed.WithLabelValues("not_found").Inc()
	c.String(http.StatusNotFound, "not found")
}

func (h *AttachmentHandler) lookupFailed(c *gin.Context, err error) {
	if errors.Is(err, attsvc.ErrNotFound) {
		h.notFound(c)
		return
	}
	logger.Errorf("attachment lookup: %v", err)
	c.String(http.StatusInternalServerError, "internal server error")
}

// userRef identifies a user in attachment records: the stored id when the
// user is persisted, the token subject otherwise.
func userRef(u *models.User) string {
	if u == nil {
		return ""
	}
	if u.ID != "" {
		return u.ID
	}
	return u.Sub
}
