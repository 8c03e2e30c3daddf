package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/attachment"
	attsvc "github.com/gogotex/gogotex/backend/go-attachments/internal/attachment/service"
	docsvc "github.com/gogotex/gogotex/backend/go-attachments/internal/document/service"
	"github.com/gogotex/gogotex/backend/go-attachments/pkg/logger"
)

type attachmentView struct {
	*attachment.Attachment
	URL       string                 `json:"url"`
	IsImage   bool                   `json:"isImage"`
	Extension string                 `json:"extension,omitempty"`
	Current   *attachment.Revision   `json:"currentRevision"`
	Revisions []*attachment.Revision `json:"revisions,omitempty"`
}

func (h *AttachmentHandler) view(a *attachment.Attachment, rev *attachment.Revision) attachmentView {
	return attachmentView{
		Attachment: a,
		URL:        h.urls.FileURL(a.ID, rev.Filename),
		IsImage:    attachment.IsImage(rev.MimeType),
		Extension:  attachment.GuessExtension(rev.MimeType),
		Current:    rev,
	}
}

// GetAttachment returns an attachment, its current revision and its history.
func (h *AttachmentHandler) GetAttachment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("attachment_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachment id"})
		return
	}
	ctx := c.Request.Context()
	a, rev, err := h.attachments.Current(ctx, id)
	if err != nil {
		if errors.Is(err, attsvc.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		logger.Errorf("api: get attachment %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	v := h.view(a, rev)
	if v.Revisions, err = h.attachments.Revisions(ctx, id); err != nil {
		logger.Errorf("api: list revisions %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, v)
}

// ListDocumentAttachments lists the attachments of the document at
// (locale, ?slug=).
func (h *AttachmentHandler) ListDocumentAttachments(c *gin.Context) {
	slug := c.Query("slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug is required"})
		return
	}
	ctx := c.Request.Context()
	doc, err := h.documents.GetByPath(ctx, c.Param("locale"), slug)
	if err != nil {
		if errors.Is(err, docsvc.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		logger.Errorf("api: document lookup: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	listed, err := h.attachments.ListForDocument(ctx, doc.ID)
	if err != nil {
		logger.Errorf("api: list attachments for %s: %v", doc.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	out := make([]gin.H, 0, len(listed))
	for _, l := range listed {
		out = append(out, gin.H{
			"name":         l.Link.Name,
			"attachedById": l.Link.AttachedByID,
			"isOriginal":   l.Link.IsOriginal,
			"attachment":   h.view(l.Attachment, l.Revision),
		})
	}
	c.JSON(http.StatusOK, gin.H{"document": doc, "attachments": out, "uploadUrl": doc.UploadURL()})
}
