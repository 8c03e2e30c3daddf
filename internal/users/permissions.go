package users

import "github.com/gogotex/gogotex/backend/go-attachments/internal/models"

// AllowAddAttachmentBy reports whether the user may upload attachments.
// Staff and superusers always may; otherwise everyone may unless explicitly
// flagged with models.PermDisallowAddAttachment.
func AllowAddAttachmentBy(u *models.User) bool {
	if u == nil {
		return false
	}
	if u.IsSuperuser || u.IsStaff {
		return true
	}
	return !u.HasPerm(models.PermDisallowAddAttachment)
}
