package models

import "time"

// PermDisallowAddAttachment marks a user who must not upload attachments.
const PermDisallowAddAttachment = "attachments.disallow_add_attachment"

// User represents an application user (mapped from identity provider claims)
type User struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Sub         string    `bson:"sub" json:"sub"` // OIDC subject
	Email       string    `bson:"email" json:"email"`
	Name        string    `bson:"name" json:"name"`
	IsStaff     bool      `bson:"isStaff" json:"isStaff"`
	IsSuperuser bool      `bson:"isSuperuser" json:"isSuperuser"`
	Permissions []string  `bson:"permissions,omitempty" json:"permissions,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasPerm reports whether the user carries the named permission.
func (u *User) HasPerm(perm string) bool {
	if u == nil {
		return false
	}
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
