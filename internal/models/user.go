package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the access role of a principal.
type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleAuthority Role = "authority"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// ParseRole returns the role named by s and whether it is known.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleCitizen, RoleAuthority, RoleAdmin, RoleModerator:
		return r, true
	}
	return "", false
}

// User is a principal of the platform: a citizen filing cases or an official handling them.
type User struct {
	ID                 string    `gorm:"primaryKey" json:"id"` // UUID
	Username           string    `gorm:"uniqueIndex;not null" json:"username"`
	FullName           string    `json:"full_name"`
	Role               Role      `gorm:"type:text;not null;default:citizen;index" json:"role"`
	Department         string    `gorm:"type:text;index" json:"department,omitempty"` // department tag, authorities only
	JurisdictionRegion string    `json:"jurisdiction_region,omitempty"`
	IsActive           bool      `gorm:"not null;default:true" json:"is_active"`
	PreferredLanguage  string    `gorm:"type:varchar(2);not null;default:fr" json:"preferred_language"`
	CreatedAt          time.Time `json:"created_at"`
}

// BeforeCreate generates a UUID for the user if ID is not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// IsOfficial reports whether the principal sits on the official side of every case.
// A nil principal is never official.
func (u *User) IsOfficial() bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case RoleAuthority, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// Owns reports whether the principal filed the case. Anonymous cases are owned by nobody.
func (u *User) Owns(c *Case) bool {
	if u == nil || c == nil || c.OwnerID == nil {
		return false
	}
	return *c.OwnerID == u.ID
}

// CanManageStatus reports whether the principal may move a case through the workflow.
func (u *User) CanManageStatus() bool {
	return u.IsOfficial()
}
