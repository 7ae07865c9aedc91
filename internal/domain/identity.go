package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsAdmin compares case-insensitively; the backend issues "Admin".
func (r Role) IsAdmin() bool {
	return strings.EqualFold(string(r), string(RoleAdmin))
}

type IdentityClaims struct {
	SubjectID   string    `json:"subject_id"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	DisplayName string    `json:"display_name"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// ExpiredAt reports whether the claims are no longer valid at now.
// Claims without an expiry never expire.
func (c IdentityClaims) ExpiredAt(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}
