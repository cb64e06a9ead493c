// Package authz holds the capability checks shared by every mutating operation.
package authz

import (
	"github.com/blog-content-api/internal/apperror"
)

// Role is the caller's role as resolved by the identity gate
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Principal is the resolved caller. A nil *Principal is an anonymous caller.
type Principal struct {
	ID      int64 `json:"id"`
	Role    Role  `json:"role"`
	Enabled bool  `json:"enabled"`
}

// IsAdmin reports whether the caller holds the admin role
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// IsAuthenticated reports whether a caller was resolved at all
func (p *Principal) IsAuthenticated() bool {
	return p != nil && p.ID > 0
}

// Capability is the permission an operation requires on a resource
type Capability int

const (
	// OwnerOrAdmin allows the resource owner or any admin
	OwnerOrAdmin Capability = iota
	// AdminOnly allows admins only
	AdminOnly
)

// Allowed is the single predicate behind every gate. Disabled callers are
// never allowed, whatever their role or ownership.
func Allowed(p *Principal, ownerID int64, c Capability) bool {
	if !p.IsAuthenticated() || !p.Enabled {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	return c == OwnerOrAdmin && p.ID == ownerID
}

// Authorize returns a permission failure when Allowed is false
func Authorize(p *Principal, ownerID int64, c Capability) error {
	if Allowed(p, ownerID, c) {
		return nil
	}
	if c == AdminOnly {
		return apperror.Permission("admin role required")
	}
	return apperror.Permission("only the owner or an admin may modify this resource")
}

// RequireActive is checked once at the top of every mutating operation
func RequireActive(p *Principal) error {
	if !p.IsAuthenticated() {
		return apperror.Permission("authentication required")
	}
	if !p.Enabled {
		return apperror.Permission("account is disabled")
	}
	return nil
}

// CanView reports whether p may see non-public content owned by ownerID
func CanView(p *Principal, ownerID int64) bool {
	return Allowed(p, ownerID, OwnerOrAdmin)
}
