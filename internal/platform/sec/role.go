// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted access: course publishing and platform administration
	RoleAdmin UserRole = "admin"

	// Can author and manage their own course material
	RoleInstructor UserRole = "instructor"

	// Default role for standard registered users
	RoleUser UserRole = "user"
)

// # Role Checks

// In reports whether the role is a member of the allowed set.
//
// Role-restricted operations carry an explicit allowed-role set rather than
// a hierarchy, so granting instructors an admin-only operation is a
// deliberate route change, not a level bump.
func (r UserRole) In(allowed ...UserRole) bool {
	for _, candidate := range allowed {
		if r == candidate {
			return true
		}
	}
	return false
}
