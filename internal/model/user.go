// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"

	"golang.org/x/text/cases"
)

// =============================================================================
// USER
// =============================================================================

// User represents a backend user account as returned by
// GET /api/get-all-users/.
//
// Invariant maintained client-side before any update is submitted:
// a superuser is always staff. See Normalize.
type User struct {
	UUID        string `json:"uuid"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsActive    bool   `json:"is_active"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// AdminRole is the caller's own role as reported by
// GET /api/check-admin-permission/.
type AdminRole string

const (
	RoleStaff     AdminRole = "staff"
	RoleSuperuser AdminRole = "superuser"
)

// CanEdit reports whether a caller with this role may toggle the named
// permission field. Only a superuser may touch is_active and is_superuser;
// staff may toggle is_staff.
func (r AdminRole) CanEdit(field string) bool {
	switch field {
	case "is_staff":
		return r == RoleStaff || r == RoleSuperuser
	case "is_active", "is_superuser":
		return r == RoleSuperuser
	default:
		return false
	}
}

// =============================================================================
// PERMISSION COUPLING
// =============================================================================

// WithPermission returns a copy of the user with the named permission field
// set, applying the coupling rules for every record:
//   - is_superuser -> true also forces is_staff -> true
//   - is_staff -> false also forces is_superuser -> false
//
// These rules mirror the backend's own consistency requirements; applying
// them before submission keeps the optimistic UI state identical to what the
// backend will persist.
func (u User) WithPermission(field string, value bool) User {
	switch field {
	case "is_active":
		u.IsActive = value
	case "is_staff":
		u.IsStaff = value
		if !value {
			u.IsSuperuser = false
		}
	case "is_superuser":
		u.IsSuperuser = value
		if value {
			u.IsStaff = true
		}
	}
	return u
}

// Normalize applies the coupling invariant to a user record in place,
// used as a guard on records arriving from outside the toggle path.
func (u *User) Normalize() {
	if u.IsSuperuser {
		u.IsStaff = true
	}
}

// =============================================================================
// SEARCH
// =============================================================================

// MatchesSearch reports whether the user matches a case-insensitive
// substring search over username or email. An empty term matches everyone.
// Unicode case folding rather than ASCII lowering, so "STRASSE" still finds
// "straße".
func (u User) MatchesSearch(term string) bool {
	if term == "" {
		return true
	}
	folder := cases.Fold()
	term = folder.String(term)
	return strings.Contains(folder.String(u.Username), term) ||
		strings.Contains(folder.String(u.Email), term)
}
