// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package admin implements user administration: permission lookup for the
// caller, the user listing, and permission updates with the role gating
// and coupling rules applied before anything reaches the wire.
package admin

import (
	"context"
	"fmt"

	"github.com/zatgpt/zatgpt-tui/internal/api"
	"github.com/zatgpt/zatgpt-tui/internal/model"
)

// Permission is the caller's own admin standing as reported by
// GET /api/check-admin-permission/. Non-admins get IsAdmin false and an
// empty role; screens must treat that as "hide the admin surface", not as
// an error.
type Permission struct {
	IsAdmin bool            `json:"is_admin"`
	Role    model.AdminRole `json:"role"`
}

// Service performs admin operations over the shared gateway client.
type Service struct {
	client *api.Client
}

// NewService creates an admin service.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// CheckPermission fetches the caller's admin standing. A 403 here means
// the caller is not an admin at all and is normalized to a zero Permission
// rather than an error, so the route guard can make a plain yes/no call.
func (s *Service) CheckPermission(ctx context.Context) (Permission, error) {
	var perm Permission
	err := s.client.Get(ctx, api.PathCheckAdmin, &perm)
	if err != nil {
		if apiErr := api.AsAPIError(err); apiErr != nil && apiErr.Status == 403 {
			return Permission{}, nil
		}
		return Permission{}, err
	}
	return perm, nil
}

// ListUsers fetches every account. Records are normalized on arrival so a
// backend row that is superuser-but-not-staff cannot leak an inconsistent
// state into the table.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.client.Get(ctx, api.PathAllUsers, &users); err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Normalize()
	}
	return users, nil
}

type updateRequest struct {
	UUID        string `json:"uuid"`
	IsActive    bool   `json:"is_active"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// UpdatePermissions submits the full permission triple for one user. The
// backend replaces all three flags, so the caller must send the complete
// desired state, not a delta.
func (s *Service) UpdatePermissions(ctx context.Context, user model.User) error {
	if user.UUID == "" {
		return fmt.Errorf("%w: user has no uuid", api.ErrValidation)
	}
	return s.client.Post(ctx, api.PathUpdateUserPerms, updateRequest{
		UUID:        user.UUID,
		IsActive:    user.IsActive,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
	}, nil)
}

// Toggle flips one permission field on a user, if the caller's role allows
// it, and submits the result. A gated toggle is a silent no-op returning
// the unchanged user, matching how the table renders those switches as
// inert rather than failing.
func (s *Service) Toggle(ctx context.Context, role model.AdminRole, user model.User, field string) (model.User, error) {
	if !role.CanEdit(field) {
		return user, nil
	}
	updated := user.WithPermission(field, !fieldValue(user, field))
	if err := s.UpdatePermissions(ctx, updated); err != nil {
		return user, err
	}
	return updated, nil
}

func fieldValue(u model.User, field string) bool {
	switch field {
	case "is_active":
		return u.IsActive
	case "is_staff":
		return u.IsStaff
	case "is_superuser":
		return u.IsSuperuser
	}
	return false
}

// =============================================================================
// CLIENT-SIDE SEARCH AND PAGINATION
// =============================================================================

// FilterUsers returns the users matching a case-folded substring search
// over username and email. The full list stays in memory; the backend has
// no search parameter.
func FilterUsers(users []model.User, term string) []model.User {
	if term == "" {
		return users
	}
	filtered := make([]model.User, 0, len(users))
	for _, u := range users {
		if u.MatchesSearch(term) {
			filtered = append(filtered, u)
		}
	}
	return filtered
}

// PageCount returns the number of pages needed for n users at perPage per
// page. An empty list still has one (empty) page so the pager never shows
// "page 1 of 0".
func PageCount(n, perPage int) int {
	if perPage <= 0 {
		perPage = 1
	}
	if n == 0 {
		return 1
	}
	return (n + perPage - 1) / perPage
}

// Page returns the users on the given zero-based page, clamping the page
// index into range. Shrinking search results while sitting on a late page
// therefore lands on the last valid page instead of an empty one.
func Page(users []model.User, page, perPage int) ([]model.User, int) {
	if perPage <= 0 {
		perPage = 1
	}
	last := PageCount(len(users), perPage) - 1
	if page > last {
		page = last
	}
	if page < 0 {
		page = 0
	}
	start := page * perPage
	end := start + perPage
	if start > len(users) {
		start = len(users)
	}
	if end > len(users) {
		end = len(users)
	}
	return users[start:end], page
}
