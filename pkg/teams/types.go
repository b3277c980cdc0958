// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package teams

// Result reports both halves of a toggle. ProfileUpdated is false when the
// relationships changed but the profile did not, callers re-resolve instead
// of assuming both are in sync.
type Result struct {
	MemberID             string `json:"member_id"`
	Active               bool   `json:"active"`
	RelationshipsUpdated int64  `json:"relationships_updated"`
	ProfileUpdated       bool   `json:"profile_updated"`
}

type ListRequest struct {
	ManagerID string `validate:"omitempty,max=64"`
	Page      int64  `validate:"gte=0"`
	Size      int64  `validate:"gte=0,lte=100"`
}
