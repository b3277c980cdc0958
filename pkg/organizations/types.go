// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package organizations

type Request struct {
	Name string `json:"name" validate:"required,max=128"`
}

type ListRequest struct {
	Page int64 `validate:"gte=0"`
	Size int64 `validate:"gte=0,lte=100"`
}
