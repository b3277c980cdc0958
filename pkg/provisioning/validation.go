// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioning

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/canonical/erp-access-service/pkg/access"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// the error is only returned for an empty tag or a nil func
	_ = v.RegisterValidation("known_role", func(fl validator.FieldLevel) bool {
		return access.Role(fl.Field().String()).Valid()
	})

	return v
}

// normalize trims and lower-cases the email so uniqueness is case insensitive.
func (r *Request) normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FullName = strings.TrimSpace(r.FullName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Role = strings.TrimSpace(r.Role)
	r.OrganizationID = strings.TrimSpace(r.OrganizationID)
	r.ManagerID = strings.TrimSpace(r.ManagerID)
}
