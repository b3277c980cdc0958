// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

// Config selects between bearer token verification and the identity proxy
// header. AllowedSubjects and RequiredScope only apply to tokens.
type Config struct {
	Enabled         bool
	Issuer          string
	JWKSURL         string
	AllowedSubjects []string
	RequiredScope   string
}
