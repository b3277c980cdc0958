// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

// KratosIdentity is the registration hook payload, the hook body template
// flattens the identity traits.
type KratosIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// TokenHookResponse carries the claims Hydra merges into the issued tokens.
type TokenHookResponse struct {
	Session struct {
		IDToken     map[string]interface{} `json:"id_token,omitempty"`
		AccessToken map[string]interface{} `json:"access_token,omitempty"`
	} `json:"session"`
}

const (
	RolesClaim         = "roles"
	OrganizationsClaim = "organizations"
)
