// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"encoding/json"
	"fmt"

	fga "github.com/openfga/go-sdk"
	"github.com/openfga/language/pkg/go/transformer"
)

var models = map[string]string{
	"v0": `model
  schema 1.1

type user

type organization
  relations
    define member: [profile]

type profile
  relations
    define principal: [user]
    define manager: [profile]

type role
  relations
    define assignee: [profile]
    define holder: principal from assignee
`,
}

type AuthorizationModelProvider struct {
	apiVersion string
}

func (a *AuthorizationModelProvider) GetDSL() string {
	return models[a.apiVersion]
}

// GetModel compiles the DSL for the provider's api version.
func (a *AuthorizationModelProvider) GetModel() *fga.AuthorizationModel {
	dsl, ok := models[a.apiVersion]
	if !ok {
		panic(fmt.Sprintf("unknown authorization model version %s", a.apiVersion))
	}

	raw, err := transformer.TransformDSLToJSON(dsl)
	if err != nil {
		panic(fmt.Sprintf("invalid authorization model %s: %s", a.apiVersion, err))
	}

	model := new(fga.AuthorizationModel)
	if err := json.Unmarshal([]byte(raw), model); err != nil {
		panic(fmt.Sprintf("failed to decode authorization model %s: %s", a.apiVersion, err))
	}

	return model
}

func NewAuthorizationModelProvider(apiVersion string) *AuthorizationModelProvider {
	a := new(AuthorizationModelProvider)
	a.apiVersion = apiVersion

	return a
}
