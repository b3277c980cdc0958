// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package openfga

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/tracing"
)

type Config struct {
	ApiScheme   string `validate:"required"`
	ApiHost     string `validate:"required"`
	StoreID     string `validate:"required"`
	ApiToken    string `validate:"required"`
	AuthModelID string `validate:"required"`
	Debug       bool

	Tracer  tracing.TracingInterface
	Monitor monitoring.MonitorInterface
	Logger  logging.LoggerInterface
}

func (c *Config) ApiURL() string {
	return c.ApiScheme + "://" + c.ApiHost
}

// NewConfig validates the settings needed to serve requests, callers that
// only create stores or models build a Config literal instead.
func NewConfig(apiScheme, apiHost, storeID, apiToken, authModelID string, debug bool, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Config {
	c := new(Config)

	c.ApiScheme = apiScheme
	c.ApiHost = apiHost
	c.StoreID = storeID
	c.ApiToken = apiToken
	c.AuthModelID = authModelID
	c.Debug = debug

	c.Monitor = monitor
	c.Tracer = tracer
	c.Logger = logger

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		panic(fmt.Sprintf("invalid OpenFGA config: %s", err))
	}

	return c
}
