// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package openfga

import (
	"testing"

	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/tracing"
)

func TestNewConfig(t *testing.T) {
	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	tests := []struct {
		name        string
		storeID     string
		modelID     string
		expectPanic bool
	}{
		{name: "complete", storeID: "store", modelID: "model"},
		{name: "missing store", storeID: "", modelID: "model", expectPanic: true},
		{name: "missing model", storeID: "store", modelID: "", expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if tt.expectPanic && r == nil {
					t.Error("expected panic")
				}
				if !tt.expectPanic && r != nil {
					t.Errorf("unexpected panic: %v", r)
				}
			}()

			cfg := NewConfig("http", "openfga:8080", tt.storeID, "token", tt.modelID, false, tracer, monitor, logger)

			if cfg.ApiURL() != "http://openfga:8080" {
				t.Errorf("unexpected api url %s", cfg.ApiURL())
			}
		})
	}
}

func TestTuple_Values(t *testing.T) {
	tuple := NewTuple("profile:1", "assignee", "role:org-1/agent")
	key := tuple.Values()

	if key.User != "profile:1" || key.Relation != "assignee" || key.Object != "role:org-1/agent" {
		t.Errorf("unexpected tuple key %+v", key)
	}
}
