// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDebugLogger(t *testing.T) {
	l := NewLogger("DEBUG")
	if !l.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug level to be enabled")
	}
}

func TestInvalidLevel(t *testing.T) {
	l := NewLogger("invalid")
	if l.Desugar().Core().Enabled(zapcore.WarnLevel) {
		t.Error("expected invalid level to fall back to error")
	}
	if !l.Desugar().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected error level to be enabled")
	}
}

func TestSecurityLoggerEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := NewSecurityLogger(zap.New(core))

	s.AuthzFailureInsufficientRoles("user-1", "provisioning.ProvisionUser", []string{"agent"})
	s.PrivilegeGranted("admin-1", "profile-1", "agent")
	s.SystemStartup()

	entries := logs.AllUntimed()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	if entries[0].Level != zapcore.ErrorLevel {
		t.Errorf("expected authz failure to log at error level, got %v", entries[0].Level)
	}

	fields := entries[1].ContextMap()
	if fields["event"] != "authz_admin:admin-1,profile-1,grant:agent" {
		t.Errorf("unexpected event %v", fields["event"])
	}
	if fields["type"] != "security" {
		t.Errorf("expected type security, got %v", fields["type"])
	}
}

func TestNoopLogger(t *testing.T) {
	l := NewNoopLogger()
	l.Security().SystemShutdown()
	l.Infof("nothing %s", "here")
}
