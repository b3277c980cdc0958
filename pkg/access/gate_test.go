// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"testing"
)

func subsets(roles []Role) [][]Role {
	out := make([][]Role, 0, 1<<len(roles))
	for mask := 0; mask < 1<<len(roles); mask++ {
		set := []Role{}
		for i, r := range roles {
			if mask&(1<<i) != 0 {
				set = append(set, r)
			}
		}
		out = append(out, set)
	}
	return out
}

func TestGate_EvaluateIntersection(t *testing.T) {
	universe := []Role{RoleSuperAdmin, RoleHRManager, RoleAgent, RoleSalesManager, RoleEmployee}
	g := NewGate()

	for _, held := range subsets(universe) {
		for _, allow := range subsets(universe) {
			intersects := false
			for _, h := range held {
				for _, a := range allow {
					if h == a {
						intersects = true
					}
				}
			}

			d := g.Evaluate(resolutionWith(held...), allow...)

			if d.Permitted() != intersects {
				t.Fatalf("held %v allow %v: expected permitted=%v, got %v", held, allow, intersects, d.State)
			}
			if !intersects && (!d.Forbidden() || d.Fallback != DefaultFallback) {
				t.Fatalf("held %v allow %v: expected forbidden with fallback, got %+v", held, allow, d)
			}
		}
	}
}

func TestGate_Evaluate(t *testing.T) {
	tests := []struct {
		name     string
		gate     *Gate
		res      *Resolution
		allow    []Role
		expected DecisionState
		fallback string
	}{
		{
			name:     "unresolved caller is pending",
			gate:     NewGate(),
			res:      nil,
			allow:    ProvisionUserRoles,
			expected: DecisionPending,
		},
		{
			name:     "unprovisioned caller is forbidden",
			gate:     NewGate(),
			res:      emptyResolution(),
			allow:    ProvisionUserRoles,
			expected: DecisionForbidden,
			fallback: DefaultFallback,
		},
		{
			name:     "empty allow-list is forbidden",
			gate:     NewGate(),
			res:      resolutionWith(RoleSuperAdmin),
			allow:    nil,
			expected: DecisionForbidden,
			fallback: DefaultFallback,
		},
		{
			name:     "custom fallback",
			gate:     NewGate(WithFallback("ask HR")),
			res:      resolutionWith(RoleAgent),
			allow:    ProvisionUserRoles,
			expected: DecisionForbidden,
			fallback: "ask HR",
		},
		{
			name:     "hr manager provisions",
			gate:     NewGate(),
			res:      resolutionWith(RoleAgent, RoleHRManager),
			allow:    ProvisionUserRoles,
			expected: DecisionPermitted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.gate.Evaluate(tt.res, tt.allow...)

			if d.State != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, d.State)
			}
			if d.Fallback != tt.fallback {
				t.Errorf("expected fallback %q, got %q", tt.fallback, d.Fallback)
			}
			if d.Pending() && (d.Permitted() || d.Forbidden()) {
				t.Error("pending must be neither permitted nor forbidden")
			}
		})
	}
}
