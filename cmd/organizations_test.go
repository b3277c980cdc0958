// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import "testing"

func TestPageQuery(t *testing.T) {
	tests := []struct {
		page, size int64
		expected   string
	}{
		{0, 20, "page=0&size=20"},
		{3, 100, "page=3&size=100"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := pageQuery(tt.page, tt.size); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
