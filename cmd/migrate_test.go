// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"testing"
)

func TestMigrateArgs(t *testing.T) {
	tests := []struct {
		args        []string
		expectedErr bool
	}{
		{nil, false},
		{[]string{"up"}, false},
		{[]string{"down", "3"}, false},
		{[]string{"up", "3"}, true},
		{[]string{"down", "-1"}, true},
		{[]string{"sideways"}, true},
		{[]string{"down", "1", "2"}, true},
	}

	for _, tt := range tests {
		t.Run(fmtArgs(tt.args), func(t *testing.T) {
			err := migrateArgs(migrateCmd, tt.args)
			if (err != nil) != tt.expectedErr {
				t.Errorf("expected error %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func fmtArgs(args []string) string {
	if len(args) == 0 {
		return "none"
	}

	name := args[0]
	for _, a := range args[1:] {
		name += "_" + a
	}
	return name
}
