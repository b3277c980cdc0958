// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/canonical/erp-access-service/internal/logging"
)

//go:generate mockgen -build_flags=--mod=mod -package db -destination ./mock_interfaces.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package db -destination ./mock_logger.go -source=../logging/interfaces.go

func TestOffset(t *testing.T) {
	tests := []struct {
		page     int64
		size     uint64
		expected uint64
	}{
		{page: 0, size: 10, expected: 0},
		{page: -3, size: 10, expected: 0},
		{page: 1, size: 10, expected: 0},
		{page: 3, size: 25, expected: 50},
	}

	for _, tt := range tests {
		if got := Offset(tt.page, tt.size); got != tt.expected {
			t.Errorf("Offset(%d, %d): expected %d, got %d", tt.page, tt.size, tt.expected, got)
		}
	}
}

func TestPageSize(t *testing.T) {
	tests := []struct {
		size     int64
		expected uint64
	}{
		{size: 0, expected: defaultPageSize},
		{size: -1, expected: defaultPageSize},
		{size: 20, expected: 20},
	}

	for _, tt := range tests {
		if got := PageSize(tt.size); got != tt.expected {
			t.Errorf("PageSize(%d): expected %d, got %d", tt.size, tt.expected, got)
		}
	}
}

func TestDBClient_WithTx(t *testing.T) {
	d := &DBClient{logger: logging.NewNoopLogger()}

	t.Run("no statement opens no transaction", func(t *testing.T) {
		var inTx bool

		err := d.WithTx(context.Background(), func(ctx context.Context) error {
			inTx = InTx(ctx)
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !inTx {
			t.Error("expected the callback context to carry the transaction")
		}
	})

	t.Run("nested call joins the outer transaction", func(t *testing.T) {
		var outer, inner *lazyTx

		err := d.WithTx(context.Background(), func(ctx context.Context) error {
			outer = lazyTxFromContext(ctx)
			return d.WithTx(ctx, func(ctx context.Context) error {
				inner = lazyTxFromContext(ctx)
				return nil
			})
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if outer == nil || outer != inner {
			t.Error("expected the nested call to reuse the outer transaction")
		}
	})

	t.Run("callback error is returned", func(t *testing.T) {
		boom := errors.New("boom")

		err := d.WithTx(context.Background(), func(context.Context) error {
			return boom
		})
		if !errors.Is(err, boom) {
			t.Errorf("expected %v, got %v", boom, err)
		}
	})

	if InTx(context.Background()) {
		t.Error("expected a bare context outside any transaction")
	}
}

func TestDBClient_StatementBeginFailure(t *testing.T) {
	closed, err := sql.Open("pgx", "postgres://access@localhost/access")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	closed.Close()

	d := &DBClient{db: closed, logger: logging.NewNoopLogger()}

	var execErr, scanErr error
	err = d.WithTx(context.Background(), func(ctx context.Context) error {
		_, execErr = d.Statement(ctx).
			Insert("organizations").
			Columns("id", "name").
			Values("org-1", "Acme").
			ExecContext(ctx)

		var id string
		scanErr = d.Statement(ctx).
			Select("id").
			From("organizations").
			QueryRowContext(ctx).
			Scan(&id)

		return execErr
	})

	for name, e := range map[string]error{"exec": execErr, "scan": scanErr, "tx": err} {
		if e == nil || !strings.Contains(e.Error(), "failed to begin transaction") {
			t.Errorf("expected %s to fail with the begin error, got %v", name, e)
		}
	}
}

func TestAfterCommit(t *testing.T) {
	d := &DBClient{logger: logging.NewNoopLogger()}

	tests := []struct {
		name     string
		fnErr    error
		expected int
	}{
		{name: "runs after commit", expected: 1},
		{name: "dropped on rollback", fnErr: errors.New("boom"), expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0

			_ = d.WithTx(context.Background(), func(ctx context.Context) error {
				AfterCommit(ctx, func() { calls++ })

				if calls != 0 {
					t.Error("expected the hook to wait for the commit")
				}
				return tt.fnErr
			})

			if calls != tt.expected {
				t.Errorf("expected %d calls, got %d", tt.expected, calls)
			}
		})
	}

	t.Run("runs immediately outside a transaction", func(t *testing.T) {
		calls := 0
		AfterCommit(context.Background(), func() { calls++ })

		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})
}
