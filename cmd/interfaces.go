// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"

	"github.com/openfga/go-sdk/client"
)

type ModelWriterInterface interface {
	CreateStore(ctx context.Context, storeName string) (string, error)
	SetStoreID(ctx context.Context, storeID string)
	WriteModel(ctx context.Context, model *client.ClientWriteAuthorizationModelRequest) (string, error)
}
