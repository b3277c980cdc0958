// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package openfga

import (
	"context"
	"fmt"
	"reflect"

	fga "github.com/openfga/go-sdk"
	"github.com/openfga/go-sdk/client"
	"github.com/openfga/go-sdk/credentials"

	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/tracing"
)

type Client struct {
	client *client.OpenFgaClient

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (c *Client) ReadModel(ctx context.Context) (*fga.AuthorizationModel, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.ReadModel")
	defer span.End()

	authModel, err := c.client.ReadAuthorizationModel(ctx).Execute()
	c.reportAvailability(err)

	if err != nil {
		c.logger.Errorf("issues performing read model operation: %s", err)
		return nil, err
	}

	return authModel.AuthorizationModel, nil
}

// CompareModel reports whether the stored model matches the given one, ids excluded.
func (c *Client) CompareModel(ctx context.Context, model fga.AuthorizationModel) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.CompareModel")
	defer span.End()

	authModel, err := c.ReadModel(ctx)
	if err != nil {
		return false, err
	}

	if authModel == nil {
		return false, nil
	}

	if authModel.SchemaVersion != model.SchemaVersion {
		c.logger.Errorf("invalid authorization model schema version")
		return false, nil
	}

	if !reflect.DeepEqual(authModel.TypeDefinitions, model.TypeDefinitions) {
		c.logger.Errorf("invalid authorization model type definitions")
		return false, nil
	}

	return true, nil
}

func (c *Client) WriteModel(ctx context.Context, model *client.ClientWriteAuthorizationModelRequest) (string, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.WriteModel")
	defer span.End()

	r, err := c.client.WriteAuthorizationModel(ctx).Body(*model).Execute()
	c.reportAvailability(err)

	if err != nil {
		return "", fmt.Errorf("failed to write authorization model: %w", err)
	}

	return r.GetAuthorizationModelId(), nil
}

func (c *Client) CreateStore(ctx context.Context, storeName string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.CreateStore")
	defer span.End()

	r, err := c.client.CreateStore(ctx).Body(client.ClientCreateStoreRequest{Name: storeName}).Execute()
	c.reportAvailability(err)

	if err != nil {
		return "", fmt.Errorf("failed to create store: %w", err)
	}

	return r.GetId(), nil
}

func (c *Client) SetStoreID(ctx context.Context, storeID string) {
	if err := c.client.SetStoreId(storeID); err != nil {
		c.logger.Errorf("failed to set store id: %s", err)
	}
}

// ReadTuples pages through the stored tuples matching the non-empty filters.
func (c *Client) ReadTuples(ctx context.Context, user, relation, object, continuationToken string) (*client.ClientReadResponse, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.ReadTuples")
	defer span.End()

	body := client.ClientReadRequest{}
	if user != "" {
		body.User = fga.PtrString(user)
	}
	if relation != "" {
		body.Relation = fga.PtrString(relation)
	}
	if object != "" {
		body.Object = fga.PtrString(object)
	}

	options := client.ClientReadOptions{}
	if continuationToken != "" {
		options.ContinuationToken = fga.PtrString(continuationToken)
	}

	r, err := c.client.Read(ctx).Body(body).Options(options).Execute()
	c.reportAvailability(err)

	if err != nil {
		c.logger.Errorf("issues performing read operation: %s", err)
		return nil, err
	}

	return r, nil
}

func (c *Client) WriteTuple(ctx context.Context, user, relation, object string) error {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.WriteTuple")
	defer span.End()

	return c.WriteTuples(ctx, *NewTuple(user, relation, object))
}

func (c *Client) WriteTuples(ctx context.Context, tuples ...Tuple) error {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.WriteTuples")
	defer span.End()

	if len(tuples) == 0 {
		return nil
	}

	keys := make(client.ClientWriteTuplesBody, 0, len(tuples))
	for _, t := range tuples {
		keys = append(keys, t.Values())
	}

	_, err := c.client.WriteTuples(ctx).Body(keys).Execute()
	c.reportAvailability(err)

	if err != nil {
		c.logger.Errorf("issues performing write operation: %s", err)
		return err
	}

	return nil
}

func (c *Client) DeleteTuple(ctx context.Context, user, relation, object string) error {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.DeleteTuple")
	defer span.End()

	return c.DeleteTuples(ctx, *NewTuple(user, relation, object))
}

func (c *Client) DeleteTuples(ctx context.Context, tuples ...Tuple) error {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.DeleteTuples")
	defer span.End()

	if len(tuples) == 0 {
		return nil
	}

	keys := make(client.ClientDeleteTuplesBody, 0, len(tuples))
	for _, t := range tuples {
		keys = append(keys, t.withoutCondition())
	}

	_, err := c.client.DeleteTuples(ctx).Body(keys).Execute()
	c.reportAvailability(err)

	if err != nil {
		c.logger.Errorf("issues performing delete operation: %s", err)
		return err
	}

	return nil
}

func (c *Client) reportAvailability(err error) {
	available := 1.0
	if err != nil {
		available = 0
	}

	if mErr := c.monitor.SetDependencyAvailability(map[string]string{"component": "openfga"}, available); mErr != nil {
		c.logger.Debugf("failed to report openfga availability: %v", mErr)
	}
}

func NewClient(cfg *Config) *Client {
	c := new(Client)

	if cfg == nil {
		panic("OpenFGA config missing")
	}

	fgaConfig := &client.ClientConfiguration{
		ApiUrl:               cfg.ApiURL(),
		StoreId:              cfg.StoreID,
		AuthorizationModelId: cfg.AuthModelID,
		Debug:                cfg.Debug,
		Credentials: &credentials.Credentials{
			Method: credentials.CredentialsMethodApiToken,
			Config: &credentials.Config{
				ApiToken: cfg.ApiToken,
			},
		},
	}

	fgaClient, err := client.NewSdkClient(fgaConfig)
	if err != nil {
		panic(fmt.Sprintf("issues setting up OpenFGA client %s", err))
	}

	c.client = fgaClient
	c.tracer = cfg.Tracer
	c.monitor = cfg.Monitor
	c.logger = cfg.Logger

	return c
}
