// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package kratos

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	ory "github.com/ory/client-go"

	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/tracing"
)

var ErrIdentityExists = errors.New("identity already exists")

const defaultSchemaID = "default"

type ClientInterface interface {
	GetIdentityIDByEmail(ctx context.Context, email string) (string, error)
	CreateIdentity(ctx context.Context, email, password string) (string, error)
	DeleteIdentity(ctx context.Context, id string) error
}

type Client struct {
	client  *ory.APIClient
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewClient(kratosAdminURL string, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Client {
	conf := ory.NewConfiguration()
	conf.Servers = ory.ServerConfigurations{{URL: kratosAdminURL}}
	return &Client{
		client:  ory.NewAPIClient(conf),
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (c *Client) GetIdentityIDByEmail(ctx context.Context, email string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "kratos.GetIdentityIDByEmail")
	defer span.End()

	// NOTE: we are setting an empty page token because of https://github.com/ory/sdk/issues/461
	ids, r, err := c.client.IdentityAPI.ListIdentities(ctx).CredentialsIdentifier(email).PageToken("").Execute()
	c.reportAvailability(r, err)
	if err != nil {
		if r != nil && r.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to list identities: %w", err)
	}

	if len(ids) == 0 {
		return "", nil
	}

	return ids[0].Id, nil
}

// CreateIdentity registers a principal with a pre-verified email address.
// An empty password leaves the principal without password credentials, it
// then has to go through recovery to set one.
func (c *Client) CreateIdentity(ctx context.Context, email, password string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "kratos.CreateIdentity")
	defer span.End()

	body := ory.CreateIdentityBody{
		SchemaId: defaultSchemaID,
		Traits: map[string]interface{}{
			"email": email,
		},
		VerifiableAddresses: []ory.VerifiableIdentityAddress{
			{
				Value:    email,
				Verified: true,
				Via:      "email",
				Status:   "completed",
			},
		},
	}

	if password != "" {
		body.Credentials = &ory.IdentityWithCredentials{
			Password: &ory.IdentityWithCredentialsPassword{
				Config: &ory.IdentityWithCredentialsPasswordConfig{
					Password: &password,
				},
			},
		}
	}

	identity, r, err := c.client.IdentityAPI.CreateIdentity(ctx).CreateIdentityBody(body).Execute()
	c.reportAvailability(r, err)
	if err != nil {
		if r != nil && r.StatusCode == http.StatusConflict {
			return "", ErrIdentityExists
		}
		return "", fmt.Errorf("failed to create identity: %w", err)
	}

	return identity.Id, nil
}

// DeleteIdentity is idempotent, a missing identity is not an error.
func (c *Client) DeleteIdentity(ctx context.Context, id string) error {
	ctx, span := c.tracer.Start(ctx, "kratos.DeleteIdentity")
	defer span.End()

	r, err := c.client.IdentityAPI.DeleteIdentity(ctx, id).Execute()
	c.reportAvailability(r, err)
	if err != nil {
		if r != nil && r.StatusCode == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete identity: %w", err)
	}

	return nil
}

func (c *Client) reportAvailability(r *http.Response, err error) {
	available := 1.0
	if err != nil && (r == nil || r.StatusCode >= http.StatusInternalServerError) {
		available = 0
	}

	if mErr := c.monitor.SetDependencyAvailability(map[string]string{"component": "kratos"}, available); mErr != nil {
		c.logger.Debugf("failed to report kratos availability: %v", mErr)
	}
}
