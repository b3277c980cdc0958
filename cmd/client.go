// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/canonical/erp-access-service/pkg/authentication"
)

// apiResponse is the response envelope with the payload left undecoded.
type apiResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Outcome string          `json:"outcome,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Partial reports a 207, the payload describes what is missing.
func (r *apiResponse) Partial() bool {
	return r.Status == http.StatusMultiStatus
}

type apiClient struct {
	endpoint string
	userID   string

	client *http.Client
}

// do sends in as JSON and decodes the envelope, out receives the data.
// Any status >= 400 is returned as an error.
func (c *apiClient) do(ctx context.Context, method, path string, in, out any) (*apiResponse, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != "" {
		req.Header.Set(authentication.IdentityHeader, c.userID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	envelope := new(apiResponse)
	if err := json.NewDecoder(resp.Body).Decode(envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	envelope.Status = resp.StatusCode

	if resp.StatusCode >= http.StatusBadRequest {
		return envelope, fmt.Errorf("api error (status %d, outcome %q): %s", resp.StatusCode, envelope.Outcome, envelope.Message)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return envelope, fmt.Errorf("failed to unmarshal response data: %w", err)
		}
	}

	return envelope, nil
}

func newAPIClient(ctx context.Context, endpoint, userID, token string) *apiClient {
	if !strings.HasPrefix(endpoint, "http") {
		endpoint = "http://" + endpoint
	}

	client := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   30 * time.Second,
	}

	if token != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	}

	return &apiClient{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		userID:   userID,
		client:   client,
	}
}

// getClient builds a client from the persistent flags.
func getClient(ctx context.Context) *apiClient {
	return newAPIClient(ctx, httpEndpoint, userID, accessToken)
}
