// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2/clientcredentials"
)

var (
	clientID     string
	clientSecret string
	tokenURL     string
	issuerURL    string
	scopes       []string
	tokenFormat  string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Get an access token for the users and teams commands using the client credentials flow",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		endpoint, err := resolveTokenURL(ctx, tokenURL, issuerURL)
		if err != nil {
			return err
		}

		config := &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     endpoint,
			Scopes:       scopes,
		}

		token, err := config.Token(ctx)
		if err != nil {
			return fmt.Errorf("failed to get token: %w", err)
		}

		if tokenFormat == "json" {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
				"access_token": token.AccessToken,
				"token_type":   token.Type(),
				"expiry":       token.Expiry,
			})
		}

		cmd.Println(token.AccessToken)
		return nil
	},
}

// resolveTokenURL prefers an explicit token URL and falls back to OIDC
// discovery on the issuer.
func resolveTokenURL(ctx context.Context, tokenURL, issuerURL string) (string, error) {
	if tokenURL != "" {
		return tokenURL, nil
	}

	if issuerURL == "" {
		return "", fmt.Errorf("either --token-url or --issuer-url must be provided")
	}

	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return "", fmt.Errorf("failed to discover the issuer: %w", err)
	}

	return provider.Endpoint().TokenURL, nil
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&clientID, "client-id", "", "Client ID")
	tokenCmd.Flags().StringVar(&clientSecret, "client-secret", "", "Client Secret")
	tokenCmd.Flags().StringVar(&tokenURL, "token-url", "", "Token URL")
	tokenCmd.Flags().StringVar(&issuerURL, "issuer-url", "", "Issuer URL (for OIDC discovery)")
	tokenCmd.Flags().StringSliceVar(&scopes, "scopes", []string{}, "Scopes (comma-separated)")
	tokenCmd.Flags().StringVar(&tokenFormat, "format", "text", "Output format (text or json)")

	_ = tokenCmd.MarkFlagRequired("client-id")
	_ = tokenCmd.MarkFlagRequired("client-secret")
}
