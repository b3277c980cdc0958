// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"net/http"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/canonical/erp-access-service/internal/types"
	"github.com/canonical/erp-access-service/pkg/organizations"
)

var (
	organizationPage int64
	organizationSize int64
)

var organizationsCmd = &cobra.Command{
	Use:     "organizations",
	Aliases: []string{"orgs"},
	Short:   "Manage organizations",
}

var createOrganizationCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		org := new(types.Organization)
		if _, err := getClient(cmd.Context()).do(cmd.Context(), http.MethodPost, "/api/v0/organizations", &organizations.Request{Name: args[0]}, org); err != nil {
			return fmt.Errorf("failed to create organization: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Organization created: %s (ID: %s)\n", org.Name, org.ID)
		return nil
	},
}

var renameOrganizationCmd = &cobra.Command{
	Use:   "rename [id] [name]",
	Short: "Rename an organization",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		org := new(types.Organization)
		path := "/api/v0/organizations/" + url.PathEscape(args[0])
		if _, err := getClient(cmd.Context()).do(cmd.Context(), http.MethodPatch, path, &organizations.Request{Name: args[1]}, org); err != nil {
			return fmt.Errorf("failed to rename organization: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Organization renamed: %s (ID: %s)\n", org.Name, org.ID)
		return nil
	},
}

var deleteOrganizationCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an organization with all of its profiles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/api/v0/organizations/" + url.PathEscape(args[0])
		if _, err := getClient(cmd.Context()).do(cmd.Context(), http.MethodDelete, path, nil, nil); err != nil {
			return fmt.Errorf("failed to delete organization: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Organization deleted: %s\n", args[0])
		return nil
	},
}

var listOrganizationsCmd = &cobra.Command{
	Use:   "list",
	Short: "List the organizations visible to the caller",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orgs := make([]*types.Organization, 0)
		if _, err := getClient(cmd.Context()).do(cmd.Context(), http.MethodGet, "/api/v0/organizations?"+pageQuery(organizationPage, organizationSize), nil, &orgs); err != nil {
			return fmt.Errorf("failed to list organizations: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCREATED_AT")
		for _, o := range orgs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", o.ID, o.Name, o.CreatedAt)
		}
		return w.Flush()
	},
}

var listOrganizationMembersCmd = &cobra.Command{
	Use:   "members [id]",
	Short: "List the profiles of an organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles := make([]*types.Profile, 0)
		path := fmt.Sprintf("/api/v0/organizations/%s/members?%s", url.PathEscape(args[0]), pageQuery(organizationPage, organizationSize))
		if _, err := getClient(cmd.Context()).do(cmd.Context(), http.MethodGet, path, nil, &profiles); err != nil {
			return fmt.Errorf("failed to list organization members: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "PROFILE_ID\tEMAIL\tFULL_NAME\tLINKED\tACTIVE")
		for _, p := range profiles {
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%v\n", p.ID, p.Email, p.FullName, p.PrincipalID != nil, p.IsActive)
		}
		return w.Flush()
	},
}

func pageQuery(page, size int64) string {
	query := url.Values{}
	query.Set("page", fmt.Sprint(page))
	query.Set("size", fmt.Sprint(size))
	return query.Encode()
}

func init() {
	rootCmd.AddCommand(organizationsCmd)
	organizationsCmd.AddCommand(createOrganizationCmd)
	organizationsCmd.AddCommand(renameOrganizationCmd)
	organizationsCmd.AddCommand(deleteOrganizationCmd)
	organizationsCmd.AddCommand(listOrganizationsCmd)
	organizationsCmd.AddCommand(listOrganizationMembersCmd)

	organizationsCmd.PersistentFlags().Int64Var(&organizationPage, "page", 0, "Page number")
	organizationsCmd.PersistentFlags().Int64Var(&organizationSize, "size", 20, "Page size")
}
