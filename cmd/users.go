// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/canonical/erp-access-service/pkg/access"
	"github.com/canonical/erp-access-service/pkg/provisioning"
)

var provisionRequest provisioning.Request

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Provision users and manage their roles",
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the roles resolved for the authenticated principal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		me := new(access.Me)
		if _, err := getClient(cmd.Context()).do(cmd.Context(), http.MethodGet, "/api/v0/me", nil, me); err != nil {
			return fmt.Errorf("failed to resolve roles: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "PROVISIONED\t%v\n", me.Provisioned)
		fmt.Fprintf(w, "HIGHEST_ROLE\t%s\n", me.HighestRole)
		if me.Resolution != nil {
			fmt.Fprintf(w, "ROLES\t%s\n", strings.Join(me.RoleNames(), ","))
			fmt.Fprintf(w, "ORGANIZATIONS\t%s\n", strings.Join(me.OrganizationIDs(), ","))
		}
		return w.Flush()
	},
}

var provisionUserCmd = &cobra.Command{
	Use:   "provision [email]",
	Short: "Create the login, profile and role of a new user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := provisionRequest
		req.Email = args[0]

		return runProvisioning(cmd, http.MethodPost, "/api/v0/users", &req)
	},
}

var assignRoleCmd = &cobra.Command{
	Use:   "assign-role [profile-id] [role]",
	Short: "Assign a role to a profile, also used to retry a failed assignment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := fmt.Sprintf("/api/v0/users/%s/roles", url.PathEscape(args[0]))
		return runProvisioning(cmd, http.MethodPost, path, map[string]string{"role": args[1]})
	},
}

var revokeRoleCmd = &cobra.Command{
	Use:   "revoke-role [profile-id] [role]",
	Short: "Revoke a role from a profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := fmt.Sprintf("/api/v0/users/%s/roles/%s", url.PathEscape(args[0]), url.PathEscape(args[1]))
		return runProvisioning(cmd, http.MethodDelete, path, nil)
	},
}

// runProvisioning prints the workflow result, partial success included.
func runProvisioning(cmd *cobra.Command, method, path string, in any) error {
	result := new(provisioning.Result)

	resp, err := getClient(cmd.Context()).do(cmd.Context(), method, path, in, result)
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), result, resp.Partial())
	return nil
}

func printResult(out io.Writer, result *provisioning.Result, partial bool) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "OUTCOME\tPRINCIPAL_ID\tPROFILE_ID\tMISSING_STEP")
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", result.Outcome, result.PrincipalID, result.ProfileID, result.MissingStep)
	w.Flush()

	if partial {
		fmt.Fprintf(out, "partial success: retry %s for profile %s\n", result.MissingStep, result.ProfileID)
	}
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(whoamiCmd)
	usersCmd.AddCommand(provisionUserCmd)
	usersCmd.AddCommand(assignRoleCmd)
	usersCmd.AddCommand(revokeRoleCmd)

	provisionUserCmd.Flags().StringVar(&provisionRequest.Role, "role", access.RoleAgent.String(), "Role granted to the new user")
	provisionUserCmd.Flags().StringVar(&provisionRequest.FullName, "full-name", "", "Full name")
	provisionUserCmd.Flags().StringVar(&provisionRequest.Phone, "phone", "", "Phone number")
	provisionUserCmd.Flags().StringVar(&provisionRequest.Password, "password", "", "Initial password, the user sets one on first login if empty")
	provisionUserCmd.Flags().StringVar(&provisionRequest.OrganizationID, "organization-id", "", "Target organization, super admins only")
}
