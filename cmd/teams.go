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
	"github.com/canonical/erp-access-service/pkg/access"
	"github.com/canonical/erp-access-service/pkg/provisioning"
	"github.com/canonical/erp-access-service/pkg/teams"
)

var (
	teamMemberRequest provisioning.Request
	teamManagerID     string
	teamPage          int64
	teamSize          int64
)

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "Manage team members",
}

var addTeamMemberCmd = &cobra.Command{
	Use:   "add-member [email]",
	Short: "Create a team member profile and link it to the manager",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := teamMemberRequest
		req.Email = args[0]
		req.ManagerID = teamManagerID

		return runProvisioning(cmd, http.MethodPost, "/api/v0/teams/members", &req)
	},
}

var linkTeamMemberCmd = &cobra.Command{
	Use:   "link [member-id]",
	Short: "Link an existing member to a team, also used to retry a failed link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := fmt.Sprintf("/api/v0/teams/members/%s/links", url.PathEscape(args[0]))
		return runProvisioning(cmd, http.MethodPost, path, map[string]string{"manager_id": teamManagerID})
	},
}

var listTeamMembersCmd = &cobra.Command{
	Use:   "list",
	Short: "List the members of a team",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{}
		query.Set("page", fmt.Sprint(teamPage))
		query.Set("size", fmt.Sprint(teamSize))
		if teamManagerID != "" {
			query.Set("manager_id", teamManagerID)
		}

		members := make([]*types.TeamMember, 0)
		if _, err := getClient(cmd.Context()).do(cmd.Context(), http.MethodGet, "/api/v0/teams/members?"+query.Encode(), nil, &members); err != nil {
			return fmt.Errorf("failed to list team members: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "MEMBER_ID\tEMAIL\tFULL_NAME\tACTIVE\tASSIGNED_AT")
		for _, m := range members {
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n", m.Profile.ID, m.Profile.Email, m.Profile.FullName, m.Relationship.IsActive, m.Relationship.AssignedAt)
		}
		return w.Flush()
	},
}

var deactivateMemberCmd = &cobra.Command{
	Use:   "deactivate [member-id]",
	Short: "Deactivate a member and their team relationships",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToggle(cmd, args[0], "deactivate")
	},
}

var reactivateMemberCmd = &cobra.Command{
	Use:   "reactivate [member-id]",
	Short: "Reactivate a member and their team relationships",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToggle(cmd, args[0], "reactivate")
	},
}

func runToggle(cmd *cobra.Command, memberID, action string) error {
	result := new(teams.Result)
	path := fmt.Sprintf("/api/v0/teams/members/%s/%s", url.PathEscape(memberID), action)

	resp, err := getClient(cmd.Context()).do(cmd.Context(), http.MethodPost, path, nil, result)
	if err != nil {
		return fmt.Errorf("failed to %s member: %w", action, err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "MEMBER_ID\tACTIVE\tRELATIONSHIPS_UPDATED\tPROFILE_UPDATED")
	fmt.Fprintf(w, "%s\t%v\t%d\t%v\n", result.MemberID, result.Active, result.RelationshipsUpdated, result.ProfileUpdated)
	w.Flush()

	if resp.Partial() {
		fmt.Fprintf(cmd.OutOrStdout(), "profile not updated: run %s again\n", action)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(teamsCmd)
	teamsCmd.AddCommand(addTeamMemberCmd)
	teamsCmd.AddCommand(linkTeamMemberCmd)
	teamsCmd.AddCommand(listTeamMembersCmd)
	teamsCmd.AddCommand(deactivateMemberCmd)
	teamsCmd.AddCommand(reactivateMemberCmd)

	teamsCmd.PersistentFlags().StringVar(&teamManagerID, "manager-id", "", "Manager profile, super admins only, defaults to the caller")

	addTeamMemberCmd.Flags().StringVar(&teamMemberRequest.Role, "role", access.RoleAgent.String(), "Role granted to the new member")
	addTeamMemberCmd.Flags().StringVar(&teamMemberRequest.FullName, "full-name", "", "Full name")
	addTeamMemberCmd.Flags().StringVar(&teamMemberRequest.Phone, "phone", "", "Phone number")

	listTeamMembersCmd.Flags().Int64Var(&teamPage, "page", 0, "Page number")
	listTeamMembersCmd.Flags().Int64Var(&teamSize, "size", 20, "Page size")
}
