// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/erp-access-service/internal/db"
	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/tracing"
	"github.com/canonical/erp-access-service/internal/types"
)

var _ StorageInterface = (*Storage)(nil)

var profileColumns = []string{
	"id",
	"principal_id",
	"email",
	"full_name",
	"phone",
	"organization_id",
	"is_active",
	"created_at",
	"updated_at",
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type Storage struct {
	db db.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func NewStorage(c db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Storage {
	s := new(Storage)

	s.db = c

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}

func scanProfile(row rowScanner) (*types.Profile, error) {
	var p types.Profile
	err := row.Scan(
		&p.ID,
		&p.PrincipalID,
		&p.Email,
		&p.FullName,
		&p.Phone,
		&p.OrganizationID,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) GetOrganizationByID(ctx context.Context, id string) (*types.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetOrganizationByID")
	defer span.End()

	var o types.Organization
	err := s.db.Statement(ctx).
		Select("id", "name", "created_at").
		From("organizations").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx).
		Scan(&o.ID, &o.Name, &o.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return &o, nil
}

func (s *Storage) CreateOrganization(ctx context.Context, name string) (*types.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateOrganization")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate organization ID: %w", err)
	}

	var o types.Organization
	err = s.db.Statement(ctx).
		Insert("organizations").
		Columns("id", "name").
		Values(id.String(), name).
		Suffix("RETURNING id, name, created_at").
		QueryRowContext(ctx).
		Scan(&o.ID, &o.Name, &o.CreatedAt)

	if err != nil {
		return nil, wrapWriteError(err, "failed to insert organization")
	}

	return &o, nil
}

// ListOrganizations pages through organizations ordered by name, a non-nil ids
// slice restricts the result to those organizations.
func (s *Storage) ListOrganizations(ctx context.Context, ids []string, page, size int64) ([]*types.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListOrganizations")
	defer span.End()

	pageSize := db.PageSize(size)

	query := s.db.Statement(ctx).
		Select("id", "name", "created_at").
		From("organizations").
		OrderBy("name ASC").
		Limit(pageSize).
		Offset(db.Offset(page, pageSize))

	if ids != nil {
		query = query.Where(sq.Eq{"id": ids})
	}

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*types.Organization
	for rows.Next() {
		var o types.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return orgs, nil
}

func (s *Storage) RenameOrganization(ctx context.Context, id, name string) (*types.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "storage.RenameOrganization")
	defer span.End()

	var o types.Organization
	err := s.db.Statement(ctx).
		Update("organizations").
		Set("name", name).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, name, created_at").
		QueryRowContext(ctx).
		Scan(&o.ID, &o.Name, &o.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapWriteError(err, "failed to rename organization")
	}

	return &o, nil
}

// DeleteOrganization removes the organization, its profiles and scoped role
// assignments cascade.
func (s *Storage) DeleteOrganization(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteOrganization")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("organizations").
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Storage) GetRoleByName(ctx context.Context, name string) (*types.Role, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetRoleByName")
	defer span.End()

	var r types.Role
	err := s.db.Statement(ctx).
		Select("id", "name").
		From("roles").
		Where(sq.Eq{"name": name}).
		QueryRowContext(ctx).
		Scan(&r.ID, &r.Name)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return &r, nil
}

func (s *Storage) CreateProfile(ctx context.Context, p *types.Profile) (*types.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateProfile")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profile ID: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("profiles").
		Columns("id", "principal_id", "email", "full_name", "phone", "organization_id", "is_active").
		Values(id.String(), p.PrincipalID, p.Email, p.FullName, p.Phone, p.OrganizationID, p.IsActive).
		Suffix("RETURNING id, principal_id, email, full_name, phone, organization_id, is_active, created_at, updated_at").
		QueryRowContext(ctx)

	created, err := scanProfile(row)
	if err != nil {
		return nil, wrapWriteError(err, "failed to insert profile")
	}

	return created, nil
}

func (s *Storage) GetProfileByID(ctx context.Context, id string) (*types.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetProfileByID")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(profileColumns...).
		From("profiles").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx)

	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return p, nil
}

func (s *Storage) GetProfileByEmail(ctx context.Context, organizationID, email string) (*types.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetProfileByEmail")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(profileColumns...).
		From("profiles").
		Where(sq.Eq{"organization_id": organizationID, "email": email}).
		QueryRowContext(ctx)

	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}

	return p, nil
}

func (s *Storage) ListProfilesByPrincipalID(ctx context.Context, principalID string) ([]*types.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListProfilesByPrincipalID")
	defer span.End()

	return s.listProfiles(
		ctx,
		s.db.Statement(ctx).
			Select(profileColumns...).
			From("profiles").
			Where(sq.Eq{"principal_id": principalID}).
			OrderBy("created_at ASC"),
	)
}

func (s *Storage) ListPendingProfilesByEmail(ctx context.Context, email string) ([]*types.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListPendingProfilesByEmail")
	defer span.End()

	return s.listProfiles(
		ctx,
		s.db.Statement(ctx).
			Select(profileColumns...).
			From("profiles").
			Where(sq.Eq{"email": email, "principal_id": nil}),
	)
}

func (s *Storage) ListProfilesByOrganizationID(ctx context.Context, organizationID string, page, size int64) ([]*types.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListProfilesByOrganizationID")
	defer span.End()

	pageSize := db.PageSize(size)

	return s.listProfiles(
		ctx,
		s.db.Statement(ctx).
			Select(profileColumns...).
			From("profiles").
			Where(sq.Eq{"organization_id": organizationID}).
			OrderBy("email ASC").
			Limit(pageSize).
			Offset(db.Offset(page, pageSize)),
	)
}

func (s *Storage) listProfiles(ctx context.Context, query sq.SelectBuilder) ([]*types.Profile, error) {
	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*types.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return profiles, nil
}

func (s *Storage) LinkPrincipal(ctx context.Context, profileID, principalID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.LinkPrincipal")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("profiles").
		Set("principal_id", principalID).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": profileID, "principal_id": nil}).
		ExecContext(ctx)

	if err != nil {
		return wrapWriteError(err, "failed to link principal")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Storage) SetProfileActive(ctx context.Context, id string, active bool) error {
	ctx, span := s.tracer.Start(ctx, "storage.SetProfileActive")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("profiles").
		Set("is_active", active).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Storage) AssignRole(ctx context.Context, profileID, roleID string, organizationID *string) (*types.RoleAssignment, error) {
	ctx, span := s.tracer.Start(ctx, "storage.AssignRole")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate role assignment ID: %w", err)
	}

	var ra types.RoleAssignment
	err = s.db.Statement(ctx).
		Insert("role_assignments").
		Columns("id", "profile_id", "role_id", "organization_id").
		Values(id.String(), profileID, roleID, organizationID).
		Suffix("RETURNING id, profile_id, role_id, organization_id, created_at").
		QueryRowContext(ctx).
		Scan(&ra.ID, &ra.ProfileID, &ra.RoleID, &ra.OrganizationID, &ra.CreatedAt)

	if err != nil {
		return nil, wrapWriteError(err, "failed to assign role")
	}

	return &ra, nil
}

func (s *Storage) RevokeRole(ctx context.Context, profileID, roleID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.RevokeRole")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("role_assignments").
		Where(sq.Eq{"profile_id": profileID, "role_id": roleID}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to revoke role: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ListRoleGrantsByPrincipalID joins role assignments of every active profile
// owned by the principal with role and organization names.
// Global roles keep a NULL organization.
func (s *Storage) ListRoleGrantsByPrincipalID(ctx context.Context, principalID string) ([]*types.RoleGrant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListRoleGrantsByPrincipalID")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("ra.profile_id", "r.name", "ra.organization_id", "o.name").
		From("role_assignments ra").
		Join("roles r ON r.id = ra.role_id").
		Join("profiles p ON p.id = ra.profile_id").
		LeftJoin("organizations o ON o.id = ra.organization_id").
		Where(sq.Eq{"p.principal_id": principalID, "p.is_active": true}).
		OrderBy("ra.created_at ASC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list role grants: %w", err)
	}
	defer rows.Close()

	var grants []*types.RoleGrant
	for rows.Next() {
		var g types.RoleGrant
		if err := rows.Scan(&g.ProfileID, &g.RoleName, &g.OrganizationID, &g.OrganizationName); err != nil {
			return nil, fmt.Errorf("failed to scan role grant: %w", err)
		}
		grants = append(grants, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return grants, nil
}

func (s *Storage) CreateTeamRelationship(ctx context.Context, managerID, memberID string) (*types.TeamRelationship, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTeamRelationship")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate team relationship ID: %w", err)
	}

	var tr types.TeamRelationship
	err = s.db.Statement(ctx).
		Insert("team_relationships").
		Columns("id", "manager_id", "member_id", "is_active").
		Values(id.String(), managerID, memberID, true).
		Suffix("RETURNING id, manager_id, member_id, is_active, assigned_at").
		QueryRowContext(ctx).
		Scan(&tr.ID, &tr.ManagerID, &tr.MemberID, &tr.IsActive, &tr.AssignedAt)

	if err != nil {
		return nil, wrapWriteError(err, "failed to create team relationship")
	}

	return &tr, nil
}

func (s *Storage) GetTeamRelationship(ctx context.Context, managerID, memberID string) (*types.TeamRelationship, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTeamRelationship")
	defer span.End()

	var tr types.TeamRelationship
	err := s.db.Statement(ctx).
		Select("id", "manager_id", "member_id", "is_active", "assigned_at").
		From("team_relationships").
		Where(sq.Eq{"manager_id": managerID, "member_id": memberID}).
		QueryRowContext(ctx).
		Scan(&tr.ID, &tr.ManagerID, &tr.MemberID, &tr.IsActive, &tr.AssignedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team relationship: %w", err)
	}

	return &tr, nil
}

// SetTeamRelationshipsActive toggles every relationship where the profile is the member
// and returns how many rows changed.
func (s *Storage) SetTeamRelationshipsActive(ctx context.Context, memberID string, active bool) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.SetTeamRelationshipsActive")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("team_relationships").
		Set("is_active", active).
		Where(sq.Eq{"member_id": memberID}).
		ExecContext(ctx)

	if err != nil {
		return 0, fmt.Errorf("failed to update team relationships: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rows, nil
}

func (s *Storage) ListTeamMembers(ctx context.Context, managerID string, page, size int64) ([]*types.TeamMember, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTeamMembers")
	defer span.End()

	pageSize := db.PageSize(size)

	rows, err := s.db.Statement(ctx).
		Select(
			"t.id", "t.manager_id", "t.member_id", "t.is_active", "t.assigned_at",
			"p.id", "p.principal_id", "p.email", "p.full_name", "p.phone",
			"p.organization_id", "p.is_active", "p.created_at", "p.updated_at",
		).
		From("team_relationships t").
		Join("profiles p ON p.id = t.member_id").
		Where(sq.Eq{"t.manager_id": managerID}).
		OrderBy("t.assigned_at ASC").
		Limit(pageSize).
		Offset(db.Offset(page, pageSize)).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	var members []*types.TeamMember
	for rows.Next() {
		var m types.TeamMember
		err := rows.Scan(
			&m.Relationship.ID, &m.Relationship.ManagerID, &m.Relationship.MemberID,
			&m.Relationship.IsActive, &m.Relationship.AssignedAt,
			&m.Profile.ID, &m.Profile.PrincipalID, &m.Profile.Email, &m.Profile.FullName, &m.Profile.Phone,
			&m.Profile.OrganizationID, &m.Profile.IsActive, &m.Profile.CreatedAt, &m.Profile.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return members, nil
}
