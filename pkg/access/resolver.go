// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/tracing"
	"github.com/canonical/erp-access-service/internal/types"
)

// Resolver looks up the profile and roles of a principal. Results are cached
// per principal for the configured TTL, a TTL of zero disables the cache.
// Returned resolutions are shared and must not be modified.
type Resolver struct {
	storage StorageInterface

	cache *ttlcache.Cache[string, *Resolution]
	ttl   time.Duration

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (r *Resolver) Resolve(ctx context.Context, principalID string) (*Resolution, error) {
	ctx, span := r.tracer.Start(ctx, "access.Resolver.Resolve")
	defer span.End()

	if principalID == "" {
		return emptyResolution(), nil
	}

	if r.ttl > 0 {
		if item := r.cache.Get(principalID); item != nil {
			return item.Value(), nil
		}
	}

	res, err := r.resolve(ctx, principalID)
	if err != nil {
		return nil, err
	}

	if r.ttl > 0 {
		r.cache.Set(principalID, res, ttlcache.DefaultTTL)
	}

	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, principalID string) (*Resolution, error) {
	profiles, err := r.storage.ListProfilesByPrincipalID(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	res := emptyResolution()
	if len(profiles) == 0 {
		return res, nil
	}

	res.Profile = primaryProfile(profiles)

	grants, err := r.storage.ListRoleGrantsByPrincipalID(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role grants: %w", err)
	}

	for _, g := range grants {
		role := ParseRole(g.RoleName)
		if role == RoleUnknown {
			r.logger.Warnf("principal %s holds unknown role %q", principalID, g.RoleName)
		}

		res.Roles = append(res.Roles, Grant{
			Role:             role,
			RoleName:         g.RoleName,
			OrganizationID:   g.OrganizationID,
			OrganizationName: g.OrganizationName,
		})
	}

	return res, nil
}

// Invalidate drops the cached resolution of a principal.
func (r *Resolver) Invalidate(principalID string) {
	if principalID == "" {
		return
	}
	r.cache.Delete(principalID)
}

// InvalidateAll drops every cached resolution.
func (r *Resolver) InvalidateAll() {
	r.cache.DeleteAll()
}

// Close stops the cache cleanup loop.
func (r *Resolver) Close() {
	r.cache.Stop()
}

// primaryProfile picks the oldest active profile, falling back to the oldest one.
func primaryProfile(profiles []*types.Profile) *types.Profile {
	for _, p := range profiles {
		if p.IsActive {
			return p
		}
	}
	return profiles[0]
}

func NewResolver(s StorageInterface, ttl time.Duration, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Resolver {
	opts := []ttlcache.Option[string, *Resolution]{
		ttlcache.WithDisableTouchOnHit[string, *Resolution](),
	}
	if ttl > 0 {
		opts = append(opts, ttlcache.WithTTL[string, *Resolution](ttl))
	}

	c := ttlcache.New(opts...)
	go c.Start()

	return &Resolver{
		storage: s,
		cache:   c,
		ttl:     ttl,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
