// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

const DefaultFallback = "You do not have permission to access this resource."

type DecisionState int

const (
	DecisionPending DecisionState = iota
	DecisionPermitted
	DecisionForbidden
)

func (s DecisionState) String() string {
	switch s {
	case DecisionPermitted:
		return "permitted"
	case DecisionForbidden:
		return "forbidden"
	default:
		return "pending"
	}
}

// Decision is the outcome of a gate evaluation. Fallback is only set on
// forbidden decisions.
type Decision struct {
	State    DecisionState
	Matched  []Role
	Fallback string
}

func (d Decision) Permitted() bool {
	return d.State == DecisionPermitted
}

func (d Decision) Forbidden() bool {
	return d.State == DecisionForbidden
}

func (d Decision) Pending() bool {
	return d.State == DecisionPending
}

type GateOption func(*Gate)

// WithFallback replaces the default access denied notice.
func WithFallback(msg string) GateOption {
	return func(g *Gate) {
		g.fallback = msg
	}
}

// Gate grants access iff the resolved roles intersect the allow-list.
type Gate struct {
	fallback string
}

// Evaluate never grants on a nil resolution, it reports pending until the
// caller has been resolved.
func (g *Gate) Evaluate(res *Resolution, allow ...Role) Decision {
	if res == nil {
		return Decision{State: DecisionPending}
	}

	matched := res.Intersect(allow...)
	if res.Profile == nil || len(matched) == 0 {
		return Decision{State: DecisionForbidden, Fallback: g.fallback}
	}

	return Decision{State: DecisionPermitted, Matched: matched}
}

func NewGate(opts ...GateOption) *Gate {
	g := &Gate{fallback: DefaultFallback}
	for _, opt := range opts {
		opt(g)
	}
	return g
}
