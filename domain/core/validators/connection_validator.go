package validators

import (
	"flowbuilder/domain/config"
	"flowbuilder/domain/core/entities"
	"flowbuilder/pkg/errors"
)

// RejectionReason explains why a proposed connection was refused
type RejectionReason string

const (
	// ReasonDuplicateSourceHandle means the source port already has its one outgoing edge
	ReasonDuplicateSourceHandle RejectionReason = "duplicate-source-handle"

	// ReasonSelfLoop means the connection starts and ends at the same node
	ReasonSelfLoop RejectionReason = "self-loop"
)

// ConnectionResult is the outcome of checking a proposed connection
type ConnectionResult struct {
	Accepted bool            `json:"accepted"`
	Reason   RejectionReason `json:"reason,omitempty"`
}

// Accepted is the result for a legal connection
func Accepted() ConnectionResult {
	return ConnectionResult{Accepted: true}
}

// Rejected is the result for an illegal connection
func Rejected(reason RejectionReason) ConnectionResult {
	return ConnectionResult{Accepted: false, Reason: reason}
}

// Err turns a rejection into a CONNECTION_REJECTED domain error
func (r ConnectionResult) Err() error {
	if r.Accepted {
		return nil
	}
	return errors.ErrConnectionRejected.
		WithMessage("Connection was rejected: " + string(r.Reason)).
		WithDetail("reason", string(r.Reason))
}

// ConnectionValidator decides whether a proposed edge may be added.
// It holds no state; callers serialize it with the commit.
type ConnectionValidator struct {
	allowSelfConnections bool
}

// NewConnectionValidator creates a validator honouring the connection rules in cfg
func NewConnectionValidator(cfg *config.DomainConfig) *ConnectionValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ConnectionValidator{allowSelfConnections: cfg.AllowSelfConnections}
}

// Validate checks proposal against the current edge set. A source port may
// have at most one outgoing edge. Multi-edges into one target and cycles are
// allowed.
func (v *ConnectionValidator) Validate(edges []*entities.Edge, proposal entities.Connection) ConnectionResult {
	if !v.allowSelfConnections && proposal.Source.Equals(proposal.Target) {
		return Rejected(ReasonSelfLoop)
	}

	for _, e := range edges {
		if e.SamePort(proposal.Source, proposal.SourceHandle) {
			return Rejected(ReasonDuplicateSourceHandle)
		}
	}

	return Accepted()
}
