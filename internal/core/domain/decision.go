package domain

import "fmt"

// Decision is the outcome of a role-authority check.
type Decision uint8

const (
	Allow Decision = iota
	Deny
	Forbidden
	SelfActionForbidden
	NotFound
	Conflict
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	case Forbidden:
		return "forbidden"
	case SelfActionForbidden:
		return "self_action_forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return fmt.Sprintf("decision(%d)", uint8(d))
	}
}

// PolicyError carries a non-Allow decision out of a service so the transport
// can pick an endpoint-specific status code. It unwraps to the matching
// sentinel from errors.go.
type PolicyError struct {
	Action   AuditAction
	Decision Decision
}

// DecisionError returns nil for Allow and a *PolicyError otherwise.
func DecisionError(action AuditAction, d Decision) error {
	if d == Allow {
		return nil
	}
	return &PolicyError{Action: action, Decision: d}
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Unwrap().Error())
}

func (e *PolicyError) Unwrap() error {
	switch e.Decision {
	case SelfActionForbidden:
		return ErrSelfActionForbidden
	case NotFound:
		return ErrUserNotFound
	case Conflict:
		return ErrConflict
	default:
		return ErrPermissionDenied
	}
}
