package domain

import "time"

// AuditAction names a security-relevant operation recorded in the audit trail.
type AuditAction string

const (
	AuditLogin      AuditAction = "login"
	AuditRefresh    AuditAction = "refresh"
	AuditLogout     AuditAction = "logout"
	AuditDeleteUser AuditAction = "delete_user"
	AuditPromote    AuditAction = "promote_admin"
	AuditRevoke     AuditAction = "revoke_admin"
)

// AuditEvent is one entry of the security audit trail. It never carries
// passwords or tokens.
type AuditEvent struct {
	Action     AuditAction
	ActorEmail string
	ActorID    int64 // zero when the actor is not yet authenticated
	TargetID   int64 // zero when there is no target user
	Outcome    string
	OccurredAt time.Time
}

// Key returns the value audit events are sharded on, so events of one actor
// are persisted in order.
func (e AuditEvent) Key() string {
	return e.ActorEmail
}
