package ports

import (
	"context"

	"github.com/articlehub/content-service/internal/core/domain"
)

// AuditRepository persists security audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event domain.AuditEvent) error
}

// AuditSink accepts audit events without blocking the caller.
type AuditSink interface {
	Record(event domain.AuditEvent)
}
