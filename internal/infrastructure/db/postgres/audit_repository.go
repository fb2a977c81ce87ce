package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/articlehub/content-service/internal/core/domain"
	"github.com/articlehub/content-service/internal/core/ports"
)

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

func (r *AuditRepository) Insert(ctx context.Context, e domain.AuditEvent) error {
	const q = `INSERT INTO auth_events (action, actor_email, actor_id, target_id, outcome, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, q,
		string(e.Action),
		e.ActorEmail,
		nullableID(e.ActorID),
		nullableID(e.TargetID),
		e.Outcome,
		e.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
