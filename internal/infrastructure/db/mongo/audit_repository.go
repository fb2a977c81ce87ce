package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/articlehub/content-service/internal/core/domain"
	"github.com/articlehub/content-service/internal/core/ports"
)

// AuditRepository persists security events to the auth_events collection.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAuthEvents)}
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

type auditDoc struct {
	Action     string    `bson:"action"`
	ActorEmail string    `bson:"actor_email"`
	ActorID    int64     `bson:"actor_id,omitempty"`
	TargetID   int64     `bson:"target_id,omitempty"`
	Outcome    string    `bson:"outcome"`
	OccurredAt time.Time `bson:"occurred_at"`
}

func (r *AuditRepository) Insert(ctx context.Context, e domain.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, auditDoc{
		Action:     string(e.Action),
		ActorEmail: e.ActorEmail,
		ActorID:    e.ActorID,
		TargetID:   e.TargetID,
		Outcome:    e.Outcome,
		OccurredAt: e.OccurredAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
