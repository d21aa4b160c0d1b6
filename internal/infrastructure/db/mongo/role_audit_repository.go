package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
)

const collectionRoleChanges = "role_changes"

// RoleAuditRepository appends role grants to the role_changes collection.
type RoleAuditRepository struct {
	col *mongo.Collection
}

func NewRoleAuditRepository(db *mongo.Database) *RoleAuditRepository {
	return &RoleAuditRepository{col: db.Collection(collectionRoleChanges)}
}

func (r *RoleAuditRepository) InsertRoleChange(ctx context.Context, change *domain.RoleChange) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"target_email": change.TargetEmail,
		"granted_by":   change.GrantedBy,
		"role":         string(change.Role),
		"changed_at":   change.ChangedAt.UTC(),
		"recorded_at":  time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert role change: %w", err)
	}
	return nil
}

func (r *RoleAuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "target_email", Value: 1}, {Key: "changed_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("role_changes indexes: %w", err)
	}
	return nil
}
