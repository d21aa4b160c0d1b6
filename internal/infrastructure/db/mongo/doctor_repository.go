package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
)

const collectionDoctors = "doctors"

type DoctorRepository struct {
	col *mongo.Collection
}

func NewDoctorRepository(db *mongo.Database) *DoctorRepository {
	return &DoctorRepository{col: db.Collection(collectionDoctors)}
}

type mongoDoctor struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Image     primitive.Binary   `bson:"image"`
	CreatedAt time.Time          `bson:"createdAt,omitempty"`
}

func (r *DoctorRepository) Create(ctx context.Context, d *domain.Doctor) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, mongoDoctor{
		Name:      d.Name,
		Email:     d.Email,
		Image:     primitive.Binary{Data: d.Image},
		CreatedAt: d.CreatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("insert doctor: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert doctor: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// List returns every doctor, oldest first.
func (r *DoctorRepository) List(ctx context.Context) ([]*domain.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}

	var docs []mongoDoctor
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode doctors: %w", err)
	}

	out := make([]*domain.Doctor, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.Doctor{
			ID:        d.ID.Hex(),
			Name:      d.Name,
			Email:     d.Email,
			Image:     d.Image.Data,
			CreatedAt: d.CreatedAt,
		})
	}
	return out, nil
}
