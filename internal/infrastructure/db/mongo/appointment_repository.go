package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
)

const collectionAppointments = "appointments"

type AppointmentRepository struct {
	col *mongo.Collection
}

func NewAppointmentRepository(db *mongo.Database) *AppointmentRepository {
	return &AppointmentRepository{col: db.Collection(collectionAppointments)}
}

type mongoAppointment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	PatientName string             `bson:"patientName"`
	Email       string             `bson:"email"`
	Phone       string             `bson:"phone"`
	ServiceName string             `bson:"serviceName"`
	Time        string             `bson:"time"`
	Date        string             `bson:"date"`
	Price       float64            `bson:"price"`
	Payment     *domain.Payment    `bson:"payment,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (m *mongoAppointment) toDomain() *domain.Appointment {
	return &domain.Appointment{
		ID:          m.ID.Hex(),
		PatientName: m.PatientName,
		Email:       m.Email,
		Phone:       m.Phone,
		ServiceName: m.ServiceName,
		Time:        m.Time,
		Date:        m.Date,
		Price:       m.Price,
		Payment:     m.Payment,
		CreatedAt:   m.CreatedAt,
	}
}

// Create inserts a new appointment and returns its hex id.
func (r *AppointmentRepository) Create(ctx context.Context, a *domain.Appointment) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoAppointment{
		PatientName: a.PatientName,
		Email:       a.Email,
		Phone:       a.Phone,
		ServiceName: a.ServiceName,
		Time:        a.Time,
		Date:        a.Date,
		Price:       a.Price,
		Payment:     a.Payment,
		CreatedAt:   a.CreatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert appointment: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert appointment: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*domain.Appointment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m mongoAppointment
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	return m.toDomain(), nil
}

// ListByEmailAndDate returns a patient's appointments on date (M/D/YYYY).
func (r *AppointmentRepository) ListByEmailAndDate(ctx context.Context, email, date string) ([]*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"email": email, "date": date})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]*domain.Appointment, 0)
	for cur.Next(ctx) {
		var m mongoAppointment
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode appointment: %w", err)
		}
		out = append(out, m.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

// UpdatePayment sets the payment sub-document of an appointment.
func (r *AppointmentRepository) UpdatePayment(ctx context.Context, id string, payment domain.Payment) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"payment": payment}})
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAppointmentNotFound
	}
	return nil
}

// EnsureIndexes creates the lookup index used by the patient dashboard.
func (r *AppointmentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "date", Value: 1}}},
	}
	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("appointments indexes: %w", err)
	}
	return nil
}
