package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MAdityaRao/Resume-agent/domain/entities"
	"github.com/MAdityaRao/Resume-agent/domain/repositories"
)

// InterviewRepository persists interview sessions and transcripts in the
// interviews collection. Interview IDs are application-generated UUIDs
// stored as the document _id.
type InterviewRepository struct {
	collection *mongo.Collection
}

func NewInterviewRepository(db *mongo.Database) repositories.InterviewRepository {
	return &InterviewRepository{
		collection: db.Collection("interviews"),
	}
}

func (r *InterviewRepository) Create(ctx context.Context, iv *entities.Interview) error {
	if iv == nil {
		return errors.New("interview cannot be nil")
	}
	if err := iv.Validate(); err != nil {
		return err
	}

	if _, err := r.collection.InsertOne(ctx, iv); err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}

	return nil
}

func (r *InterviewRepository) Update(ctx context.Context, iv *entities.Interview) error {
	if iv == nil {
		return errors.New("interview cannot be nil")
	}
	if iv.ID == "" {
		return errors.New("interview ID cannot be empty")
	}

	update := bson.M{
		"$set": bson.M{
			"room":            iv.Room,
			"identity":        iv.Identity,
			"connection_type": iv.ConnectionType,
			"status":          iv.Status,
			"job_description": iv.JobDescription,
			"transcript":      iv.Transcript,
			"last_active_at":  iv.LastActiveAt,
			"last_message_at": iv.LastMessageAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": iv.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update interview: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("interview with ID %s not found", iv.ID)
	}

	return nil
}

func (r *InterviewRepository) ListByRoom(ctx context.Context, room string, limit int) ([]*entities.Interview, error) {
	if room == "" {
		return nil, errors.New("room cannot be empty")
	}
	if limit <= 0 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"room": room}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews for room %s: %w", room, err)
	}
	defer cursor.Close(ctx)

	var interviews []*entities.Interview
	if err := cursor.All(ctx, &interviews); err != nil {
		return nil, fmt.Errorf("failed to decode interviews: %w", err)
	}

	return interviews, nil
}

func (r *InterviewRepository) ExpireStale(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)

	filter := bson.M{
		"status":         entities.InterviewStatusActive,
		"last_active_at": bson.M{"$lt": cutoff},
	}
	update := bson.M{
		"$set": bson.M{"status": entities.InterviewStatusExpired},
	}

	if _, err := r.collection.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to expire stale interviews: %w", err)
	}

	return nil
}
