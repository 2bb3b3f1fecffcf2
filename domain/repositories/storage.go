package repositories

import (
	"context"
	"time"

	"github.com/MAdityaRao/Resume-agent/domain/entities"
)

// InterviewRepository defines persistence for interview sessions and their
// transcripts.
type InterviewRepository interface {
	Create(ctx context.Context, iv *entities.Interview) error
	Update(ctx context.Context, iv *entities.Interview) error
	ListByRoom(ctx context.Context, room string, limit int) ([]*entities.Interview, error)
	// ExpireStale marks active interviews idle for longer than olderThan as
	// expired.
	ExpireStale(ctx context.Context, olderThan time.Duration) error
}
