package adapters

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MAdityaRao/Resume-agent/domain/entities"
)

// MemoryInterviewRepository is an in-memory implementation of
// InterviewRepository. It backs deployments without a MONGODB_URI;
// transcripts live only as long as the process.
type MemoryInterviewRepository struct {
	mu         sync.RWMutex
	interviews map[string]*entities.Interview
}

func NewMemoryInterviewRepository() *MemoryInterviewRepository {
	return &MemoryInterviewRepository{
		interviews: make(map[string]*entities.Interview),
	}
}

func (m *MemoryInterviewRepository) Create(ctx context.Context, iv *entities.Interview) error {
	if iv == nil {
		return errors.New("interview cannot be nil")
	}
	if iv.ID == "" {
		iv.ID = uuid.New().String()
	}
	if err := iv.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.interviews[iv.ID]; exists {
		return errors.New("interview with this ID already exists")
	}

	m.interviews[iv.ID] = iv.Clone()
	return nil
}

func (m *MemoryInterviewRepository) Update(ctx context.Context, iv *entities.Interview) error {
	if iv == nil {
		return errors.New("interview cannot be nil")
	}
	if iv.ID == "" {
		return errors.New("interview ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.interviews[iv.ID]; !exists {
		return errors.New("interview not found")
	}

	m.interviews[iv.ID] = iv.Clone()
	return nil
}

func (m *MemoryInterviewRepository) ListByRoom(ctx context.Context, room string, limit int) ([]*entities.Interview, error) {
	if room == "" {
		return nil, errors.New("room cannot be empty")
	}
	if limit <= 0 {
		limit = 20
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*entities.Interview
	for _, iv := range m.interviews {
		if iv.Room == room {
			result = append(result, iv.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MemoryInterviewRepository) ExpireStale(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, iv := range m.interviews {
		if iv.Status == entities.InterviewStatusActive && iv.LastActiveAt.Before(cutoff) {
			iv.Expire()
		}
	}
	return nil
}
