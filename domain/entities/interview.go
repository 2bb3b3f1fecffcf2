package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// InterviewStatus represents the lifecycle state of an interview session.
type InterviewStatus string

const (
	InterviewStatusActive    InterviewStatus = "active"
	InterviewStatusCompleted InterviewStatus = "completed"
	InterviewStatusExpired   InterviewStatus = "expired"
)

// TranscriptRole identifies who spoke a transcript entry.
type TranscriptRole string

const (
	TranscriptRoleRecruiter TranscriptRole = "recruiter"
	TranscriptRoleCandidate TranscriptRole = "candidate"
)

// ConnectionType distinguishes audio profiles for a session.
type ConnectionType string

const (
	ConnectionStandard  ConnectionType = "standard"
	ConnectionTelephony ConnectionType = "telephony"
)

// TranscriptEntry is one spoken turn within an interview.
type TranscriptEntry struct {
	Timestamp  time.Time      `json:"timestamp" bson:"timestamp"`
	Role       TranscriptRole `json:"role" bson:"role"`
	Content    string         `json:"content" bson:"content"`
	DurationMs int64          `json:"duration_ms" bson:"duration_ms"`
}

// Interview represents one participant's voice interview session, from join
// to disconnect.
type Interview struct {
	ID             string            `json:"id" bson:"_id"`
	Room           string            `json:"room" bson:"room"`
	Identity       string            `json:"identity" bson:"identity"`
	ConnectionType ConnectionType    `json:"connection_type" bson:"connection_type"`
	CreatedAt      time.Time         `json:"created_at" bson:"created_at"`
	LastActiveAt   time.Time         `json:"last_active_at" bson:"last_active_at"`
	LastMessageAt  *time.Time        `json:"last_message_at,omitempty" bson:"last_message_at,omitempty"`
	Status         InterviewStatus   `json:"status" bson:"status"`
	JobDescription string            `json:"job_description,omitempty" bson:"job_description,omitempty"`
	Transcript     []TranscriptEntry `json:"transcript" bson:"transcript"`
}

// NewInterview creates an active interview session for a room participant.
func NewInterview(room, identity string) *Interview {
	now := time.Now()
	return &Interview{
		ID:             uuid.New().String(),
		Room:           room,
		Identity:       identity,
		ConnectionType: ConnectionStandard,
		CreatedAt:      now,
		LastActiveAt:   now,
		Status:         InterviewStatusActive,
		Transcript:     make([]TranscriptEntry, 0),
	}
}

// AddEntry appends a spoken turn to the transcript and refreshes activity
// timestamps.
func (iv *Interview) AddEntry(role TranscriptRole, content string, durationMs int64) {
	now := time.Now()
	iv.Transcript = append(iv.Transcript, TranscriptEntry{
		Timestamp:  now,
		Role:       role,
		Content:    content,
		DurationMs: durationMs,
	})
	iv.LastMessageAt = &now
	iv.Touch()
}

// SetJobDescription records the job description for this session.
// Last write wins.
func (iv *Interview) SetJobDescription(jd string) {
	iv.JobDescription = jd
	iv.Touch()
}

// HasJobDescription reports whether a job description has been received.
func (iv *Interview) HasJobDescription() bool {
	return iv.JobDescription != ""
}

// Touch updates the last-activity timestamp.
func (iv *Interview) Touch() {
	iv.LastActiveAt = time.Now()
}

// Complete marks the interview as finished.
func (iv *Interview) Complete() {
	iv.Status = InterviewStatusCompleted
	iv.Touch()
}

// Expire marks the interview as expired.
func (iv *Interview) Expire() {
	iv.Status = InterviewStatusExpired
}

// Clone returns a deep copy that shares no mutable state with the
// original. Callers persisting an interview from another goroutine must
// snapshot it first.
func (iv *Interview) Clone() *Interview {
	clone := *iv
	clone.Transcript = append([]TranscriptEntry(nil), iv.Transcript...)
	if iv.LastMessageAt != nil {
		at := *iv.LastMessageAt
		clone.LastMessageAt = &at
	}
	return &clone
}

// Validate checks the invariant fields of the interview.
func (iv *Interview) Validate() error {
	if iv.Room == "" {
		return errors.New("room is required")
	}
	if iv.Identity == "" {
		return errors.New("identity is required")
	}
	switch iv.Status {
	case InterviewStatusActive, InterviewStatusCompleted, InterviewStatusExpired:
	default:
		return errors.New("invalid interview status")
	}
	return nil
}
