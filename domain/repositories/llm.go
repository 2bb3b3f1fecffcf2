package repositories

import "context"

// LanguageModel abstracts any chat/LLM provider.
type LanguageModel interface {
	// NewChatSession opens a conversation seeded with system instructions
	// and optional prior history.
	NewChatSession(ctx context.Context, instructions string, history []ChatMessage) (ChatSession, error)
}

// ChatSession represents an ongoing conversation with the model.
type ChatSession interface {
	// SetInstructions replaces the system instructions used for subsequent
	// turns. Safe to call between SendMessage calls.
	SetInstructions(instructions string)
	SendMessage(ctx context.Context, message ChatMessage) (ChatMessage, error)
	History() []ChatMessage
}

// ChatMessage is a single message in a conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role identifies the message sender. The agent speaks as the candidate;
// the human participant is the recruiter.
type Role string

const (
	RecruiterRole Role = "recruiter"
	CandidateRole Role = "candidate"
	SystemRole    Role = "system"
)
