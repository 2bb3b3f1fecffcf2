package turn

import (
	"context"
	"fmt"
	"strings"

	"github.com/MAdityaRao/Resume-agent/domain/repositories"
	"github.com/MAdityaRao/Resume-agent/internal/interview"
)

// ComposeStage recomputes the instructions from the resume and the current
// job description, and pushes them into the chat session. Running it on
// every turn guarantees a job description arriving mid-session is visible
// to the next generation.
type ComposeStage struct {
	Composer *interview.Composer
	State    *interview.State
	Chat     repositories.ChatSession
}

func (s *ComposeStage) Name() string { return "compose_instructions" }

func (s *ComposeStage) Run(ctx context.Context, t *Turn) error {
	t.Instructions = s.Composer.Compose(s.State.JobDescription())
	s.Chat.SetInstructions(t.Instructions)
	return nil
}

// GenerateStage asks the model for the candidate's reply. Turns that arrive
// with a preset Reply (greetings) pass through unchanged.
type GenerateStage struct {
	Chat repositories.ChatSession
}

func (s *GenerateStage) Name() string { return "generate_reply" }

func (s *GenerateStage) Run(ctx context.Context, t *Turn) error {
	if t.Reply != "" || strings.TrimSpace(t.Input) == "" {
		return nil
	}

	reply, err := s.Chat.SendMessage(ctx, repositories.ChatMessage{
		Role:    repositories.RecruiterRole,
		Content: t.Input,
	})
	if err != nil {
		return fmt.Errorf("generate reply: %w", err)
	}

	t.Reply = reply.Content
	return nil
}

// SynthesizeStage converts the reply text into a stream of audio chunks.
type SynthesizeStage struct {
	TTS repositories.TextToSpeech
}

func (s *SynthesizeStage) Name() string { return "synthesize_speech" }

func (s *SynthesizeStage) Run(ctx context.Context, t *Turn) error {
	if strings.TrimSpace(t.Reply) == "" {
		return fmt.Errorf("no reply to synthesize")
	}

	audio, err := s.TTS.Synthesize(ctx, t.Reply)
	if err != nil {
		return fmt.Errorf("synthesize reply: %w", err)
	}

	t.Audio = audio
	return nil
}
