package llm

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/MAdityaRao/Resume-agent/domain/repositories"
)

// Spoken fallbacks keep the interview moving when the provider is
// unavailable. They stay inside the candidate persona.
var fallbackReplies = []string{
	"I'm sorry, could you repeat that? I lost you for a moment.",
	"Apologies, I didn't catch that. Could you ask me again?",
	"Sorry, I had a brief connection hiccup. What was the question?",
}

var safetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
	},
}

// chatSession implements the ChatSession interface over the Gemini API.
// Instructions are sent as the system instruction of each request, so
// replacing them mid-conversation affects the next turn only.
type chatSession struct {
	client *genai.Client
	config Config
	logger *zap.Logger

	mu           sync.Mutex
	instructions string
	history      []*genai.Content
}

func newChatSession(client *genai.Client, config Config, logger *zap.Logger, instructions string, history []repositories.ChatMessage) *chatSession {
	return &chatSession{
		client:       client,
		config:       config,
		logger:       logger,
		instructions: instructions,
		history:      toGeminiHistory(history),
	}
}

// SetInstructions replaces the system instructions for subsequent turns.
func (s *chatSession) SetInstructions(instructions string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instructions = instructions
}

// SendMessage sends one recruiter message and returns the candidate reply,
// updating the conversation history.
func (s *chatSession) SendMessage(ctx context.Context, message repositories.ChatMessage) (repositories.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userContent := genai.NewContentFromText(message.Content, genai.RoleUser)
	contents := make([]*genai.Content, 0, len(s.history)+1)
	contents = append(contents, s.history...)
	contents = append(contents, userContent)

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(s.instructions, genai.RoleUser),
		SafetySettings:    safetySettings,
		Temperature:       genai.Ptr(s.config.Temperature),
		TopP:              genai.Ptr(s.config.TopP),
		TopK:              genai.Ptr(s.config.TopK),
		MaxOutputTokens:   int32(s.config.MaxOutputTokens),
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.config.TimeoutSeconds)*time.Second)
	defer cancel()

	var response *genai.GenerateContentResponse
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		response, err = s.client.Models.GenerateContent(ctx, s.config.Model, contents, config)
		if err == nil {
			break
		}

		s.logger.Warn("Failed to generate reply, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		if attempt < 2 {
			time.Sleep(time.Duration(attempt+1) * time.Second)
		}
	}

	if err != nil {
		s.logger.Error("Failed to generate reply", zap.Error(err))
		return s.fallbackReply(userContent), nil
	}

	replyText := extractText(response)
	if replyText == "" {
		s.logger.Warn("Empty reply from model")
		return s.fallbackReply(userContent), nil
	}

	replyContent := genai.NewContentFromText(replyText, genai.RoleModel)
	s.history = append(s.history, userContent, replyContent)

	s.logger.Debug("Chat turn completed",
		zap.String("input_preview", preview(message.Content)),
		zap.String("reply_preview", preview(replyText)),
		zap.Int("history_length", len(s.history)))

	return repositories.ChatMessage{
		Role:    repositories.CandidateRole,
		Content: replyText,
	}, nil
}

// History returns the conversation so far.
func (s *chatSession) History() []repositories.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fromGeminiHistory(s.history)
}

func (s *chatSession) fallbackReply(userContent *genai.Content) repositories.ChatMessage {
	reply := fallbackReplies[int(time.Now().UnixNano())%len(fallbackReplies)]
	s.history = append(s.history,
		userContent,
		genai.NewContentFromText(reply, genai.RoleModel))
	return repositories.ChatMessage{
		Role:    repositories.CandidateRole,
		Content: reply,
	}
}

func extractText(response *genai.GenerateContentResponse) string {
	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range response.Candidates[0].Content.Parts {
		text += part.Text
	}
	return text
}

func preview(text string) string {
	if len(text) <= 50 {
		return text
	}
	cut := 50
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func toGeminiHistory(messages []repositories.ChatMessage) []*genai.Content {
	var contents []*genai.Content
	for _, msg := range messages {
		role := genai.Role(genai.RoleUser)
		if msg.Role == repositories.CandidateRole {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return contents
}

func fromGeminiHistory(contents []*genai.Content) []repositories.ChatMessage {
	var messages []repositories.ChatMessage
	for _, content := range contents {
		role := repositories.RecruiterRole
		if content.Role == string(genai.RoleModel) {
			role = repositories.CandidateRole
		}

		var text string
		for _, part := range content.Parts {
			text += part.Text
		}
		if text == "" {
			continue
		}

		messages = append(messages, repositories.ChatMessage{
			Role:    role,
			Content: text,
		})
	}
	return messages
}
