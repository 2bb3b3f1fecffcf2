package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/MAdityaRao/Resume-agent/adapters/vad"
	"github.com/MAdityaRao/Resume-agent/domain/entities"
	"github.com/MAdityaRao/Resume-agent/domain/repositories"
	"github.com/MAdityaRao/Resume-agent/internal/auth"
	"github.com/MAdityaRao/Resume-agent/internal/interview"
)

type stubChat struct {
	mu           sync.Mutex
	instructions string
	inputs       []string
	history      []repositories.ChatMessage
}

func (s *stubChat) SetInstructions(instructions string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instructions = instructions
}

func (s *stubChat) SendMessage(ctx context.Context, msg repositories.ChatMessage) (repositories.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, msg.Content)
	reply := repositories.ChatMessage{
		Role:    repositories.CandidateRole,
		Content: fmt.Sprintf("canned reply %d", len(s.inputs)),
	}
	s.history = append(s.history, msg, reply)
	return reply, nil
}

func (s *stubChat) History() []repositories.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]repositories.ChatMessage(nil), s.history...)
}

type stubLLM struct {
	chat *stubChat
}

func (s *stubLLM) NewChatSession(ctx context.Context, instructions string, history []repositories.ChatMessage) (repositories.ChatSession, error) {
	s.chat.SetInstructions(instructions)
	return s.chat, nil
}

type stubSTT struct {
	transcript string
}

func (s *stubSTT) OpenStream(ctx context.Context, config repositories.AudioConfig) (repositories.SpeechToTextStream, error) {
	return &stubSTTStream{transcript: s.transcript}, nil
}

type stubSTTStream struct {
	transcript string
}

func (s *stubSTTStream) Write(data []byte) error { return nil }

func (s *stubSTTStream) Close() (string, error) { return s.transcript, nil }

type stubTTS struct{}

func (s *stubTTS) Synthesize(ctx context.Context, text string) (<-chan []byte, error) {
	out := make(chan []byte, 2)
	out <- []byte{0x01, 0x02}
	out <- []byte{0x03, 0x04}
	close(out)
	return out, nil
}

type memoryStore struct {
	mu      sync.Mutex
	records map[string]*entities.Interview
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]*entities.Interview)}
}

func (m *memoryStore) Create(ctx context.Context, iv *entities.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[iv.ID] = iv
	return nil
}

func (m *memoryStore) Update(ctx context.Context, iv *entities.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[iv.ID] = iv
	return nil
}

func (m *memoryStore) ListByRoom(ctx context.Context, room string, limit int) ([]*entities.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Interview
	for _, iv := range m.records {
		if iv.Room == room {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (m *memoryStore) ExpireStale(ctx context.Context, olderThan time.Duration) error {
	return nil
}

func newTestServer(t *testing.T, chat *stubChat) (*httptest.Server, *Hub) {
	t.Helper()

	logger := zaptest.NewLogger(t)
	composer := interview.NewComposer("EXPERIENCE\nSix years of Go backend work.\n\nSKILLS\nGo, MongoDB, WebSockets.")

	hub := NewHub(
		composer,
		&stubLLM{chat: chat},
		&stubSTT{transcript: "Tell me about your experience"},
		&stubTTS{},
		vad.NewEnergyDetector(),
		newMemoryStore(),
		logger,
	)
	go hub.Run()

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		claims := &auth.Claims{
			Room:     "room-1",
			Identity: "recruiter-1",
		}
		return ServeSession(hub, c, claims, logger)
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, hub
}

func dial(t *testing.T, srv *httptest.Server) *gorilla.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// nextEvent reads frames until the next text event, counting binary frames
// seen along the way.
func nextEvent(t *testing.T, conn *gorilla.Conn) (Event, int) {
	t.Helper()
	binary := 0
	for {
		conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		if messageType == gorilla.BinaryMessage {
			binary++
			continue
		}
		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			t.Fatalf("unmarshal event %q: %v", payload, err)
		}
		return ev, binary
	}
}

func TestSessionBootstrapGreeting(t *testing.T) {
	chat := &stubChat{}
	srv, _ := newTestServer(t, chat)
	conn := dial(t, srv)

	ev, _ := nextEvent(t, conn)
	if ev.Type != MessageTypeSessionReady {
		t.Fatalf("first event = %q, want %q", ev.Type, MessageTypeSessionReady)
	}
	if ev.SessionID == "" {
		t.Error("session_ready must carry a session id")
	}

	ev, _ = nextEvent(t, conn)
	if ev.Type != MessageTypeSpeakingStart {
		t.Fatalf("second event = %q, want %q", ev.Type, MessageTypeSpeakingStart)
	}
	if !strings.Contains(ev.Text, "job description") {
		t.Errorf("greeting %q should ask for the job description", ev.Text)
	}

	ev, binary := nextEvent(t, conn)
	if ev.Type != MessageTypeSpeakingEnd {
		t.Fatalf("third event = %q, want %q", ev.Type, MessageTypeSpeakingEnd)
	}
	if binary != 2 {
		t.Errorf("greeting streamed %d audio chunks, want 2", binary)
	}

	chat.mu.Lock()
	inputs := len(chat.inputs)
	chat.mu.Unlock()
	if inputs != 0 {
		t.Errorf("greeting must not consult the model, got %d model turns", inputs)
	}
}

func TestJobDescriptionTriggersFitEvaluation(t *testing.T) {
	chat := &stubChat{}
	srv, _ := newTestServer(t, chat)
	conn := dial(t, srv)

	// Drain session_ready and the greeting.
	for i := 0; i < 3; i++ {
		nextEvent(t, conn)
	}

	jd := `{"type":"job_description","content":"Senior Go engineer with MongoDB and WebSockets experience"}`
	if err := conn.WriteMessage(gorilla.TextMessage, []byte(jd)); err != nil {
		t.Fatalf("send job description: %v", err)
	}

	ev, _ := nextEvent(t, conn)
	if ev.Type != MessageTypeSpeakingStart {
		t.Fatalf("event after job description = %q, want %q", ev.Type, MessageTypeSpeakingStart)
	}
	if !strings.HasPrefix(ev.Text, "canned reply") {
		t.Errorf("fit reply = %q, want the model's reply", ev.Text)
	}

	ev, binary := nextEvent(t, conn)
	if ev.Type != MessageTypeSpeakingEnd {
		t.Fatalf("expected speaking_end, got %q", ev.Type)
	}
	if binary != 2 {
		t.Errorf("fit reply streamed %d audio chunks, want 2", binary)
	}

	chat.mu.Lock()
	defer chat.mu.Unlock()
	if len(chat.inputs) != 1 {
		t.Fatalf("model turns = %d, want 1", len(chat.inputs))
	}
	if !strings.Contains(chat.inputs[0], "Am I a fit?") {
		t.Errorf("fit input %q should ask about fit", chat.inputs[0])
	}
	if !strings.Contains(chat.inputs[0], "MOST RELEVANT RESUME SECTIONS") {
		t.Errorf("fit input %q should ground on resume sections", chat.inputs[0])
	}
	if !strings.Contains(chat.instructions, "Senior Go engineer") {
		t.Errorf("instructions should include the job description, got %q", chat.instructions)
	}
}

func TestUtteranceTurn(t *testing.T) {
	chat := &stubChat{}
	srv, _ := newTestServer(t, chat)
	conn := dial(t, srv)

	for i := 0; i < 3; i++ {
		nextEvent(t, conn)
	}

	start := `{"type":"listening_start","sample_rate":16000}`
	if err := conn.WriteMessage(gorilla.TextMessage, []byte(start)); err != nil {
		t.Fatalf("send listening_start: %v", err)
	}
	// Two frames of silence keep the detector idle; the explicit end
	// finalizes the utterance.
	silence := make([]byte, 640)
	for i := 0; i < 2; i++ {
		if err := conn.WriteMessage(gorilla.BinaryMessage, silence); err != nil {
			t.Fatalf("send audio frame: %v", err)
		}
	}
	end := `{"type":"listening_end"}`
	if err := conn.WriteMessage(gorilla.TextMessage, []byte(end)); err != nil {
		t.Fatalf("send listening_end: %v", err)
	}

	ev, _ := nextEvent(t, conn)
	if ev.Type != MessageTypeTranscript {
		t.Fatalf("expected transcript event, got %q", ev.Type)
	}
	if ev.Role != string(entities.TranscriptRoleRecruiter) {
		t.Errorf("transcript role = %q, want recruiter", ev.Role)
	}
	if ev.Text != "Tell me about your experience" {
		t.Errorf("transcript text = %q", ev.Text)
	}

	ev, _ = nextEvent(t, conn)
	if ev.Type != MessageTypeSpeakingStart {
		t.Fatalf("expected speaking_start, got %q", ev.Type)
	}

	ev, _ = nextEvent(t, conn)
	if ev.Type != MessageTypeSpeakingEnd {
		t.Fatalf("expected speaking_end, got %q", ev.Type)
	}

	chat.mu.Lock()
	defer chat.mu.Unlock()
	if len(chat.inputs) != 1 || chat.inputs[0] != "Tell me about your experience" {
		t.Errorf("model inputs = %v", chat.inputs)
	}
	if !strings.Contains(chat.instructions, interview.JobDescriptionPending) {
		t.Errorf("instructions without a job description should carry the placeholder")
	}
}
