package websocket

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MAdityaRao/Resume-agent/domain/entities"
	"github.com/MAdityaRao/Resume-agent/domain/repositories"
	"github.com/MAdityaRao/Resume-agent/internal/audio"
	"github.com/MAdityaRao/Resume-agent/internal/auth"
	"github.com/MAdityaRao/Resume-agent/internal/interview"
	"github.com/MAdityaRao/Resume-agent/internal/turn"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for audio frames

	greetingText = "I'm connected and ready for the interview. Please paste the " +
		"job description and submit it, so I can walk you through my fit for the role."

	defaultLanguage = "en-US"

	// Finalize the utterance as soon as the detector reports end of speech,
	// before the client's explicit listening_end, so the reply starts
	// generating while the tail of audio is still in flight.
	preemptiveGeneration = true
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Join tokens gate the endpoint; cross-origin browser clients are
		// expected.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active interview clients and holds the shared
// provider adapters.
type Hub struct {
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	composer *interview.Composer
	llm      repositories.LanguageModel
	stt      repositories.SpeechToText
	tts      repositories.TextToSpeech
	vad      repositories.VoiceActivityDetector
	store    repositories.InterviewRepository

	logger *zap.Logger
}

// NewHub creates a hub over the provider adapters.
func NewHub(
	composer *interview.Composer,
	llm repositories.LanguageModel,
	stt repositories.SpeechToText,
	tts repositories.TextToSpeech,
	vad repositories.VoiceActivityDetector,
	store repositories.InterviewRepository,
	logger *zap.Logger,
) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		composer:   composer,
		llm:        llm,
		stt:        stt,
		tts:        tts,
		vad:        vad,
		store:      store,
		logger:     logger,
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.identity] = client
			h.mu.Unlock()
			h.logger.Info("Participant joined",
				zap.String("room", client.room),
				zap.String("identity", client.identity))
			go client.startSession()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.identity]; ok {
				delete(h.clients, client.identity)
				client.closeSend()
			}
			h.mu.Unlock()
			h.logger.Info("Participant left",
				zap.String("room", client.room),
				zap.String("identity", client.identity))
		}
	}
}

// WriteData is one outbound websocket frame.
type WriteData struct {
	// Type is websocket.TextMessage or websocket.BinaryMessage.
	Type    int
	Payload []byte
}

// Client is the server side of one participant's interview session.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of outbound frames. Turn goroutines may still be
	// producing when the participant disconnects, so the channel is closed
	// via closeSend and producers go through enqueue, never the bare
	// channel.
	send       chan WriteData
	sendMu     sync.Mutex
	sendClosed bool

	room     string
	identity string
	connType entities.ConnectionType

	logger *zap.Logger

	// sessionCtx outlives individual handlers and bounds provider streams.
	sessionCtx    context.Context
	sessionCancel context.CancelFunc

	state      *interview.State
	record     *entities.Interview
	suppressor *audio.Suppressor
	vadStream  repositories.VADStream
	audioCfg   repositories.AudioConfig

	chat     repositories.ChatSession
	pipeline *turn.Pipeline

	sttStream      repositories.SpeechToTextStream
	listeningStart time.Time

	mutex sync.Mutex
}

// ServeSession upgrades an authenticated request and starts the session
// pumps.
func ServeSession(hub *Hub, c echo.Context, claims *auth.Claims, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := newClient(hub, conn, claims, logger)
	hub.register <- client

	go client.writePump()
	go client.readPump()

	return nil
}

func newClient(hub *Hub, conn *websocket.Conn, claims *auth.Claims, logger *zap.Logger) *Client {
	connType := entities.ConnectionStandard
	if claims.ConnectionType == string(entities.ConnectionTelephony) {
		connType = entities.ConnectionTelephony
	}

	sampleRate := 48000
	profile := audio.ProfileStandard
	if connType == entities.ConnectionTelephony {
		sampleRate = 8000
		profile = audio.ProfileTelephony
	}

	record := entities.NewInterview(claims.Room, claims.Identity)
	record.ConnectionType = connType

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan WriteData, 256),
		room:          claims.Room,
		identity:      claims.Identity,
		connType:      connType,
		logger:        logger,
		sessionCtx:    ctx,
		sessionCancel: cancel,
		state:         interview.NewState(),
		record:        record,
		suppressor:    audio.NewSuppressor(profile, sampleRate),
		vadStream:     hub.vad.NewStream(sampleRate),
		audioCfg: repositories.AudioConfig{
			SampleRate: sampleRate,
			Encoding:   "LINEAR16",
			Language:   defaultLanguage,
		},
	}
}

// startSession bootstraps the external capabilities for a freshly joined
// participant and speaks the greeting.
func (c *Client) startSession() {
	ctx, cancel := context.WithTimeout(c.sessionCtx, 30*time.Second)
	defer cancel()

	c.mutex.Lock()
	record := c.record.Clone()
	c.mutex.Unlock()
	if err := c.hub.store.Create(ctx, record); err != nil {
		c.logger.Warn("Failed to persist new interview", zap.Error(err))
	}

	chat, err := c.hub.llm.NewChatSession(ctx, c.hub.composer.Compose(""), nil)
	if err != nil {
		c.logger.Error("Failed to create chat session", zap.Error(err))
		c.sendEvent(Event{
			Type:    MessageTypeError,
			Message: "failed to start interview session",
		})
		return
	}

	c.mutex.Lock()
	c.chat = chat
	c.pipeline = turn.NewPipeline(c.logger,
		&turn.ComposeStage{Composer: c.hub.composer, State: c.state, Chat: chat},
		&turn.GenerateStage{Chat: chat},
		&turn.SynthesizeStage{TTS: c.hub.tts},
	)
	c.mutex.Unlock()

	c.sendEvent(Event{
		Type:      MessageTypeSessionReady,
		SessionID: c.record.ID,
		Timestamp: time.Now().Unix(),
	})

	c.speak(greetingText)

	// A job description may have landed while the chat session was still
	// bootstrapping; answer it now.
	if jd := c.state.JobDescription(); jd != "" {
		go c.respond(c.fitEvaluationInput(jd))
	}
}

// readPump pumps messages from the websocket connection to the session.
func (c *Client) readPump() {
	defer func() {
		c.closeSession()
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			c.processData(message)
		case websocket.BinaryMessage:
			c.processAudio(message)
		default:
			c.logger.Warn("Received unknown frame type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps outbound frames to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write frame", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processData dispatches one inbound data-channel message. Malformed and
// unrecognized payloads are dropped without a reply; the client gets no
// acknowledgment either way.
func (c *Client) processData(raw []byte) {
	msg, err := ParseDataMessage(raw)
	if err != nil {
		c.logger.Debug("Ignoring malformed data message", zap.Error(err))
		return
	}

	switch msg.Type {
	case MessageTypeJobDescription:
		c.handleJobDescription(msg)
	case MessageTypeListeningStart:
		c.handleListeningStart(msg)
	case MessageTypeListeningEnd:
		c.finalizeUtterance("client_end")
	case MessageTypePing:
		c.sendEvent(Event{Type: MessageTypePong, Timestamp: time.Now().Unix()})
	default:
		c.logger.Debug("Ignoring unrecognized data message type",
			zap.String("type", string(msg.Type)))
	}
}

// handleJobDescription stores the received job description (last write
// wins) and triggers an immediate spoken fit evaluation.
func (c *Client) handleJobDescription(msg *DataMessage) {
	if msg.Content == "" {
		return
	}

	c.state.SetJobDescription(msg.Content)

	c.mutex.Lock()
	c.record.SetJobDescription(msg.Content)
	chatReady := c.chat != nil
	c.mutex.Unlock()

	c.logger.Info("Received job description",
		zap.String("identity", c.identity),
		zap.String("preview", previewText(msg.Content)))

	if !chatReady {
		return
	}

	go c.respond(c.fitEvaluationInput(msg.Content))
}

// fitEvaluationInput builds the model turn for a freshly received job
// description, grounded with the most relevant resume sections.
func (c *Client) fitEvaluationInput(jd string) string {
	input := fmt.Sprintf(
		"Here is the job description I need you to evaluate: %s. Am I a fit?", jd)

	sections := interview.TopSections(
		interview.SplitSections(c.hub.composer.Resume()), jd, 5)
	if len(sections) > 0 {
		input += "\n\nMOST RELEVANT RESUME SECTIONS:\n" +
			strings.Join(sections, "\n---\n") +
			"\nCompare the job description strictly against these sections."
	}

	return input
}

// handleListeningStart opens a streaming transcription for one utterance.
func (c *Client) handleListeningStart(msg *DataMessage) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.sttStream != nil {
		c.logger.Warn("listening_start while already listening",
			zap.String("identity", c.identity))
		return
	}

	cfg := c.audioCfg
	if msg.SampleRate > 0 {
		cfg.SampleRate = msg.SampleRate
	}
	if msg.Language != "" {
		cfg.Language = msg.Language
	}

	stream, err := c.hub.stt.OpenStream(c.sessionCtx, cfg)
	if err != nil {
		c.logger.Error("Failed to open transcription stream", zap.Error(err))
		c.sendEvent(Event{
			Type:    MessageTypeError,
			Message: "failed to start transcription",
		})
		return
	}

	c.sttStream = stream
	c.listeningStart = time.Now()
	c.vadStream.Reset()
}

// processAudio feeds one binary PCM frame through noise suppression and the
// voice activity detector into the transcription stream.
func (c *Client) processAudio(data []byte) {
	c.mutex.Lock()
	stream := c.sttStream
	if stream == nil {
		c.mutex.Unlock()
		c.logger.Debug("Dropping audio frame outside a listening window",
			zap.String("identity", c.identity))
		return
	}

	frame := c.suppressor.Process(audio.DecodePCM16(data))
	event := c.vadStream.Process(frame)
	err := stream.Write(audio.EncodePCM16(frame))
	c.mutex.Unlock()

	if err != nil {
		c.logger.Error("Failed to stream audio frame", zap.Error(err))
		return
	}

	if event == repositories.VADSpeechEnd && preemptiveGeneration {
		go c.finalizeUtterance("vad_endpoint")
	}
}

// finalizeUtterance ends the current transcription stream and, when a
// transcript came back, starts the reply turn.
func (c *Client) finalizeUtterance(reason string) {
	c.mutex.Lock()
	stream := c.sttStream
	c.sttStream = nil
	started := c.listeningStart
	c.mutex.Unlock()

	if stream == nil {
		return
	}

	text, err := stream.Close()
	if err != nil {
		c.logger.Warn("Transcription ended without result",
			zap.String("reason", reason),
			zap.Error(err))
		return
	}
	if strings.TrimSpace(text) == "" {
		return
	}

	durationMs := time.Since(started).Milliseconds()

	c.mutex.Lock()
	c.record.AddEntry(entities.TranscriptRoleRecruiter, text, durationMs)
	sessionID := c.record.ID
	c.mutex.Unlock()

	c.sendEvent(Event{
		Type:      MessageTypeTranscript,
		SessionID: sessionID,
		Role:      string(entities.TranscriptRoleRecruiter),
		Text:      text,
		Timestamp: time.Now().Unix(),
	})
	c.persist()

	go c.respond(text)
}

// respond runs one full agent turn for the given model input and streams
// the spoken reply.
func (c *Client) respond(input string) {
	ctx, cancel := context.WithTimeout(c.sessionCtx, 60*time.Second)
	defer cancel()

	c.mutex.Lock()
	pipeline := c.pipeline
	c.mutex.Unlock()
	if pipeline == nil {
		return
	}

	t := &turn.Turn{Input: input}
	if err := pipeline.Run(ctx, t); err != nil {
		c.sendEvent(Event{
			Type:    MessageTypeError,
			Message: "failed to produce a reply",
		})
		return
	}

	c.streamSpeech(t)
}

// speak synthesizes a preset utterance without involving the model.
func (c *Client) speak(text string) {
	ctx, cancel := context.WithTimeout(c.sessionCtx, 60*time.Second)
	defer cancel()

	c.mutex.Lock()
	pipeline := c.pipeline
	c.mutex.Unlock()
	if pipeline == nil {
		return
	}

	t := &turn.Turn{Reply: text}
	if err := pipeline.Run(ctx, t); err != nil {
		c.logger.Error("Failed to synthesize utterance", zap.Error(err))
		return
	}

	c.streamSpeech(t)
}

// streamSpeech sends the reply text and its audio to the participant and
// records the candidate's transcript entry.
func (c *Client) streamSpeech(t *turn.Turn) {
	start := time.Now()

	c.mutex.Lock()
	sessionID := c.record.ID
	c.mutex.Unlock()

	c.sendEvent(Event{
		Type:      MessageTypeSpeakingStart,
		SessionID: sessionID,
		Role:      string(entities.TranscriptRoleCandidate),
		Text:      t.Reply,
		Timestamp: start.Unix(),
	})

	for chunk := range t.Audio {
		c.enqueue(WriteData{Type: websocket.BinaryMessage, Payload: chunk})
	}

	c.sendEvent(Event{
		Type:      MessageTypeSpeakingEnd,
		SessionID: sessionID,
		Timestamp: time.Now().Unix(),
	})

	c.mutex.Lock()
	c.record.AddEntry(entities.TranscriptRoleCandidate, t.Reply, time.Since(start).Milliseconds())
	c.mutex.Unlock()

	c.persist()
}

// closeSession finalizes session state when the participant disconnects.
func (c *Client) closeSession() {
	c.sessionCancel()

	c.mutex.Lock()
	stream := c.sttStream
	c.sttStream = nil
	c.record.Complete()
	c.mutex.Unlock()

	if stream != nil {
		if _, err := stream.Close(); err != nil {
			c.logger.Debug("Transcription stream close on disconnect", zap.Error(err))
		}
	}

	c.persist()
}

// persist stores the current interview record; failures are logged, never
// surfaced to the participant.
func (c *Client) persist() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The store marshals the record outside c.mutex while other goroutines
	// still append transcript entries, so it gets a snapshot.
	c.mutex.Lock()
	record := c.record.Clone()
	c.mutex.Unlock()

	if err := c.hub.store.Update(ctx, record); err != nil {
		c.logger.Warn("Failed to persist interview", zap.Error(err))
	}
}

func (c *Client) sendEvent(ev Event) {
	c.enqueue(WriteData{Type: websocket.TextMessage, Payload: marshalEvent(ev)})
}

func (c *Client) enqueue(data WriteData) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.sendClosed {
		c.logger.Debug("Dropping frame for disconnected participant",
			zap.String("identity", c.identity))
		return
	}

	select {
	case c.send <- data:
	default:
		c.logger.Warn("Outbound buffer full, dropping frame",
			zap.String("identity", c.identity))
	}
}

// previewText trims log previews on a rune boundary.
func previewText(text string) string {
	if len(text) <= 50 {
		return text
	}
	cut := 50
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// closeSend closes the outbound channel exactly once. Producers that race
// the disconnect observe sendClosed and drop their frames instead of
// sending on a closed channel.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.send)
}
