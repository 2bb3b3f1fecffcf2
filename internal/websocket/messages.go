package websocket

import (
	"encoding/json"
	"fmt"
)

// MessageType defines the type of a data-channel message.
type MessageType string

// Inbound message types.
const (
	MessageTypeJobDescription MessageType = "job_description"
	MessageTypeListeningStart MessageType = "listening_start"
	MessageTypeListeningEnd   MessageType = "listening_end"
	MessageTypePing           MessageType = "ping"
)

// Outbound message types.
const (
	MessageTypePong          MessageType = "pong"
	MessageTypeSessionReady  MessageType = "session_ready"
	MessageTypeTranscript    MessageType = "transcript"
	MessageTypeSpeakingStart MessageType = "speaking_start"
	MessageTypeSpeakingEnd   MessageType = "speaking_end"
	MessageTypeError         MessageType = "error"
)

// DataMessage is the inbound data-channel envelope. The job-description
// contract is `{type: "job_description", content: "..."}`; the remaining
// fields are optional audio-control hints.
type DataMessage struct {
	Type       MessageType `json:"type"`
	Content    string      `json:"content,omitempty"`
	SampleRate int         `json:"sample_rate,omitempty"`
	Language   string      `json:"language,omitempty"`
}

// ParseDataMessage decodes an inbound payload. Malformed payloads (invalid
// JSON, missing type) return an error; callers drop them without failing
// the session.
func ParseDataMessage(raw []byte) (*DataMessage, error) {
	var msg DataMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("invalid data message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("data message missing type field")
	}
	return &msg, nil
}

// Event is the outbound message envelope.
type Event struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Role      string      `json:"role,omitempty"`
	Text      string      `json:"text,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp int64       `json:"timestamp,omitempty"`
}

func marshalEvent(ev Event) []byte {
	payload, _ := json.Marshal(ev)
	return payload
}
