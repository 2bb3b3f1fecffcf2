package repositories

import "context"

// SpeechToText abstracts streaming speech recognition services.
type SpeechToText interface {
	// OpenStream starts a streaming transcription session for one utterance.
	OpenStream(ctx context.Context, config AudioConfig) (SpeechToTextStream, error)
}

// AudioConfig describes the inbound audio for recognition.
type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"`
}

// SpeechToTextStream consumes audio chunks and produces one final transcript.
type SpeechToTextStream interface {
	Write(data []byte) error
	// Close ends the utterance and blocks until the final transcript is
	// available.
	Close() (string, error)
}
