package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestNewElevenLabs(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := NewElevenLabs(Config{}, logger)
	if err == nil {
		t.Error("expected error when API key is missing")
	}

	synth, err := NewElevenLabs(Config{APIKey: "test-api-key"}, logger)
	if err != nil {
		t.Fatalf("NewElevenLabs: %v", err)
	}

	if synth.voiceID != defaultVoiceID {
		t.Errorf("voiceID = %q, want default %q", synth.voiceID, defaultVoiceID)
	}
	if synth.modelID != defaultModelID {
		t.Errorf("modelID = %q, want default %q", synth.modelID, defaultModelID)
	}
	if synth.outputFormat != defaultOutputFormat {
		t.Errorf("outputFormat = %q, want default %q", synth.outputFormat, defaultOutputFormat)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("ELEVEN_LABS_API_KEY", "test-api-key")
	t.Setenv("ELEVEN_LABS_VOICE_ID", "custom-voice")
	t.Setenv("ELEVEN_LABS_CHUNK_SIZE", "2048")
	t.Setenv("ELEVEN_LABS_STABILITY", "0.7")

	config := ConfigFromEnv()

	if config.APIKey != "test-api-key" {
		t.Errorf("APIKey = %q", config.APIKey)
	}
	if config.VoiceID != "custom-voice" {
		t.Errorf("VoiceID = %q", config.VoiceID)
	}
	if config.ChunkSize != 2048 {
		t.Errorf("ChunkSize = %d", config.ChunkSize)
	}
	if config.Stability != 0.7 {
		t.Errorf("Stability = %f", config.Stability)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid", config: Config{APIKey: "key"}},
		{name: "missing key", config: Config{}, wantErr: true},
		{name: "stability too high", config: Config{APIKey: "key", Stability: 1.2}, wantErr: true},
		{name: "clarity negative", config: Config{APIKey: "key", Clarity: -0.1}, wantErr: true},
		{name: "negative chunk size", config: Config{APIKey: "key", ChunkSize: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	logger := zaptest.NewLogger(t)
	synth, err := NewElevenLabs(Config{APIKey: "test-api-key"}, logger)
	if err != nil {
		t.Fatalf("NewElevenLabs: %v", err)
	}

	if _, err := synth.Synthesize(context.Background(), ""); err == nil {
		t.Error("expected error for empty text")
	}
	if _, err := synth.Synthesize(context.Background(), "   "); err == nil {
		t.Error("expected error for whitespace-only text")
	}
}

func TestSynthesizeStreamsChunks(t *testing.T) {
	payload := make([]byte, 3000)
	for i := range payload {
		payload[i] = byte(i % 251)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") != "test-api-key" {
			t.Errorf("missing api key header")
		}
		if got := r.Header.Get("Accept"); got != "audio/pcm" {
			t.Errorf("Accept = %q, want audio/pcm", got)
		}
		w.WriteHeader(http.StatusOK)
		w.Write(payload)
	}))
	defer srv.Close()

	logger := zaptest.NewLogger(t)
	synth, err := NewElevenLabs(Config{
		APIKey:     "test-api-key",
		APIBaseURL: srv.URL,
		ChunkSize:  1024,
	}, logger)
	if err != nil {
		t.Fatalf("NewElevenLabs: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chunks, err := synth.Synthesize(ctx, "Tell me about the role.")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	var received []byte
	for chunk := range chunks {
		received = append(received, chunk...)
	}

	if len(received) != len(payload) {
		t.Fatalf("received %d bytes, want %d", len(received), len(payload))
	}
	for i := range payload {
		if received[i] != payload[i] {
			t.Fatalf("byte %d = %d, want %d", i, received[i], payload[i])
		}
	}
}

func TestSynthesizeClosesChannelOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid voice"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	logger := zaptest.NewLogger(t)
	synth, err := NewElevenLabs(Config{
		APIKey:     "test-api-key",
		APIBaseURL: srv.URL,
	}, logger)
	if err != nil {
		t.Fatalf("NewElevenLabs: %v", err)
	}

	chunks, err := synth.Synthesize(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	deadline := time.After(10 * time.Second)
	for {
		select {
		case _, ok := <-chunks:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel never closed after API error")
		}
	}
}
