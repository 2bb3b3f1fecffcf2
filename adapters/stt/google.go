package stt

import (
	"context"
	"fmt"
	"io"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/MAdityaRao/Resume-agent/domain/repositories"
)

// GoogleSpeechToText implements SpeechToText over Google Cloud
// Speech-to-Text streaming recognition. Credentials come from the usual
// GOOGLE_APPLICATION_CREDENTIALS environment.
type GoogleSpeechToText struct {
	logger *zap.Logger
}

func NewGoogleSpeechToText(logger *zap.Logger) *GoogleSpeechToText {
	return &GoogleSpeechToText{logger: logger}
}

// OpenStream starts a streaming transcription session for one utterance.
func (g *GoogleSpeechToText) OpenStream(ctx context.Context, config repositories.AudioConfig) (repositories.SpeechToTextStream, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	stream, err := client.StreamingRecognize(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create streaming recognize: %w", err)
	}

	encoding, err := audioEncoding(config.Encoding)
	if err != nil {
		stream.CloseSend()
		client.Close()
		return nil, err
	}

	if err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:        encoding,
					SampleRateHertz: int32(config.SampleRate),
					LanguageCode:    config.Language,
				},
				InterimResults:  false,
				SingleUtterance: true,
			},
		},
	}); err != nil {
		stream.CloseSend()
		client.Close()
		return nil, fmt.Errorf("failed to send streaming config: %w", err)
	}

	s := &googleStream{
		client:     client,
		stream:     stream,
		ctx:        ctx,
		logger:     g.logger,
		resultChan: make(chan string, 1),
		errorChan:  make(chan error, 1),
	}
	go s.receiveResults()

	return s, nil
}

type googleStream struct {
	client *speech.Client
	stream speechpb.Speech_StreamingRecognizeClient
	ctx    context.Context
	logger *zap.Logger

	resultChan chan string
	errorChan  chan error

	mu            sync.Mutex
	audioReceived bool
	closed        bool
}

// Write sends one audio chunk to the recognizer.
func (s *googleStream) Write(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("stream already closed")
	}
	s.audioReceived = true

	if err := s.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: data,
		},
	}); err != nil {
		return fmt.Errorf("failed to send audio data: %w", err)
	}

	return nil
}

// Close ends the utterance and blocks until the final transcript arrives.
func (s *googleStream) Close() (string, error) {
	defer s.client.Close()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", fmt.Errorf("stream already closed")
	}
	s.closed = true
	received := s.audioReceived
	s.mu.Unlock()

	if !received {
		s.stream.CloseSend()
		return "", fmt.Errorf("no audio data received")
	}

	if err := s.stream.CloseSend(); err != nil {
		return "", fmt.Errorf("failed to close send stream: %w", err)
	}

	select {
	case <-s.ctx.Done():
		return "", fmt.Errorf("context cancelled while waiting for result: %w", s.ctx.Err())
	case err := <-s.errorChan:
		return "", err
	case result := <-s.resultChan:
		if result == "" {
			return "", fmt.Errorf("no speech detected in audio")
		}
		return result, nil
	}
}

func (s *googleStream) receiveResults() {
	var transcript string

	for {
		resp, err := s.stream.Recv()
		if err == io.EOF {
			s.resultChan <- transcript
			return
		}
		if err != nil {
			s.errorChan <- fmt.Errorf("failed to receive response: %w", err)
			return
		}

		for _, result := range resp.Results {
			if result.IsFinal && len(result.Alternatives) > 0 {
				transcript = result.Alternatives[0].Transcript
				s.logger.Debug("Final recognition result",
					zap.Float32("confidence", result.Alternatives[0].Confidence))
			}
		}
	}
}

// audioEncoding converts the transport encoding name to the Speech API enum.
func audioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch encoding {
	case "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED,
			fmt.Errorf("unsupported audio encoding: %s", encoding)
	}
}
