package repositories

import "context"

// TextToSpeech abstracts speech synthesis services. Synthesize returns a
// channel of audio chunks that is closed when synthesis finishes.
type TextToSpeech interface {
	Synthesize(ctx context.Context, text string) (<-chan []byte, error)
}
