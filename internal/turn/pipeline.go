// Package turn runs one agent turn as a sequence of named stages with
// per-stage timing. A turn either carries recruiter input to be answered or
// a preset reply (greetings) that only needs synthesis.
package turn

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Turn carries the evolving state of one agent turn through the stages.
type Turn struct {
	// Input is the recruiter's utterance or message. Empty for turns with a
	// preset Reply.
	Input string
	// Instructions is the composed system prompt for this turn.
	Instructions string
	// Reply is the candidate's textual answer.
	Reply string
	// Audio streams the synthesized reply; closed when synthesis ends.
	Audio <-chan []byte

	StartedAt time.Time
}

// Stage is one step of a turn.
type Stage interface {
	Name() string
	Run(ctx context.Context, t *Turn) error
}

// Pipeline executes stages sequentially, failing fast on the first error.
type Pipeline struct {
	stages []Stage
	logger *zap.Logger
}

// NewPipeline creates a pipeline over the given stages.
func NewPipeline(logger *zap.Logger, stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, logger: logger}
}

// Run drives the turn through every stage.
func (p *Pipeline) Run(ctx context.Context, t *Turn) error {
	t.StartedAt = time.Now()

	for _, stage := range p.stages {
		start := time.Now()
		if err := stage.Run(ctx, t); err != nil {
			p.logger.Error("Turn stage failed",
				zap.String("stage", stage.Name()),
				zap.Error(err))
			return fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		p.logger.Debug("Turn stage completed",
			zap.String("stage", stage.Name()),
			zap.Duration("elapsed", time.Since(start)))
	}

	return nil
}
