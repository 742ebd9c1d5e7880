// Package pipeline runs a recognized track through an ordered sequence of
// processing stages. Stages execute strictly sequentially because later
// stages may depend on mutations made by earlier ones.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"trackwatch/internal/track"
)

// Status describes one pipeline run.
type Status int

const (
	// StatusIdle is the state of a run before its first stage starts.
	StatusIdle Status = iota
	// StatusRunning means a stage is currently executing.
	StatusRunning
	// StatusCompleted means every stage finished without error.
	StatusCompleted
	// StatusFailed means a stage returned an error and the rest were skipped.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Song is the unit of work flowing through the pipeline: the reported
// snapshot plus the flags stages set while enriching or short-circuiting it.
type Song struct {
	State *track.State
	Flags Flags
}

// Flags carries per-song processing outcomes across stages.
type Flags struct {
	// IsValid is set once the song carries enough identity to be reported.
	IsValid bool
	// IsRepeat is set when the song was already seen this session.
	IsRepeat bool
}

// Stage is one unit of sequential track post-processing. Process either
// mutates the song in place or leaves it unchanged; failure is signaled by
// the returned error and aborts the remaining stages of that run.
type Stage interface {
	Name() string
	Process(ctx context.Context, song *Song) error
}

// Pipeline holds the ordered stage sequence. It carries no retry logic and
// no failure counters; both belong to the caller driving Process.
type Pipeline struct {
	stages []Stage
	logger *zap.Logger
}

// New creates a pipeline over the given stages, executed in the given order.
func New(logger *zap.Logger, stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, logger: logger}
}

// Run is the state machine for a single Process invocation. Runs are never
// reused across inputs.
type Run struct {
	Status      Status
	FailedStage string
	Err         error
}

// Process drives the song through every stage in order, awaiting each before
// the next starts. The first stage error aborts the remainder; mutations
// already applied by earlier stages are kept, stages are expected to be
// individually safe to apply partially.
func (p *Pipeline) Process(ctx context.Context, song *Song) error {
	run := p.process(ctx, song)
	return run.Err
}

func (p *Pipeline) process(ctx context.Context, song *Song) *Run {
	run := &Run{Status: StatusIdle}

	run.Status = StatusRunning
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			run.Status = StatusFailed
			run.FailedStage = stage.Name()
			run.Err = err
			return run
		}

		if err := stage.Process(ctx, song); err != nil {
			p.logger.Warn("Pipeline stage failed",
				zap.String("stage", stage.Name()),
				zap.Error(err))

			run.Status = StatusFailed
			run.FailedStage = stage.Name()
			run.Err = fmt.Errorf("stage %s: %w", stage.Name(), err)
			return run
		}
	}

	run.Status = StatusCompleted
	return run
}
