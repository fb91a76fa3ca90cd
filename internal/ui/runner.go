package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig describes a multi-step command
type RunnerConfig struct {
	Title           string            // e.g., "Download"
	Command         string            // e.g., "phonecore download out.bin"
	Params          map[string]string // Shown in the header
	StepNames       []string          // One entry per step
	Troubleshooting []string          // Tips printed when the operation fails
	Output          io.Writer         // Default: os.Stdout
}

// Operation is the work a Runner executes. It reports progress through
// onStep and returns the result to print.
type Operation func(ctx context.Context, onStep StepCallback) (*Result, error)

// Runner prints a header, step lines as the operation reports them, and
// the final result box.
type Runner struct {
	config   RunnerConfig
	header   *Header
	progress *Progress
	output   io.Writer
	width    int
}

// NewRunner creates a runner for a command
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	width := GetTerminalWidth()

	var prog *Progress
	if len(config.StepNames) > 0 {
		prog = NewProgress("", len(config.StepNames)).
			SetWidth(width).
			SetStepNames(config.StepNames)
	}

	return &Runner{
		config:   config,
		header:   NewHeader(config.Title, config.Command, config.Params).SetWidth(width),
		progress: prog,
		output:   config.Output,
		width:    width,
	}
}

// Progress returns the step tracker, or nil for commands without steps
func (r *Runner) Progress() *Progress {
	return r.progress
}

// Run executes op and prints the outcome. The operation's error is returned.
func (r *Runner) Run(ctx context.Context, op Operation) error {
	start := time.Now()

	_, _ = fmt.Fprintln(r.output, r.header.Render())
	_, _ = fmt.Fprintln(r.output)

	result, err := op(ctx, r.stepCallback())
	duration := time.Since(start).Round(time.Millisecond)

	if r.progress != nil {
		_, _ = fmt.Fprintln(r.output)
		_, _ = fmt.Fprintln(r.output, r.progress.renderProgressBar())
	}
	_, _ = fmt.Fprintln(r.output)

	if err != nil {
		result = NewFailureResult(r.config.Title+" failed", err, r.config.Troubleshooting)
	} else if result == nil {
		result = NewSuccessResult(r.config.Title+" complete", nil)
	}
	result.AddDetail("Duration", duration.String())
	result.SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())

	return err
}

func (r *Runner) stepCallback() StepCallback {
	return func(stepNumber int, name string, status StepStatus, message string) {
		if r.progress == nil || stepNumber < 1 || stepNumber > len(r.progress.Steps) {
			return
		}
		if name != "" {
			r.progress.Steps[stepNumber-1].Name = name
		}
		r.progress.UpdateStep(stepNumber, status, message)

		line := r.progress.renderStepLine(r.progress.Steps[stepNumber-1])
		if status == StepRunning {
			// overwritten when the step finishes
			_, _ = fmt.Fprint(r.output, line+"\r")
			return
		}
		_, _ = fmt.Fprintln(r.output, line)
	}
}
