// Package ui provides terminal output components for the phonecore CLI.
//
// This package uses Bubble Tea and Lipgloss to render styled terminal output
// for request commands. The components follow a "run once and exit"
// pattern: they render output but don't require user interaction, except
// for Confirm.
//
// # Components
//
//   - Header: Command banner showing the request and its parameters
//   - Progress: Progress bar with step list for multi-step commands
//   - Result: Success/failure/warning boxes with sorted details
//   - ResponseView: Response body box, JSON bodies indented
//   - RunWithSpinner: Bubble Tea spinner shown while a request is in flight
//
// Multi-step commands such as downloads use a Runner:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Download",
//	    Command:   "phonecore download out.bin",
//	    StepNames: []string{"Checking network", "Downloading", "Verifying file"},
//	})
//
//	err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) (*ui.Result, error) {
//	    onStep(1, "", ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, "", ui.StepComplete, "WiFi")
//	    return nil, nil
//	})
//
// # Logging Integration
//
// Logging is controlled via the PHONECORE_LOG_LEVEL environment variable.
// When unset or empty, zap logging is silent and only the UI output is
// shown.
package ui
