// Package logging provides structured logging for phonecore.
//
// This package wraps a zap logger with convenience functions. The logger is
// silent unless a level is configured, so CLI output stays clean by default.
//
// # Log Levels
//
//   - Debug: Outgoing requests with headers, hex/ascii dumps of response bodies
//   - Info: Completed responses and downloads
//   - Warn: Timeouts, server errors, transport failures, forced POST overrides
//   - Error: Unexpected failures
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize(""); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// An empty level falls back to the PHONECORE_LOG_LEVEL environment variable.
// Logs go to stderr in console format so they never mix with response bodies
// written to stdout.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. Initialize and SetLogger
// are meant to be called once, before any request is issued.
package logging
