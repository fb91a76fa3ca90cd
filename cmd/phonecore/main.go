// Phonecore is a command-line HTTP request builder.
//
// It sends GET and POST requests with form, JSON, raw or multipart bodies,
// uploads files, downloads responses to disk and keeps a history of the
// requests it made. Saved profiles hold the settings for frequently used
// endpoints.
//
// Usage:
//
//	phonecore [command] [flags]
//
// See 'phonecore --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phonecore/phonecore/internal/config"
	"github.com/phonecore/phonecore/internal/logging"
	"github.com/phonecore/phonecore/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "phonecore",
	Short: "HTTP request builder and downloader",
	Long: `A command-line client for form, JSON and multipart HTTP requests.

Failed requests print an error envelope instead of a response body:

  [{"FrameworkException":"<message>"}]

Set PHONECORE_LOG_LEVEL to debug, info, warn or error for diagnostic logs.`,
	Version:           version.Version,
	SilenceUsage:      true,
	PersistentPreRunE: initLogging,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

// initLogging starts zap at the level from PHONECORE_LOG_LEVEL or, when
// unset, the log_level preference.
func initLogging(cmd *cobra.Command, args []string) error {
	level := ""
	if os.Getenv(logging.LogLevelEnvVar) == "" {
		if registry, err := config.LoadRegistry(); err == nil && registry.Preferences != nil {
			level = registry.Preferences.LogLevel
		}
	}
	if err := logging.Initialize(level); err != nil {
		return err
	}
	logging.Debug("Starting", zap.String("command", cmd.CommandPath()), zap.String("version", version.Full()))
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "phonecore %s\n", version.Full())
	},
}
