package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/phonecore/phonecore/internal/config"
	"github.com/phonecore/phonecore/internal/deviceinfo"
	"github.com/phonecore/phonecore/internal/httphelper"
	"github.com/phonecore/phonecore/internal/storage"
	"github.com/phonecore/phonecore/internal/ui"
)

// routeLookupTimeout bounds the network check before a download
const routeLookupTimeout = 3 * time.Second

var dlFlags requestFlags

func init() {
	addClientFlags(downloadCmd, &dlFlags)
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download <path>",
	Short: "Download a URL to a file",
	Long: `Download the response of a GET request to a file.

An existing file at <path> is replaced. Relative paths are resolved
against the download_dir preference when it is set.`,
	Example: `  phonecore download -u http://example.com/image.png image.png
  phonecore download -P cdn -p id=42 report.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

// probeTarget returns host:port for a route lookup towards rawURL
func probeTarget(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return deviceinfo.DefaultProbeTarget
	}
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return net.JoinHostPort(u.Hostname(), port)
}

// downloadFiles returns the file service for the download_dir preference
func downloadFiles() *storage.FileService {
	registry, err := config.LoadRegistry()
	if err != nil || registry.Preferences == nil {
		return storage.New("")
	}
	return storage.New(registry.Preferences.DownloadDir)
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	path := args[0]
	client, err := newClient(cmd, &dlFlags)
	if err != nil {
		return err
	}
	client.Files = downloadFiles()

	events, unsubscribe := client.Subscribe()
	defer unsubscribe()

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Download",
		Command: cmd.CommandPath() + " " + path,
		Params: map[string]string{
			"URL":     client.FullURL(),
			"Path":    path,
			"Timeout": client.Timeout.String(),
		},
		StepNames: []string{"Checking network", "Downloading", "Verifying file"},
		Troubleshooting: []string{
			"Check the URL and your network connection",
			"Make sure the target directory is writable",
			"Set PHONECORE_LOG_LEVEL=debug for transport details",
		},
		Output: cmd.OutOrStdout(),
	})

	start := time.Now()
	var size int64
	var noResponse *httphelper.NoResponseEvent
	answered := true

	err = runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) (*ui.Result, error) {
		onStep(1, "", ui.StepRunning, "")
		network := lookupNetwork(ctx, probeTarget(client.URL))
		if network == deviceinfo.NetworkNone.String() {
			onStep(1, "", ui.StepFailed, "no route")
			return nil, errors.New("network unavailable")
		}
		onStep(1, "", ui.StepComplete, network)

		onStep(2, "", ui.StepRunning, "")
		ok, err := client.DownloadFile(ctx, path)
		if err != nil {
			onStep(2, "", ui.StepFailed, "")
			return nil, err
		}
		if !ok {
			answered = false
			onStep(2, "", ui.StepFailed, "no response")
			onStep(3, "", ui.StepSkipped, "")
			select {
			case ev := <-events:
				noResponse = &ev
			default:
			}
			details := map[string]string{"Path": path}
			if noResponse != nil {
				details["Reason"] = noResponse.Reason.String()
				if noResponse.StatusCode != 0 {
					details["Status"] = strconv.Itoa(noResponse.StatusCode)
				}
			}
			return ui.NewWarningResult("No response from server", details), nil
		}
		onStep(2, "", ui.StepComplete, "")

		onStep(3, "", ui.StepRunning, "")
		size, err = client.Files.Size(path)
		if err != nil {
			onStep(3, "", ui.StepFailed, "")
			return nil, fmt.Errorf("downloaded file missing: %w", err)
		}
		onStep(3, "", ui.StepComplete, humanize.Bytes(uint64(size)))

		return ui.NewSuccessResult("Download complete", map[string]string{
			"Path":  path,
			"Size":  humanize.Bytes(uint64(size)),
			"Bytes": humanize.Comma(size),
		}), nil
	})

	outcome := outcomeOK
	if !answered {
		outcome = outcomeNoResponse
	} else if err != nil {
		outcome = outcomeFailed
	}
	if !dlFlags.noHistory {
		recordHistory(historyEntry{
			Method:   "GET",
			URL:      client.URL,
			Outcome:  outcome,
			Bytes:    int(size),
			Duration: time.Since(start),
		})
	}

	if err != nil {
		return err
	}
	if outcome != outcomeOK {
		return errRequestFailed
	}
	return nil
}

// lookupNetwork resolves the network used to reach target
func lookupNetwork(ctx context.Context, target string) string {
	ctx, cancel := context.WithTimeout(ctx, routeLookupTimeout)
	defer cancel()

	names := make(chan string, 1)
	deviceinfo.ResolveNetworkName(ctx, target, func(name string) {
		names <- name
	})
	select {
	case name := <-names:
		return name
	case <-ctx.Done():
		return deviceinfo.NetworkNone.String()
	}
}
