package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phonecore/phonecore/internal/config"
	"github.com/phonecore/phonecore/internal/httphelper"
	"github.com/phonecore/phonecore/internal/logging"
	"github.com/phonecore/phonecore/internal/ui"
)

// errRequestFailed makes the process exit non-zero after a failure was printed
var errRequestFailed = errors.New("request failed")

// Request command flags
type requestFlags struct {
	url       string
	method    string
	params    []string
	files     []string
	encoding  string
	timeout   time.Duration
	lang      string
	fieldName string
	profile   string
	raw       bool
	maxLines  int
	noHistory bool
}

var reqFlags requestFlags

func init() {
	addClientFlags(requestCmd, &reqFlags)
	requestCmd.Flags().StringVarP(&reqFlags.method, "method", "X", "", "Request method: GET or POST")
	requestCmd.Flags().StringArrayVarP(&reqFlags.files, "file", "F", nil, "File to upload (repeatable; forces POST)")
	requestCmd.Flags().StringVarP(&reqFlags.encoding, "encoding", "e", "", "POST body encoding: urlencoded, standard, json or none")
	requestCmd.Flags().StringVar(&reqFlags.fieldName, "field-name", "", "Multipart name attribute for uploads")
	requestCmd.Flags().BoolVar(&reqFlags.raw, "raw", false, "Print only the response body")
	requestCmd.Flags().IntVar(&reqFlags.maxLines, "max-lines", 40, "Maximum response lines to display (0 = all)")

	rootCmd.AddCommand(requestCmd)
}

// addClientFlags registers the flags shared by request and download
func addClientFlags(cmd *cobra.Command, f *requestFlags) {
	cmd.Flags().StringVarP(&f.url, "url", "u", "", "Request URL without query string")
	cmd.Flags().StringArrayVarP(&f.params, "param", "p", nil, "Parameter as key=value (repeatable, order is kept)")
	cmd.Flags().DurationVarP(&f.timeout, "timeout", "t", 0, "Request timeout (default 20s)")
	cmd.Flags().StringVar(&f.lang, "lang", "", "Accept-Language header (default zh-CN)")
	cmd.Flags().StringVarP(&f.profile, "profile", "P", "", "Saved profile to start from")
	cmd.Flags().BoolVar(&f.noHistory, "no-history", false, "Do not record this request in the history")
}

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Send a GET or POST request",
	Long: `Send an HTTP request and print the response body.

Parameters go into the query string for GET and into the body for POST.
Uploading a file always sends a multipart POST, so --encoding standard is
required together with --file.

A request that times out or gets a 4xx/5xx status prints a no-response
warning; other failures print the error envelope.`,
	Example: `  # GET with query parameters
  phonecore request -u http://example.com/api -p id=7 -p q="x y"

  # JSON POST
  phonecore request -u http://example.com/api -X post -e json -p body='{"id":7}'

  # Upload a photo
  phonecore request -u http://example.com/upload -e standard -F photo.png -p user=alice

  # Start from a saved profile and print the raw body
  phonecore request -P upload -F photo.png --raw`,
	Args: cobra.NoArgs,
	RunE: runRequest,
}

// splitParam splits "key=value" at the first '='
func splitParam(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid parameter %q (want key=value)", s)
	}
	return key, value, nil
}

// newClient builds a client from the selected profile and flag overrides
func newClient(cmd *cobra.Command, f *requestFlags) (*httphelper.Client, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	profile := registry.GetProfile(f.profile)
	if profile == nil && f.profile != "" {
		return nil, fmt.Errorf("profile %q not found", f.profile)
	}

	client, err := httphelper.NewFromProfile(profile)
	if err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	flags := cmd.Flags()
	if f.url != "" {
		client.URL = f.url
	}
	if flags.Changed("timeout") {
		client.SetTimeout(f.timeout)
	}
	if f.lang != "" {
		client.AcceptLanguage = f.lang
	}
	if flags.Lookup("method") != nil && flags.Changed("method") {
		if client.Method, err = httphelper.ParseMethod(f.method); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("encoding") != nil && flags.Changed("encoding") {
		if client.Encoding, err = httphelper.ParseEncoding(f.encoding); err != nil {
			return nil, err
		}
	}
	if f.fieldName != "" {
		client.FileFieldName = f.fieldName
	}
	if client.URL == "" {
		return nil, errors.New("no URL given (use --url or a profile with base_url)")
	}

	for _, p := range f.params {
		key, value, err := splitParam(p)
		if err != nil {
			return nil, err
		}
		if err := client.AppendParameter(key, value); err != nil {
			return nil, err
		}
	}
	return client, nil
}

func runRequest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client, err := newClient(cmd, &reqFlags)
	if err != nil {
		return err
	}

	// upload streams belong to us; the client only reads them
	for _, path := range reqFlags.files {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open upload: %w", err)
		}
		defer func() { _ = f.Close() }()
		if err := client.AppendFileParameter(filepath.Base(path), f); err != nil {
			return err
		}
	}

	events, unsubscribe := client.Subscribe()
	defer unsubscribe()

	printer := ui.NewPrinter(cmd.OutOrStdout())
	method := client.Method.String()
	if client.HasUploadFile() {
		method = "POST"
	}
	if !reqFlags.raw {
		printer.PrintHeader(method+" request", cmd.CommandPath(), map[string]string{
			"URL":      client.URL,
			"Encoding": client.Encoding.String(),
			"Timeout":  client.Timeout.String(),
			"Params":   strconv.Itoa(client.ParameterCount()),
		})
	}

	start := time.Now()
	var body string
	err = ui.RunWithSpinner(ctx, printer.Writer(), "Waiting for "+client.URL, func(ctx context.Context) error {
		var reqErr error
		body, reqErr = client.Request(ctx)
		return reqErr
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	var noResponse *httphelper.NoResponseEvent
	select {
	case ev := <-events:
		noResponse = &ev
	default:
	}
	envelopeMsg, failed := httphelper.ParseEnvelope(body)

	if !reqFlags.noHistory {
		recordHistory(historyEntry{
			Method:   method,
			URL:      client.URL,
			Outcome:  outcomeOf(failed, noResponse),
			Bytes:    len(body),
			Duration: elapsed,
		})
	}

	if reqFlags.raw {
		fmt.Fprintln(cmd.OutOrStdout(), body)
		if failed {
			return errRequestFailed
		}
		return nil
	}

	switch {
	case noResponse != nil:
		details := map[string]string{
			"Reason":  noResponse.Reason.String(),
			"Timeout": noResponse.Timeout.String(),
		}
		if noResponse.StatusCode != 0 {
			details["Status"] = strconv.Itoa(noResponse.StatusCode)
		}
		printer.PrintWarning("No response from server", details, []string{
			"Check that the server is reachable and healthy",
			"Increase --timeout for slow endpoints",
			"Parameters were kept; rerun to retry",
		})
		return errRequestFailed
	case failed:
		printer.PrintError("Request failed", errors.New(envelopeMsg), []string{
			"Check the URL and your network connection",
			"Run 'phonecore device' to see the network state",
			"Set PHONECORE_LOG_LEVEL=debug for transport details",
		})
		return errRequestFailed
	}

	logging.Debug("Request finished", zap.String("url", client.URL), zap.Duration("elapsed", elapsed))
	printer.PrintSuccess("Request complete", map[string]string{
		"Size":     humanize.Bytes(uint64(len(body))),
		"Duration": elapsed.Round(time.Millisecond).String(),
	})
	printer.PrintResponse(body, reqFlags.maxLines)
	return nil
}
