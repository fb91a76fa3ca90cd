package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phonecore/phonecore/internal/config"
	"github.com/phonecore/phonecore/internal/httphelper"
	"github.com/phonecore/phonecore/internal/logging"
	"github.com/phonecore/phonecore/internal/repository"
	"github.com/phonecore/phonecore/internal/storage"
	"github.com/phonecore/phonecore/internal/ui"
)

const (
	historyFile = "history.yaml"

	// maxHistory is how many entries are kept; older ones are dropped
	maxHistory = 200
)

// Request outcomes stored in the history
const (
	outcomeOK         = "ok"
	outcomeNoResponse = "no_response"
	outcomeFailed     = "failed"
)

// historyEntry is one request made by request or download
type historyEntry struct {
	ID       string        `yaml:"id"`
	At       time.Time     `yaml:"at"`
	Method   string        `yaml:"method"`
	URL      string        `yaml:"url"`
	Outcome  string        `yaml:"outcome"`
	Bytes    int           `yaml:"bytes"`
	Duration time.Duration `yaml:"duration"`
}

func (h historyEntry) Key() string { return h.ID }

type historyRepo = repository.Repository[string, historyEntry]

var historyFlags struct {
	page   int
	size   int
	failed bool
}

func init() {
	historyCmd.Flags().IntVar(&historyFlags.page, "page", 1, "Page to show (1 = most recent)")
	historyCmd.Flags().IntVar(&historyFlags.size, "size", 20, "Entries per page")
	historyCmd.Flags().BoolVar(&historyFlags.failed, "failed", false, "Only show requests that failed")

	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openDefaultHistory()
		if err != nil {
			return err
		}
		var keep func(historyEntry) bool
		if historyFlags.failed {
			keep = func(h historyEntry) bool { return h.Outcome != outcomeOK }
		}

		entries, err := newestFirstPage(repo, keep, historyFlags.page, historyFlags.size)
		if err != nil {
			return err
		}
		printHistory(ui.NewPrinter(cmd.OutOrStdout()), entries)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the request history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openDefaultHistory()
		if err != nil {
			return err
		}
		n := repo.Len()
		repo.RemoveAll()
		if err := repo.Save(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("History cleared", map[string]string{
			"Removed": strconv.Itoa(n),
		})
		return nil
	},
}

// openHistory opens the history snapshot stored in dir
func openHistory(dir string) (*historyRepo, error) {
	repo, err := repository.Open[string, historyEntry](storage.New(dir), historyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return repo, nil
}

func openDefaultHistory() (*historyRepo, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	return openHistory(dir)
}

// appendHistory adds e and drops the oldest entries beyond maxHistory
func appendHistory(repo *historyRepo, e historyEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	repo.Add(e)

	if excess := repo.Len() + 1 - maxHistory; excess > 0 {
		for _, old := range repo.GetAll()[:excess] {
			repo.Remove(old)
		}
	}
	return repo.Save()
}

// recordHistory appends e to the default history. Failures are only logged.
func recordHistory(e historyEntry) {
	repo, err := openDefaultHistory()
	if err == nil {
		err = appendHistory(repo, e)
	}
	if err != nil {
		logging.Warn("Failed to record history", zap.Error(err))
	}
}

// newestFirstPage pages through the history with the newest entry first
func newestFirstPage(repo *historyRepo, keep func(historyEntry) bool, page, size int) ([]historyEntry, error) {
	if page < 1 || size < 1 {
		return nil, repository.ErrInvalidPage
	}
	all := repo.GetFiltered(keep)
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	start := (page - 1) * size
	if start >= len(all) {
		return []historyEntry{}, nil
	}
	return all[start:min(start+size, len(all))], nil
}

// outcomeOf maps a request result to a history outcome
func outcomeOf(failed bool, noResponse *httphelper.NoResponseEvent) string {
	switch {
	case noResponse != nil:
		return outcomeNoResponse
	case failed:
		return outcomeFailed
	default:
		return outcomeOK
	}
}

func printHistory(p *ui.Printer, entries []historyEntry) {
	if len(entries) == 0 {
		p.Println(ui.StepPendingStyle.Render("  No requests recorded"))
		return
	}
	for _, e := range entries {
		when := humanize.Time(e.At)
		marker := ui.StepCompleteStyle.Render(ui.SuccessMarker)
		switch e.Outcome {
		case outcomeNoResponse:
			marker = ui.StepRunningStyle.Render(ui.WarningMarker)
		case outcomeFailed:
			marker = ui.ErrorMessageStyle.Render(ui.FailureMarker)
		}
		line := lipgloss.JoinHorizontal(lipgloss.Top,
			"  ", marker, " ",
			ui.ResultKeyStyle.UnsetWidth().Render(when), " ",
			ui.ResultValueStyle.Render(fmt.Sprintf("%-4s %s", e.Method, e.URL)), " ",
			ui.StepNoteStyle.Render(fmt.Sprintf("(%s, %s)", humanize.Bytes(uint64(e.Bytes)), e.Duration.Round(time.Millisecond))),
		)
		p.Println(line)
	}
}
