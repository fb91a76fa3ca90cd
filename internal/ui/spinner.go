package ui

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/phonecore/phonecore/internal/logging"
)

type opDoneMsg struct{}

// spinnerModel shows a spinner until the operation reports completion
type spinnerModel struct {
	spinner spinner.Model
	label   string
	done    bool
}

func newSpinnerModel(label string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return spinnerModel{spinner: s, label: label}
}

// Init implements tea.Model
func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case opDoneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return "  " + m.spinner.View() + " " + ProgressLabelStyle.UnsetPaddingLeft().Render(m.label) + "\n"
}

// RunWithSpinner runs op while a spinner labelled label animates on out.
// Without a terminal op simply runs. An interrupt stops the spinner and
// cancels the context passed to op; RunWithSpinner still waits for op.
func RunWithSpinner(ctx context.Context, out io.Writer, label string, op func(ctx context.Context) error) error {
	if out == nil {
		out = os.Stdout
	}
	if out != os.Stdout || !IsTerminal() {
		return op(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newSpinnerModel(label), tea.WithOutput(out), tea.WithInput(nil))
	errCh := make(chan error, 1)
	go func() {
		err := op(ctx)
		errCh <- err
		p.Send(opDoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		logging.Debug("Spinner stopped", zap.Error(err))
	}
	cancel()
	return <-errCh
}
