package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResponseView_Lines(t *testing.T) {
	v := NewResponseView(`{"a":1,"b":[1,2]}`)
	got := v.Lines()
	want := []string{
		"{",
		`  "a": 1,`,
		`  "b": [`,
		"    1,",
		"    2",
		"  ]",
		"}",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}

	v.SetMaxLines(2)
	got = v.Lines()
	if len(got) != 3 || got[2] != "... (5 more lines)" {
		t.Errorf("truncated Lines() = %q", got)
	}
}

func TestResponseView_PlainText(t *testing.T) {
	v := NewResponseView("hello\nworld")
	if diff := cmp.Diff([]string{"hello", "world"}, v.Lines()); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(v.Render(), "Response") {
		t.Error("Render() missing title")
	}
}

func TestResult_RenderSortedDetails(t *testing.T) {
	r := NewSuccessResult("Request complete", map[string]string{
		"Status": "200",
		"Bytes":  "12",
	}).SetWidth(80)

	out := r.Render()
	if !strings.Contains(out, "SUCCESS") || !strings.Contains(out, "Request complete") {
		t.Errorf("Render() = %q", out)
	}
	if strings.Index(out, "Bytes") > strings.Index(out, "Status") {
		t.Error("details should be sorted by key")
	}
}

func TestResult_Failure(t *testing.T) {
	out := NewFailureResult("Request failed", errors.New("boom"), []string{"Check the URL"}).Render()
	for _, want := range []string{"FAILED", "Error: boom", "Troubleshooting:", "Check the URL"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q", want)
		}
	}
}

func TestHeader_Render(t *testing.T) {
	out := NewHeader("get request", "phonecore request", map[string]string{"URL": "http://h/p"}).Render()
	if !strings.Contains(out, "GET REQUEST") || !strings.Contains(out, "http://h/p") {
		t.Errorf("Render() = %q", out)
	}
}

func TestProgress_UpdateStep(t *testing.T) {
	p := NewProgress("", 2).SetStepNames([]string{"one", "two"})

	p.StartStep(1, "")
	if p.Current != 1 {
		t.Errorf("Current = %d, want 1", p.Current)
	}
	p.CompleteStep(1, "done")
	if p.Percent != 0.5 {
		t.Errorf("Percent = %v, want 0.5", p.Percent)
	}
	p.UpdateStep(9, StepComplete, "") // ignored
	p.FailStep(2, "")
	if p.Percent != 0.5 {
		t.Errorf("Percent = %v after failure, want 0.5", p.Percent)
	}
	if !strings.Contains(p.Render(), "(done)") {
		t.Error("Render() missing step note")
	}
}

func TestRunner_Run(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(RunnerConfig{
		Title:     "Download",
		Command:   "phonecore download f",
		StepNames: []string{"Checking network", "Downloading"},
		Output:    &out,
	})

	err := r.Run(context.Background(), func(ctx context.Context, onStep StepCallback) (*Result, error) {
		onStep(1, "", StepRunning, "")
		onStep(1, "", StepComplete, "WiFi")
		onStep(2, "Fetching", StepComplete, "3 bytes")
		return NewSuccessResult("Saved", map[string]string{"Path": "f"}), nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	text := out.String()
	for _, want := range []string{"DOWNLOAD", "Checking network", "Fetching", "(3 bytes)", "Saved", "Duration"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRunner_RunFailure(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(RunnerConfig{Title: "Download", Output: &out, Troubleshooting: []string{"Retry"}})

	boom := errors.New("boom")
	err := r.Run(context.Background(), func(ctx context.Context, onStep StepCallback) (*Result, error) {
		onStep(1, "", StepRunning, "") // no steps configured
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Download failed") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunWithSpinner_NoTerminal(t *testing.T) {
	var out bytes.Buffer
	called := false
	err := RunWithSpinner(context.Background(), &out, "Requesting", func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Errorf("RunWithSpinner() = %v, called %v", err, called)
	}
	if out.Len() != 0 {
		t.Errorf("spinner wrote to a non-terminal writer: %q", out.String())
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"  yes  \n", true},
		{"no\n", false},
		{"", false},
		{"yes", true},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got := Confirm(strings.NewReader(tt.input), &out, "Clear settings", []string{"All settings are removed"}, "yes")
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
