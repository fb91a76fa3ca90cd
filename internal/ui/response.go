package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ResponseView is a box showing a response body
type ResponseView struct {
	Title    string
	Content  string
	Width    int
	MaxLines int  // 0 = unlimited
	Pretty   bool // indent JSON bodies
}

// NewResponseView creates a response box for body
func NewResponseView(body string) *ResponseView {
	return &ResponseView{
		Title:   "Response",
		Content: body,
		Width:   GetTerminalWidth(),
		Pretty:  true,
	}
}

// SetWidth sets the terminal width for responsive rendering
func (v *ResponseView) SetWidth(width int) *ResponseView {
	v.Width = width
	return v
}

// SetTitle sets a custom title for the box
func (v *ResponseView) SetTitle(title string) *ResponseView {
	v.Title = title
	return v
}

// SetMaxLines limits the number of lines displayed
func (v *ResponseView) SetMaxLines(max int) *ResponseView {
	v.MaxLines = max
	return v
}

// Lines returns the body split into display lines, indented when it is
// JSON and Pretty is set, and truncated to MaxLines.
func (v *ResponseView) Lines() []string {
	body := v.Content
	if v.Pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(body), "", "  "); err == nil {
			body = buf.String()
		}
	}

	lines := strings.Split(body, "\n")
	if v.MaxLines > 0 && len(lines) > v.MaxLines {
		hidden := len(lines) - v.MaxLines
		lines = append(lines[:v.MaxLines:v.MaxLines], fmt.Sprintf("... (%d more lines)", hidden))
	}
	return lines
}

// Render returns the styled response box as a string
func (v *ResponseView) Render() string {
	width := clampWidth(v.Width)

	title := ResponseTitleStyle.Render(v.Title)
	content := ResponseContentStyle.Render(strings.Join(v.Lines(), "\n"))
	inner := lipgloss.JoinVertical(lipgloss.Left, title, "", content)

	return ResponseBoxStyle(width).Render(inner)
}

// String implements fmt.Stringer
func (v *ResponseView) String() string {
	return v.Render()
}
