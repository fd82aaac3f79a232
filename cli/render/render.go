// Package render provides centralized output rendering for the gamehub CLI.
//
// Format selection rules:
//   - If output is a TTY, default to table
//   - If output is not a TTY, default to json
//   - --format flag always overrides defaults
//   - Invalid formats are errors
//
// Color handling:
//   - --no-color affects table output only
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/pithecene-io/gamehub/types"
)

// Format represents an output format.
type Format string

// Supported formats.
const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
)

// Status palette.
var (
	successColor = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Amber
	errorColor   = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#6B7280") // Gray
)

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(successColor)
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(warningColor)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
	traceStyle   = lipgloss.NewStyle().Foreground(mutedColor)
)

// StatusStyle returns the table style for a status.
func StatusStyle(s types.Status) lipgloss.Style {
	switch {
	case s == types.StatusSuccess:
		return successStyle
	case s.NeedsProviderAction():
		return warningStyle
	default:
		return errorStyle
	}
}

// ResultView is the rendered form of a types.Result.
type ResultView struct {
	Status     string `json:"status" yaml:"status"`
	Code       int    `json:"code" yaml:"code"`
	Message    string `json:"message" yaml:"message"`
	StackTrace string `json:"stack_trace,omitempty" yaml:"stack_trace,omitempty"`
}

// NewResultView converts a Result for rendering.
func NewResultView(res types.Result) ResultView {
	return ResultView{
		Status:     res.Status.String(),
		Code:       res.Status.LevelCode(),
		Message:    res.Message,
		StackTrace: res.StackTrace,
	}
}

// ParseFormat parses a format string, returning an error for invalid formats.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "table":
		return FormatTable, nil
	case "yaml":
		return FormatYAML, nil
	case "":
		return "", nil // Let caller decide default
	default:
		return "", fmt.Errorf("invalid format: %q (must be json, table, or yaml)", s)
	}
}

// Renderer handles output formatting.
type Renderer struct {
	format  Format
	noColor bool
	out     io.Writer
}

// NewRenderer creates a renderer from CLI context.
func NewRenderer(c *cli.Context) (*Renderer, error) {
	format, err := ParseFormat(c.String("format"))
	if err != nil {
		return nil, err
	}

	if format == "" {
		if isTTY(os.Stdout) {
			format = FormatTable
		} else {
			format = FormatJSON
		}
	}

	return &Renderer{
		format:  format,
		noColor: c.Bool("no-color"),
		out:     os.Stdout,
	}, nil
}

// NewRendererWithWriter creates a renderer with a custom writer (for testing).
func NewRendererWithWriter(format Format, noColor bool, out io.Writer) *Renderer {
	return &Renderer{
		format:  format,
		noColor: noColor,
		out:     out,
	}
}

// Format returns the selected output format.
func (r *Renderer) Format() Format {
	return r.format
}

// Render outputs the data in the configured format.
func (r *Renderer) Render(data any) error {
	switch r.format {
	case FormatJSON:
		return r.renderJSON(data)
	case FormatTable:
		return r.renderTable(data)
	case FormatYAML:
		return r.renderYAML(data)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}
}

// RenderResult outputs a bridge outcome. Table output is a single status
// line, followed by the trace when one is present.
func (r *Renderer) RenderResult(res types.Result) error {
	view := NewResultView(res)
	if r.format != FormatTable {
		return r.Render(view)
	}

	status := view.Status
	trace := view.StackTrace
	if !r.noColor {
		status = StatusStyle(res.Status).Render(status)
		if trace != "" {
			trace = traceStyle.Render(trace)
		}
	}

	if _, err := fmt.Fprintf(r.out, "%s  %s\n", status, view.Message); err != nil {
		return err
	}
	if trace != "" {
		if _, err := fmt.Fprintln(r.out, trace); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderJSON(data any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (r *Renderer) renderYAML(data any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	return enc.Encode(data)
}

// isTTY returns true if the writer is a TTY.
func isTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
