package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Oxocarbon Dark
//
// Source: https://github.com/nyoom-engineering/oxoc
var (
	muted  = lipgloss.Color("#525252")
	teal   = lipgloss.Color("#3ddbd9")
	cyan   = lipgloss.Color("#08bdba")
	blue   = lipgloss.Color("#78a9ff")
	pink   = lipgloss.Color("#ee5396")
	pink2  = lipgloss.Color("#ff7eb6")
	green  = lipgloss.Color("#42be65")
	purple = lipgloss.Color("#be95ff")
)

// Styles wraps the lipgloss styles for the application.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Path    lipgloss.Style
}

// NewStyles returns a new Styles struct with Oxocarbon defaults.
func NewStyles() *Styles {
	return &Styles{
		Header:  lipgloss.NewStyle().Foreground(purple).Bold(true),
		Success: lipgloss.NewStyle().Foreground(green),
		Error:   lipgloss.NewStyle().Foreground(pink2),
		Warning: lipgloss.NewStyle().Foreground(pink),
		Info:    lipgloss.NewStyle().Foreground(blue),
		Muted:   lipgloss.NewStyle().Foreground(muted),
		Accent:  lipgloss.NewStyle().Foreground(cyan),
		Path:    lipgloss.NewStyle().Foreground(teal),
	}
}

// Printer writes styled status lines. Errors go to its error writer.
type Printer struct {
	Styles *Styles
	out    io.Writer
	err    io.Writer
}

// NewPrinter creates a Printer on stdout and stderr.
func NewPrinter() *Printer {
	return NewPrinterTo(os.Stdout, os.Stderr)
}

func NewPrinterTo(out, err io.Writer) *Printer {
	return &Printer{Styles: NewStyles(), out: out, err: err}
}

// PrintHeader prints a bold header message.
func (p *Printer) PrintHeader(msg string) {
	fmt.Fprintln(p.out, p.Styles.Header.Render(msg))
}

func (p *Printer) PrintSuccess(msg string) {
	fmt.Fprintf(p.out, "%s %s\n", p.Styles.Success.Render("✔"), msg)
}

func (p *Printer) PrintError(msg string) {
	fmt.Fprintf(p.err, "%s %s\n", p.Styles.Error.Render("✘"), msg)
}

func (p *Printer) PrintWarning(msg string) {
	fmt.Fprintf(p.out, "%s %s\n", p.Styles.Warning.Render("⚠"), msg)
}

func (p *Printer) PrintInfo(msg string) {
	fmt.Fprintf(p.out, "%s %s\n", p.Styles.Info.Render("ℹ"), msg)
}

// PrintListItem prints a muted label with a value.
func (p *Printer) PrintListItem(label, value string) {
	fmt.Fprintf(p.out, "%s: %s\n", p.Styles.Muted.Render(label), value)
}

func (p *Printer) FormatPath(path string) string {
	return p.Styles.Path.Render(path)
}

// FormatWord formats a query or indexed word.
func (p *Printer) FormatWord(word string) string {
	return p.Styles.Accent.Render(word)
}
