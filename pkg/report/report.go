// Package report renders the human-readable outcome of a migration run.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/migrate"
	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/terminal"
)

// Palette holds the hex colours used for styled output.
type Palette struct {
	Title     string
	Added     string
	Updated   string
	Unchanged string
	Warn      string
}

// DefaultPalette is the dark neutral palette with a purple accent.
var DefaultPalette = Palette{
	Title:     "#7C3AED",
	Added:     "#4ec970",
	Updated:   "#e5c07b",
	Unchanged: "#6b6b6b",
	Warn:      "#e06c75",
}

// Options controls rendering.
type Options struct {
	// Level selects the colour encoding; ColorNone renders plain text.
	Level terminal.ColorLevel

	// Width wraps the name lists; 0 disables wrapping.
	Width int

	Palette Palette
}

// OptionsFor detects Options for w. Output that is not a terminal is never
// styled or wrapped, so it stays easy to parse.
func OptionsFor(w io.Writer) Options {
	opts := Options{Level: terminal.DetectColor(w), Palette: DefaultPalette}
	if terminal.IsTerminal(w) {
		opts.Width = terminal.Width(w)
	}
	return opts
}

// Printer writes styled lines to one output.
type Printer struct {
	w     io.Writer
	width int

	title     lipgloss.Style
	label     lipgloss.Style
	added     lipgloss.Style
	updated   lipgloss.Style
	unchanged lipgloss.Style
	warn      lipgloss.Style
}

// NewPrinter builds a Printer for w.
func NewPrinter(w io.Writer, opts Options) *Printer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profileFor(opts.Level))

	pal := opts.Palette
	if pal == (Palette{}) {
		pal = DefaultPalette
	}

	return &Printer{
		w:         w,
		width:     opts.Width,
		title:     r.NewStyle().Bold(true).Foreground(lipgloss.Color(pal.Title)),
		label:     r.NewStyle().Bold(true),
		added:     r.NewStyle().Foreground(lipgloss.Color(pal.Added)),
		updated:   r.NewStyle().Foreground(lipgloss.Color(pal.Updated)),
		unchanged: r.NewStyle().Foreground(lipgloss.Color(pal.Unchanged)),
		warn:      r.NewStyle().Foreground(lipgloss.Color(pal.Warn)),
	}
}

// Summary writes the counts line followed by one line per non-empty
// category:
//
//	Migration summary: added=1 updated=0 unchanged=2 warnings=0
//	Added: a
//	Unchanged: b, c
func (p *Printer) Summary(stats *migrate.Stats) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s added=%s updated=%s unchanged=%s warnings=%s\n",
		p.title.Render("Migration summary:"),
		p.added.Render(fmt.Sprint(len(stats.Added))),
		p.updated.Render(fmt.Sprint(len(stats.Updated))),
		p.unchanged.Render(fmt.Sprint(len(stats.Unchanged))),
		p.warn.Render(fmt.Sprint(len(stats.Warnings))),
	)
	p.names(&b, "Added:", p.added, stats.Added)
	p.names(&b, "Updated:", p.updated, stats.Updated)
	p.names(&b, "Unchanged:", p.unchanged, stats.Unchanged)

	_, err := io.WriteString(p.w, b.String())
	return err
}

// Line writes a labelled status line such as "Backup created: <path>".
func (p *Printer) Line(label, value string) error {
	_, err := fmt.Fprintf(p.w, "%s %s\n", p.label.Render(label), value)
	return err
}

// Note writes an unlabelled line.
func (p *Printer) Note(msg string) error {
	_, err := fmt.Fprintln(p.w, msg)
	return err
}

func (p *Printer) names(b *strings.Builder, label string, style lipgloss.Style, names []string) {
	if len(names) == 0 {
		return
	}
	line := label + " " + strings.Join(names, ", ")
	if p.width > 0 {
		line = ansi.Wordwrap(line, p.width, "")
	}
	// Style after wrapping so escape sequences never split a name.
	rows := strings.Split(line, "\n")
	for i, row := range rows {
		if i == 0 {
			row = p.label.Render(label) + style.Render(strings.TrimPrefix(row, label))
		} else {
			row = style.Render(row)
		}
		b.WriteString(row)
		b.WriteByte('\n')
	}
}

func profileFor(level terminal.ColorLevel) termenv.Profile {
	switch level {
	case terminal.ColorTrueColor:
		return termenv.TrueColor
	case terminal.ColorANSI256:
		return termenv.ANSI256
	case terminal.ColorANSI:
		return termenv.ANSI
	default:
		return termenv.Ascii
	}
}
