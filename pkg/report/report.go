// Package report prints everything the tool writes outside the prompt:
// banners, compile progress messages and per-file error details.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/debug"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/diag"
)

const banner = `
 _                                   _ _
| |_ ___  ___    ___ _ __ _ __    __| (_)_ __ ___
| __/ __|/ __|  / _ \ '__| '__|  / _` + "`" + ` | | '__/ __|
| |_\__ \ (__  |  __/ |  | |    | (_| | | |  \__ \
 \__|___/\___|  \___|_|  |_|     \__,_|_|_|  |___/`

// Styles are the lipgloss styles used for console output.
type Styles struct {
	Banner  lipgloss.Style
	Version lipgloss.Style
	Path    lipgloss.Style
	Muted   lipgloss.Style
	Command lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Watch   lipgloss.Style
}

// DefaultStyles mirrors the colors of the prompt.
func DefaultStyles() Styles {
	return Styles{
		Banner:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		Version: lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Path:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Muted:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8")),
		Command: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Watch:   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	}
}

// Printer writes reports to Out.
type Printer struct {
	Out    io.Writer
	Styles Styles

	md *glamour.TermRenderer
}

// Option configures a Printer.
type Option func(*printerConfig)

type printerConfig struct {
	style string
	width int
}

// WithMarkdownStyle selects a glamour standard style ("dark", "light",
// "notty", ...). The default adapts to the terminal background.
func WithMarkdownStyle(style string) Option {
	return func(c *printerConfig) { c.style = style }
}

// WithWordWrap sets the markdown wrap width.
func WithWordWrap(width int) Option {
	return func(c *printerConfig) { c.width = width }
}

// New returns a printer writing to out.
func New(out io.Writer, opts ...Option) *Printer {
	cfg := printerConfig{width: 100}
	for _, o := range opts {
		o(&cfg)
	}
	style := glamour.WithAutoStyle()
	if cfg.style != "" {
		style = glamour.WithStandardStyle(cfg.style)
	}
	md, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(cfg.width))
	if err != nil {
		debug.Log("report: markdown renderer unavailable: %v", err)
	}
	return &Printer{Out: out, Styles: DefaultStyles(), md: md}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.Out, format, args...)
}

// Header prints the banner with the version.
func (p *Printer) Header(version string) {
	p.printf("%s  %s\n\n", p.Styles.Banner.Render(banner), p.Styles.Version.Render("[version: "+version+"]"))
}

// FirstCompile announces the initial compile of root.
func (p *Printer) FirstCompile(root, command string) {
	p.printf("\n$ %s\n  %s\n %s %s\n\n",
		p.Styles.Path.Render(root),
		p.Styles.Muted.Render("tsc running for the first time ..."),
		p.Styles.Success.Render("▷"),
		p.Styles.Command.Render(command))
}

// Recompile announces a compile triggered by a source change.
func (p *Printer) Recompile(root string) {
	p.printf("%s\n\n", p.Styles.Muted.Render("Start re-run tsc on "+root+" ..."))
}

// Compiled reports the outcome of a compile.
func (p *Printer) Compiled(set *diag.Set, took time.Duration) {
	files := len(set.Files())
	p.printf("%s %s\n",
		p.Styles.Muted.Render("tsc compiling finished in "+took.Round(time.Millisecond).String()+"."),
		p.Styles.Error.Render(fmt.Sprintf("Found %d %s in %d %s.", set.Total(), plural(set.Total(), "error"), files, plural(files, "file"))))
}

// NoErrors celebrates a clean project.
func (p *Printer) NoErrors() {
	p.printf("\n🎉 %s\n\n", p.Styles.Success.Render("Found 0 Errors."))
}

// WatchReady reports that the watcher is running.
func (p *Printer) WatchReady(pattern string) {
	p.printf("%s\n\n", p.Styles.Watch.Render("[WATCH] "+pattern+" is ready"))
}

// WatchChanged reports the change that cancelled the prompt.
func (p *Printer) WatchChanged(path string) {
	p.printf("\n%s\n", p.Styles.Watch.Render("[WATCH] "+path+" has changed ..."))
}

// Error prints err in red.
func (p *Printer) Error(err error) {
	p.printf("\n%s\n", p.Styles.Error.Render(err.Error()))
}

// FileErrors prints every diagnostic of one file with the offending source
// lines. abs is the absolute path of the file.
func (p *Printer) FileErrors(root, abs string, diags []diag.Diagnostic) {
	if len(diags) == 0 {
		p.printf("\n%s\n", p.Styles.Muted.Render("No errors in "+abs))
		return
	}
	md := FileErrorsMarkdown(root, diags)
	if p.md != nil {
		out, err := p.md.Render(md)
		if err == nil {
			p.printf("%s", out)
			return
		}
		debug.Log("report: render markdown: %v", err)
	}
	p.printf("%s\n", md)
}

// FileErrorsMarkdown builds the markdown document FileErrors renders.
func FileErrorsMarkdown(root string, diags []diag.Diagnostic) string {
	var b strings.Builder
	for i, d := range diags {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "#### %s\n\n", escapeMarkdown(d.Location(root)))
		fmt.Fprintf(&b, "**error %s**: %s\n\n", d.CodeString(), escapeMarkdown(d.Message))

		src, err := ReadContext(diag.Resolve(root, d.File), d.Line)
		if err != nil {
			debug.Log("report: no source context for %s: %v", d.Location(root), err)
			continue
		}
		b.WriteString("```" + fenceLang(d.File) + "\n")
		b.WriteString(snippet(src, d.Col))
		b.WriteString("```\n\n")
	}
	return b.String()
}

// snippet renders numbered source lines with a caret under the column.
func snippet(src Context, col int) string {
	lines := src.Lines()
	width := len(fmt.Sprint(lines[len(lines)-1].Number))
	var b strings.Builder
	for _, l := range lines {
		marker := " "
		if l.Number == src.Target.Number {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %*d | %s\n", marker, width, l.Number, expandTabs(l.Text))
		if l.Number == src.Target.Number && col > 0 {
			runes := []rune(l.Text)
			prefix := runewidth.StringWidth(expandTabs(string(runes[:min(col-1, len(runes))])))
			fmt.Fprintf(&b, "  %s | %s^\n", strings.Repeat(" ", width), strings.Repeat(" ", prefix))
		}
	}
	return b.String()
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

func fenceLang(file string) string {
	switch filepath.Ext(file) {
	case ".tsx":
		return "tsx"
	case ".vue":
		return "vue"
	default:
		return "ts"
	}
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
	"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
