// Package render draws display views as boxed terminal text.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// palette maps the color names used by display onto the 16-color ANSI set.
var palette = map[string]lipgloss.Color{
	"red":    lipgloss.Color("1"),
	"green":  lipgloss.Color("2"),
	"yellow": lipgloss.Color("3"),
	"blue":   lipgloss.Color("4"),
	"cyan":   lipgloss.Color("6"),
	"white":  lipgloss.Color("7"),
}

// Renderer writes views to a terminal or any other writer.
type Renderer struct {
	out   io.Writer
	lg    *lipgloss.Renderer
	color bool
}

// New returns a renderer writing to out. ANSI styling is emitted only when
// color is true.
func New(out io.Writer, color bool) *Renderer {
	lg := lipgloss.NewRenderer(out)
	if color {
		lg.SetColorProfile(termenv.ANSI)
	} else {
		lg.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{out: out, lg: lg, color: color}
}

// NewStdout returns a renderer for the process stdout. Color is enabled when
// stdout is a terminal and NO_COLOR is unset.
func NewStdout() *Renderer {
	fd := os.Stdout.Fd()
	color := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("NO_COLOR") == ""
	return New(colorable.NewColorable(os.Stdout), color)
}

// Color reports whether ANSI styling is enabled.
func (r *Renderer) Color() bool {
	return r.color
}

// style returns a text style in the named color. Unknown names leave the
// foreground unset.
func (r *Renderer) style(color string, bold bool) lipgloss.Style {
	s := r.lg.NewStyle().Bold(bold)
	if c, ok := palette[color]; ok {
		s = s.Foreground(c)
	}
	return s
}

func (r *Renderer) dim(s string) string {
	return r.lg.NewStyle().Faint(true).Render(s)
}

// panel renders body inside a rounded border with title set into the top
// edge. The border takes the title's color.
func (r *Renderer) panel(title, color string, body lipgloss.Style, content string) string {
	border := lipgloss.RoundedBorder()
	edge := r.style(color, false)

	minWidth := lipgloss.Width(title) + 4
	if w := lipgloss.Width(body.Render(content)); w < minWidth {
		body = body.Width(minWidth)
	}

	box := body.
		Border(border).
		BorderTop(false).
		BorderForeground(palette[color]).
		Render(content)

	inner := lipgloss.Width(box) - 2
	rest := inner - lipgloss.Width(title) - 2
	left := rest / 2
	top := edge.Render(border.TopLeft+strings.Repeat(border.Top, left)) +
		" " + r.style(color, true).Render(title) + " " +
		edge.Render(strings.Repeat(border.Top, rest-left)+border.TopRight)

	return top + "\n" + box
}

// Error draws a red error panel.
func (r *Renderer) Error(message string) {
	parts := strings.Split(message, "\n")
	for i, part := range parts {
		prefix := "   "
		if i == 0 {
			prefix = "❌ "
		}
		parts[i] = prefix + part
	}

	text := r.style("red", true).Render(strings.Join(parts, "\n"))
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.panel("Error", "red", r.lg.NewStyle().Padding(0, 2), text))
	fmt.Fprintln(r.out)
}

// Success draws a green confirmation panel.
func (r *Renderer) Success(message string) {
	text := r.style("green", true).Render("✅ " + message)
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.panel("Success", "green", r.lg.NewStyle().Padding(0, 2), text))
	fmt.Fprintln(r.out)
}

// Loading prints a status line while a request is in flight. It is silent
// when output is not a terminal so piped output stays clean.
func (r *Renderer) Loading(message string) {
	if !r.color {
		return
	}
	fmt.Fprintln(r.out, r.style("cyan", true).Render("⏳ "+message))
}

// Goodbye prints the interrupt farewell.
func (r *Renderer) Goodbye() {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.style("yellow", true).Render("👋 Goodbye!"))
}
