package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/raysh454/go2web/internal/search"
)

var styleIndex = lipgloss.NewStyle().Faint(true)

var styleTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#04B575"))

var styleLink = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#5C9DFF")).
	Underline(true)

// Printer writes results to the terminal, styled only when out is a TTY.
type Printer struct {
	out    io.Writer
	styled bool
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, styled: isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PrintText writes text followed by a single newline.
func (p *Printer) PrintText(text string) error {
	_, err := fmt.Fprintln(p.out, strings.TrimRight(text, "\n"))
	return err
}

// PrintResults writes numbered "title / link" pairs.
func (p *Printer) PrintResults(results []search.Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(p.out, "No results found.")
		return err
	}
	for i, r := range results {
		index := fmt.Sprintf("%d.", i+1)
		title, link := r.Title, r.Link
		if p.styled {
			index = styleIndex.Render(index)
			title = styleTitle.Render(title)
			link = styleLink.Render(link)
		}
		if _, err := fmt.Fprintf(p.out, "%s %s\n   %s\n", index, title, link); err != nil {
			return err
		}
	}
	return nil
}
