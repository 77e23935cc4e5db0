// Package lipgloss renders validation results for the terminal using the
// Lipgloss styling library.
package lipgloss

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/selfeval"
)

// maxValueWidth is the number of runes of the candidate shown in a report.
const maxValueWidth = 72

// Reporter writes one styled block per Result.
type Reporter struct {
	pass    lipgloss.Style
	fail    lipgloss.Style
	err     lipgloss.Style
	verdict lipgloss.Style
	detail  lipgloss.Style
}

// NewReporter creates a Reporter. A nil renderer uses the default renderer.
func NewReporter(r *lipgloss.Renderer) *Reporter {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	badge := r.NewStyle().Bold(true).Padding(0, 1)
	return &Reporter{
		pass:    badge.Foreground(lipgloss.Color("#1e1e2e")).Background(lipgloss.Color("#a6e3a1")),
		fail:    badge.Foreground(lipgloss.Color("#1e1e2e")).Background(lipgloss.Color("#f38ba8")),
		err:     badge.Foreground(lipgloss.Color("#1e1e2e")).Background(lipgloss.Color("#f9e2af")),
		verdict: r.NewStyle().Foreground(lipgloss.Color("#89b4fa")),
		detail:  r.NewStyle().Foreground(lipgloss.Color("#6c7086")),
	}
}

// Report writes res to w.
func (r *Reporter) Report(w io.Writer, res selfeval.Result) error {
	value := truncate(res.Value)

	if res.Outcome == nil {
		_, err := fmt.Fprintf(w, "%s %s\n  %s\n", r.err.Render("ERROR"), value, r.detail.Render(res.Error))
		return err
	}

	badge := r.pass.Render("PASS")
	if !res.Outcome.Passed {
		badge = r.fail.Render("FAIL")
	}
	if _, err := fmt.Fprintf(w, "%s %s %s\n", badge, r.verdict.Render(string(res.Outcome.Verdict)), value); err != nil {
		return err
	}
	if res.Outcome.Message != "" {
		if _, err := fmt.Fprintf(w, "  %s\n", r.detail.Render(res.Outcome.Message)); err != nil {
			return err
		}
	}
	return nil
}

// Summary writes pass/fail/error totals.
func (r *Reporter) Summary(w io.Writer, passed, failed, errored int) error {
	_, err := fmt.Fprintf(w, "%s %d  %s %d  %s %d\n",
		r.pass.Render("PASS"), passed,
		r.fail.Render("FAIL"), failed,
		r.err.Render("ERROR"), errored,
	)
	return err
}

// truncate flattens s to one line of at most maxValueWidth runes.
func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxValueWidth {
		return s
	}
	return string(runes[:maxValueWidth-1]) + "…"
}
