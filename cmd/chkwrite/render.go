package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cgast/chkwrite/pkg/field"
	"github.com/cgast/chkwrite/pkg/lesson"
	"github.com/cgast/chkwrite/pkg/verify"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	explainStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("14"))
	checkStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 1)
)

const progressWidth = 24

// renderHeader prints the scenario, phase and progress line.
func renderHeader(w io.Writer, engine *lesson.Engine, s *lesson.Session) {
	sc := engine.Scenario(s)
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Scenario %d/%d: %s", s.ScenarioIndex+1, engine.Catalog().Len(), sc.Title)))
	fmt.Fprintln(w, strings.TrimSpace(sc.Prompt))
	if sc.ContextNote != "" {
		fmt.Fprintln(w, dimStyle.Render(sc.ContextNote))
	}

	step := s.StepIndex + 1
	total := engine.TotalSteps(s)
	filled := int(engine.Progress(s) * progressWidth)
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", progressWidth-filled)
	status := ""
	if s.Completed {
		status = " " + okStyle.Render("complete")
	}
	fmt.Fprintf(w, "%s (%s)  step %d/%d [%s]%s\n", s.Phase, s.Phase.Slogan(), step, total, bar, status)
}

// renderCheck draws the check with the active field marked.
func renderCheck(w io.Writer, values field.Values, active field.Name) {
	var b strings.Builder
	for i, name := range field.Canonical() {
		marker := "  "
		label := fmt.Sprintf("%-20s", name.Label()+":")
		if name == active {
			marker = "> "
			label = activeStyle.Render(label)
		}
		text := values.Get(name)
		if text == "" {
			text = dimStyle.Render("________________")
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(marker + label + " " + text)
	}
	fmt.Fprintln(w, checkStyle.Render(b.String()))
}

// renderExplanation prints the narration of a demonstration step.
func renderExplanation(w io.Writer, text string) {
	if text == "" {
		return
	}
	fmt.Fprintln(w, explainStyle.Render(text))
}

// renderVerdict prints one field verdict on a single line.
func renderVerdict(w io.Writer, v verify.Verdict) {
	label := v.Field.Label()
	switch {
	case v.Pending:
		fmt.Fprintln(w, dimStyle.Render("... "+label+": "+v.Hint))
	case v.OK:
		line := okStyle.Render("ok  " + label)
		if v.Hint != "" {
			line += " " + dimStyle.Render(v.Hint)
		}
		fmt.Fprintln(w, line)
	default:
		fmt.Fprintln(w, failStyle.Render("x   "+label+": "+v.Message))
	}
}

// renderResult prints every verdict in canonical order and the overall outcome.
func renderResult(w io.Writer, r verify.Result) {
	for _, name := range field.Canonical() {
		v, ok := r.Verdicts[name]
		if !ok {
			continue
		}
		renderVerdict(w, v)
	}
	if r.Passed {
		fmt.Fprintln(w, okStyle.Bold(true).Render("PASS: the check is filled out correctly."))
		return
	}
	names := make([]string, len(r.Failed))
	for i, n := range r.Failed {
		names[i] = n.Label()
	}
	fmt.Fprintln(w, failStyle.Bold(true).Render("NOT YET: fix "+strings.Join(names, ", ")+"."))
}
