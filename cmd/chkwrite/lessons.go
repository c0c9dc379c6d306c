package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cgast/chkwrite/pkg/field"
	"github.com/cgast/chkwrite/pkg/lesson"
)

func newScenariosCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the check-writing scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range a.engine.ListScenarios() {
				fmt.Fprintf(out, "%d. %s\n   %s\n", s.Index+1, titleStyle.Render(s.Title), strings.TrimSpace(s.Prompt))
			}
			return nil
		},
	}
}

// scenarioArg parses a 1-based scenario number.
func scenarioArg(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("scenario number %q: %w", arg, err)
	}
	return n - 1, nil
}

func newDemoCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "demo <scenario>",
		Short: "Play the \"I do\" demonstration of a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := scenarioArg(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(g)
			if err != nil {
				return err
			}
			s, err := a.engine.StartLesson(idx, lesson.Demonstration)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderHeader(out, a.engine, s)
			for a.engine.AdvanceStep(s).Advanced {
				active, _ := a.engine.ActiveField(s)
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Step %d/%d: %s\n", s.StepIndex+1, a.engine.TotalSteps(s), active.Label())
				renderExplanation(out, a.engine.Explanation(s))
				renderCheck(out, a.engine.Fields(s), active)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, okStyle.Render("Demonstration complete. Try it yourself with: chkwrite repl"))
			return nil
		},
	}
}

func newCheckCmd(g *globals) *cobra.Command {
	values := make(map[field.Name]*string, field.Count)
	cmd := &cobra.Command{
		Use:   "check <scenario>",
		Short: "Grade a filled-in check against a scenario (\"You do\")",
		Long: `Grades every field of a check against the scenario's expected values.
Exits with status 1 when any required field is wrong or missing.`,
		Example: `  chkwrite check 1 --date 10/15/2025 --payee "Plumbing Ink 123" \
    --amount 150.00 --words "One hundred fifty and 00/100" --signature "Alex Morgan"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := scenarioArg(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(g)
			if err != nil {
				return err
			}
			s, err := a.engine.StartLesson(idx, lesson.Independent)
			if err != nil {
				return err
			}
			for _, name := range field.Canonical() {
				if _, err := a.engine.SubmitField(s, name, *values[name]); err != nil {
					return err
				}
			}

			result := a.engine.Finalize(s)
			renderResult(cmd.OutOrStdout(), result)
			if !result.Passed {
				return errCheckFailed
			}
			return nil
		},
	}

	flags := map[field.Name]string{
		field.Date:          "date",
		field.Payee:         "payee",
		field.AmountNumeric: "amount",
		field.AmountWords:   "words",
		field.Memo:          "memo",
		field.Signature:     "signature",
	}
	for _, name := range field.Canonical() {
		values[name] = new(string)
		cmd.Flags().StringVar(values[name], flags[name], "", name.Label())
	}
	return cmd
}
