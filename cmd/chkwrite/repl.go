package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cgast/chkwrite/pkg/field"
	"github.com/cgast/chkwrite/pkg/lesson"
)

func newREPLCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive lesson shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, g)
		},
	}
}

func runREPL(cmd *cobra.Command, g *globals) error {
	a, err := newApp(g)
	if err != nil {
		return err
	}
	r := &repl{engine: a.engine, out: cmd.OutOrStdout()}
	return r.run(cmd.InOrStdin())
}

// repl is a line-oriented front end over one lesson session.
type repl struct {
	engine  *lesson.Engine
	session *lesson.Session
	out     io.Writer
}

func (r *repl) run(in io.Reader) error {
	fmt.Fprintf(r.out, "chkwrite v%s - check writing practice\n", version)
	fmt.Fprintln(r.out, "Type 'scenarios' to browse, 'start <n>' to begin, 'help' for commands.")
	fmt.Fprintln(r.out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, "chkwrite> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			fmt.Fprintln(r.out, "Goodbye.")
			return nil
		}
		if err := r.exec(line); err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
	}
	fmt.Fprintln(r.out)
	return scanner.Err()
}

var errNoSession = errors.New("no lesson in progress; use 'start <n>' first")

// exec runs one shell command.
func (r *repl) exec(line string) error {
	parts := strings.Fields(line)
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "help":
		r.printHelp()
		return nil
	case "scenarios":
		for _, s := range r.engine.ListScenarios() {
			fmt.Fprintf(r.out, "  %d  %-28s %s\n", s.Index+1, s.Title, dimStyle.Render(strings.TrimSpace(s.Prompt)))
		}
		return nil
	case "start":
		return r.start(args)
	case "filled":
		return r.filled(args)
	}

	if r.session == nil {
		return errNoSession
	}
	s := r.session

	switch cmd {
	case "show":
	case "phase":
		if len(args) == 0 {
			return fmt.Errorf("usage: phase <demonstration|guided|independent>")
		}
		p, err := lesson.ParsePhase(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if err := r.engine.SelectPhase(s, p); err != nil {
			return err
		}
	case "scenario":
		if len(args) != 1 {
			return fmt.Errorf("usage: scenario <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("scenario number: %w", err)
		}
		if err := r.engine.SelectScenario(s, n-1); err != nil {
			return err
		}
	case "set":
		if len(args) < 1 {
			return fmt.Errorf("usage: set <field> <value>")
		}
		name, err := field.Parse(args[0])
		if err != nil {
			return err
		}
		v, err := r.engine.SubmitField(s, name, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		renderVerdict(r.out, v)
		return nil
	case "next":
		res := r.engine.AdvanceStep(s)
		if res.Blocking != nil {
			fmt.Fprintln(r.out, failStyle.Render("Not yet. Fix this field before moving on:"))
			renderVerdict(r.out, *res.Blocking)
			return nil
		}
		if !res.Advanced && !s.Completed {
			fmt.Fprintln(r.out, dimStyle.Render("Already at the last step."))
		}
	case "back":
		r.engine.RetreatStep(s)
	case "jump":
		if len(args) != 1 {
			return fmt.Errorf("usage: jump <field>")
		}
		name, err := field.Parse(args[0])
		if err != nil {
			return err
		}
		if err := r.engine.JumpToField(s, name); err != nil {
			return err
		}
	case "reset":
		r.engine.ResetSession(s)
	case "check":
		renderResult(r.out, r.engine.Evaluate(s))
		return nil
	case "submit", "finalize":
		renderResult(r.out, r.engine.Finalize(s))
		return nil
	default:
		return fmt.Errorf("unknown command %q (type 'help')", cmd)
	}

	r.show()
	return nil
}

func (r *repl) start(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: start <n> [phase]")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("scenario number: %w", err)
	}
	phase := lesson.Demonstration
	if len(args) > 1 {
		if phase, err = lesson.ParsePhase(strings.Join(args[1:], " ")); err != nil {
			return err
		}
	}
	s, err := r.engine.StartLesson(n-1, phase)
	if err != nil {
		return err
	}
	r.session = s
	r.show()
	return nil
}

func (r *repl) filled(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: filled <scenario> <step>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("scenario number: %w", err)
	}
	step, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("step: %w", err)
	}
	values, err := r.engine.FilledFields(n-1, step)
	if err != nil {
		return err
	}
	renderCheck(r.out, values, "")
	return nil
}

func (r *repl) show() {
	s := r.session
	renderHeader(r.out, r.engine, s)
	active, _ := r.engine.ActiveField(s)
	renderCheck(r.out, r.engine.Fields(s), active)
	renderExplanation(r.out, r.engine.Explanation(s))
	if s.Phase == lesson.Demonstration && s.StepIndex < 0 {
		fmt.Fprintln(r.out, dimStyle.Render("Type 'next' to watch the first step."))
	}
}

func (r *repl) printHelp() {
	fmt.Fprintln(r.out, "Available commands:")
	fmt.Fprintln(r.out, "  scenarios            List the check-writing scenarios")
	fmt.Fprintln(r.out, "  start <n> [phase]    Start scenario n (phase: demonstration, guided, independent)")
	fmt.Fprintln(r.out, "  scenario <n>         Switch to scenario n")
	fmt.Fprintln(r.out, "  phase <name>         Switch phase (I do, We do, You do also work)")
	fmt.Fprintln(r.out, "  set <field> <value>  Fill a field and see its verdict")
	fmt.Fprintln(r.out, "  next | back          Move to the next or previous step")
	fmt.Fprintln(r.out, "  jump <field>         Go straight to a field (not in demonstration)")
	fmt.Fprintln(r.out, "  show                 Show the check")
	fmt.Fprintln(r.out, "  check                Check every field without finishing")
	fmt.Fprintln(r.out, "  submit               Grade the check and finish the lesson")
	fmt.Fprintln(r.out, "  reset                Clear this phase and start it over")
	fmt.Fprintln(r.out, "  filled <n> <step>    Show scenario n as the demonstration fills it")
	fmt.Fprintln(r.out, "  exit                 Leave the shell")
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "Fields: %s\n", strings.Join(fieldNames(), ", "))
}

func fieldNames() []string {
	names := make([]string, 0, field.Count)
	for _, n := range field.Canonical() {
		names = append(names, string(n))
	}
	return names
}
