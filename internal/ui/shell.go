package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const helpText = `Commands:
  list                  reload and show the student table
  show                  show the form and the table
  set <field> <value>   edit a form field (name, email, phone, course)
  submit                add the student, or save the edit
  edit <id>             load a student into the form for updating
  cancel                leave edit mode and clear the form
  delete <id>           delete a student (asks for confirmation)
  help                  show this help
  quit                  exit`

// Shell is a line-oriented command loop driving an App.
type Shell struct {
	scanner     *bufio.Scanner
	out         io.Writer
	interactive bool
}

// NewShell reads commands from in and writes to out. The prompt is only
// printed when interactive is true.
func NewShell(in io.Reader, out io.Writer, interactive bool) *Shell {
	return &Shell{
		scanner:     bufio.NewScanner(in),
		out:         out,
		interactive: interactive,
	}
}

// Confirm asks a yes/no question on the shell's input. Anything other
// than y or yes is a no.
func (s *Shell) Confirm(question string) (bool, error) {
	fmt.Fprintf(s.out, "%s [y/N] ", question)
	if !s.scanner.Scan() {
		fmt.Fprintln(s.out)
		return false, s.eof()
	}
	answer := strings.ToLower(strings.TrimSpace(s.scanner.Text()))
	return answer == "y" || answer == "yes", nil
}

// Run loads the list, then executes commands until quit or end of input.
func (s *Shell) Run(ctx context.Context, app *App) error {
	if err := app.Load(ctx); err == nil {
		_ = Render(s.out, app)
	}

	for {
		if s.interactive {
			fmt.Fprint(s.out, "> ")
		}
		if !s.scanner.Scan() {
			return s.scanner.Err()
		}

		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}

		quit, err := s.exec(ctx, app, line)
		if err != nil && !Shown(err) {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

func (s *Shell) exec(ctx context.Context, app *App, line string) (bool, error) {
	cmd, rest := cut(line)

	switch strings.ToLower(cmd) {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "list":
		if err := app.Load(ctx); err != nil {
			return false, err
		}
		return false, RenderTable(s.out, app)
	case "show":
		return false, Render(s.out, app)
	case "set":
		field, value := cut(rest)
		if field == "" {
			return false, fmt.Errorf("usage: set <field> <value>")
		}
		return false, app.SetField(field, value)
	case "submit":
		if err := app.Submit(ctx); err != nil {
			return false, err
		}
		return false, RenderTable(s.out, app)
	case "edit":
		id, err := parseID(rest)
		if err != nil {
			return false, err
		}
		if err := app.Edit(id); err != nil {
			return false, err
		}
		return false, Render(s.out, app)
	case "cancel":
		if err := app.Cancel(); err != nil {
			return false, err
		}
		return false, Render(s.out, app)
	case "delete":
		id, err := parseID(rest)
		if err != nil {
			return false, err
		}
		if err := app.Delete(ctx, id); err != nil {
			return false, err
		}
		return false, RenderTable(s.out, app)
	default:
		return false, fmt.Errorf("unknown command %q, type help", cmd)
	}
	return false, nil
}

func (s *Shell) eof() error {
	if err := s.scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

func cut(line string) (head, tail string) {
	head, tail, _ = strings.Cut(strings.TrimSpace(line), " ")
	return head, strings.TrimSpace(tail)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
