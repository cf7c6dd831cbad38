package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/daios-ai/monkey"
)

const (
	historyFile = ".monkey_history"
	promptMain  = ">> "
	promptCont  = ".. "
)

var helpText = `
REPL commands:
  :env     List the session's global bindings
  :help    Show this help
  :quit    Exit the REPL
`

func banner() string {
	return fmt.Sprintf("Monkey %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.", monkey.Version)
}

// prompter is the part of *liner.State the read loop needs.
type prompter interface {
	Prompt(prompt string) (string, error)
}

func replCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "start an interactive session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    historyFlagName,
				Usage:   "history file (default ~/" + historyFile + ")",
				EnvVars: []string{"MONKEY_HISTORY"},
			},
		},
		Action: func(c *cli.Context) error {
			histPath := c.String(historyFlagName)
			if histPath == "" {
				home, _ := os.UserHomeDir()
				histPath = filepath.Join(home, historyFile)
			}

			ln := liner.NewLiner()
			defer ln.Close()
			ln.SetCtrlCAborts(true)

			if f, err := os.Open(histPath); err == nil {
				_, _ = ln.ReadHistory(f)
				_ = f.Close()
			}
			defer func() {
				if f, err := os.Create(histPath); err == nil {
					_, _ = ln.WriteHistory(f)
					_ = f.Close()
				}
			}()

			sigc := make(chan os.Signal, 1)
			signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
			defer signal.Stop(sigc)
			go func() {
				<-sigc
				ln.Close()
				os.Exit(130)
			}()

			fmt.Fprintln(c.App.Writer, banner())
			s := &session{
				ip:       newInterpreter(c),
				in:       ln,
				out:      c.App.Writer,
				errOut:   c.App.ErrWriter,
				remember: ln.AppendHistory,
			}
			s.loop()
			return nil
		},
	}
}

// session is one REPL conversation over a persistent interpreter.
type session struct {
	ip       *monkey.Interpreter
	in       prompter
	out      io.Writer
	errOut   io.Writer
	remember func(string)
}

func (s *session) loop() {
	for {
		code, ok := readUntilParsed(s.in, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(s.out)
			return
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if s.command(trimmed) {
				return
			}
			continue
		}

		v, err := s.ip.EvalSource(code)
		if err != nil {
			fmt.Fprintln(s.errOut, red(strings.TrimRight(describe(err, "", code), "\n")))
			continue
		}
		fmt.Fprintln(s.out, blue(monkey.FormatValue(v)))
		if s.remember != nil {
			s.remember(strings.ReplaceAll(code, "\n", " "))
		}
	}
}

// command runs a ':' REPL command and reports whether the session should end.
func (s *session) command(cmd string) (quit bool) {
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprint(s.out, helpText)
	case ":env":
		for _, name := range s.ip.Global.Names() {
			v, _ := s.ip.Global.Get(name)
			fmt.Fprintf(s.out, "%s = %s\n", green(name), blue(monkey.FormatValue(v)))
		}
	default:
		fmt.Fprintf(s.out, "unknown command %s. Type :help for commands.\n", cmd)
	}
	return false
}

// readUntilParsed keeps prompting while the accumulated text only fails to
// parse because it ends too early. ok is false at end of input.
func readUntilParsed(in prompter, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = in.Prompt(prompt)
		} else {
			line, err = in.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C (liner.ErrPromptAborted) drops the pending input.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		_, perr := monkey.Parse(src)
		if perr != nil && monkey.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
