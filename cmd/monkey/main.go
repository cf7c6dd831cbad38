// Command monkey runs Monkey programs: whole files, one-liners, an
// interactive REPL, and token / syntax-tree dumps for debugging the front end.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/daios-ai/monkey"
)

const appName = "monkey"

// flag names
const (
	strictFlagName   = "strict"
	maxDepthFlagName = "max-depth"
	traceFlagName    = "trace"
	noColorFlagName  = "no-color"
	historyFlagName  = "history"
	tableFlagName    = "table"
	withEOFFlagName  = "with-eof"
	jsonFlagName     = "json"
)

var (
	red   = color.New(color.FgRed).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	blue  = color.New(color.FgHiBlue).SprintFunc()
)

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		os.Exit(report(app.ErrWriter, err))
	}
}

func newApp(in io.Reader, out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      appName,
		Usage:     "run and explore Monkey programs",
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    strictFlagName,
				Usage:   "report misuse (type mismatches, unbound names, bad calls) as errors instead of null",
				EnvVars: []string{"MONKEY_STRICT"},
			},
			&cli.IntFlag{
				Name:    maxDepthFlagName,
				Value:   monkey.DefaultMaxDepth,
				Usage:   "maximum evaluation nesting (calls, blocks, operators)",
				EnvVars: []string{"MONKEY_MAX_DEPTH"},
			},
			&cli.BoolFlag{
				Name:    traceFlagName,
				Usage:   "trace statements, conditions and outputs to stderr",
				EnvVars: []string{"MONKEY_TRACE"},
			},
			&cli.BoolFlag{
				Name:  noColorFlagName,
				Usage: "disable coloured output",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(noColorFlagName) {
				color.NoColor = true
			}
			return nil
		},
		Commands: []*cli.Command{
			runCommand(),
			evalCommand(),
			replCommand(),
			tokensCommand(),
			astCommand(),
			versionCommand(),
		},
		// Exit codes are handled by main so that tests can drive the app.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// report prints err and returns the process exit code it carries (1 if none).
func report(w io.Writer, err error) int {
	code := 1
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		code = ec.ExitCode()
	}
	if msg := strings.TrimRight(err.Error(), "\n"); msg != "" {
		fmt.Fprintln(w, red(msg))
	}
	return code
}

// newInterpreter builds a session from the global flags.
func newInterpreter(c *cli.Context) *monkey.Interpreter {
	logger := zap.NewNop()
	if c.Bool(traceFlagName) {
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		logger = zap.New(zapcore.NewCore(enc, zapcore.AddSync(c.App.ErrWriter), zapcore.DebugLevel))
	}
	return monkey.NewInterpreter(
		monkey.WithStrict(c.Bool(strictFlagName)),
		monkey.WithMaxDepth(c.Int(maxDepthFlagName)),
		monkey.WithLogger(logger),
	)
}

// readSource loads file, or the app's stdin when file is "" or "-".
func readSource(c *cli.Context, file string) (string, error) {
	if file == "" || file == "-" {
		b, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return "", errors.Wrap(err, "reading stdin")
		}
		return string(b), nil
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return "", errors.Wrapf(err, "cannot read %s", file)
	}
	return string(b), nil
}

// describe renders an error from the front end or evaluator. Lexical and
// syntax errors get a caret snippet of src; name labels the report.
func describe(err error, name, src string) string {
	return monkey.WrapErrorWithName(errors.Cause(err), name, src).Error()
}

func sourceName(file string) string {
	if file == "-" {
		return ""
	}
	return file
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print the compiled version",
		Action: func(c *cli.Context) error {
			fmt.Fprintf(c.App.Writer, "%s %s (built %s)\n", appName, monkey.Version, monkey.BuildDate)
			return nil
		},
	}
}
