package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/daios-ai/monkey"
)

func tokensCommand() *cli.Command {
	return &cli.Command{
		Name:      "tokens",
		Usage:     "print the token stream of a file (stdin when omitted)",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: tableFlagName, Usage: "render an aligned table"},
			&cli.BoolFlag{Name: jsonFlagName, Usage: "emit NDJSON: one JSON object per token"},
			&cli.BoolFlag{Name: withEOFFlagName, Usage: "include the EOF token"},
		},
		Action: func(c *cli.Context) error {
			file := c.Args().First()
			src, err := readSource(c, file)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			// Tokens scanned before a lexical error are still shown.
			var toks []monkey.Token
			l := monkey.NewLexer(src)
			for {
				tok, lexErr := l.Next()
				if lexErr != nil {
					err = lexErr
					break
				}
				if tok.Type == monkey.EOF {
					if c.Bool(withEOFFlagName) {
						toks = append(toks, tok)
					}
					break
				}
				toks = append(toks, tok)
			}

			w := c.App.Writer
			switch {
			case c.Bool(tableFlagName):
				writeTokenTable(w, toks)
			case c.Bool(jsonFlagName):
				if encErr := writeTokenJSON(w, toks); encErr != nil {
					return cli.Exit(encErr.Error(), 1)
				}
			default:
				for _, t := range toks {
					fmt.Fprintf(w, "%4d:%-3d %-12s lexeme=%q\n", t.Line, t.Col+1, t.Type, t.Lexeme)
				}
			}
			if err != nil {
				return cli.Exit(describe(err, sourceName(file), src), 1)
			}
			return nil
		},
	}
}

func writeTokenTable(w io.Writer, toks []monkey.Token) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Line", "Col", "Type", "Lexeme"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, t := range toks {
		table.Append([]string{
			strconv.Itoa(t.Line),
			strconv.Itoa(t.Col + 1),
			t.Type.String(),
			t.Lexeme,
		})
	}
	table.Render()
}

type outToken struct {
	Type   string `json:"type"`
	Lexeme string `json:"lexeme,omitempty"`
	Line   int    `json:"line"`
	Col    int    `json:"col"`
}

func writeTokenJSON(w io.Writer, toks []monkey.Token) error {
	enc := json.NewEncoder(w)
	for _, t := range toks {
		if err := enc.Encode(outToken{Type: t.Type.String(), Lexeme: t.Lexeme, Line: t.Line, Col: t.Col + 1}); err != nil {
			return err
		}
	}
	return nil
}

func astCommand() *cli.Command {
	return &cli.Command{
		Name:      "ast",
		Usage:     "print the fully parenthesised syntax tree of a file (stdin when omitted)",
		ArgsUsage: "[file]",
		Action: func(c *cli.Context) error {
			file := c.Args().First()
			src, err := readSource(c, file)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			prog, err := monkey.Parse(src)
			if err != nil {
				return cli.Exit(describe(err, sourceName(file), src), 1)
			}
			fmt.Fprintln(c.App.Writer, monkey.FormatProgram(prog))
			return nil
		},
	}
}
