package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "evaluate a source file and print its final value",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit(fmt.Sprintf("usage: %s run <file>", appName), 2)
			}
			file := c.Args().First()
			src, err := readSource(c, file)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return runSource(c, sourceName(file), src)
		},
	}
}

func evalCommand() *cli.Command {
	return &cli.Command{
		Name:      "eval",
		Usage:     "evaluate the arguments as one program (stdin when none) and print the value",
		ArgsUsage: "[source...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				src, err := readSource(c, "")
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
				return runSource(c, "", src)
			}
			return runSource(c, "", strings.Join(c.Args().Slice(), " "))
		},
	}
}

func runSource(c *cli.Context, name, src string) error {
	out, err := newInterpreter(c).Run(src)
	if err != nil {
		return cli.Exit(describe(err, name, src), 1)
	}
	fmt.Fprintln(c.App.Writer, out)
	return nil
}
