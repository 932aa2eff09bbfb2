package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli"
)

func listCommand() cli.Command {
	return cli.Command{
		Name:      "list",
		Usage:     "List the assets attached to a release",
		ArgsUsage: "<tag>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return usageError(c, "")
			}

			names, err := releases.ListAssets(context.Background(), c.Args().Get(0))
			if err != nil {
				return err
			}
			return printAssets(os.Stdout, names, isTerminal(os.Stdout))
		},
	}
}

// printAssets writes one name per line for a terminal, otherwise a single
// line holding a JSON array.
func printAssets(w io.Writer, names []string, tty bool) error {
	if tty {
		for _, name := range names {
			if _, err := fmt.Fprintln(w, name); err != nil {
				return err
			}
		}
		return nil
	}

	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
