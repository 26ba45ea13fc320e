package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/wildfunctions/derivada/pkg/deriv"
	"github.com/wildfunctions/derivada/pkg/repl"
)

func runREPL(cmd *cobra.Command, args []string) error {
	e, j, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	r := repl.New(e, cmd.InOrStdin(), cmd.OutOrStdout())
	if j != nil {
		r.WithHistory(j)
	}

	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		fmt.Fprintln(cmd.OutOrStdout(), `derivada REPL. Type \help for commands, \quit to leave.`)
		if cfg.Trace {
			fmt.Fprintln(cmd.OutOrStdout(), "[trace enabled]")
		}
	} else {
		r.Prompt = ""
	}
	return r.Run(cmd.Context())
}

func writeRules(w io.Writer) {
	for _, rule := range deriv.Rules() {
		fmt.Fprintf(w, "%-8s d(%s) = %s\n", rule, rule.Pattern(), rule.Result())
	}
}
