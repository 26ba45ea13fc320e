// Package repl implements the interactive query loop.
//
// Queries use the predicate form
//
//	?- derivada(sen(x^2), x, Y).
//	Y = cos(x^2) * (2 * x^1 * 1)
//
// and a failed derivation prints "no.". A bare expression is differentiated
// with respect to the configured variable.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wildfunctions/derivada/pkg/deriv"
	"github.com/wildfunctions/derivada/pkg/engine"
	"github.com/wildfunctions/derivada/pkg/journal"
	"github.com/wildfunctions/derivada/pkg/parse"
)

const DefaultPrompt = "?- "

// History lists past derivations. *journal.Journal implements it.
type History interface {
	Recent(limit int) ([]journal.Entry, error)
}

// REPL reads queries from In and writes answers to Out.
type REPL struct {
	eng     *engine.Engine
	in      io.Reader
	out     io.Writer
	history History

	// Prompt is printed before each line when non-empty.
	Prompt string
}

func New(eng *engine.Engine, in io.Reader, out io.Writer) *REPL {
	return &REPL{eng: eng, in: in, out: out, Prompt: DefaultPrompt}
}

// WithHistory enables the \history command.
func (r *REPL) WithHistory(h History) *REPL {
	r.history = h
	return r
}

// Run processes lines until end of input, \quit or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	sc := bufio.NewScanner(r.in)
	for {
		if r.Prompt != "" {
			fmt.Fprint(r.out, r.Prompt)
		}
		if !sc.Scan() {
			if r.Prompt != "" {
				fmt.Fprintln(r.out)
			}
			return sc.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		// Lines copied from a transcript keep their prompt.
		line := strings.TrimSpace(sc.Text())
		line = strings.TrimSpace(strings.TrimPrefix(line, "?-"))
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, `\`) {
			if quit := r.command(line); quit {
				return nil
			}
			continue
		}
		r.query(ctx, line)
	}
}

func (r *REPL) query(ctx context.Context, line string) {
	req := engine.Request{}
	output := ""
	if strings.HasPrefix(line, parse.QueryFunctor) {
		q, err := parse.ParseQueryLimit(line, r.eng.Config().MaxDepth)
		switch {
		case errors.Is(err, parse.ErrTooDeep):
			fmt.Fprintf(r.out, "Error: %v\n", err)
			return
		case err != nil:
			fmt.Fprintf(r.out, "Syntax error: %v\n", err)
			return
		}
		req.Expr, req.Variable, output = q.Expr, q.Variable, q.Output
	} else {
		req.Input = strings.TrimSuffix(line, ".")
	}

	res := r.eng.Derive(ctx, req)
	switch {
	case res.OK() && output != "":
		fmt.Fprintf(r.out, "%s = %s\n", output, res.Output)
	case res.OK():
		fmt.Fprintf(r.out, "d/d%s = %s\n", res.Variable, res.Output)
	case errors.Is(res.Err, parse.ErrSyntax):
		fmt.Fprintf(r.out, "Syntax error: %v\n", res.Err)
	case errors.Is(res.Err, deriv.ErrNoRuleMatched):
		fmt.Fprintln(r.out, "no.")
	default:
		fmt.Fprintf(r.out, "Error: %v\n", res.Err)
	}
}

// command runs a backslash command and reports whether the loop should end.
func (r *REPL) command(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case `\quit`:
		return true
	case `\help`:
		r.help()
	case `\listing`:
		for _, rule := range deriv.Rules() {
			fmt.Fprintf(r.out, "  %-8s d(%s) = %s\n", rule, rule.Pattern(), rule.Result())
		}
	case `\trace`:
		if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
			fmt.Fprintln(r.out, `usage: \trace on|off`)
			break
		}
		r.eng.SetTrace(fields[1] == "on")
		fmt.Fprintf(r.out, "trace %s\n", fields[1])
	case `\history`:
		r.showHistory()
	default:
		fmt.Fprintln(r.out, `Unknown command. Use \help to list commands.`)
	}
	return false
}

func (r *REPL) help() {
	fmt.Fprintln(r.out, "Commands:")
	fmt.Fprintln(r.out, `  \help         show this help`)
	fmt.Fprintln(r.out, `  \quit         leave the REPL`)
	fmt.Fprintln(r.out, `  \listing      list the derivative rules`)
	fmt.Fprintln(r.out, `  \history      show recent derivations`)
	fmt.Fprintln(r.out, `  \trace on|off log every rule that fires`)
	fmt.Fprintln(r.out, "Examples:")
	fmt.Fprintln(r.out, "  derivada(x^2, x, Y).")
	fmt.Fprintln(r.out, "  derivada(sen(x), x, Y).")
}

const historyLimit = 20

func (r *REPL) showHistory() {
	if r.history == nil {
		fmt.Fprintln(r.out, "History is disabled (no journal configured).")
		return
	}
	entries, err := r.history.Recent(historyLimit)
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(r.out, "No derivations recorded.")
		return
	}
	for _, e := range entries {
		if e.Error != "" {
			fmt.Fprintf(r.out, "%4d  d/d%s %s: no\n", e.Seq, e.Variable, e.Input)
			continue
		}
		fmt.Fprintf(r.out, "%4d  d/d%s %s = %s\n", e.Seq, e.Variable, e.Input, e.Output)
	}
}
