package repl

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfunctions/derivada/pkg/engine"
	"github.com/wildfunctions/derivada/pkg/journal"
)

func run(t *testing.T, input string, j *journal.Journal) string {
	t.Helper()
	eng, err := engine.New(engine.DefaultConfig(), nil)
	require.NoError(t, err)
	if j != nil {
		eng.WithRecorder(j)
	}

	var out bytes.Buffer
	r := New(eng, strings.NewReader(input), &out)
	r.Prompt = ""
	if j != nil {
		r.WithHistory(j)
	}
	require.NoError(t, r.Run(context.Background()))
	return out.String()
}

func TestREPL_Queries(t *testing.T) {
	out := run(t, strings.Join([]string{
		"derivada(x^2, x, Y).",
		"derivada(x/(x+1), x, D)",
		"derivada(y, x, Y).",
		"derivada(x^2, x).",
		"exp(3*x)",
		"",
	}, "\n"), nil)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Y = 2 * x^1 * 1", lines[0])
	assert.Equal(t, "D = (1 * (x + 1) - x * (1 + 0)) / (x + 1)^2", lines[1])
	assert.Equal(t, "no.", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "Syntax error:"))
	assert.Equal(t, "d/dx = exp(3 * x) * (0 * x + 3 * 1)", lines[4])
}

func TestREPL_Commands(t *testing.T) {
	out := run(t, "\\help\n\\listing\n\\trace on\n\\trace\n\\bogus\n\\history\n\\quit\nderivada(x, x, Y).\n", nil)

	assert.Contains(t, out, "Commands:")
	assert.Contains(t, out, "d(U^N) = N * U^(N-1) * dU")
	assert.Contains(t, out, "trace on")
	assert.Contains(t, out, `usage: \trace on|off`)
	assert.Contains(t, out, "Unknown command")
	assert.Contains(t, out, "History is disabled")
	assert.NotContains(t, out, "Y = 1", "input after \\quit is ignored")
}

func TestREPL_History(t *testing.T) {
	j, err := journal.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer j.Close()

	out := run(t, "derivada(ln(x), x, Y).\nderivada(k, x, Y).\n\\history\n", j)
	assert.Contains(t, out, "   1  d/dx ln(x) = 1 / x")
	assert.Contains(t, out, "   2  d/dx k: no")
}

func TestREPL_Prompt(t *testing.T) {
	eng, err := engine.New(engine.DefaultConfig(), nil)
	require.NoError(t, err)

	var out bytes.Buffer
	r := New(eng, strings.NewReader("derivada(x, x, Y).\n"), &out)
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, "?- Y = 1\n?- \n", out.String())
}

func TestREPL_PastedPrompt(t *testing.T) {
	out := run(t, "?- derivada(x^2, x, Y).\n  ?-   cos(x)\n?-\n", nil)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Y = 2 * x^1 * 1", lines[0])
	assert.Equal(t, "d/dx = -sen(x) * 1", lines[1])
}

func TestREPL_DeepQuery(t *testing.T) {
	out := run(t, "derivada("+strings.Repeat("-", 5000)+"x, x, Y).\n", nil)
	assert.Contains(t, out, "Error: expression too deep")
}
