package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_AppendRecent(t *testing.T) {
	j := openTemp(t)

	inputs := []string{"x^2", "sen(x)", "y"}
	for _, in := range inputs {
		e, err := j.Append(Entry{Input: in, Variable: "x"})
		require.NoError(t, err)
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.Timestamp.IsZero())
	}

	n, err := j.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	recent, err := j.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "y", recent[0].Input)
	assert.Equal(t, "sen(x)", recent[1].Input)
	assert.Greater(t, recent[0].Seq, recent[1].Seq)

	all, err := j.Recent(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestJournal_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	_, err = j.Append(Entry{Input: "ln(x)", Variable: "x", Output: "1 / x"})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	recent, err := j.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "1 / x", recent[0].Output)
}

func TestJournal_Closed(t *testing.T) {
	j := openTemp(t)
	require.NoError(t, j.Close())

	_, err := j.Append(Entry{Input: "x"})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = j.Recent(1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, j.Close())
}
