package cli

import (
	"bytes"
	"github.com/janpfeifer/hexants/internal/langton"
	. "github.com/janpfeifer/hexants/internal/state"
	"github.com/janpfeifer/hexants/internal/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderBoard(t *testing.T) {
	board := statetest.BuildBoard(3, 2, []Item{
		NewItem(0, 0, 0, Leaf),
		NewItem(2, 1, 0, Stick),
		NewItem(1, 1, 0, Stick),
		NewItem(1, 1, 0, Leaf),
	}, []statetest.AntOnBoard{{X: 1, Y: 0}, {X: 0, Y: 1, Carrying: Leaf}})
	ui := New(false, false)
	want := "L a ·\n" +
		" A * S\n"
	assert.Equal(t, want, ui.RenderBoard(board))
}

func TestRenderBoardColor(t *testing.T) {
	board := statetest.BuildBoard(4, 4, []Item{NewItem(1, 1, 0, Leaf)}, []statetest.AntOnBoard{{X: 2, Y: 2}})
	ui := New(true, false)
	rendered := ui.RenderBoard(board)
	lines := strings.Split(strings.TrimSuffix(rendered, "\n"), "\n")
	require.Len(t, lines, 4)
	// Colors don't change the layout.
	assert.Equal(t, New(false, false).RenderBoard(board), ansiFilter.ReplaceAllString(rendered, ""))
	assert.Equal(t, 7, displayWidth(lines[0]))
	assert.Equal(t, 8, displayWidth(lines[1]))
}

func TestRenderStatus(t *testing.T) {
	board := statetest.BuildBoard(3, 3, []Item{NewItem(0, 0, 0, Leaf)}, []statetest.AntOnBoard{{X: 1, Y: 1, Carrying: Stick}})
	ui := New(false, false)
	status := ui.RenderStatus(board, 10)
	assert.Contains(t, status, "Tick 0/10")
	assert.Contains(t, status, "Leaf 1, Stick 1")
	assert.Contains(t, status, "carried 1")
	assert.NotContains(t, status, "frozen")
	assert.Contains(t, ui.RenderStatus(board, 0), "frozen")
}

func TestPrint(t *testing.T) {
	board := statetest.BuildBoard(3, 2, nil, []statetest.AntOnBoard{{X: 0, Y: 0}})
	var buf bytes.Buffer
	New(false, true).WithWriter(&buf).Print(board, 5)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\033[H\033[2J"))
	assert.Contains(t, out, "a · ·")
	assert.Contains(t, out, "Tick 0/5")
}

func TestPrintCenteredNotTerminal(t *testing.T) {
	// Only the terminal being written to is used for centering: not whatever os.Stdout is.
	var buf bytes.Buffer
	printCentered(&buf, "ab\n\nabcd")
	assert.Equal(t, "ab\n\nabcd\n", buf.String())
	assert.Zero(t, terminalWidth(&buf))

	f, err := os.Create(filepath.Join(t.TempDir(), "frame.txt"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Zero(t, terminalWidth(f))
	printCentered(f, "ab")
	require.NoError(t, f.Close())
	contents, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "ab\n", string(contents))

	board := statetest.BuildBoard(3, 2, nil, []statetest.AntOnBoard{{X: 0, Y: 0}})
	buf.Reset()
	New(false, false).WithWriter(&buf).Print(board, 5)
	assert.True(t, strings.HasPrefix(buf.String(), "\na · ·\n"), "unexpected output %q", buf.String())
}

func TestRenderLangton(t *testing.T) {
	board, err := langton.NewBoard(3, 2)
	require.NoError(t, err)
	board.Step()
	ui := New(false, false)
	// The ant started at (1, 1), set it, and moved to (0, 1).
	assert.Equal(t, "░░░░░░\n░░██░░\n", ui.RenderLangton(board))

	var buf bytes.Buffer
	ui.WithWriter(&buf).PrintLangton(board, 10)
	assert.Contains(t, buf.String(), "Step 1/10 │ 1 cells set")
}
