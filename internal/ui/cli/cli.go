// Package cli implements a terminal UI for the simulations: it only reads the boards, and
// never changes them.
package cli

import (
	"fmt"
	"github.com/charmbracelet/lipgloss"
	"github.com/chewxy/math32"
	"github.com/janpfeifer/hexants/internal/hexgrid"
	"github.com/janpfeifer/hexants/internal/langton"
	. "github.com/janpfeifer/hexants/internal/state"
	"golang.org/x/term"
	"io"
	"os"
	"regexp"
	"strings"
)

const (
	// CharsPerCell is the width of each hexagon in the terminal. Odd rows are shifted by half of it.
	CharsPerCell = 2

	glyphEmpty     = "·"
	glyphMixed     = "*"
	glyphAnt       = "a"
	glyphLoadedAnt = "A"
)

// cellRadius is the hexagon radius that makes one hexagon CharsPerCell wide.
var cellRadius = CharsPerCell / math32.Sqrt(3)

var ansiFilter = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// displayWidth of s removes its color/control sequences and returns the length of what is left.
func displayWidth(s string) int {
	return len([]rune(ansiFilter.ReplaceAllString(s, "")))
}

// terminalWidth returns the width of the terminal w writes to, or 0 if w is not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// printCentered writes the block centered on the terminal w writes to, if any.
func printCentered(w io.Writer, block string) {
	lines := strings.Split(block, "\n")
	width := terminalWidth(w)
	blockWidth := 0
	for _, line := range lines {
		blockWidth = max(blockWidth, displayWidth(line))
	}
	indent := max((width-blockWidth)/2, 0)
	for _, line := range lines {
		if len(line) == 0 {
			_, _ = fmt.Fprintln(w)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", indent), line)
	}
}

var (
	styleLeaf      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleStick     = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	styleMixed     = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	styleAnt       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleLoadedAnt = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1")).Bold(true)
	styleEmpty     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleStatus    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")).Padding(0, 1)
	styleFrozen    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("13")).Padding(0, 1)
	styleLangton   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// UI renders boards to a writer, typically the terminal.
type UI struct {
	color, clearScreen bool
	out                io.Writer
}

// New creates a UI that writes to os.Stdout.
//
// If color is false no ANSI escape sequences are used for the board, and if clearScreen is
// true the terminal is cleared before each frame.
func New(color bool, clearScreen bool) *UI {
	return &UI{
		color:       color,
		clearScreen: clearScreen,
		out:         os.Stdout,
	}
}

// WithWriter changes where the UI writes to, and returns the UI itself.
func (ui *UI) WithWriter(w io.Writer) *UI {
	ui.out = w
	return ui
}

func (ui *UI) render(style lipgloss.Style, glyph string) string {
	if !ui.color {
		return glyph
	}
	return style.Render(glyph)
}

// cellGlyph returns what to display at pos: ants are displayed on top of items.
func (ui *UI) cellGlyph(pos hexgrid.Pos, ants map[hexgrid.Pos]bool, itemTypes map[hexgrid.Pos]ItemType) string {
	if loaded, found := ants[pos]; found {
		if loaded {
			return ui.render(styleLoadedAnt, glyphLoadedAnt)
		}
		return ui.render(styleAnt, glyphAnt)
	}
	itemType, found := itemTypes[pos]
	switch {
	case !found:
		return ui.render(styleEmpty, glyphEmpty)
	case itemType == NoItem:
		return ui.render(styleMixed, glyphMixed)
	case itemType == Leaf:
		return ui.render(styleLeaf, ItemLetters[Leaf])
	default:
		return ui.render(styleStick, ItemLetters[itemType])
	}
}

// RenderBoard returns the board drawn as text, one line per row of the board.
//
// Leaves and sticks are drawn with their letters ("L", "S"), and a cell holding both with "*".
// Ants are drawn on top of items: "a" if empty-handed, "A" if carrying something.
func (ui *UI) RenderBoard(board *Board) string {
	ants := make(map[hexgrid.Pos]bool, board.NumAnts())
	for ant := range board.AntsIter() {
		ants[ant.Pos] = ants[ant.Pos] || ant.IsCarrying()
	}
	// Item type per position, NoItem if there is more than one type.
	itemTypes := make(map[hexgrid.Pos]ItemType, board.NumItems())
	for item := range board.ItemsIter() {
		if previous, found := itemTypes[item.Pos]; found && previous != item.Type {
			itemTypes[item.Pos] = NoItem
		} else {
			itemTypes[item.Pos] = item.Type
		}
	}

	hexWidth := math32.Sqrt(3) * cellRadius
	var buf strings.Builder
	for y := range board.Height() {
		column := 0
		for x := range board.Width() {
			cx, _ := hexgrid.PixelCenter(x, y, cellRadius)
			cellColumn := int(math32.Round(cx - hexWidth/2))
			if cellColumn > column {
				buf.WriteString(strings.Repeat(" ", cellColumn-column))
				column = cellColumn
			}
			buf.WriteString(ui.cellGlyph(hexgrid.Pos{X: x, Y: y}, ants, itemTypes))
			column++
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

// RenderStatus returns a one-line status for the board, given the target number of ticks.
func (ui *UI) RenderStatus(board *Board, targetTicks int) string {
	stats := board.Stats()
	status := fmt.Sprintf("Tick %d/%d │ %d ants │ %s %d, %s %d │ carried %d │ same-type adjacency %.3f",
		stats.Tick, targetTicks, stats.Ants,
		ItemNames[Leaf], stats.ItemsByType[Leaf], ItemNames[Stick], stats.ItemsByType[Stick],
		stats.CarriedItems, stats.SameTypeAdjacency)
	if !ui.color {
		if stats.Tick >= targetTicks {
			status += " │ frozen"
		}
		return status
	}
	status = styleStatus.Render(status)
	if stats.Tick >= targetTicks {
		status += styleFrozen.Render("frozen")
	}
	return status
}

func (ui *UI) startFrame() {
	if ui.clearScreen {
		_, _ = fmt.Fprint(ui.out, "\033[H\033[2J")
	}
}

// Print the board and its status line, centered on the terminal.
func (ui *UI) Print(board *Board, targetTicks int) {
	ui.startFrame()
	_, _ = fmt.Fprintln(ui.out)
	printCentered(ui.out, ui.RenderBoard(board))
	printCentered(ui.out, ui.RenderStatus(board, targetTicks))
}

// RenderLangton returns Langton's board drawn with 2 characters per cell.
func (ui *UI) RenderLangton(board *langton.Board) string {
	grid := board.Grid()
	var buf strings.Builder
	for y := range grid.Height {
		for x := range grid.Width {
			pos := hexgrid.Pos{X: x, Y: y}
			glyph := "░░"
			if board.Get(pos) {
				glyph = "██"
			}
			if pos == board.Ant.Pos {
				glyph = ui.render(styleLangton, glyph)
			}
			buf.WriteString(glyph)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

// PrintLangton prints Langton's board and a status line.
func (ui *UI) PrintLangton(board *langton.Board, targetSteps int) {
	ui.startFrame()
	_, _ = fmt.Fprint(ui.out, ui.RenderLangton(board))
	_, _ = fmt.Fprintf(ui.out, "Step %d/%d │ %d cells set\n", board.StepNumber, targetSteps, board.CountSet())
}
