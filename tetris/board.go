package tetris

import "fmt"

const (
	DefaultWidth  = 10
	DefaultHeight = 20

	minWidth  = 4
	minHeight = 4
)

// Color is the rendering token a locked cell holds. An empty string is an empty cell.
type Color string

const (
	Empty  Color = ""
	Cyan   Color = "cyan"
	Blue   Color = "blue"
	Orange Color = "orange"
	Yellow Color = "yellow"
	Green  Color = "green"
	Purple Color = "purple"
	Red    Color = "red"
)

// Board is the playfield.
// Columns are 0 > width-1 left to right.
// Rows are 0 > height-1 top to bottom.
type Board struct {
	width, height int
	cells         [][]Color
}

// NewBoard returns an empty board. It panics if the dimensions can't hold a tetromino.
func NewBoard(width, height int) *Board {
	if width < minWidth || height < minHeight {
		panic(fmt.Sprintf("tetris: invalid board dimensions %dx%d", width, height))
	}
	cells := make([][]Color, height)
	for i := range cells {
		cells[i] = make([]Color, width)
	}
	return &Board{width: width, height: height, cells: cells}
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

func (b *Board) inBounds(col, row int) bool {
	return col >= 0 && col < b.width && row >= 0 && row < b.height
}

// IsOccupied reports whether the cell is inside the board and not empty.
// Rows above the board (row < 0) are open sky and never occupied.
func (b *Board) IsOccupied(col, row int) bool {
	return b.inBounds(col, row) && b.cells[row][col] != Empty
}

// Cell returns the color at col, row or Empty when out of bounds.
func (b *Board) Cell(col, row int) Color {
	if !b.inBounds(col, row) {
		return Empty
	}
	return b.cells[row][col]
}

func (b *Board) set(col, row int, c Color) {
	b.cells[row][col] = c
}

// Lock writes the tetromino's color into the board. Cells still above
// the board are dropped.
func (b *Board) Lock(t *Tetromino) {
	for ir, r := range t.Grid {
		for ic, c := range r {
			if !c {
				continue
			}
			col, row := t.Col+ic, t.Row+ir
			if row < 0 || !b.inBounds(col, row) {
				continue
			}
			b.cells[row][col] = t.Color
		}
	}
}

// ClearFullRows removes every complete row, inserting an empty row at the
// top for each one, and returns how many were removed.
func (b *Board) ClearFullRows() int {
	cleared := 0
	for row := b.height - 1; row >= 0; {
		if !b.isFull(row) {
			row--
			continue
		}
		copy(b.cells[1:row+1], b.cells[:row])
		b.cells[0] = make([]Color, b.width)
		cleared++
		// the row above slid into this index so it has to be checked again.
	}
	return cleared
}

func (b *Board) isFull(row int) bool {
	for _, c := range b.cells[row] {
		if c == Empty {
			return false
		}
	}
	return true
}

// Filled returns the number of non-empty cells.
func (b *Board) Filled() int {
	n := 0
	for _, r := range b.cells {
		for _, c := range r {
			if c != Empty {
				n++
			}
		}
	}
	return n
}

// Cells returns a copy of the grid that's safe to hand out to renderers.
func (b *Board) Cells() [][]Color {
	out := make([][]Color, b.height)
	for i := range b.cells {
		out[i] = make([]Color, b.width)
		copy(out[i], b.cells[i])
	}
	return out
}
