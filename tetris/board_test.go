package tetris

import (
	"reflect"
	"testing"
)

func fillRow(b *Board, row int, skip ...int) {
	for col := range b.Width() {
		if !contains(skip, col) {
			b.set(col, row, Red)
		}
	}
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func TestNewBoard(t *testing.T) {
	t.Run("new board is empty", func(t *testing.T) {
		b := NewBoard(DefaultWidth, DefaultHeight)
		if b.Filled() != 0 {
			t.Errorf("expected an empty board, got %d filled cells", b.Filled())
		}
		if b.Width() != 10 || b.Height() != 20 {
			t.Errorf("expected 10x20 board, got %dx%d", b.Width(), b.Height())
		}
	})

	for _, dim := range [][2]int{{0, 20}, {10, 0}, {3, 20}, {10, -1}} {
		t.Run("invalid dimensions panic", func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("expected NewBoard(%d, %d) to panic", dim[0], dim[1])
				}
			}()
			NewBoard(dim[0], dim[1])
		})
	}
}

func TestIsOccupied(t *testing.T) {
	b := NewBoard(10, 20)
	b.set(2, 5, Blue)

	tests := []struct {
		name     string
		col, row int
		want     bool
	}{
		{name: "filled cell", col: 2, row: 5, want: true},
		{name: "empty cell", col: 3, row: 5},
		{name: "above the board is open sky", col: 2, row: -1},
		{name: "below the board", col: 2, row: 20},
		{name: "left of the board", col: -1, row: 5},
		{name: "right of the board", col: 10, row: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.IsOccupied(tt.col, tt.row); got != tt.want {
				t.Errorf("IsOccupied(%d, %d) = %t, want %t", tt.col, tt.row, got, tt.want)
			}
		})
	}
}

func TestLock(t *testing.T) {
	t.Run("writes the color of every occupied cell", func(t *testing.T) {
		b := NewBoard(10, 20)
		tm := newT()
		tm.Col, tm.Row = 3, 18
		b.Lock(tm)

		want := map[[2]int]bool{{4, 18}: true, {3, 19}: true, {4, 19}: true, {5, 19}: true}
		for row := range b.Height() {
			for col := range b.Width() {
				if want[[2]int{col, row}] {
					if b.Cell(col, row) != Purple {
						t.Errorf("expected %d,%d to be purple, got %q", col, row, b.Cell(col, row))
					}
					continue
				}
				if b.IsOccupied(col, row) {
					t.Errorf("expected %d,%d to be empty", col, row)
				}
			}
		}
	})

	t.Run("cells above the board are dropped", func(t *testing.T) {
		b := NewBoard(10, 20)
		tm := newI()
		tm.Grid = RotateClockwise(tm.Grid)
		tm.Col, tm.Row = 0, -2
		b.Lock(tm)

		if b.Filled() != 2 {
			t.Errorf("expected 2 filled cells, got %d", b.Filled())
		}
		if !b.IsOccupied(0, 0) || !b.IsOccupied(0, 1) {
			t.Errorf("expected rows 0 and 1 to be locked")
		}
	})
}

func TestClearFullRows(t *testing.T) {
	t.Run("no full rows leaves the board untouched", func(t *testing.T) {
		b := NewBoard(10, 20)
		fillRow(b, 19, 0)
		fillRow(b, 18, 9)
		b.set(4, 10, Green)
		before := b.Cells()

		if n := b.ClearFullRows(); n != 0 {
			t.Errorf("expected 0 rows cleared, got %d", n)
		}
		if !reflect.DeepEqual(before, b.Cells()) {
			t.Errorf("expected cells to be unchanged")
		}
	})

	tests := []struct {
		name      string
		full      []int
		wantLines int
	}{
		{name: "single bottom row", full: []int{19}, wantLines: 1},
		{name: "two adjacent rows", full: []int{18, 19}, wantLines: 2},
		{name: "rows with a gap", full: []int{15, 17, 19}, wantLines: 3},
		{name: "four rows", full: []int{16, 17, 18, 19}, wantLines: 4},
		{name: "top row", full: []int{0}, wantLines: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard(10, 20)
			for _, r := range tt.full {
				fillRow(b, r)
			}
			// mark the partial rows so their order can be verified.
			var partial [][]Color
			for row := range b.Height() {
				if contains(tt.full, row) {
					continue
				}
				b.set(row%b.Width(), row, Color(rune('a'+row)))
				partial = append(partial, b.Cells()[row])
			}
			before := b.Filled()

			if n := b.ClearFullRows(); n != tt.wantLines {
				t.Fatalf("expected %d rows cleared, got %d", tt.wantLines, n)
			}
			if got := before - b.Filled(); got != tt.wantLines*b.Width() {
				t.Errorf("expected filled cells to drop by %d, got %d", tt.wantLines*b.Width(), got)
			}
			cells := b.Cells()
			for row := range tt.wantLines {
				if !reflect.DeepEqual(cells[row], make([]Color, b.Width())) {
					t.Errorf("expected new row %d to be empty, got %v", row, cells[row])
				}
			}
			if !reflect.DeepEqual(cells[tt.wantLines:], partial) {
				t.Errorf("expected remaining rows to keep their order\nwant %v\ngot  %v", partial, cells[tt.wantLines:])
			}
		})
	}

	t.Run("row above a cleared row moves down into its index", func(t *testing.T) {
		b := NewBoard(10, 20)
		fillRow(b, 19)
		fillRow(b, 18, 5)
		want := b.Cells()[18]

		b.ClearFullRows()
		if !reflect.DeepEqual(b.Cells()[19], want) {
			t.Errorf("expected row 19 to hold old row 18, got %v", b.Cells()[19])
		}
	})
}
