package tetris

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("new tetris starts running with an empty board", func(t *testing.T) {
		tetris := New()
		if tetris.Phase() != Running {
			t.Errorf("expected phase running, got %v", tetris.Phase())
		}
		if tetris.Board().Filled() != 0 {
			t.Errorf("expected an empty board")
		}
		if tetris.Score() != 0 || tetris.Level() != 1 || tetris.LinesClear() != 0 {
			t.Errorf("expected score 0, level 1, lines 0, got %d, %d, %d", tetris.Score(), tetris.Level(), tetris.LinesClear())
		}
		if tetris.Tetromino() == nil || tetris.Next() == "" {
			t.Errorf("expected current and next tetromino to be set")
		}
	})

	t.Run("custom size", func(t *testing.T) {
		tetris := NewTestTetris(O, WithSize(6, 8))
		if tetris.Board().Width() != 6 || tetris.Board().Height() != 8 {
			t.Errorf("expected 6x8 board, got %dx%d", tetris.Board().Width(), tetris.Board().Height())
		}
		if tetris.Tetromino().Col != 2 {
			t.Errorf("expected O to spawn at column 2, got %d", tetris.Tetromino().Col)
		}
	})
}

func TestSpawn(t *testing.T) {
	tests := []struct {
		shape   Shape
		wantCol int
	}{
		{I, 3},
		{O, 4},
		{T, 3},
		{S, 3},
		{Z, 3},
		{J, 3},
		{L, 3},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s spawns at column %d", tt.shape, tt.wantCol), func(t *testing.T) {
			tetris := NewTestTetris(tt.shape)
			tm := tetris.Tetromino()
			if tm.Col != tt.wantCol || tm.Row != 0 {
				t.Errorf("wanted origin %d,0, got %d,%d", tt.wantCol, tm.Col, tm.Row)
			}
			if tm.Col < 0 || tm.Col+tm.Width() > tetris.Board().Width() {
				t.Errorf("spawned outside the board: col %d width %d", tm.Col, tm.Width())
			}
		})
	}

	t.Run("next tetromino becomes the current one", func(t *testing.T) {
		tetris := New(WithPicker(&SequencePicker{Shapes: []Shape{I, O, T}}))
		if tetris.Tetromino().Shape != I || tetris.Next() != O {
			t.Fatalf("wanted I then O, got %s then %s", tetris.Tetromino().Shape, tetris.Next())
		}
		tetris.HardDrop()
		if tetris.Tetromino().Shape != O || tetris.Next() != T {
			t.Errorf("wanted O then T, got %s then %s", tetris.Tetromino().Shape, tetris.Next())
		}
	})

	t.Run("uniform picker draws every shape", func(t *testing.T) {
		seen := map[Shape]bool{}
		p := uniformPicker{}
		for range 1000 {
			seen[p.Pick()] = true
		}
		if len(seen) != len(Shapes) {
			t.Errorf("wanted all %d shapes drawn, got %v", len(Shapes), seen)
		}
	})
}

func TestIsValidPlacement(t *testing.T) {
	// 	.	0 1 2 3 4 5 6 7 8 9		.	0 1 2
	// 0	. . . O . . . . . .		0	O X X
	// 1	. . . O O O . . . .		1	O O O
	// 2	. . . . . C . . . .
	tests := []struct {
		name           string
		deltaX, deltaY int
		want           bool
	}{
		{name: "current position", want: true},
		{name: "stack collision", deltaY: 1},
		{name: "left bound", deltaX: -4},
		{name: "touching left wall", deltaX: -3, want: true},
		{name: "right bound", deltaX: 5},
		{name: "touching right wall", deltaX: 4, want: true},
		{name: "bottom bound", deltaX: 2, deltaY: 19},
		{name: "above the board is open sky", deltaY: -1, want: true},
		{name: "entirely above the board", deltaY: -5, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tetris := NewTestTetris(J)
			tetris.Board().set(5, 2, Red)
			tm := tetris.Tetromino()

			got := tetris.IsValidPlacement(tm.Grid, tm.Col+tt.deltaX, tm.Row+tt.deltaY)
			if got != tt.want {
				t.Errorf("wanted %t, got %t", tt.want, got)
			}
		})
	}
}

func TestMoveActions(t *testing.T) {
	// Initial state of the test:
	//
	// 	.	Spawn Location		.	Shape
	// .	0 1 2 3 4 5 6 7 8 9		.	0 1 2
	// 0	. . . O . . . . . .		0	O X X
	// 1	. . . O O O . . . .		1	O O O
	tests := []struct {
		name         string
		action       func(g *Tetris) bool
		updateStack  func(g *Tetris)
		wantOK       bool
		wantGrid     [][]bool
		wantLocation []int // col, row
	}{
		{
			name:         "Move left unblocked",
			action:       func(g *Tetris) bool { return g.Left() },
			wantOK:       true,
			wantLocation: []int{2, 0},
		},
		{
			name:   "Move left blocked",
			action: func(g *Tetris) bool { return g.Left() },
			updateStack: func(g *Tetris) {
				g.Board().set(2, 1, Blue)
			},
			wantLocation: []int{3, 0},
		},
		{
			name:         "Move right unblocked",
			action:       func(g *Tetris) bool { return g.Right() },
			wantOK:       true,
			wantLocation: []int{4, 0},
		},
		{
			name:   "Move right blocked",
			action: func(g *Tetris) bool { return g.Right() },
			updateStack: func(g *Tetris) {
				g.Board().set(6, 1, Blue)
			},
			wantLocation: []int{3, 0},
		},
		{
			name:         "Move down unblocked",
			action:       func(g *Tetris) bool { return g.MoveBy(0, 1) },
			wantOK:       true,
			wantLocation: []int{3, 1},
		},
		{
			name:   "Move down blocked",
			action: func(g *Tetris) bool { return g.MoveBy(0, 1) },
			updateStack: func(g *Tetris) {
				g.Board().set(3, 2, Blue)
			},
			wantLocation: []int{3, 0},
		},
		{
			name:         "Identity move",
			action:       func(g *Tetris) bool { return g.MoveBy(0, 0) },
			wantOK:       true,
			wantLocation: []int{3, 0},
		},
		{
			name:         "Rotate when unblocked",
			action:       func(g *Tetris) bool { return g.Rotate() },
			wantOK:       true,
			wantLocation: []int{3, 0},
			wantGrid: [][]bool{
				{true, true},
				{true, false},
				{true, false},
			},
		},
		{
			name:   "Rotate blocked keeps the shape",
			action: func(g *Tetris) bool { return g.Rotate() },
			updateStack: func(g *Tetris) {
				g.Board().set(3, 2, Blue)
			},
			wantLocation: []int{3, 0},
			wantGrid: [][]bool{
				{true, false, false},
				{true, true, true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tetris := NewTestTetris(J)
			if tt.updateStack != nil {
				tt.updateStack(tetris)
			}
			if ok := tt.action(tetris); ok != tt.wantOK {
				t.Errorf("wanted action to return %t, got %t", tt.wantOK, ok)
			}
			tm := tetris.Tetromino()
			if tm.Col != tt.wantLocation[0] {
				t.Errorf("wanted tetromino's Col to be %d, got %d", tt.wantLocation[0], tm.Col)
			}
			if tm.Row != tt.wantLocation[1] {
				t.Errorf("wanted tetromino's Row to be %d, got %d", tt.wantLocation[1], tm.Row)
			}
			if tt.wantGrid != nil {
				if !reflect.DeepEqual(tm.Grid, tt.wantGrid) {
					t.Errorf("wanted %v, got %v", tt.wantGrid, tm.Grid)
				}
			}
		})
	}
}

func TestMoveLeftAgainstWall(t *testing.T) {
	for _, s := range Shapes {
		for r := range 4 {
			t.Run(fmt.Sprintf("%s rotated %d times", s, r), func(t *testing.T) {
				tetris := NewTestTetris(s)
				tetris.MoveBy(0, 3) // room for every rotation
				for range r {
					tetris.Rotate()
				}
				for tetris.Left() {
				}
				tm := tetris.Tetromino()
				if tm.Col != 0 {
					t.Fatalf("expected tetromino against the left wall, got col %d", tm.Col)
				}
				before := tm.copy()
				if tetris.Left() {
					t.Errorf("expected left at col 0 to fail")
				}
				if !reflect.DeepEqual(tetris.Tetromino(), before) {
					t.Errorf("expected tetromino to stay at %v, got %v", before, tetris.Tetromino())
				}
			})
		}
	}
}

func TestHardDrop(t *testing.T) {
	t.Run("I locks on the bottom row", func(t *testing.T) {
		tetris := NewTestTetris(I)
		if tm := tetris.Tetromino(); tm.Col != 3 || tm.Row != 0 {
			t.Fatalf("wanted I at 3,0, got %d,%d", tm.Col, tm.Row)
		}
		if rows := tetris.HardDrop(); rows != 19 {
			t.Errorf("wanted I to fall 19 rows, got %d", rows)
		}
		b := tetris.Board()
		for col := 3; col <= 6; col++ {
			if !b.IsOccupied(col, 19) {
				t.Errorf("wanted %d,19 to be occupied", col)
			}
			for row := range 19 {
				if b.IsOccupied(col, row) {
					t.Errorf("wanted %d,%d to be empty", col, row)
				}
			}
		}
		if b.Filled() != 4 {
			t.Errorf("wanted exactly 4 cells locked, got %d", b.Filled())
		}
		if tm := tetris.Tetromino(); tm.Row != 0 || tm.Col != 3 {
			t.Errorf("wanted a new tetromino at the spawn location, got %d,%d", tm.Col, tm.Row)
		}
	})

	t.Run("locks exactly once", func(t *testing.T) {
		tetris := NewTestTetris(O)
		tetris.HardDrop()
		if tetris.Board().Filled() != 4 {
			t.Errorf("wanted 4 filled cells, got %d", tetris.Board().Filled())
		}
	})
}

func TestSoftDrop(t *testing.T) {
	tetris := NewTestTetris(O)
	for range 18 {
		if !tetris.SoftDrop() {
			t.Fatalf("expected O to move down")
		}
	}
	if tetris.Board().Filled() != 0 {
		t.Fatalf("expected nothing locked yet")
	}
	if tetris.SoftDrop() {
		t.Errorf("expected soft drop on the floor to lock")
	}
	for _, c := range [][2]int{{4, 18}, {5, 18}, {4, 19}, {5, 19}} {
		if tetris.Board().Cell(c[0], c[1]) != Yellow {
			t.Errorf("wanted %v to be yellow", c)
		}
	}
	if tetris.Tetromino().Row != 0 {
		t.Errorf("wanted a fresh tetromino at row 0, got %d", tetris.Tetromino().Row)
	}
}

func TestLineClear(t *testing.T) {
	//	.	0 1 2 3 4 5 6 7 8 9
	//	18	. . . . . O O . . .
	//	19	X X X X X O O X X X
	tetris := NewTestTetris(O)
	fillRow(tetris.Board(), 19, 5, 6)
	tetris.Right()
	tetris.HardDrop()

	if tetris.LinesClear() != 1 {
		t.Errorf("wanted 1 line clear, got %d", tetris.LinesClear())
	}
	if tetris.Score() != 100 {
		t.Errorf("wanted score 100, got %d", tetris.Score())
	}
	b := tetris.Board()
	want := make([]Color, 10)
	want[5], want[6] = Yellow, Yellow
	if !reflect.DeepEqual(b.Cells()[19], want) {
		t.Errorf("wanted row 19 to hold the old row 18, got %v", b.Cells()[19])
	}
	if !reflect.DeepEqual(b.Cells()[0], make([]Color, 10)) {
		t.Errorf("wanted an empty row 0, got %v", b.Cells()[0])
	}
	if b.Filled() != 2 {
		t.Errorf("wanted 2 filled cells, got %d", b.Filled())
	}
}

func TestScoring(t *testing.T) {
	tests := []struct {
		name         string
		scoring      Scoring
		lines, level int
		want         int
	}{
		{"flat single", FlatScoring, 1, 3, 100},
		{"flat tetris", FlatScoring, 4, 1, 400},
		{"level single", LevelScoring, 1, 3, 300},
		{"level double", LevelScoring, 2, 2, 400},
		{"guideline single", GuidelineScoring, 1, 1, 100},
		{"guideline tetris", GuidelineScoring, 4, 2, 1600},
		{"guideline nothing", GuidelineScoring, 0, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scoring.Points(tt.lines, tt.level); got != tt.want {
				t.Errorf("wanted %d points, got %d", tt.want, got)
			}
		})
	}

	t.Run("scoring by name", func(t *testing.T) {
		for _, name := range []string{"", "flat", "level", "guideline"} {
			if _, err := ScoringByName(name); err != nil {
				t.Errorf("unexpected error for %q: %v", name, err)
			}
		}
		if _, err := ScoringByName("bonus"); err == nil {
			t.Errorf("expected an error for an unknown policy")
		}
	})

	t.Run("engine uses the configured policy at the current level", func(t *testing.T) {
		tetris := NewTestTetris(O, WithScoring(LevelScoring), WithLinesPerLevel(1))
		tetris.level = 3
		fillRow(tetris.Board(), 19, 5, 6)
		tetris.Right()
		tetris.HardDrop()
		if tetris.Score() != 300 {
			t.Errorf("wanted 300 points, got %d", tetris.Score())
		}
	})
}

func TestSetLevel(t *testing.T) {
	tests := []struct {
		lines, wantLevel int
	}{
		{1, 1},
		{9, 1},
		{10, 2},
		{12, 2},
		{20, 3},
		{94, 10},
		{209, 21},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("for %d lines should have level %d", tt.lines, tt.wantLevel), func(t *testing.T) {
			tetris := NewTestTetris(O)
			tetris.linesClear = tt.lines - 1
			fillRow(tetris.Board(), 19, 5, 6)
			tetris.Right()
			tetris.HardDrop()
			if tetris.Level() != tt.wantLevel {
				t.Errorf("wanted level %d, got %d", tt.wantLevel, tetris.Level())
			}
		})
	}
}

func TestGameOver(t *testing.T) {
	//	.	0 1 2 3 4 5 6 7 8 9
	//	0	. X X X O O X X X X
	//	1	. X X X O O X X X X
	//	2	. . . . X X . . . .
	newBlockedTetris := func() *Tetris {
		tetris := NewTestTetris(O)
		b := tetris.Board()
		fillRow(b, 0, 0, 4, 5)
		fillRow(b, 1, 0, 4, 5)
		b.set(4, 2, Red)
		b.set(5, 2, Red)
		return tetris
	}

	t.Run("spawn collision ends the game", func(t *testing.T) {
		tetris := newBlockedTetris()
		if tetris.Phase() != Running {
			t.Fatalf("expected first O to fit")
		}
		tetris.HardDrop()
		if tetris.Phase() != Over {
			t.Fatalf("expected game over, got %v", tetris.Phase())
		}
		if tetris.Board().Cell(4, 0) != Yellow {
			t.Errorf("expected the first O to be locked")
		}
	})

	t.Run("nothing moves once over", func(t *testing.T) {
		tetris := newBlockedTetris()
		tetris.HardDrop()
		cells := tetris.Board().Cells()
		tm := tetris.Tetromino().copy()

		actions := map[string]func() bool{
			"left":      tetris.Left,
			"right":     tetris.Right,
			"rotate":    tetris.Rotate,
			"soft drop": tetris.SoftDrop,
			"move down": func() bool { return tetris.MoveBy(0, 1) },
			"hard drop": func() bool { return tetris.HardDrop() != 0 },
		}
		for name, a := range actions {
			if a() {
				t.Errorf("expected %s to fail once over", name)
			}
		}
		if tetris.TogglePause() != Over {
			t.Errorf("expected pause to be ignored once over")
		}
		if !reflect.DeepEqual(tetris.Board().Cells(), cells) {
			t.Errorf("expected board to be unchanged")
		}
		if !reflect.DeepEqual(tetris.Tetromino(), tm) {
			t.Errorf("expected tetromino to be unchanged")
		}
	})

	t.Run("reset starts over", func(t *testing.T) {
		tetris := newBlockedTetris()
		tetris.HardDrop()
		tetris.score = 500
		if !tetris.Action(Restart) {
			t.Fatalf("expected reset to be accepted once over")
		}
		if tetris.Phase() != Running || tetris.Score() != 0 || tetris.Level() != 1 || tetris.Board().Filled() != 0 {
			t.Errorf("expected a fresh game, got phase %v score %d level %d filled %d",
				tetris.Phase(), tetris.Score(), tetris.Level(), tetris.Board().Filled())
		}
	})
}

func TestPause(t *testing.T) {
	tetris := NewTestTetris(T)
	if tetris.TogglePause() != Paused {
		t.Fatalf("expected paused")
	}
	before := tetris.Tetromino().copy()
	if tetris.Left() || tetris.Rotate() || tetris.SoftDrop() || tetris.HardDrop() != 0 {
		t.Errorf("expected commands to be ignored while paused")
	}
	if tetris.Action(Restart) {
		t.Errorf("expected reset to be ignored while paused")
	}
	if !reflect.DeepEqual(tetris.Tetromino(), before) {
		t.Errorf("expected tetromino to be unchanged")
	}
	if tetris.TogglePause() != Running {
		t.Errorf("expected running again")
	}
	if !tetris.Left() {
		t.Errorf("expected commands to work after resuming")
	}
}

func TestAction(t *testing.T) {
	tests := []struct {
		action  Action
		wantOK  bool
		wantCol int
		wantRow int
	}{
		{MoveLeft, true, 2, 0},
		{MoveRight, true, 4, 0},
		{MoveDown, true, 3, 1},
		{RotateRight, true, 3, 0},
		{DropDown, true, 3, 0},
		{Pause, true, 3, 0},
		{Restart, false, 3, 0},
		{"jump", false, 3, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			tetris := NewTestTetris(T)
			if ok := tetris.Action(tt.action); ok != tt.wantOK {
				t.Errorf("wanted %t, got %t", tt.wantOK, ok)
			}
			tm := tetris.Tetromino()
			if tm.Col != tt.wantCol || tm.Row != tt.wantRow {
				t.Errorf("wanted %d,%d, got %d,%d", tt.wantCol, tt.wantRow, tm.Col, tm.Row)
			}
		})
	}

	t.Run("parse", func(t *testing.T) {
		a, err := ParseAction("drop")
		if err != nil || a != DropDown {
			t.Errorf("wanted drop, got %q, %v", a, err)
		}
		if _, err := ParseAction("jump"); !errors.Is(err, ErrUnknownAction) {
			t.Errorf("wanted ErrUnknownAction, got %v", err)
		}
	})
}

func TestGhostRow(t *testing.T) {
	tetris := NewTestTetris(J)
	if got := tetris.GhostRow(); got != 18 {
		t.Errorf("wanted ghost at row 18, got %d", got)
	}
	tetris.Board().set(4, 10, Red)
	if got := tetris.GhostRow(); got != 8 {
		t.Errorf("wanted ghost at row 8, got %d", got)
	}
}

func TestSnapshot(t *testing.T) {
	tetris := NewTestTetris(J)
	s := tetris.Snapshot()
	s.Cells[0][0] = Red
	s.Tetromino.Col = 9
	if tetris.Board().Cell(0, 0) != Empty || tetris.Tetromino().Col != 3 {
		t.Errorf("expected snapshot to be a copy")
	}
	if s.Width != 10 || s.Height != 20 || s.Phase != Running || s.Level != 1 || s.Next != J || s.GhostRow != 18 {
		t.Errorf("unexpected snapshot %+v", s)
	}
}

func TestPhase(t *testing.T) {
	for _, p := range []Phase{Running, Paused, Over} {
		b, err := p.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got Phase
		if err := got.UnmarshalText(b); err != nil || got != p {
			t.Errorf("wanted %v, got %v (%v)", p, got, err)
		}
	}
	if _, err := ParsePhase("lost"); err == nil {
		t.Errorf("expected an error for an unknown phase")
	}
}
