// Package tetris contains the logic of the game: the board, the tetrominoes
// and the rules moving them around. Timing lives in Game, the engine itself
// has no clock.
package tetris

import (
	"errors"
	"fmt"
)

// Phase is the state of a game.
type Phase int

const (
	Running Phase = iota
	Paused
	Over
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Over:
		return "over"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	v, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "running":
		return Running, nil
	case "paused":
		return Paused, nil
	case "over":
		return Over, nil
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

type Action string

const (
	MoveLeft    Action = "left"   // Moves the Tetromino one step to the left.
	MoveRight   Action = "right"  // Moves the Tetromino one step to the right.
	MoveDown    Action = "down"   // Moves the Tetromino one step down, locking it if blocked.
	DropDown    Action = "drop"   // Drops the Tetromino down the stack.
	RotateRight Action = "rotate" // Rotates the Tetromino clockwise.
	Pause       Action = "pause"  // Pauses or resumes the game.
	Restart     Action = "reset"  // Starts over once the game is over.
)

var ErrUnknownAction = errors.New("unknown action")

// ParseAction validates a command coming from an input collaborator.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case MoveLeft, MoveRight, MoveDown, DropDown, RotateRight, Pause, Restart:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

const defaultLinesPerLevel = 10

// Tetris is the state of one game. It is not safe for concurrent use,
// Game serialises access to it.
type Tetris struct {
	board      *Board
	tetromino  *Tetromino
	next       Shape
	score      int
	level      int
	linesClear int
	phase      Phase

	width, height int
	linesPerLevel int
	scoring       Scoring
	picker        Picker
}

type Option func(*Tetris)

// WithSize sets the board dimensions. NewBoard panics on values below 4.
func WithSize(width, height int) Option {
	return func(t *Tetris) { t.width, t.height = width, height }
}

func WithScoring(s Scoring) Option {
	return func(t *Tetris) { t.scoring = s }
}

func WithPicker(p Picker) Option {
	return func(t *Tetris) { t.picker = p }
}

// WithLinesPerLevel sets how many cleared rows raise the level by one.
func WithLinesPerLevel(n int) Option {
	return func(t *Tetris) {
		if n > 0 {
			t.linesPerLevel = n
		}
	}
}

// New returns a running game with the first tetromino spawned.
func New(opts ...Option) *Tetris {
	t := &Tetris{
		width:         DefaultWidth,
		height:        DefaultHeight,
		linesPerLevel: defaultLinesPerLevel,
		scoring:       FlatScoring,
		picker:        uniformPicker{},
	}
	for _, o := range opts {
		o(t)
	}
	t.Reset()
	return t
}

// Reset throws away the board and the score and starts a new game.
func (t *Tetris) Reset() {
	t.board = NewBoard(t.width, t.height)
	t.score = 0
	t.level = 1
	t.linesClear = 0
	t.phase = Running
	t.next = ""
	t.spawn()
}

func (t *Tetris) Board() *Board          { return t.board }
func (t *Tetris) Tetromino() *Tetromino  { return t.tetromino }
func (t *Tetris) Next() Shape            { return t.next }
func (t *Tetris) Score() int             { return t.score }
func (t *Tetris) Level() int             { return t.level }
func (t *Tetris) LinesClear() int        { return t.linesClear }
func (t *Tetris) Phase() Phase           { return t.phase }
func (t *Tetris) running() bool          { return t.phase == Running }
func (t *Tetris) draft() Shape           { return t.picker.Pick() }
func (t *Tetris) setPhase(p Phase) Phase { t.phase = p; return p }

// spawn puts the next tetromino at the top of the board, centered.
// If it doesn't fit the game is over and the board is left untouched.
func (t *Tetris) spawn() {
	shape := t.next
	if shape == "" {
		shape = t.draft()
	}
	t.next = t.draft()

	tm := NewTetromino(shape)
	tm.Col = (t.board.Width() - tm.Width()) / 2
	tm.Row = 0
	t.tetromino = tm

	if !t.IsValidPlacement(tm.Grid, tm.Col, tm.Row) {
		t.setPhase(Over)
	}
}

// IsValidPlacement reports whether grid fits with its top left corner at col, row.
// Cells above the board are allowed; cells past the sides or the bottom,
// or on top of a locked cell, are not.
func (t *Tetris) IsValidPlacement(grid [][]bool, col, row int) bool {
	// 		0 1 2 3 4 5 6 7 8 9			0 1 2
	// -1	. . . . . . . . . .		0	O X X
	// 0	X X X O X X X X X X		1	O O O
	// 1	X X X O O O X X X X
	for dy, r := range grid {
		for dx, c := range r {
			if !c {
				continue
			}
			x, y := col+dx, row+dy
			if x < 0 || x >= t.board.Width() || y >= t.board.Height() {
				return false
			}
			if y >= 0 && t.board.IsOccupied(x, y) {
				return false
			}
		}
	}
	return true
}

// MoveBy moves the tetromino by the given offset if the destination is free.
// Every move, including gravity, goes through here.
func (t *Tetris) MoveBy(dCol, dRow int) bool {
	if !t.running() {
		return false
	}
	tm := t.tetromino
	if !t.IsValidPlacement(tm.Grid, tm.Col+dCol, tm.Row+dRow) {
		return false
	}
	tm.Col += dCol
	tm.Row += dRow
	return true
}

func (t *Tetris) Left() bool  { return t.MoveBy(-1, 0) }
func (t *Tetris) Right() bool { return t.MoveBy(1, 0) }

// Rotate turns the tetromino clockwise in place.
// There are no wall kicks: a rotation that doesn't fit is rejected.
func (t *Tetris) Rotate() bool {
	if !t.running() {
		return false
	}
	rotated := RotateClockwise(t.tetromino.Grid)
	if !t.IsValidPlacement(rotated, t.tetromino.Col, t.tetromino.Row) {
		return false
	}
	t.tetromino.Grid = rotated
	return true
}

// SoftDrop moves the tetromino one row down. When it can't move it's locked
// into the board and the next one is spawned, in which case it returns false.
func (t *Tetris) SoftDrop() bool {
	if !t.running() {
		return false
	}
	if t.MoveBy(0, 1) {
		return true
	}
	t.lock()
	return false
}

// HardDrop moves the tetromino down as far as it goes and locks it.
// It returns the number of rows it fell.
func (t *Tetris) HardDrop() int {
	if !t.running() {
		return 0
	}
	rows := 0
	for t.MoveBy(0, 1) {
		rows++
	}
	t.lock()
	return rows
}

// TogglePause switches between Running and Paused. It does nothing once the game is over.
func (t *Tetris) TogglePause() Phase {
	switch t.phase {
	case Running:
		return t.setPhase(Paused)
	case Paused:
		return t.setPhase(Running)
	}
	return t.phase
}

func (t *Tetris) lock() {
	t.board.Lock(t.tetromino)
	if lines := t.board.ClearFullRows(); lines > 0 {
		t.score += t.scoring.Points(lines, t.level)
		t.linesClear += lines
		t.level = 1 + t.linesClear/t.linesPerLevel
	}
	t.spawn()
}

// GhostRow returns the row the tetromino would lock at after a hard drop.
func (t *Tetris) GhostRow() int {
	tm := t.tetromino
	row := tm.Row
	for t.IsValidPlacement(tm.Grid, tm.Col, row+1) {
		row++
	}
	return row
}

// Action applies a command from an input collaborator and reports whether it changed anything.
// Reset is only honoured once the game is over.
func (t *Tetris) Action(a Action) bool {
	switch a {
	case MoveLeft:
		return t.Left()
	case MoveRight:
		return t.Right()
	case MoveDown:
		if !t.running() {
			return false
		}
		t.SoftDrop()
		return true
	case DropDown:
		if !t.running() {
			return false
		}
		t.HardDrop()
		return true
	case RotateRight:
		return t.Rotate()
	case Pause:
		before := t.phase
		return t.TogglePause() != before
	case Restart:
		if t.phase != Over {
			return false
		}
		t.Reset()
		return true
	}
	return false
}

// Snapshot is a copy of the game that renderers can read without
// holding on to the engine.
type Snapshot struct {
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Cells      [][]Color  `json:"cells"`
	Tetromino  *Tetromino `json:"tetromino,omitempty"`
	GhostRow   int        `json:"ghost_row"`
	Next       Shape      `json:"next,omitempty"`
	Score      int        `json:"score"`
	Level      int        `json:"level"`
	LinesClear int        `json:"lines_clear"`
	Phase      Phase      `json:"phase"`
}

func (t *Tetris) Snapshot() Snapshot {
	return Snapshot{
		Width:      t.board.Width(),
		Height:     t.board.Height(),
		Cells:      t.board.Cells(),
		Tetromino:  t.tetromino.copy(),
		GhostRow:   t.GhostRow(),
		Next:       t.next,
		Score:      t.score,
		Level:      t.level,
		LinesClear: t.linesClear,
		Phase:      t.phase,
	}
}
