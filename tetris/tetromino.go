package tetris

// Shape is the kind of tetromino.
type Shape string

const (
	I Shape = "I"
	O Shape = "O"
	T Shape = "T"
	S Shape = "S"
	Z Shape = "Z"
	J Shape = "J"
	L Shape = "L"
)

// Shapes lists every kind in a fixed order. The default picker draws from it.
var Shapes = []Shape{I, O, T, S, Z, J, L}

type Tetromino struct {
	// Grid holds the occupied cells of the current rotation.
	// Its dimensions change when rotating, the I goes from 1x4 to 4x1.
	Grid [][]bool `json:"grid"`
	// Col and Row locate the top left corner of the Grid on the board.
	// Row is negative while part of the tetromino is above the board.
	Col   int   `json:"col"`
	Row   int   `json:"row"`
	Shape Shape `json:"shape"`
	Color Color `json:"color"`
}

var colorMap = map[Shape]Color{
	I: Cyan,
	J: Blue,
	L: Orange,
	O: Yellow,
	S: Green,
	T: Purple,
	Z: Red,
}

// ColorOf returns the color a shape is rendered and locked with.
func ColorOf(s Shape) Color { return colorMap[s] }

/*
.	Shape

.	0 1 2 3

0	O O O O
*/
func newI() *Tetromino {
	return &Tetromino{
		Grid:  [][]bool{{true, true, true, true}},
		Shape: I,
		Color: Cyan,
	}
}

/*
.	Shape

.	0 1 2

0	O X X

1	O O O
*/
func newJ() *Tetromino {
	return &Tetromino{
		Grid: [][]bool{
			{true, false, false},
			{true, true, true},
		},
		Shape: J,
		Color: Blue,
	}
}

/*
.	Shape

.	0 1 2

0	X X O

1	O O O
*/
func newL() *Tetromino {
	return &Tetromino{
		Grid: [][]bool{
			{false, false, true},
			{true, true, true},
		},
		Shape: L,
		Color: Orange,
	}
}

/*
.	Shape

.	0 1

0	O O

1	O O
*/
func newO() *Tetromino {
	return &Tetromino{
		Grid: [][]bool{
			{true, true},
			{true, true},
		},
		Shape: O,
		Color: Yellow,
	}
}

/*
.	Shape

.	0 1 2

0	X O O

1	O O X
*/
func newS() *Tetromino {
	return &Tetromino{
		Grid: [][]bool{
			{false, true, true},
			{true, true, false},
		},
		Shape: S,
		Color: Green,
	}
}

/*
.	Shape

.	0 1 2

0	O O X

1	X O O
*/
func newZ() *Tetromino {
	return &Tetromino{
		Grid: [][]bool{
			{true, true, false},
			{false, true, true},
		},
		Shape: Z,
		Color: Red,
	}
}

/*
.	Shape

.	0 1 2

0	X O X

1	O O O
*/
func newT() *Tetromino {
	return &Tetromino{
		Grid: [][]bool{
			{false, true, false},
			{true, true, true},
		},
		Shape: T,
		Color: Purple,
	}
}

var shapeMap = map[Shape]func() *Tetromino{
	I: newI,
	J: newJ,
	L: newL,
	O: newO,
	S: newS,
	Z: newZ,
	T: newT,
}

// NewTetromino returns the shape in its spawn rotation at origin 0,0.
// It returns nil for an unknown shape.
func NewTetromino(s Shape) *Tetromino {
	f, ok := shapeMap[s]
	if !ok {
		return nil
	}
	return f()
}

// Width is the number of columns of the current rotation.
func (t *Tetromino) Width() int {
	if len(t.Grid) == 0 {
		return 0
	}
	return len(t.Grid[0])
}

// Height is the number of rows of the current rotation.
func (t *Tetromino) Height() int { return len(t.Grid) }

// Cells returns the board coordinates of every occupied cell as col, row pairs.
func (t *Tetromino) Cells() [][2]int {
	var cells [][2]int
	for ir, r := range t.Grid {
		for ic, c := range r {
			if c {
				cells = append(cells, [2]int{t.Col + ic, t.Row + ir})
			}
		}
	}
	return cells
}

func (t *Tetromino) copy() *Tetromino {
	if t == nil {
		return nil
	}
	return &Tetromino{
		Grid:  copyGrid(t.Grid),
		Col:   t.Col,
		Row:   t.Row,
		Shape: t.Shape,
		Color: t.Color,
	}
}

func copyGrid(g [][]bool) [][]bool {
	out := make([][]bool, len(g))
	for i := range g {
		out[i] = make([]bool, len(g[i]))
		copy(out[i], g[i])
	}
	return out
}

// RotateClockwise returns a new grid turned 90 degrees clockwise.
// A rows x cols grid becomes cols x rows; the input is left untouched.
func RotateClockwise(g [][]bool) [][]bool {
	rows := len(g)
	if rows == 0 {
		return [][]bool{}
	}
	cols := len(g[0])
	out := make([][]bool, cols)
	for r := range out {
		out[r] = make([]bool, rows)
		for c := range out[r] {
			out[r][c] = g[rows-1-c][r]
		}
	}
	return out
}
