package client

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"text/template"

	"tetrisgrid/tetris"
)

const (
	// ASCII colors.
	Cyan    = "36"
	Blue    = "34"
	Orange  = "38;5;214"
	Yellow  = "33"
	Green   = "32"
	Red     = "31"
	Magenta = "35"
	White   = "37"

	resetPos    = "\033[H"  // Reset cursor position to 0,0
	clearScreen = "\033[2J" // Clear the whole screen

	lobbyWidth = 38
	emptyCell  = "  "
	ghostCell  = "[]"
)

//go:embed "layout.tmpl"
var layout string

var colorMap = map[tetris.Color]string{
	tetris.Cyan:   Cyan,
	tetris.Blue:   Blue,
	tetris.Orange: Orange,
	tetris.Yellow: Yellow,
	tetris.Green:  Green,
	tetris.Red:    Red,
	tetris.Purple: Magenta,
}

type templateData struct {
	Snapshot *tetris.Snapshot
	Name     string
	NoGhost  bool
}

type render struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
	*templateData

	mu sync.Mutex
}

func newRender(l *slog.Logger, ng bool, name string) (*render, error) {
	tmp, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return &render{
		writer:   os.Stdout,
		logger:   l,
		template: tmp,
		templateData: &templateData{
			Name:    name,
			NoGhost: ng,
		},
	}, nil
}

type lobbyMessage struct {
	title   string
	options string
}

func defaultLobby() lobbyMessage {
	return lobbyMessage{title: "Welcome to Terminal Tetris", options: "(p)lay   (o)nline   (q)uit"}
}

func waitingServer() lobbyMessage {
	return lobbyMessage{title: "connecting to server...", options: "(c)ancel"}
}

func gameOver(score int) lobbyMessage {
	return lobbyMessage{title: fmt.Sprintf("Game Over :)  score %d", score), options: "(p)lay   (o)nline   (q)uit"}
}

func errorMessage() lobbyMessage {
	return lobbyMessage{title: "something went wrong :(", options: "(p)lay   (o)nline   (q)uit"}
}

// lobby draws the message box on top of whatever board is on screen.
func (r *render) lobby(m lobbyMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Snapshot == nil {
		// first time loading the lobby there's no board yet.
		r.execute()
	}
	border := "+" + strings.Repeat("-", lobbyWidth) + "+"
	fmt.Fprintf(r.writer, "\033[10;5H%s", border)
	fmt.Fprintf(r.writer, "\033[11;5H|%s|", center(m.title, lobbyWidth))
	fmt.Fprintf(r.writer, "\033[12;5H|%s|", center("", lobbyWidth))
	fmt.Fprintf(r.writer, "\033[13;5H|%s|", center(m.options, lobbyWidth))
	fmt.Fprintf(r.writer, "\033[14;5H%s", border)
}

func (r *render) local(s *tetris.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Snapshot = s
	r.execute()
}

// reset clears the screen, boards of different sizes would leave leftovers.
func (r *render) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Snapshot = nil
	fmt.Fprint(r.writer, clearScreen)
}

func (r *render) execute() {
	fmt.Fprint(r.writer, resetPos)
	if err := r.template.Execute(r.writer, r.templateData); err != nil {
		r.logger.Error("unable to execute template", slog.String("error", err.Error()))
	}
}

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"localStack": localStack,
		"border":     border,
		"side":       side,
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", "\r\n")
	l = strings.ReplaceAll(l, "Terminal Tetris", "\033[1mTerminal Tetris\033[0m")
	return template.New("layout").Funcs(funcMap).Parse(l)
}

func cell(c tetris.Color) string {
	code, ok := colorMap[c]
	if !ok {
		code = White
	}
	return fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", code)
}

func size(t *templateData) (width, height int) {
	if t == nil || t.Snapshot == nil {
		return tetris.DefaultWidth, tetris.DefaultHeight
	}
	return t.Snapshot.Width, t.Snapshot.Height
}

func border(t *templateData) string {
	w, _ := size(t)
	return strings.Repeat("-", w*len(emptyCell))
}

// localStack renders the board with the falling tetromino and its ghost on top.
func localStack(t *templateData) [][]string {
	w, h := size(t)
	rendered := make([][]string, h)
	for row := range rendered {
		rendered[row] = make([]string, w)
		for col := range rendered[row] {
			rendered[row][col] = emptyCell
		}
	}
	if t == nil || t.Snapshot == nil {
		return rendered
	}
	s := t.Snapshot
	for row := range s.Cells {
		for col, c := range s.Cells[row] {
			if c != tetris.Empty {
				rendered[row][col] = cell(c)
			}
		}
	}

	if s.Tetromino == nil {
		return rendered
	}
	paint := func(top int, out string) {
		for ir, line := range s.Tetromino.Grid {
			for ic, v := range line {
				row, col := top+ir, s.Tetromino.Col+ic
				if !v || row < 0 || row >= h || col < 0 || col >= w {
					continue
				}
				rendered[row][col] = out
			}
		}
	}
	if !t.NoGhost {
		paint(s.GhostRow, ghostCell)
	}
	paint(s.Tetromino.Row, cell(s.Tetromino.Color))
	return rendered
}

// nextPiece renders the upcoming shape padded to four cells per line.
func nextPiece(t *templateData) []string {
	rendered := []string{strings.Repeat(emptyCell, 4), strings.Repeat(emptyCell, 4)}
	if t == nil || t.Snapshot == nil || t.Snapshot.Next == "" {
		return rendered
	}
	next := tetris.NewTetromino(t.Snapshot.Next)
	if next == nil {
		return rendered
	}
	// single row pieces sit on the bottom line.
	offset := len(rendered) - next.Height()
	for r, line := range next.Grid {
		row := []string{emptyCell, emptyCell, emptyCell, emptyCell}
		for c, v := range line {
			if v {
				row[c] = cell(next.Color)
			}
		}
		rendered[offset+r] = strings.Join(row, "")
	}
	return rendered
}

// side returns the panel text printed to the right of board row i.
func side(t *templateData, i int) string {
	var s tetris.Snapshot
	if t.Snapshot != nil {
		s = *t.Snapshot
	}
	switch i {
	case 1:
		if t.Name != "" {
			return "  Player: " + t.Name
		}
	case 3:
		return fmt.Sprintf("  Score: %d", s.Score)
	case 4:
		return fmt.Sprintf("  Level: %d", s.Level)
	case 5:
		return fmt.Sprintf("  Lines: %d", s.LinesClear)
	case 7:
		return "  Next:"
	case 8, 9:
		return "  " + nextPiece(t)[i-8]
	case 11:
		if s.Phase == tetris.Paused {
			return "  PAUSED (p)"
		}
	}
	return ""
}

func center(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}
