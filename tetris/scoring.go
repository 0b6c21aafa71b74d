package tetris

import (
	"fmt"
	"math/rand/v2"
)

// Scoring turns the rows cleared by a single lock into points.
type Scoring interface {
	Points(lines, level int) int
}

// ScoringFunc adapts a function to the Scoring interface.
type ScoringFunc func(lines, level int) int

func (f ScoringFunc) Points(lines, level int) int { return f(lines, level) }

var (
	// FlatScoring awards 100 points per row.
	FlatScoring Scoring = ScoringFunc(func(lines, _ int) int { return lines * 100 })

	// LevelScoring awards 100 points per row multiplied by the level.
	LevelScoring Scoring = ScoringFunc(func(lines, level int) int { return lines * 100 * level })

	// GuidelineScoring rewards multi-row clears following https://tetris.wiki/Scoring
	GuidelineScoring Scoring = ScoringFunc(func(lines, level int) int {
		table := [...]int{0, 100, 300, 500, 800}
		if lines >= len(table) {
			lines = len(table) - 1
		}
		if lines < 0 {
			return 0
		}
		return table[lines] * level
	})
)

// ScoringByName maps a policy name to its Scoring. An empty name is flat.
func ScoringByName(name string) (Scoring, error) {
	switch name {
	case "", "flat":
		return FlatScoring, nil
	case "level":
		return LevelScoring, nil
	case "guideline":
		return GuidelineScoring, nil
	}
	return nil, fmt.Errorf("unknown scoring policy %q", name)
}

// Picker chooses the shape of the next tetromino.
type Picker interface {
	Pick() Shape
}

type uniformPicker struct{}

func (uniformPicker) Pick() Shape { return Shapes[rand.IntN(len(Shapes))] }

// SequencePicker cycles through a fixed list of shapes. Useful for
// replays and deterministic tests.
type SequencePicker struct {
	Shapes []Shape
	next   int
}

func (p *SequencePicker) Pick() Shape {
	s := p.Shapes[p.next%len(p.Shapes)]
	p.next++
	return s
}
