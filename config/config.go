// Package config holds the knobs shared by the binaries: board size,
// scoring policy, level progression and drop speed.
package config

import (
	"errors"
	"fmt"
	"time"

	"tetrisgrid/tetris"
)

const (
	MinSize = 4
	MaxSize = 100
)

type Config struct {
	Width, Height int
	// Scoring is the name of a tetris scoring policy: flat, level or guideline.
	Scoring       string
	LinesPerLevel int
	Interval      tetris.Interval
}

func Default() Config {
	return Config{
		Width:         tetris.DefaultWidth,
		Height:        tetris.DefaultHeight,
		Scoring:       "flat",
		LinesPerLevel: 10,
		Interval:      tetris.DefaultInterval,
	}
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error
	if c.Width < MinSize || c.Width > MaxSize {
		errs = append(errs, fmt.Errorf("width must be between %d and %d, got %d", MinSize, MaxSize, c.Width))
	}
	if c.Height < MinSize || c.Height > MaxSize {
		errs = append(errs, fmt.Errorf("height must be between %d and %d, got %d", MinSize, MaxSize, c.Height))
	}
	if _, err := tetris.ScoringByName(c.Scoring); err != nil {
		errs = append(errs, err)
	}
	if c.LinesPerLevel < 1 {
		errs = append(errs, fmt.Errorf("lines per level must be positive, got %d", c.LinesPerLevel))
	}
	if c.Interval.Min <= 0 {
		errs = append(errs, fmt.Errorf("minimum interval must be positive, got %v", c.Interval.Min))
	}
	if c.Interval.Base < c.Interval.Min {
		errs = append(errs, fmt.Errorf("base interval %v is below the minimum %v", c.Interval.Base, c.Interval.Min))
	}
	if c.Interval.Step < 0 {
		errs = append(errs, fmt.Errorf("interval step can't be negative, got %v", c.Interval.Step))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Options translates the config into engine options.
func (c Config) Options() ([]tetris.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	scoring, _ := tetris.ScoringByName(c.Scoring)
	return []tetris.Option{
		tetris.WithSize(c.Width, c.Height),
		tetris.WithScoring(scoring),
		tetris.WithLinesPerLevel(c.LinesPerLevel),
	}, nil
}

// GameFactory returns a constructor for driven games, one per session.
func (c Config) GameFactory() (func() *tetris.Game, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return func() *tetris.Game { return tetris.NewGame(c.Interval, opts...) }, nil
}

// DropInterval is a shortcut used in logs.
func (c Config) DropInterval(level int) time.Duration { return c.Interval.For(level) }
