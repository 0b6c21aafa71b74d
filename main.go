// Command tetrisgrid plays tetris in the terminal, locally or against a
// game hosted by cmd/server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"tetrisgrid/client"
	"tetrisgrid/config"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const (
	hideCursor = "\033[2J\033[?25l" // also clear screen
	showCursor = "\033[?25h\033[2J\033[H"
)

func main() {
	def := config.Default()
	cmd := &cli.Command{
		Name:  "tetrisgrid",
		Usage: "terminal tetris",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "address", Value: "localhost:9000", Usage: "server to play online against", Sources: cli.EnvVars("TETRIS_ADDRESS")},
			&cli.StringFlag{Name: "name", Value: os.Getenv("USER"), Usage: "name shown next to the board"},
			&cli.BoolFlag{Name: "no-ghost", Usage: "hide the landing preview of the falling piece"},
			&cli.IntFlag{Name: "width", Value: def.Width, Usage: "board width for local games"},
			&cli.IntFlag{Name: "height", Value: def.Height, Usage: "board height for local games"},
			&cli.StringFlag{Name: "scoring", Value: def.Scoring, Usage: "scoring policy for local games: flat, level or guideline"},
			&cli.StringFlag{Name: "log-file", Usage: "write logs to this file"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(_ context.Context, cmd *cli.Command) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("tetrisgrid needs to run in a terminal")
	}

	logger, closeLog, err := newLogger(cmd.String("log-file"), cmd.Bool("debug"))
	if err != nil {
		return err
	}
	defer closeLog()

	cfg := config.Default()
	cfg.Width = cmd.Int("width")
	cfg.Height = cmd.Int("height")
	cfg.Scoring = cmd.String("scoring")
	newGame, err := cfg.GameFactory()
	if err != nil {
		return err
	}
	if w, h, err := term.GetSize(fd); err == nil && (w < cfg.Width*2+24 || h < cfg.Height+4) {
		logger.Warn("terminal may be too small for the board", slog.Int("columns", w), slog.Int("rows", h))
	}

	c, err := client.New(logger, &client.Options{
		NoGhost: cmd.Bool("no-ghost"),
		Address: cmd.String("address"),
		Name:    cmd.String("name"),
		NewGame: newGame,
	})
	if err != nil {
		return fmt.Errorf("unable to start client: %w", err)
	}
	defer c.Close()

	fmt.Print(hideCursor)
	defer fmt.Print(showCursor)
	c.Start()
	return nil
}

// newLogger writes JSON logs to path, or discards them when path is empty
// since stdout belongs to the game.
func newLogger(path string, debug bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	if path == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})), func() { f.Close() }, nil
}
