// Command server hosts tetris games for remote players, over gRPC for the
// terminal client and over a WebSocket for browsers.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tetrisgrid/config"
	"tetrisgrid/pb"
	"tetrisgrid/server"
	"tetrisgrid/web"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("unable to load .env file: %v", err)
	}

	def := config.Default()
	cmd := &cli.Command{
		Name:  "server",
		Usage: "host tetris games over gRPC and WebSocket",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "grpc-addr", Value: ":9000", Usage: "gRPC listen address", Sources: cli.EnvVars("TETRIS_GRPC_ADDR")},
			&cli.StringFlag{Name: "http-addr", Value: ":8080", Usage: "WebSocket listen address", Sources: cli.EnvVars("TETRIS_HTTP_ADDR")},
			&cli.IntFlag{Name: "width", Value: def.Width, Usage: "board width", Sources: cli.EnvVars("TETRIS_WIDTH")},
			&cli.IntFlag{Name: "height", Value: def.Height, Usage: "board height", Sources: cli.EnvVars("TETRIS_HEIGHT")},
			&cli.StringFlag{Name: "scoring", Value: def.Scoring, Usage: "scoring policy: flat, level or guideline", Sources: cli.EnvVars("TETRIS_SCORING")},
			&cli.IntFlag{Name: "lines-per-level", Value: def.LinesPerLevel, Usage: "cleared lines needed to level up", Sources: cli.EnvVars("TETRIS_LINES_PER_LEVEL")},
			&cli.DurationFlag{Name: "base-interval", Value: def.Interval.Base, Usage: "drop interval at level 1", Sources: cli.EnvVars("TETRIS_BASE_INTERVAL")},
			&cli.DurationFlag{Name: "min-interval", Value: def.Interval.Min, Usage: "fastest drop interval", Sources: cli.EnvVars("TETRIS_MIN_INTERVAL")},
			&cli.DurationFlag{Name: "step-interval", Value: def.Interval.Step, Usage: "drop interval decrease per level", Sources: cli.EnvVars("TETRIS_STEP_INTERVAL")},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging", Sources: cli.EnvVars("TETRIS_DEBUG")},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := slog.LevelInfo
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	cfg := config.Config{
		Width:         cmd.Int("width"),
		Height:        cmd.Int("height"),
		Scoring:       cmd.String("scoring"),
		LinesPerLevel: cmd.Int("lines-per-level"),
	}
	cfg.Interval.Base = cmd.Duration("base-interval")
	cfg.Interval.Min = cmd.Duration("min-interval")
	cfg.Interval.Step = cmd.Duration("step-interval")
	newGame, err := cfg.GameFactory()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", cmd.String("grpc-addr"))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	gs := grpc.NewServer()
	pb.RegisterTetrisServiceServer(gs, server.New(logger, newGame))

	hs := &http.Server{
		Addr:              cmd.String("http-addr"),
		Handler:           web.NewHandler(logger, newGame).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server",
		slog.String("grpc", lis.Addr().String()),
		slog.String("http", hs.Addr),
		slog.Int("width", cfg.Width),
		slog.Int("height", cfg.Height),
		slog.String("scoring", cfg.Scoring),
		slog.Duration("interval", cfg.DropInterval(1)),
		slog.Duration("fastest", cfg.Interval.Min),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gs.Serve(lis); err != nil {
			return fmt.Errorf("failed to serve gRPC: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve HTTP: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		stopped := make(chan struct{})
		go func() {
			gs.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(shutdownTimeout):
			// games in progress never end on their own.
			gs.Stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
