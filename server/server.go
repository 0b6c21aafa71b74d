package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"tetrisgrid/pb"
	"tetrisgrid/tetris"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// TetrisServer runs one private game per Play stream.
type TetrisServer struct {
	logger   *slog.Logger
	newGame  func() *tetris.Game
	sessions map[string]*tetris.Game
	mu       sync.Mutex
}

func New(l *slog.Logger, newGame func() *tetris.Game) *TetrisServer {
	return &TetrisServer{
		logger:   l,
		newGame:  newGame,
		sessions: make(map[string]*tetris.Game),
	}
}

// Sessions returns the number of games being played.
func (t *TetrisServer) Sessions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

func (t *TetrisServer) add(id string, g *tetris.Game) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[id] = g
}

func (t *TetrisServer) remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, id)
}

func (t *TetrisServer) Play(stream pb.PlayServer) error {
	id := uuid.New().String()
	logger := t.logger.With(slog.String("session", id))
	if err := stream.SendHeader(metadata.Pairs(pb.SessionHeader, id)); err != nil {
		return status.Errorf(codes.Internal, "failed to send header: %v", err)
	}

	game := t.newGame()
	t.add(id, game)
	defer t.remove(id)
	game.Start()
	defer game.Stop()
	logger.Info("session started")

	// receive actions from the player
	errCh := make(chan error, 1)
	go func() {
		for {
			rcv, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					errCh <- nil
					return
				}
				errCh <- fmt.Errorf("failed to receive action: %w", err)
				return
			}
			a, err := pb.DecodeAction(rcv)
			if err != nil {
				errCh <- status.Error(codes.InvalidArgument, err.Error())
				return
			}
			if !game.Action(a) {
				return
			}
		}
	}()

	ctx := stream.Context()
	for {
		select {
		case s := <-game.Updates():
			msg, err := pb.EncodeSnapshot(s)
			if err != nil {
				return status.Errorf(codes.Internal, "failed to encode snapshot: %v", err)
			}
			if err := stream.Send(msg); err != nil {
				return fmt.Errorf("failed to send snapshot: %w", err)
			}
			if s.Phase == tetris.Over {
				logger.Debug("game over", slog.Int("score", s.Score), slog.Int("lines", s.LinesClear))
			}
		case err := <-errCh:
			if err != nil {
				logger.Debug("session closed", slog.String("reason", err.Error()))
			}
			return err
		case <-ctx.Done():
			logger.Debug("session cancelled", slog.String("reason", ctx.Err().Error()))
			return ctx.Err()
		}
	}
}
