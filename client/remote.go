package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"tetrisgrid/pb"
	"tetrisgrid/tetris"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// remoteGame plays a game hosted by the server over a Play stream.
type remoteGame struct {
	ID     string
	logger *slog.Logger

	conn     *grpc.ClientConn
	stream   pb.PlayClient
	cancel   context.CancelFunc
	updateCh chan tetris.Snapshot
	doneCh   chan struct{}
	sendMu   sync.Mutex
	doneOnce sync.Once
	stopOnce sync.Once
}

// dialRemote connects to addr and opens a session. ctx only bounds the
// connection attempt, the session lives until Stop.
func dialRemote(ctx context.Context, addr string, l *slog.Logger) (*remoteGame, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("unable to create gRPC client: %w", err)
	}
	r, err := newRemoteGame(ctx, pb.NewTetrisServiceClient(conn), l)
	if err != nil {
		conn.Close()
		return nil, err
	}
	r.conn = conn
	return r, nil
}

func newRemoteGame(ctx context.Context, c pb.TetrisServiceClient, l *slog.Logger) (*remoteGame, error) {
	streamCtx, cancel := context.WithCancel(context.Background())
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	stream, err := c.Play(streamCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("unable to open Play stream: %w", err)
	}
	header, err := stream.Header()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("unable to read session header: %w", err)
	}
	if err := ctx.Err(); err != nil {
		cancel()
		return nil, err
	}
	var id string
	if ids := header.Get(pb.SessionHeader); len(ids) > 0 {
		id = ids[0]
	}
	return &remoteGame{
		ID:       id,
		logger:   l.With(slog.String("session", id)),
		stream:   stream,
		cancel:   cancel,
		updateCh: make(chan tetris.Snapshot),
		doneCh:   make(chan struct{}),
	}, nil
}

func (r *remoteGame) Start() {
	r.logger.Info("joined online game")
	go r.receive()
}

func (r *remoteGame) receive() {
	defer r.finish()
	for {
		msg, err := r.stream.Recv()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				r.logger.Info("Successfully finished Play stream")
			case status.Code(err) == codes.Canceled:
				r.logger.Debug("Play stream cancelled")
			case status.Code(err) == codes.InvalidArgument:
				r.logger.Error("server rejected an action", slog.String("error", err.Error()))
			default:
				r.logger.Error("unable to receive gRPC from Play", slog.String("error", err.Error()))
			}
			return
		}
		s, err := pb.DecodeSnapshot(msg)
		if err != nil {
			r.logger.Error("unable to decode snapshot", slog.String("error", err.Error()))
			return
		}
		select {
		case r.updateCh <- s:
		case <-r.doneCh:
			return
		}
	}
}

func (r *remoteGame) Updates() <-chan tetris.Snapshot { return r.updateCh }
func (r *remoteGame) Done() <-chan struct{}           { return r.doneCh }

func (r *remoteGame) Action(a tetris.Action) bool {
	select {
	case <-r.doneCh:
		return false
	default:
	}
	r.sendMu.Lock()
	defer r.sendMu.Unlock()
	if err := r.stream.Send(pb.EncodeAction(a)); err != nil {
		r.logger.Error("unable to send gRPC to Play", slog.String("error", err.Error()))
		return false
	}
	return true
}

// Stop ends the session and releases the connection. It's safe to call more than once.
func (r *remoteGame) Stop() {
	r.stopOnce.Do(func() {
		r.sendMu.Lock()
		if err := r.stream.CloseSend(); err != nil {
			r.logger.Debug("unable to close Play stream", slog.String("error", err.Error()))
		}
		r.sendMu.Unlock()
		r.cancel()
		r.finish()
		if r.conn != nil {
			r.conn.Close()
		}
	})
}

func (r *remoteGame) finish() { r.doneOnce.Do(func() { close(r.doneCh) }) }
