// Package web lets a browser play over a WebSocket.
//
// Every connection gets its own game. The client sends commands as
// {"action": "left"} and receives a message with the full snapshot after
// every tick or command:
//
//	{"session_id": "...", "snapshot": {"width": 10, "height": 20, "cells": [...], ...}}
//
// Malformed or unknown commands are answered with {"error": "..."} and the
// connection stays open.
package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"tetrisgrid/tetris"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

type command struct {
	Action string `json:"action"`
}

type message struct {
	SessionID string           `json:"session_id"`
	Snapshot  *tetris.Snapshot `json:"snapshot,omitempty"`
	Error     string           `json:"error,omitempty"`
}

type Handler struct {
	logger   *slog.Logger
	newGame  func() *tetris.Game
	upgrader websocket.Upgrader
}

func NewHandler(l *slog.Logger, newGame func() *tetris.Game) *Handler {
	return &Handler{
		logger:  l,
		newGame: newGame,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// renderers are served from anywhere, there's nothing to protect behind a cookie.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Routes returns the mux serving /ws and /healthz.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", h.ServeWS)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	return mux
}

// ServeWS upgrades the request and plays a game until either side goes away.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	id := uuid.New().String()
	logger := h.logger.With(slog.String("session", id))
	game := h.newGame()
	game.Start()
	defer game.Stop()
	logger.Info("session started", slog.String("remote", r.RemoteAddr))

	errCh := make(chan string, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(conn, id, game, errCh, logger)
	}()
	h.readPump(conn, game, errCh, logger)
	game.Stop()
	<-done
	logger.Debug("session closed")
}

func (h *Handler) readPump(conn *websocket.Conn, game *tetris.Game, errCh chan<- string, logger *slog.Logger) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error("unable to read message", slog.String("error", err.Error()))
			}
			return
		}
		var cmd command
		if err := json.Unmarshal(data, &cmd); err != nil {
			report(errCh, fmt.Sprintf("malformed command: %v", err))
			continue
		}
		a, err := tetris.ParseAction(cmd.Action)
		if err != nil {
			report(errCh, err.Error())
			continue
		}
		if !game.Action(a) {
			return
		}
	}
}

// report hands an error to the write pump, dropping it if one is already queued.
func report(errCh chan<- string, msg string) {
	select {
	case errCh <- msg:
	default:
	}
}

func (h *Handler) writePump(conn *websocket.Conn, id string, game *tetris.Game, errCh <-chan string, logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	write := func(m message) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(m); err != nil {
			logger.Error("unable to write message", slog.String("error", err.Error()))
			// unblock the read pump.
			conn.Close()
			return false
		}
		return true
	}

	for {
		select {
		case s := <-game.Updates():
			if !write(message{SessionID: id, Snapshot: &s}) {
				return
			}
		case e := <-errCh:
			if !write(message{SessionID: id, Error: e}) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		case <-game.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
