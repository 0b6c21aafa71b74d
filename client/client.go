package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"tetrisgrid/tetris"

	"github.com/eiannone/keyboard"
)

type clientState int

const (
	lobby clientState = iota
	waiting
	playing
)

type state struct {
	current clientState
	mu      sync.Mutex
}

func (s *state) get() clientState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *state) set(c clientState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = c
}

// tetrisGame is what the client plays against, a local tetris.Game or a remote session.
type tetrisGame interface {
	Start()
	Updates() <-chan tetris.Snapshot
	Done() <-chan struct{}
	Action(tetris.Action) bool
	Stop()
}

type renderer interface {
	local(*tetris.Snapshot)
	lobby(lobbyMessage)
	reset()
}

type Client struct {
	newGame func() tetrisGame
	dial    func(context.Context) (tetrisGame, error)
	render  renderer
	logger  *slog.Logger
	kbCh    <-chan keyboard.KeyEvent
	state   *state

	game   tetrisGame
	gameMu sync.Mutex
}

type Options struct {
	NoGhost bool
	Address string
	Name    string
	// NewGame builds the local games. Defaults to a standard game.
	NewGame func() *tetris.Game
}

func New(l *slog.Logger, o *Options) (*Client, error) {
	r, err := newRender(l, o.NoGhost, o.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load renderer: %w", err)
	}
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	newGame := o.NewGame
	if newGame == nil {
		newGame = func() *tetris.Game { return tetris.NewGame(tetris.DefaultInterval) }
	}
	return &Client{
		newGame: func() tetrisGame { return newGame() },
		dial: func(ctx context.Context) (tetrisGame, error) {
			return dialRemote(ctx, o.Address, l)
		},
		render: r,
		logger: l,
		kbCh:   kb,
		state:  &state{current: lobby},
	}, nil
}

// Start shows the lobby and blocks until the player quits.
func (c *Client) Start() {
	c.render.lobby(defaultLobby())
	var wg sync.WaitGroup
	wg.Add(1)
	go c.listenKB(&wg)
	wg.Wait()
	if g := c.current(); g != nil {
		g.Stop()
	}
}

// Close releases the keyboard.
func (c *Client) Close() error {
	return keyboard.Close()
}

func (c *Client) current() tetrisGame {
	c.gameMu.Lock()
	defer c.gameMu.Unlock()
	return c.game
}

func (c *Client) setCurrent(g tetrisGame) {
	c.gameMu.Lock()
	defer c.gameMu.Unlock()
	c.game = g
}

func (c *Client) listenKB(wg *sync.WaitGroup) {
	defer wg.Done()
	var cancel context.CancelFunc = func() {}
	defer func() { cancel() }()
	for {
		event, ok := <-c.kbCh
		if !ok {
			c.logger.Error("Keyboard events channel closed unexpectedly")
			return
		}
		if event.Err != nil {
			c.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
			return
		}
		if event.Key == keyboard.KeyCtrlC {
			return
		}
		switch c.state.get() {
		case lobby:
			switch event.Rune {
			case 'p':
				c.state.set(playing)
				c.play(c.newGame())
			case 'o':
				cancel()
				var ctx context.Context
				ctx, cancel = context.WithCancel(context.Background())
				c.state.set(waiting)
				c.render.lobby(waitingServer())
				go c.playOnline(ctx)
			case 'q':
				return
			}
		case waiting:
			if event.Rune == 'c' {
				cancel()
			}
		case playing:
			if a, ok := keyAction(event); ok {
				if g := c.current(); g != nil {
					g.Action(a)
				}
			}
		}
	}
}

// keyAction maps a key to the tetris command it stands for.
func keyAction(event keyboard.KeyEvent) (tetris.Action, bool) {
	switch {
	case event.Key == keyboard.KeyArrowDown || event.Rune == 's':
		return tetris.MoveDown, true
	case event.Key == keyboard.KeyArrowLeft || event.Rune == 'a':
		return tetris.MoveLeft, true
	case event.Key == keyboard.KeyArrowRight || event.Rune == 'd':
		return tetris.MoveRight, true
	case event.Key == keyboard.KeyArrowUp || event.Rune == 'e' || event.Rune == 'w':
		return tetris.RotateRight, true
	case event.Key == keyboard.KeySpace:
		return tetris.DropDown, true
	case event.Rune == 'p':
		return tetris.Pause, true
	}
	return "", false
}

func (c *Client) playOnline(ctx context.Context) {
	g, err := c.dial(ctx)
	if err != nil {
		c.logger.Error("unable to start online game", slog.String("error", err.Error()))
		c.state.set(lobby)
		if ctx.Err() != nil {
			c.render.lobby(defaultLobby())
			return
		}
		c.render.lobby(errorMessage())
		return
	}
	c.state.set(playing)
	c.play(g)
}

// play starts g and renders it from another goroutine until the game ends.
func (c *Client) play(g tetrisGame) {
	c.setCurrent(g)
	c.render.reset()
	g.Start()
	go c.listenTetris(g)
}

func (c *Client) listenTetris(g tetrisGame) {
	defer func() {
		g.Stop()
		c.setCurrent(nil)
		c.state.set(lobby)
	}()
	for {
		select {
		case u := <-g.Updates():
			c.render.local(&u)
			if u.Phase == tetris.Over {
				c.logger.Debug("game over", slog.Int("score", u.Score), slog.Int("level", u.Level))
				c.render.lobby(gameOver(u.Score))
				return
			}
		case <-g.Done():
			c.logger.Debug("game stopped")
			c.render.lobby(errorMessage())
			return
		}
	}
}
