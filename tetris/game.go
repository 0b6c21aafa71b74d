package tetris

import (
	"sync"
	"time"
)

type Ticker interface {
	C() <-chan time.Time
	Reset(time.Duration)
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
}

// newWrappedTicker returns a stopped ticker, Reset starts it.
func newWrappedTicker() *wrappedTicker {
	t := time.NewTicker(time.Hour)
	t.Stop()
	return &wrappedTicker{ticker: t}
}

func (t *wrappedTicker) C() <-chan time.Time   { return t.ticker.C }
func (t *wrappedTicker) Stop()                 { t.ticker.Stop() }
func (t *wrappedTicker) Reset(d time.Duration) { t.ticker.Reset(d) }

// Interval sets how fast the tetromino falls. Each level takes Step off
// Base until Min is reached.
type Interval struct {
	Base, Min, Step time.Duration
}

var DefaultInterval = Interval{
	Base: time.Second,
	Min:  100 * time.Millisecond,
	Step: 100 * time.Millisecond,
}

// For returns the tick duration at the given level.
func (i Interval) For(level int) time.Duration {
	if level < 1 {
		level = 1
	}
	return max(i.Min, i.Base-time.Duration(level-1)*i.Step)
}

// Game drives a Tetris with a ticker and serialises ticks and actions
// through a single loop, one event at a time.
type Game struct {
	actionCh chan Action
	updateCh chan Snapshot
	doneCh   chan struct{}
	stopOnce sync.Once

	tetris   *Tetris
	ticker   Ticker
	interval Interval
	// ticking is true while a schedule is pending on the ticker.
	ticking bool
	level   int
}

func NewGame(i Interval, opts ...Option) *Game {
	return NewConfigurableGame(newWrappedTicker(), i, New(opts...))
}

func NewConfigurableGame(ticker Ticker, i Interval, t *Tetris) *Game {
	return &Game{
		actionCh: make(chan Action),
		updateCh: make(chan Snapshot),
		doneCh:   make(chan struct{}),
		tetris:   t,
		ticker:   ticker,
		interval: i,
	}
}

// Start runs the game loop in its own goroutine. The first snapshot is
// published before any tick.
func (g *Game) Start() {
	go g.listen()
}

// Stop tears down the ticker and the loop. It's safe to call more than once.
func (g *Game) Stop() {
	g.stopOnce.Do(func() {
		close(g.doneCh)
	})
}

// Action queues a command for the loop. It returns false if the game was stopped.
func (g *Game) Action(a Action) bool {
	select {
	case <-g.doneCh:
		return false
	default:
	}
	select {
	case g.actionCh <- a:
		return true
	case <-g.doneCh:
		return false
	}
}

// Updates publishes a snapshot after every tick and every action.
func (g *Game) Updates() <-chan Snapshot { return g.updateCh }

// Done is closed once the game is stopped.
func (g *Game) Done() <-chan struct{} { return g.doneCh }

func (g *Game) listen() {
	defer g.ticker.Stop()
	g.schedule()
	if !g.publish() {
		return
	}
	for {
		select {
		case <-g.ticker.C():
			if g.tetris.Phase() != Running {
				// a tick raced a transition, it belongs to a dead schedule.
				continue
			}
			g.tetris.SoftDrop()
		case a := <-g.actionCh:
			g.tetris.Action(a)
		case <-g.doneCh:
			return
		}
		g.schedule()
		if !g.publish() {
			return
		}
	}
}

// schedule keeps the ticker in line with the phase. Leaving Running cancels
// the pending tick; entering it, or a level change while running, cancels
// the old schedule before the new interval starts.
func (g *Game) schedule() {
	running := g.tetris.Phase() == Running
	level := g.tetris.Level()
	switch {
	case !running && g.ticking:
		g.ticker.Stop()
		g.ticking = false
	case running && (!g.ticking || level != g.level):
		g.ticker.Stop()
		g.ticker.Reset(g.interval.For(level))
		g.ticking = true
	}
	g.level = level
}

func (g *Game) publish() bool {
	select {
	case g.updateCh <- g.tetris.Snapshot():
		return true
	case <-g.doneCh:
		return false
	}
}
