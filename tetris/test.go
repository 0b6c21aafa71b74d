package tetris

import (
	"sync"
	"time"
)

// MockTicker is a mock implementation of the ticker interface.
type MockTicker struct {
	ch     chan time.Time
	stops  int
	resets []time.Duration
	mu     sync.Mutex
}

func NewMockTicker() *MockTicker          { return &MockTicker{ch: make(chan time.Time)} }
func (m *MockTicker) C() <-chan time.Time { return m.ch }
func (m *MockTicker) Tick()               { m.ch <- time.Now() }
func (m *MockTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
}

func (m *MockTicker) Reset(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, d)
}

// Resets returns the durations passed to Reset, oldest first.
func (m *MockTicker) Resets() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.resets))
	copy(out, m.resets)
	return out
}

func (m *MockTicker) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// NewTestGame creates a game with a specific Tetris and returns a game and a manual ticker.
func NewTestGame(t *Tetris) (*Game, *MockTicker) {
	ticker := NewMockTicker()
	return NewConfigurableGame(ticker, DefaultInterval, t), ticker
}

// NewTestTetris creates a new Tetris whose every tetromino is of the given shape.
func NewTestTetris(shape Shape, opts ...Option) *Tetris {
	return New(append([]Option{WithPicker(&SequencePicker{Shapes: []Shape{shape}})}, opts...)...)
}
