// Package display holds the presentation state shared by the window and
// terminal backends.
package display

import (
	"math"
	"sync"

	"github.com/race/topdown/internal/game"
)

// Frame is the latest picture the game asked a backend to show.
// It implements game.Presenter; the backend renders from Snapshot on its
// own goroutine.
type Frame struct {
	mu        sync.RWMutex
	state     game.VehicleState
	speedText string
	width     float64
	height    float64

	dirty chan struct{}
}

// NewFrame creates a frame with an initial arena size in pixels
func NewFrame(width, height float64) *Frame {
	return &Frame{
		speedText: game.FormatSpeed(0),
		width:     width,
		height:    height,
		dirty:     make(chan struct{}, 1),
	}
}

// Bounds returns the arena size in pixels
func (f *Frame) Bounds() (float64, float64) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.width, f.height
}

// Resize updates the arena size after the backend's drawable area changes
func (f *Frame) Resize(width, height float64) {
	f.mu.Lock()
	f.width = width
	f.height = height
	f.mu.Unlock()

	f.markDirty()
}

// Redraw stores the state to draw and wakes the backend
func (f *Frame) Redraw(state game.VehicleState) {
	f.mu.Lock()
	f.state = state
	f.mu.Unlock()

	f.markDirty()
}

// SetSpeedText stores the speed readout
func (f *Frame) SetSpeedText(text string) {
	f.mu.Lock()
	f.speedText = text
	f.mu.Unlock()
}

// Snapshot returns the vehicle state and speed readout to render
func (f *Frame) Snapshot() (game.VehicleState, string) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state, f.speedText
}

// Dirty receives a value whenever the frame changed since the last receive.
// Redraw requests coalesce, so a slow backend only ever sees the latest one.
func (f *Frame) Dirty() <-chan struct{} {
	return f.dirty
}

func (f *Frame) markDirty() {
	select {
	case f.dirty <- struct{}{}:
	default:
	}
}

// StatusLine is the text of the bottom status bar
func StatusLine(speedText string) string {
	return "Speed: " + speedText
}

var headingGlyphs = [8]rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}

// HeadingGlyph returns the arrow closest to a heading in degrees
func HeadingGlyph(heading float64) rune {
	idx := int(math.Round(heading/45)) % 8
	if idx < 0 {
		idx += 8
	}
	return headingGlyphs[idx]
}
