// Package terminal renders the game in a terminal with tcell.
//
// Terminals report key presses (and auto-repeats) but never releases, so a
// control counts as held until no repeat has arrived for the hold timeout.
package terminal

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/race/topdown/config"
	"github.com/race/topdown/internal/display"
	"github.com/race/topdown/internal/game"
)

const expireInterval = 50 * time.Millisecond

var (
	helpStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	carStyle    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// Terminal draws the arena at CellWidth x CellHeight pixels per cell.
// Row 0 holds the help line and the last row the status bar.
type Terminal struct {
	screen  tcell.Screen
	frame   *display.Frame
	hold    *holdTracker
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// New wraps an initialized screen. The caller owns Init and Fini.
func New(screen tcell.Screen, log zerolog.Logger) *Terminal {
	t := &Terminal{
		screen:  screen,
		frame:   display.NewFrame(0, 0),
		timeout: config.KeyHoldTimeout,
		now:     time.Now,
		log:     log.With().Str("display", config.DisplayTerminal).Logger(),
	}
	t.resize()
	return t
}

// Presenter returns the frame the game draws into
func (t *Terminal) Presenter() game.Presenter {
	return t.frame
}

// Run draws frames and forwards keys to sink until ctx is cancelled or the
// user quits with Esc, Ctrl-C or q. Both return nil.
func (t *Terminal) Run(ctx context.Context, sink game.KeySink) error {
	t.hold = newHoldTracker(sink, t.timeout)
	defer t.hold.releaseAll()

	quit := make(chan struct{})
	defer close(quit)

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	expire := time.NewTicker(expireInterval)
	defer expire.Stop()

	t.draw()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if !t.handleEvent(ev) {
				t.log.Info().Msg("Quit requested")
				return nil
			}

		case <-t.frame.Dirty():
			t.draw()

		case <-expire.C:
			t.hold.expire(t.now())
		}
	}
}

// handleEvent returns false when the user asked to quit
func (t *Terminal) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.resize()
		t.screen.Sync()

	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
		if c := controlForKey(ev); c != game.ControlNone {
			t.hold.press(c, t.now())
		}
	}
	return true
}

func controlForKey(ev *tcell.EventKey) game.Control {
	switch ev.Key() {
	case tcell.KeyLeft:
		return game.ControlLeft
	case tcell.KeyRight:
		return game.ControlRight
	case tcell.KeyUp:
		return game.ControlForward
	case tcell.KeyDown:
		return game.ControlReverse
	case tcell.KeyRune:
		if ev.Rune() == ' ' {
			return game.ControlBrake
		}
	}
	return game.ControlNone
}

// resize recomputes the arena from the screen size, minus help and status rows
func (t *Terminal) resize() {
	cols, rows := t.screen.Size()
	arenaRows := max(rows-2, 0)

	width := float64(cols * config.CellWidth)
	height := float64(arenaRows * config.CellHeight)
	t.frame.Resize(width, height)
	t.log.Debug().Int("cols", cols).Int("rows", rows).Msg("Arena resized")

	if !holdsSpawn(width, height) {
		t.log.Warn().
			Int("cols", cols).
			Int("rows", rows).
			Msg("Terminal too small for the spawn point, the car cannot move")
	}
}

// holdsSpawn reports whether a car at the spawn point fits inside the arena
func holdsSpawn(width, height float64) bool {
	return width-config.SpriteFootprint >= config.StartX &&
		height-config.SpriteFootprint >= config.StartY
}

// carCell returns the screen cell of the vehicle's centre
func carCell(state game.VehicleState) (int, int) {
	half := config.SpriteFootprint / 2
	col := int((state.X + half) / config.CellWidth)
	row := 1 + int((state.Y+half)/config.CellHeight)
	return col, row
}

func (t *Terminal) draw() {
	cols, rows := t.screen.Size()
	state, speedText := t.frame.Snapshot()

	t.screen.Clear()
	t.drawText(0, game.HelpText, helpStyle, cols)

	if rows > 2 {
		col, row := carCell(state)
		if col >= 0 && col < cols && row >= 1 && row < rows-1 {
			t.screen.SetContent(col, row, display.HeadingGlyph(state.Heading), nil, carStyle)
		}
	}

	if rows > 1 {
		line := display.StatusLine(speedText)
		for x := 0; x < cols; x++ {
			t.screen.SetContent(x, rows-1, ' ', nil, statusStyle)
		}
		t.drawText(rows-1, line, statusStyle, cols)
	}

	t.screen.Show()
}

func (t *Terminal) drawText(row int, text string, style tcell.Style, cols int) {
	x := 0
	for _, r := range text {
		if x >= cols {
			return
		}
		t.screen.SetContent(x, row, r, nil, style)
		x++
	}
}

// holdTracker synthesizes key releases from the absence of auto-repeat
type holdTracker struct {
	sink    game.KeySink
	timeout time.Duration
	last    map[game.Control]time.Time
}

func newHoldTracker(sink game.KeySink, timeout time.Duration) *holdTracker {
	return &holdTracker{
		sink:    sink,
		timeout: timeout,
		last:    make(map[game.Control]time.Time),
	}
}

func (h *holdTracker) press(c game.Control, now time.Time) {
	if _, held := h.last[c]; !held {
		h.sink.SetKey(c, true)
	}
	h.last[c] = now
}

func (h *holdTracker) expire(now time.Time) {
	for c, at := range h.last {
		if now.Sub(at) >= h.timeout {
			h.sink.SetKey(c, false)
			delete(h.last, c)
		}
	}
}

func (h *holdTracker) releaseAll() {
	for c := range h.last {
		h.sink.SetKey(c, false)
		delete(h.last, c)
	}
}
