package terminal

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/race/topdown/internal/game"
)

type keyEvent struct {
	control game.Control
	pressed bool
}

type recordingSink struct {
	mu     sync.Mutex
	events []keyEvent
}

func (r *recordingSink) SetKey(c game.Control, pressed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, keyEvent{c, pressed})
}

func (r *recordingSink) snapshot() []keyEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]keyEvent(nil), r.events...)
}

func newSimScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(cols, rows)
	return screen
}

func rowText(screen tcell.Screen, row, n int) string {
	out := make([]rune, 0, n)
	for x := 0; x < n; x++ {
		r, _, _, _ := screen.GetContent(x, row)
		out = append(out, r)
	}
	return string(out)
}

func TestTerminal_ArenaFromScreenSize(t *testing.T) {
	screen := newSimScreen(t, 80, 25)
	term := New(screen, zerolog.Nop())

	w, h := term.Presenter().Bounds()
	assert.Equal(t, 640.0, w)
	assert.Equal(t, 368.0, h)
}

func TestTerminal_DrawsCarAndStatus(t *testing.T) {
	screen := newSimScreen(t, 80, 25)
	term := New(screen, zerolog.Nop())

	p := term.Presenter()
	p.Redraw(game.VehicleState{X: 100, Y: 100, Heading: 90, Speed: 20})
	p.SetSpeedText(game.FormatSpeed(20))
	term.draw()

	// centre (125,125) -> col 15, row 1+7
	r, _, _, _ := screen.GetContent(15, 8)
	assert.Equal(t, "↑", string(r))

	assert.Equal(t, "Up: Accelerate", rowText(screen, 0, len("Up: Accelerate")))
	assert.Equal(t, "Speed: 20.0px/s", rowText(screen, 24, len("Speed: 20.0px/s")))
}

func TestTerminal_TinyScreenDoesNotPanic(t *testing.T) {
	screen := newSimScreen(t, 3, 1)
	term := New(screen, zerolog.Nop())

	term.Presenter().Redraw(game.VehicleState{X: 400, Y: 400})
	assert.NotPanics(t, term.draw)
}

func TestTerminal_WarnsWhenArenaTooSmall(t *testing.T) {
	var buf bytes.Buffer
	screen := newSimScreen(t, 80, 11)
	New(screen, zerolog.New(&buf))

	assert.Contains(t, buf.String(), "Terminal too small")
}

func TestTerminal_NoWarningAtMinimumSize(t *testing.T) {
	var buf bytes.Buffer
	screen := newSimScreen(t, 19, 12)
	New(screen, zerolog.New(&buf).Level(zerolog.WarnLevel))

	assert.Empty(t, buf.String())
}

func TestHoldsSpawn(t *testing.T) {
	assert.True(t, holdsSpawn(152, 160))
	assert.False(t, holdsSpawn(144, 160))
	assert.False(t, holdsSpawn(152, 144))
}

func TestCarCell(t *testing.T) {
	col, row := carCell(game.VehicleState{X: 0, Y: 0})
	assert.Equal(t, 3, col)
	assert.Equal(t, 2, row)

	col, row = carCell(game.VehicleState{X: 450, Y: 450})
	assert.Equal(t, 59, col)
	assert.Equal(t, 30, row)
}

func TestHoldTracker_PressOnceUntilExpired(t *testing.T) {
	sink := &recordingSink{}
	h := newHoldTracker(sink, 500*time.Millisecond)
	start := time.Unix(0, 0)

	h.press(game.ControlForward, start)
	h.press(game.ControlForward, start.Add(100*time.Millisecond))
	h.press(game.ControlForward, start.Add(200*time.Millisecond))

	h.expire(start.Add(600 * time.Millisecond))
	assert.Equal(t, []keyEvent{{game.ControlForward, true}}, sink.snapshot())

	h.expire(start.Add(700 * time.Millisecond))
	assert.Equal(t, []keyEvent{
		{game.ControlForward, true},
		{game.ControlForward, false},
	}, sink.snapshot())
}

func TestHoldTracker_IndependentControls(t *testing.T) {
	sink := &recordingSink{}
	h := newHoldTracker(sink, 500*time.Millisecond)
	start := time.Unix(0, 0)

	h.press(game.ControlForward, start)
	h.press(game.ControlLeft, start.Add(400*time.Millisecond))

	h.expire(start.Add(500 * time.Millisecond))
	assert.Equal(t, []keyEvent{
		{game.ControlForward, true},
		{game.ControlLeft, true},
		{game.ControlForward, false},
	}, sink.snapshot())
}

func TestHoldTracker_ReleaseAll(t *testing.T) {
	sink := &recordingSink{}
	h := newHoldTracker(sink, time.Hour)

	h.press(game.ControlBrake, time.Now())
	h.releaseAll()
	h.releaseAll()

	assert.Equal(t, []keyEvent{
		{game.ControlBrake, true},
		{game.ControlBrake, false},
	}, sink.snapshot())
}

func TestTerminal_RunStopsOnCancel(t *testing.T) {
	screen := newSimScreen(t, 80, 25)
	term := New(screen, zerolog.Nop())
	in := game.NewInputState()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- term.Run(ctx, in)
	}()

	term.Presenter().Redraw(game.VehicleState{X: 100, Y: 100})
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("terminal did not stop after cancel")
	}
}
