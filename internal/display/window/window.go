// Package window renders the game in a desktop window with ebiten.
package window

import (
	"context"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"

	"github.com/race/topdown/config"
	"github.com/race/topdown/internal/display"
	"github.com/race/topdown/internal/game"
	"github.com/race/topdown/internal/sprite"
)

var background = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}

// bindings maps keyboard keys to driving controls
var bindings = []struct {
	key     ebiten.Key
	control game.Control
}{
	{ebiten.KeyArrowLeft, game.ControlLeft},
	{ebiten.KeyArrowRight, game.ControlRight},
	{ebiten.KeyArrowUp, game.ControlForward},
	{ebiten.KeyArrowDown, game.ControlReverse},
	{ebiten.KeySpace, game.ControlBrake},
}

// Window implements ebiten.Game. The arena is the logical screen size.
type Window struct {
	title  string
	scale  int
	frame  *display.Frame
	sink   game.KeySink
	sprite *sprite.Sprite
	image  *ebiten.Image
	log    zerolog.Logger

	ctx     context.Context
	focused bool
}

// New creates a window backend that draws sprite for the vehicle
func New(cfg *config.AppConfig, s *sprite.Sprite, log zerolog.Logger) *Window {
	return &Window{
		title:   cfg.Title,
		scale:   cfg.Scale,
		frame:   display.NewFrame(config.WindowWidth, config.WindowHeight),
		sprite:  s,
		log:     log.With().Str("display", config.DisplayWindow).Logger(),
		focused: true,
	}
}

// Presenter returns the frame the game draws into
func (w *Window) Presenter() game.Presenter {
	return w.frame
}

// Run opens the window and blocks until it is closed or ctx is cancelled.
// ebiten requires this to be called from the main goroutine.
func (w *Window) Run(ctx context.Context, sink game.KeySink) error {
	w.ctx = ctx
	w.sink = sink

	ebiten.SetWindowSize(config.WindowWidth*w.scale, config.WindowHeight*w.scale)
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	w.log.Info().Int("width", config.WindowWidth).Int("height", config.WindowHeight).Msg("Opening window")
	if err := ebiten.RunGame(w); err != nil {
		return err
	}
	w.log.Info().Msg("Window closed")
	return nil
}

// Update turns key transitions into press/release events
func (w *Window) Update() error {
	if w.ctx.Err() != nil {
		return ebiten.Termination
	}

	// Key-up events are lost while unfocused, so let go of everything.
	focused := ebiten.IsFocused()
	if w.focused && !focused {
		for _, b := range bindings {
			w.sink.SetKey(b.control, false)
		}
	}
	w.focused = focused

	for _, b := range bindings {
		if inpututil.IsKeyJustPressed(b.key) {
			w.sink.SetKey(b.control, true)
		}
		if inpututil.IsKeyJustReleased(b.key) {
			w.sink.SetKey(b.control, false)
		}
	}
	return nil
}

// Draw renders the car rotated about its centre plus the help and speed text
func (w *Window) Draw(screen *ebiten.Image) {
	if w.image == nil {
		w.image = ebiten.NewImageFromImage(w.sprite.Image)
	}

	screen.Fill(background)

	state, speedText := w.frame.Snapshot()
	halfW := float64(w.sprite.Width) / 2
	halfH := float64(w.sprite.Height) / 2

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-halfW, -halfH)
	op.GeoM.Rotate(-state.Heading * math.Pi / 180)
	op.GeoM.Translate(state.X+halfW, state.Y+halfH)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(w.image, op)

	_, height := w.frame.Bounds()
	ebitenutil.DebugPrintAt(screen, game.HelpText, 4, 2)
	ebitenutil.DebugPrintAt(screen, display.StatusLine(speedText), 4, int(height)-18)
}

// Layout keeps the logical arena at the unscaled window size
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	width := outsideWidth / w.scale
	height := outsideHeight / w.scale

	if cw, ch := w.frame.Bounds(); int(cw) != width || int(ch) != height {
		w.frame.Resize(float64(width), float64(height))
		w.log.Debug().Int("width", width).Int("height", height).Msg("Arena resized")
	}
	return width, height
}
