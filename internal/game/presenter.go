package game

import "fmt"

// HelpText lists the driving controls
const HelpText = "Up: Accelerate, Down: Reverse, Left/Right: Steering, Space: Brakes"

// Presenter is the display side of the game.
// Implementations must be safe to call from the scheduler goroutine while
// they render on their own.
type Presenter interface {
	// Bounds returns the drawable area in pixels, used as the arena.
	Bounds() (width, height float64)
	// Redraw requests a redraw of the vehicle at the given state.
	Redraw(state VehicleState)
	// SetSpeedText updates the on-screen speed readout.
	SetSpeedText(text string)
}

// FormatSpeed renders a speed for the status bar
func FormatSpeed(speed float64) string {
	return fmt.Sprintf("%.1fpx/s", speed)
}
