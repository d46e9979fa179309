package game

import (
	"time"

	"github.com/race/topdown/config"
)

// Controller turns held input into vehicle commands once per control tick
type Controller struct {
	vehicle   *Vehicle
	input     *InputState
	presenter Presenter
}

// NewController creates a controller for one vehicle
func NewController(v *Vehicle, in *InputState, p Presenter) *Controller {
	return &Controller{
		vehicle:   v,
		input:     in,
		presenter: p,
	}
}

// Tick applies one control tick of duration d.
//
// Steering is applied first and both directions may apply in the same tick.
// Exactly one throttle action follows, by priority brake > forward > reverse.
// The presenter is told to redraw and refresh the speed readout last.
func (c *Controller) Tick(d time.Duration) VehicleState {
	keys := c.input.Snapshot()

	if keys&KeyLeft != 0 {
		c.vehicle.Turn(config.TurnStep)
	}
	if keys&KeyRight != 0 {
		c.vehicle.Turn(-config.TurnStep)
	}

	switch {
	case keys&KeyBrake != 0:
		c.vehicle.ApplyBrakes(d)
	case keys&KeyUp != 0:
		c.vehicle.Accelerate(d, 1)
	case keys&KeyDown != 0:
		c.vehicle.Accelerate(d, -1)
	}

	state := c.vehicle.State()
	c.presenter.Redraw(state)
	c.presenter.SetSpeedText(FormatSpeed(state.Speed))
	return state
}
