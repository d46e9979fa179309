package game

import "time"

// Arena supplies the drawable bounds the vehicle is clamped to
type Arena interface {
	Bounds() (width, height float64)
}

// Physics advances a vehicle once per physics tick
type Physics struct {
	arena Arena
}

// NewPhysics creates a physics stepper bounded by arena
func NewPhysics(arena Arena) *Physics {
	return &Physics{arena: arena}
}

// Step applies rolling deceleration and then integrates position over d.
// Returns false if the vehicle hit the arena edge this tick.
func (ph *Physics) Step(v *Vehicle, d time.Duration) bool {
	v.ApplyRollingDeceleration(d)

	width, height := ph.arena.Bounds()
	return v.IntegratePosition(d, width, height)
}
