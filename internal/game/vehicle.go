package game

import (
	"math"
	"sync"
	"time"

	"github.com/race/topdown/config"
)

// VehicleState is a snapshot of a vehicle's pose and speed
type VehicleState struct {
	X       float64
	Y       float64
	Heading float64 // degrees, [0,360), counter-clockwise from +x
	Speed   float64 // px/s, negative when reversing
}

// VehicleSpec holds the fixed performance figures of a vehicle
type VehicleSpec struct {
	Acceleration        float64
	MaxSpeed            float64
	BrakeRate           float64
	RollingDeceleration float64
	Footprint           float64
}

// DefaultVehicleSpec returns the figures from the config constants
func DefaultVehicleSpec() VehicleSpec {
	return VehicleSpec{
		Acceleration:        config.Acceleration,
		MaxSpeed:            config.MaxSpeed,
		BrakeRate:           config.BrakeRate,
		RollingDeceleration: config.RollingDeceleration,
		Footprint:           config.SpriteFootprint,
	}
}

// Vehicle is a single car driven by the control and physics ticks.
//
// Every exported method holds the mutex for its whole read-modify-write, so
// a snapshot taken by a renderer never observes a half-applied tick.
type Vehicle struct {
	mu sync.RWMutex

	spec VehicleSpec

	x       float64
	y       float64
	heading float64
	speed   float64
}

// NewVehicle creates a vehicle at the spawn point with the default spec
func NewVehicle() *Vehicle {
	return NewVehicleWith(DefaultVehicleSpec(), config.StartX, config.StartY, config.StartHeading)
}

// NewVehicleWith creates a stationary vehicle with the given spec and pose
func NewVehicleWith(spec VehicleSpec, x, y, heading float64) *Vehicle {
	return &Vehicle{
		spec:    spec,
		x:       x,
		y:       y,
		heading: normalizeHeading(heading),
	}
}

// State returns a snapshot of vehicle state (thread-safe)
func (v *Vehicle) State() VehicleState {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return VehicleState{
		X:       v.x,
		Y:       v.y,
		Heading: v.heading,
		Speed:   v.speed,
	}
}

// Speed returns the current signed speed
func (v *Vehicle) Speed() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.speed
}

// Accelerate applies factor*acceleration for duration d.
// A result whose magnitude would exceed MaxSpeed is dropped and the speed is
// left untouched; there is no partial clamp.
func (v *Vehicle) Accelerate(d time.Duration, factor float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.accelerateLocked(d, factor)
}

func (v *Vehicle) accelerateLocked(d time.Duration, factor float64) {
	newSpeed := v.speed + factor*v.spec.Acceleration*d.Seconds()
	if math.Abs(newSpeed) <= v.spec.MaxSpeed {
		v.speed = newSpeed
	}
}

// ApplyBrakes decelerates at BrakeRate times the acceleration, under the same
// accept/reject rule as Accelerate. An accepted result that crosses zero
// stops the car; brakes never reverse the direction of travel.
func (v *Vehicle) ApplyBrakes(d time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch {
	case v.speed > 0:
		v.accelerateLocked(d, -v.spec.BrakeRate)
		if v.speed < 0 {
			v.speed = 0
		}
	case v.speed < 0:
		v.accelerateLocked(d, v.spec.BrakeRate)
		if v.speed > 0 {
			v.speed = 0
		}
	}
}

// Turn rotates the heading by delta degrees.
// Steering inverts while reversing. A parked car still swivels, at
// StationaryTurnMultiplier times the delta.
func (v *Vehicle) Turn(delta float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch {
	case v.speed > 0:
		v.heading += delta
	case v.speed < 0:
		v.heading -= delta
	default:
		v.heading += config.StationaryTurnMultiplier * delta
	}
	v.heading = normalizeHeading(v.heading)
}

// ApplyRollingDeceleration bleeds speed toward zero.
// The amount is RollingDeceleration per 10ms, so it only ever slows the car
// and never pushes it past zero.
func (v *Vehicle) ApplyRollingDeceleration(d time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()

	amount := v.spec.RollingDeceleration * (float64(d) / float64(10*time.Millisecond))

	if math.Abs(v.speed)-amount < 0 {
		v.speed = 0
		return
	}

	if v.speed < 0 {
		v.speed += amount
	} else if v.speed > 0 {
		v.speed -= amount
	}
}

// IntegratePosition moves the vehicle along its heading for duration d.
// If the move would leave the arena the vehicle stops where it is.
// Returns false when the move was blocked.
func (v *Vehicle) IntegratePosition(d time.Duration, width, height float64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	dx, dy := displacement(v.heading, v.speed*d.Seconds())

	nx := v.x + dx
	ny := v.y + dy
	if nx < 0 || nx > width-v.spec.Footprint || ny < 0 || ny > height-v.spec.Footprint {
		v.speed = 0
		return false
	}

	v.x = nx
	v.y = ny
	return true
}

// displacement splits a distance travelled along heading into screen-space
// deltas. Screen y grows downward, so a positive heading moves up.
func displacement(heading, distance float64) (float64, float64) {
	sector := int(heading / 90)
	theta := math.Mod(heading, 90) * math.Pi / 180
	sin, cos := math.Sincos(theta)

	switch sector {
	case 0:
		return cos * distance, -sin * distance
	case 1:
		return -sin * distance, -cos * distance
	case 2:
		return -cos * distance, sin * distance
	default:
		return sin * distance, cos * distance
	}
}

// normalizeHeading maps any angle into [0,360)
func normalizeHeading(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}
