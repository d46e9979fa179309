// Package game implements the driving simulation: vehicle kinematics, input
// aggregation, and the scheduler that runs the control and physics ticks.
package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/race/topdown/config"
)

// Session owns a vehicle and its input and drives both periodic ticks.
//
// Each session has its own:
// - Control tick every 20ms (input -> vehicle commands -> presenter)
// - Physics tick every 10ms (rolling deceleration, position integration)
// - Stats log every 5s at debug level
//
// Thread Safety:
// Both ticks run on the single goroutine that called Run, so they never
// interleave. The presenter may read VehicleState snapshots and the display
// may write InputState from other goroutines at any time.
type Session struct {
	ID string // Random identifier for log correlation

	vehicle    *Vehicle
	input      *InputState
	controller *Controller
	physics    *Physics
	log        zerolog.Logger

	controlTicks atomic.Uint64
	physicsTicks atomic.Uint64
	blocked      atomic.Uint64 // physics ticks stopped by the arena edge

	running  atomic.Bool   // True while Run is executing
	finished atomic.Bool   // True once Run has returned
	stopOnce sync.Once     // Guards close(stopChan)
	stopChan chan struct{} // Signal to stop the loop
	done     chan struct{} // Closed when Run returns
}

// SessionStats contains tick counters for a session
type SessionStats struct {
	ID           string
	ControlTicks uint64
	PhysicsTicks uint64
	EdgeHits     uint64
	Vehicle      VehicleState
}

// NewSession creates a session with a fresh vehicle at the spawn point.
// The session does not start ticking until Run is called.
func NewSession(p Presenter, log zerolog.Logger) *Session {
	return NewSessionWith(NewVehicle(), p, log)
}

// NewSessionWith creates a session around an existing vehicle
func NewSessionWith(v *Vehicle, p Presenter, log zerolog.Logger) *Session {
	id := generateSessionID()
	input := NewInputState()

	return &Session{
		ID:         id,
		vehicle:    v,
		input:      input,
		controller: NewController(v, input, p),
		physics:    NewPhysics(p),
		log:        log.With().Str("session", id).Logger(),
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Vehicle returns the session's vehicle
func (s *Session) Vehicle() *Vehicle {
	return s.vehicle
}

// Input returns the key sink the display delivers events to
func (s *Session) Input() *InputState {
	return s.input
}

// Run ticks the session until ctx is cancelled or Stop is called.
// Both are a clean shutdown and Run returns nil. Run may only be called once.
func (s *Session) Run(ctx context.Context) error {
	if s.finished.Load() {
		return ErrSessionStopped
	}
	// Atomic swap returns previous value - if it was true, already running
	if s.running.Swap(true) {
		return ErrSessionRunning
	}
	defer func() {
		s.input.Release()
		s.finished.Store(true)
		s.running.Store(false)
		close(s.done)
	}()

	controlTicker := time.NewTicker(config.ControlTickInterval)
	physicsTicker := time.NewTicker(config.PhysicsTickInterval)
	statsTicker := time.NewTicker(config.StatsInterval)
	defer controlTicker.Stop()
	defer physicsTicker.Stop()
	defer statsTicker.Stop()

	s.log.Info().
		Dur("control", config.ControlTickInterval).
		Dur("physics", config.PhysicsTickInterval).
		Msg("Session started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Err(context.Cause(ctx)).Uint64("ticks", s.controlTicks.Load()).Msg("Session cancelled")
			return nil

		case <-s.stopChan:
			s.log.Info().Uint64("ticks", s.controlTicks.Load()).Msg("Session stopped")
			return nil

		case <-physicsTicker.C:
			s.stepPhysics(config.PhysicsTickInterval)

		case <-controlTicker.C:
			s.stepControl(config.ControlTickInterval)

		case <-statsTicker.C:
			stats := s.Stats()
			s.log.Debug().
				Uint64("control", stats.ControlTicks).
				Uint64("physics", stats.PhysicsTicks).
				Uint64("edgeHits", stats.EdgeHits).
				Float64("speed", stats.Vehicle.Speed).
				Float64("heading", stats.Vehicle.Heading).
				Msg("Session stats")
		}
	}
}

// Stop ends the loop started by Run.
// Safe to call multiple times and before Run.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// Done is closed once Run has returned
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Stats returns a snapshot of the session counters
func (s *Session) Stats() SessionStats {
	return SessionStats{
		ID:           s.ID,
		ControlTicks: s.controlTicks.Load(),
		PhysicsTicks: s.physicsTicks.Load(),
		EdgeHits:     s.blocked.Load(),
		Vehicle:      s.vehicle.State(),
	}
}

func (s *Session) stepControl(d time.Duration) {
	state := s.controller.Tick(d)
	tick := s.controlTicks.Add(1)

	s.log.Trace().
		Uint64("tick", tick).
		Uint32("keys", s.input.Snapshot()).
		Float64("speed", state.Speed).
		Msg("Control tick")
}

func (s *Session) stepPhysics(d time.Duration) {
	if !s.physics.Step(s.vehicle, d) {
		if s.blocked.Add(1) == 1 {
			s.log.Debug().Msg("Vehicle reached the arena edge")
		}
	}
	s.physicsTicks.Add(1)
}

// generateSessionID generates a random session ID
func generateSessionID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// Error definitions
var (
	ErrSessionRunning = &SessionError{message: "session is already running"}
	ErrSessionStopped = &SessionError{message: "session has already finished"}
)

// SessionError represents an error related to session lifecycle.
type SessionError struct {
	message string
}

func (e *SessionError) Error() string {
	return e.message
}
