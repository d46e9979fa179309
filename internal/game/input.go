package game

import "sync/atomic"

// Control is one of the logical driving controls
type Control uint8

const (
	ControlNone Control = iota
	ControlForward
	ControlReverse
	ControlLeft
	ControlRight
	ControlBrake
)

// Key flags (bit field)
const (
	KeyUp    uint32 = 1 << 0
	KeyDown  uint32 = 1 << 1
	KeyLeft  uint32 = 1 << 2
	KeyRight uint32 = 1 << 3
	KeyBrake uint32 = 1 << 4
)

var controlNames = map[Control]string{
	ControlNone:    "none",
	ControlForward: "forward",
	ControlReverse: "reverse",
	ControlLeft:    "left",
	ControlRight:   "right",
	ControlBrake:   "brake",
}

func (c Control) String() string {
	if name, ok := controlNames[c]; ok {
		return name
	}
	return "unknown"
}

// flag returns the bit for a control, or 0 for controls the game ignores
func (c Control) flag() uint32 {
	switch c {
	case ControlForward:
		return KeyUp
	case ControlReverse:
		return KeyDown
	case ControlLeft:
		return KeyLeft
	case ControlRight:
		return KeyRight
	case ControlBrake:
		return KeyBrake
	}
	return 0
}

// KeySink receives discrete press/release events from a display backend
type KeySink interface {
	SetKey(c Control, pressed bool)
}

// InputState tracks which controls are currently held.
// The display goroutine writes it and the scheduler reads it; each flag is a
// bit in one atomic word.
type InputState struct {
	keys atomic.Uint32
}

// NewInputState creates an input state with nothing held
func NewInputState() *InputState {
	return &InputState{}
}

// SetKey records a press or release. Unknown controls are ignored.
func (in *InputState) SetKey(c Control, pressed bool) {
	bit := c.flag()
	if bit == 0 {
		return
	}
	if pressed {
		in.keys.Or(bit)
	} else {
		in.keys.And(^bit)
	}
}

// Held reports whether a control is currently held
func (in *InputState) Held(c Control) bool {
	bit := c.flag()
	return bit != 0 && in.keys.Load()&bit != 0
}

// Snapshot returns the raw key bit field
func (in *InputState) Snapshot() uint32 {
	return in.keys.Load()
}

// Release clears every held control
func (in *InputState) Release() {
	in.keys.Store(0)
}
