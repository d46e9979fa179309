package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputState_SetKey(t *testing.T) {
	in := NewInputState()

	in.SetKey(ControlForward, true)
	in.SetKey(ControlLeft, true)

	assert.True(t, in.Held(ControlForward))
	assert.True(t, in.Held(ControlLeft))
	assert.False(t, in.Held(ControlRight))
	assert.Equal(t, KeyUp|KeyLeft, in.Snapshot())

	in.SetKey(ControlForward, false)
	assert.False(t, in.Held(ControlForward))
	assert.True(t, in.Held(ControlLeft))
}

func TestInputState_EachControlHasOwnFlag(t *testing.T) {
	controls := []Control{ControlForward, ControlReverse, ControlLeft, ControlRight, ControlBrake}

	for _, c := range controls {
		in := NewInputState()
		in.SetKey(c, true)

		for _, other := range controls {
			assert.Equal(t, c == other, in.Held(other), "pressed %s, checked %s", c, other)
		}
	}
}

func TestInputState_UnknownControlIgnored(t *testing.T) {
	in := NewInputState()
	in.SetKey(ControlBrake, true)

	in.SetKey(ControlNone, true)
	in.SetKey(Control(99), true)
	in.SetKey(Control(99), false)

	assert.Equal(t, KeyBrake, in.Snapshot())
	assert.False(t, in.Held(ControlNone))
}

func TestInputState_RepeatedPressIsIdempotent(t *testing.T) {
	in := NewInputState()

	in.SetKey(ControlRight, true)
	in.SetKey(ControlRight, true)
	in.SetKey(ControlRight, false)

	assert.False(t, in.Held(ControlRight))
}

func TestInputState_Release(t *testing.T) {
	in := NewInputState()
	in.SetKey(ControlForward, true)
	in.SetKey(ControlBrake, true)

	in.Release()
	assert.Equal(t, uint32(0), in.Snapshot())
}

func TestInputState_ConcurrentWriters(t *testing.T) {
	in := NewInputState()
	controls := []Control{ControlForward, ControlReverse, ControlLeft, ControlRight, ControlBrake}

	var wg sync.WaitGroup
	for _, c := range controls {
		wg.Add(1)
		go func(c Control) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				in.SetKey(c, i%2 == 0)
			}
			in.SetKey(c, true)
		}(c)
	}
	wg.Wait()

	assert.Equal(t, KeyUp|KeyDown|KeyLeft|KeyRight|KeyBrake, in.Snapshot())
}

func TestControl_String(t *testing.T) {
	assert.Equal(t, "brake", ControlBrake.String())
	assert.Equal(t, "unknown", Control(42).String())
}
