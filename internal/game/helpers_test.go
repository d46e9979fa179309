package game

import "sync"

// fakePresenter records what the game asked the display to do
type fakePresenter struct {
	mu        sync.Mutex
	width     float64
	height    float64
	redraws   []VehicleState
	speedText []string
}

func newFakePresenter(width, height float64) *fakePresenter {
	return &fakePresenter{width: width, height: height}
}

func (f *fakePresenter) Bounds() (float64, float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.width, f.height
}

func (f *fakePresenter) Redraw(state VehicleState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redraws = append(f.redraws, state)
}

func (f *fakePresenter) SetSpeedText(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speedText = append(f.speedText, text)
}

func (f *fakePresenter) redrawCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.redraws)
}

func (f *fakePresenter) lastSpeedText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.speedText) == 0 {
		return ""
	}
	return f.speedText[len(f.speedText)-1]
}
