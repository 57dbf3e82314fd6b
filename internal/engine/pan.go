package engine

import "github.com/polystage/polystage/internal/document"

// panGesture pans the workspace while the primary button is held on the
// background.
type panGesture struct {
	active bool
	last   document.Point
}

func (p *panGesture) begin(at document.Point) {
	p.active = true
	p.last = at
}

// step returns the screen delta since the previous sample.
func (p *panGesture) step(at document.Point) (dx, dy float64, ok bool) {
	if !p.active {
		return 0, 0, false
	}
	dx, dy = at.X-p.last.X, at.Y-p.last.Y
	p.last = at
	return dx, dy, true
}

func (p *panGesture) end() {
	p.active = false
}
