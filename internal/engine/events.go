package engine

import "github.com/polystage/polystage/internal/document"

// Button identifies a pointer button using DOM MouseEvent.button numbering.
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonAuxiliary Button = 1
	ButtonSecondary Button = 2
)

// PointerEvent is a raw pointer sample in screen coordinates.
// Target is the id of the entity under the pointer, or empty for the
// workspace background.
type PointerEvent struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button Button  `json:"button"`
	Target string  `json:"target,omitempty"`
}

// Point returns the event's screen position.
func (ev PointerEvent) Point() document.Point {
	return document.Point{X: ev.X, Y: ev.Y}
}
