package engine

import "github.com/polystage/polystage/internal/document"

// SceneGraph is the render-ready state of the workspace.
// It is retained between frames and rebuilt only when the scene or the
// viewport changes.
type SceneGraph struct {
	Root      *SceneNode
	NodesById map[string]*SceneNode
}

// SceneNode is a resolved node ready for rendering.
type SceneNode struct {
	ID   string
	Type string // "workspace", "shape"

	// Transform state
	WorldTransform Matrix2D // viewport * local
	LocalTransform Matrix2D // translation to the entity position

	Children []*SceneNode

	// Render data, in the shape's local box
	Path []PathCommand
	Fill string

	// World position of the box origin
	Position document.Point

	// Hit testing, in workspace screen space
	Bounds Rect
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["Z"].
type PathCommand []interface{}

// Rect is an axis-aligned box in workspace screen pixels.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// NewSceneGraph creates an empty scene graph.
func NewSceneGraph() *SceneGraph {
	return &SceneGraph{NodesById: make(map[string]*SceneNode)}
}

// Contains is inclusive on every edge.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Union returns the bounding box of r and o. Empty rects are ignored.
func (r Rect) Union(o Rect) Rect {
	switch {
	case r.IsEmpty():
		return o
	case o.IsEmpty():
		return r
	}
	x, y := min(r.X, o.X), min(r.Y, o.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  max(r.X+r.Width, o.X+o.Width) - x,
		Height: max(r.Y+r.Height, o.Y+o.Height) - y,
	}
}
