package engine

import (
	"fmt"
	"math"
	"strconv"

	"github.com/polystage/polystage/internal/document"
)

// ZoomPolicy bounds and steps the workspace scale.
type ZoomPolicy struct {
	InFactor  float64 // applied per wheel tick towards the user
	OutFactor float64 // applied per wheel tick away from the user
	Min       float64
	Max       float64
}

// DefaultZoomPolicy zooms in by 1.1 per tick and out by its reciprocal, so
// equal tick counts in and out cancel, and keeps scale within [0.1, 10].
func DefaultZoomPolicy() ZoomPolicy {
	return ZoomPolicy{
		InFactor:  1.1,
		OutFactor: 1 / 1.1,
		Min:       0.1,
		Max:       10,
	}
}

func (p ZoomPolicy) clamp(scale float64) float64 {
	if p.Min > 0 && scale < p.Min {
		return p.Min
	}
	if p.Max > 0 && scale > p.Max {
		return p.Max
	}
	return scale
}

// Viewport holds the workspace pan/zoom transform and owns every conversion
// between screen and world coordinates.
type Viewport struct {
	t      document.Transform
	policy ZoomPolicy
}

// NewViewport returns an identity viewport governed by policy.
func NewViewport(policy ZoomPolicy) *Viewport {
	return &Viewport{t: document.IdentityTransform(), policy: policy}
}

// Transform returns the current pan/zoom state.
func (v *Viewport) Transform() document.Transform {
	return v.t
}

// Scale returns the current zoom factor.
func (v *Viewport) Scale() float64 { return v.t.Scale }

// Set replaces the transform, e.g. after loading a scene. Non-positive
// scales are replaced by 1; others are clamped to the policy bounds.
func (v *Viewport) Set(t document.Transform) {
	if !(t.Scale > 0) || math.IsInf(t.Scale, 0) {
		t.Scale = 1
	}
	t.Scale = v.policy.clamp(t.Scale)
	v.t = t
}

// Reset restores scale 1 and zero offset.
func (v *Viewport) Reset() {
	v.t = document.IdentityTransform()
}

// ScreenToWorld maps a screen point to world coordinates. origin is the
// screen position of the workspace's untransformed top-left corner.
func (v *Viewport) ScreenToWorld(screen, origin document.Point) document.Point {
	return document.Point{
		X: (screen.X - origin.X - v.t.Offset.X) / v.t.Scale,
		Y: (screen.Y - origin.Y - v.t.Offset.Y) / v.t.Scale,
	}
}

// WorldToScreen is the inverse of ScreenToWorld.
func (v *Viewport) WorldToScreen(world, origin document.Point) document.Point {
	return document.Point{
		X: world.X*v.t.Scale + v.t.Offset.X + origin.X,
		Y: world.Y*v.t.Scale + v.t.Offset.Y + origin.Y,
	}
}

// Zoom applies one wheel tick. Negative deltaY zooms in, positive zooms
// out, zero does nothing. It reports whether the scale changed.
func (v *Viewport) Zoom(deltaY float64) bool {
	var factor float64
	switch {
	case deltaY < 0:
		factor = v.policy.InFactor
	case deltaY > 0:
		factor = v.policy.OutFactor
	default:
		return false
	}
	next := v.policy.clamp(v.t.Scale * factor)
	if next == v.t.Scale {
		return false
	}
	v.t.Scale = next
	return true
}

// Pan moves the world origin by raw screen pixels.
func (v *Viewport) Pan(dx, dy float64) {
	v.t.Offset.X += dx
	v.t.Offset.Y += dy
}

// Matrix returns the world-to-workspace matrix: translate, then scale.
func (v *Viewport) Matrix() Matrix2D {
	return Translate(v.t.Offset.X, v.t.Offset.Y).Multiply(Scale(v.t.Scale, v.t.Scale))
}

// CSS renders the transform for a CSS transform property.
func (v *Viewport) CSS() string {
	return fmt.Sprintf("translate(%spx, %spx) scale(%s)",
		formatFloat(v.t.Offset.X), formatFloat(v.t.Offset.Y), formatFloat(v.t.Scale))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
