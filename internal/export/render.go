// Package export rasterises a stored scene.
package export

import (
	"fmt"
	"io"
	"math"

	"github.com/gogpu/gg"

	"github.com/polystage/polystage/internal/document"
)

// Options sizes and styles a rendered image.
type Options struct {
	Width      int
	Height     int
	Background string // hex colour
	Grid       bool
}

func DefaultOptions() Options {
	return Options{Width: 1024, Height: 768, Background: "#ffffff", Grid: true}
}

const (
	maxDimension = 8192
	gridColor    = "#e0e0e0"
)

// RenderPNG draws the workspace of rec as it appears under its transform
// and writes it as PNG. Staged shapes are not part of the workspace and
// are left out.
func RenderPNG(w io.Writer, rec *document.SceneRecord, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 || opts.Width > maxDimension || opts.Height > maxDimension {
		return fmt.Errorf("export: invalid image size %dx%d", opts.Width, opts.Height)
	}
	t := document.IdentityTransform()
	if rec != nil && rec.Transform != nil && usable(*rec.Transform) {
		t = *rec.Transform
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	defer dc.Close()

	if opts.Background == "" {
		dc.ClearWithColor(gg.White)
	} else {
		dc.ClearWithColor(gg.Hex(opts.Background))
	}

	dc.Push()
	dc.Translate(t.Offset.X, t.Offset.Y)
	dc.Scale(t.Scale, t.Scale)

	if opts.Grid {
		if err := drawGrid(dc, t, opts.Width, opts.Height); err != nil {
			return err
		}
	}
	if rec != nil {
		for _, e := range rec.Workspace {
			if !visible(e, t, opts) {
				continue
			}
			if err := drawShape(dc, e); err != nil {
				return err
			}
		}
	}
	dc.Pop()

	return dc.EncodePNG(w)
}

// drawGrid rules a line every 100 world units across the visible area.
// A grid denser than one line per pixel is skipped, which also bounds the
// work for extreme offsets and scales.
func drawGrid(dc *gg.Context, t document.Transform, width, height int) error {
	minX := -t.Offset.X / t.Scale
	minY := -t.Offset.Y / t.Scale
	maxX := (float64(width) - t.Offset.X) / t.Scale
	maxY := (float64(height) - t.Offset.Y) / t.Scale

	xFirst, xCount := gridLines(minX, maxX, width)
	yFirst, yCount := gridLines(minY, maxY, height)
	if xCount == 0 && yCount == 0 {
		return nil
	}

	dc.SetHexColor(gridColor)
	dc.SetLineWidth(1 / t.Scale)
	for k := 0; k < xCount; k++ {
		x := (xFirst + float64(k)) * document.BoxSize
		dc.DrawLine(x, minY, x, maxY)
	}
	for k := 0; k < yCount; k++ {
		y := (yFirst + float64(k)) * document.BoxSize
		dc.DrawLine(minX, y, maxX, y)
	}
	return dc.Stroke()
}

// gridLines returns the index of the first grid line in [lo, hi] and how
// many there are. It returns a zero count when the range is not finite or
// would need more lines than pixels.
func gridLines(lo, hi float64, pixels int) (first float64, count int) {
	first = math.Ceil(lo / document.BoxSize)
	last := math.Floor(hi / document.BoxSize)
	n := last - first + 1
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 || n > float64(pixels) {
		return 0, 0
	}
	return first, int(n)
}

// usable reports whether t can be rendered. Anything else draws under the
// identity transform.
func usable(t document.Transform) bool {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
	return t.Scale > 0 && finite(t.Scale) && finite(t.Offset.X) && finite(t.Offset.Y)
}

// visible reports whether the box of a placed shape overlaps the image.
func visible(e document.EntityRecord, t document.Transform, opts Options) bool {
	if e.Position == nil {
		return false
	}
	x := e.Position.X*t.Scale + t.Offset.X
	y := e.Position.Y*t.Scale + t.Offset.Y
	size := document.BoxSize * t.Scale
	return x < float64(opts.Width) && y < float64(opts.Height) && x+size > 0 && y+size > 0
}

func drawShape(dc *gg.Context, e document.EntityRecord) error {
	if e.Position == nil || len(e.Geometry) < 3 {
		return nil
	}
	dc.Push()
	defer dc.Pop()

	dc.Translate(e.Position.X, e.Position.Y)
	dc.MoveTo(e.Geometry[0][0], e.Geometry[0][1])
	for _, p := range e.Geometry[1:] {
		dc.LineTo(p[0], p[1])
	}
	dc.ClosePath()
	dc.SetHexColor(e.FillColor)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("export: fill %s: %w", e.ID, err)
	}
	return nil
}
