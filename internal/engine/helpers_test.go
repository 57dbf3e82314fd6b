package engine

import (
	"fmt"
	"testing"

	"github.com/polystage/polystage/internal/document"
	"github.com/polystage/polystage/internal/store"
)

// fixedShapes hands out the same batch of triangles, with ids prefixed by
// batch number so successive batches never collide.
type fixedShapes struct {
	count int
	batch int
}

func (f *fixedShapes) Generate() []document.EntityRecord {
	f.batch++
	recs := make([]document.EntityRecord, f.count)
	for i := range recs {
		recs[i] = document.EntityRecord{
			ID:        fmt.Sprintf("b%d-s%d", f.batch, i),
			Geometry:  [][2]float64{{50, 10}, {90, 90}, {10, 90}},
			FillColor: "#336699",
		}
	}
	return recs
}

func newTestSession(t *testing.T, st store.Store, opts ...Option) *Session {
	t.Helper()
	if st == nil {
		st = store.NewMemory()
	}
	base := []Option{WithStore(st, DefaultSceneKey), WithShapeSource(&fixedShapes{count: 3})}
	s := NewSession(append(base, opts...)...)
	s.Resize(document.Point{}, 800, 600)
	if err := s.Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return s
}

// place drags a staged entity onto the workspace at a screen point.
func place(t *testing.T, s *Session, id string, at document.Point) {
	t.Helper()
	s.DragStart(id)
	if !s.Drop(document.ContainerWorkspace, at) {
		t.Fatalf("drop of %s onto workspace did nothing", id)
	}
	s.DragEnd(id)
}

func ids(entities []*Entity) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.ID
	}
	return out
}

func approx(a, b float64) bool {
	const eps = 1e-9
	d := a - b
	return d < eps && d > -eps
}
