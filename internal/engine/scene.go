package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/polystage/polystage/internal/document"
)

// ErrUnknownEntity is returned for operations on an id the scene does not hold.
var ErrUnknownEntity = errors.New("unknown entity")

// Entity is a shape in the editor. Geometry is fixed at creation; container
// and position change only through drops and repositioning.
type Entity struct {
	ID        string
	FillColor string
	Container document.Container

	// Position is the world-space top-left of the entity's box. It is nil
	// whenever the entity is staged.
	Position *document.Point

	geometry []document.Point
}

// NewEntity validates and builds a staged entity.
func NewEntity(id string, geometry []document.Point, fill string) (*Entity, error) {
	if id == "" {
		return nil, errors.New("entity id is required")
	}
	if len(geometry) < 3 {
		return nil, fmt.Errorf("entity %s: geometry needs at least 3 points, got %d", id, len(geometry))
	}
	return &Entity{
		ID:        id,
		FillColor: fill,
		Container: document.ContainerStaging,
		geometry:  slices.Clone(geometry),
	}, nil
}

// entityFromRecord builds an entity for container c from a stored record.
func entityFromRecord(rec document.EntityRecord, c document.Container) (*Entity, error) {
	pts := make([]document.Point, len(rec.Geometry))
	for i, p := range rec.Geometry {
		pts[i] = document.Point{X: p[0], Y: p[1]}
	}
	e, err := NewEntity(rec.ID, pts, rec.FillColor)
	if err != nil {
		return nil, err
	}
	if c == document.ContainerWorkspace {
		if rec.Position == nil {
			return nil, fmt.Errorf("entity %s: placed without a position", rec.ID)
		}
		pos := *rec.Position
		e.Container = c
		e.Position = &pos
	}
	return e, nil
}

// Geometry returns a copy of the entity's outline in its local box.
func (e *Entity) Geometry() []document.Point {
	return slices.Clone(e.geometry)
}

// Record returns the durable form of the entity.
func (e *Entity) Record() document.EntityRecord {
	geo := make([][2]float64, len(e.geometry))
	for i, p := range e.geometry {
		geo[i] = [2]float64{p.X, p.Y}
	}
	rec := document.EntityRecord{
		ID:        e.ID,
		Geometry:  geo,
		FillColor: e.FillColor,
	}
	if e.Container == document.ContainerWorkspace && e.Position != nil {
		pos := *e.Position
		rec.Position = &pos
	}
	return rec
}

// Scene holds the staged and placed entities, each list in append order.
type Scene struct {
	staging   []*Entity
	workspace []*Entity
	byID      map[string]*Entity
}

func NewScene() *Scene {
	return &Scene{byID: make(map[string]*Entity)}
}

// Staging returns the staged entities in order.
func (s *Scene) Staging() []*Entity { return slices.Clone(s.staging) }

// Workspace returns the placed entities in order.
func (s *Scene) Workspace() []*Entity { return slices.Clone(s.workspace) }

// Entity looks up an entity by id.
func (s *Scene) Entity(id string) (*Entity, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// Len returns the number of entities across both containers.
func (s *Scene) Len() int { return len(s.byID) }

// add appends e to the list of its container.
func (s *Scene) add(e *Entity) error {
	if _, dup := s.byID[e.ID]; dup {
		return fmt.Errorf("duplicate entity id %s", e.ID)
	}
	s.byID[e.ID] = e
	if e.Container == document.ContainerWorkspace {
		s.workspace = append(s.workspace, e)
	} else {
		s.staging = append(s.staging, e)
	}
	return nil
}

// move detaches e from its list and appends it to container c. pos is
// ignored for staging.
func (s *Scene) move(e *Entity, c document.Container, pos document.Point) {
	s.unlink(e)
	e.Container = c
	if c == document.ContainerWorkspace {
		e.Position = &pos
		s.workspace = append(s.workspace, e)
		return
	}
	e.Position = nil
	s.staging = append(s.staging, e)
}

// remove destroys the entity with the given id.
func (s *Scene) remove(id string) (*Entity, bool) {
	e, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	s.unlink(e)
	delete(s.byID, id)
	return e, true
}

// replaceStaging destroys every staged entity and stages the given ones
// instead. It returns the destroyed entities. On error nothing changes.
func (s *Scene) replaceStaging(next []*Entity) ([]*Entity, error) {
	seen := make(map[string]struct{}, len(next))
	for _, e := range next {
		if cur, ok := s.byID[e.ID]; ok && cur.Container == document.ContainerWorkspace {
			return nil, fmt.Errorf("duplicate entity id %s", e.ID)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("duplicate entity id %s", e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	old := s.staging
	for _, e := range old {
		delete(s.byID, e.ID)
	}
	s.staging = nil
	for _, e := range next {
		e.Container = document.ContainerStaging
		e.Position = nil
		s.byID[e.ID] = e
		s.staging = append(s.staging, e)
	}
	return old, nil
}

func (s *Scene) unlink(e *Entity) {
	drop := func(list []*Entity) []*Entity {
		return slices.DeleteFunc(list, func(x *Entity) bool { return x == e })
	}
	if e.Container == document.ContainerWorkspace {
		s.workspace = drop(s.workspace)
	} else {
		s.staging = drop(s.staging)
	}
}
