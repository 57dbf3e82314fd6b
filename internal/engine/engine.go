package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/polystage/polystage/internal/document"
	"github.com/polystage/polystage/internal/store"
	"github.com/polystage/polystage/internal/typeid"
)

// DefaultSceneKey is the storage key scenes are saved under.
const DefaultSceneKey = "polygons-data"

// DeletePrompt is the question put to the Confirmer before deleting a shape.
const DeletePrompt = "Delete polygon?"

// ShapeSource produces a fresh batch of staged shapes.
type ShapeSource interface {
	Generate() []document.EntityRecord
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Session is one editor: a scene, its viewport and the input state that
// acts on them. It is not safe for concurrent use; hosts feed it events
// from a single goroutine.
type Session struct {
	id      string
	key     string
	store   store.Store
	shapes  ShapeSource
	confirm Confirmer
	log     *slog.Logger

	scene     *Scene
	viewport  *Viewport
	window    *Window
	drag      *DragController
	pan       panGesture
	behaviors map[string]*Behavior

	// Workspace placement on screen
	origin        document.Point
	width, height float64
	rulers        Rulers

	// Retained scene graph, rebuilt when dirty or the viewport moved
	sceneGraph *SceneGraph
	graphView  Matrix2D
	dirty      bool

	// Persistence in flight
	busy atomic.Bool
}

// Option configures a Session.
type Option func(*Session)

// WithStore persists the scene under key in st.
func WithStore(st store.Store, key string) Option {
	return func(s *Session) {
		s.store = st
		if key != "" {
			s.key = key
		}
	}
}

func WithShapeSource(src ShapeSource) Option {
	return func(s *Session) { s.shapes = src }
}

// WithConfirmer sets who approves delete requests. Without one every
// request is declined.
func WithConfirmer(c Confirmer) Option {
	return func(s *Session) { s.confirm = c }
}

func WithZoomPolicy(p ZoomPolicy) Option {
	return func(s *Session) { s.viewport.policy = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithPositionObserver is called after every position change of a placed
// entity: drops onto the workspace and each reposition step.
func WithPositionObserver(fn func(id string, pos document.Point)) Option {
	return func(s *Session) { s.drag.onMove = fn }
}

// NewSession creates an empty session. Without WithStore it saves to a
// private in-memory store.
func NewSession(opts ...Option) *Session {
	s := &Session{
		id:        typeid.NewSessionID(),
		key:       DefaultSceneKey,
		log:       slog.Default(),
		scene:     NewScene(),
		viewport:  NewViewport(DefaultZoomPolicy()),
		window:    NewWindow(),
		behaviors: make(map[string]*Behavior),
		dirty:     true,
	}
	s.drag = newDragController(func() *Scene { return s.scene }, s.viewport, s.window, func() document.Point { return s.origin })
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = store.NewMemory()
	}
	if s.shapes == nil {
		s.shapes = document.NewGenerator()
	}
	s.log = s.log.With("session", s.id)
	s.refreshRulers()
	return s
}

func (s *Session) ID() string             { return s.id }
func (s *Session) Scene() *Scene          { return s.scene }
func (s *Session) Viewport() *Viewport    { return s.viewport }
func (s *Session) Window() *Window        { return s.window }
func (s *Session) Drag() *DragController  { return s.drag }
func (s *Session) Rulers() Rulers         { return s.rulers }
func (s *Session) Origin() document.Point { return s.origin }

// --- Commands ---

// Resize records where the workspace sits on screen and its pixel size.
func (s *Session) Resize(origin document.Point, width, height float64) {
	s.origin = origin
	s.width, s.height = width, height
	s.refreshRulers()
	s.dirty = true
}

// Wheel applies one zoom tick.
func (s *Session) Wheel(deltaY float64) {
	if s.viewport.Zoom(deltaY) {
		s.refreshRulers()
		s.dirty = true
	}
}

// Pan shifts the workspace by screen pixels.
func (s *Session) Pan(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	s.viewport.Pan(dx, dy)
	s.refreshRulers()
	s.dirty = true
}

// PointerDown routes a button press. On an entity a primary press starts
// an in-place reposition and a secondary press requests deletion; on the
// background a primary press starts panning.
func (s *Session) PointerDown(ev PointerEvent) {
	if ev.Target == "" {
		if ev.Button == ButtonPrimary {
			s.pan.begin(ev.Point())
		}
		return
	}
	b, ok := s.behaviors[ev.Target]
	if !ok {
		s.log.Debug("pointer down on inert entity", "entity", ev.Target)
		return
	}
	switch ev.Button {
	case ButtonPrimary:
		b.PointerDown(ev)
	case ButtonSecondary:
		b.DeleteRequest()
	}
}

// PointerMove feeds a pointer sample to the pan gesture and to every
// window move listener.
func (s *Session) PointerMove(ev PointerEvent) {
	if dx, dy, ok := s.pan.step(ev.Point()); ok {
		s.Pan(dx, dy)
	}
	s.window.DispatchMove(ev)
	s.dirty = true
}

// PointerUp ends panning and any window-scoped gesture.
func (s *Session) PointerUp(ev PointerEvent) {
	s.pan.end()
	s.window.DispatchUp(ev)
	s.dirty = true
}

// PointerLeave ends panning when the pointer leaves the workspace. An
// in-place reposition keeps going until release.
func (s *Session) PointerLeave() {
	s.pan.end()
}

// DragStart begins a cross-container drag of id.
func (s *Session) DragStart(id string) {
	if b, ok := s.behaviors[id]; ok {
		b.DragStart()
	}
}

// DragEnd finishes the drag of id, whether or not it was dropped.
func (s *Session) DragEnd(id string) {
	if b, ok := s.behaviors[id]; ok {
		b.DragEnd()
	}
}

// Drop delivers a drop onto target at a screen point. It reports whether
// an entity moved.
func (s *Session) Drop(target document.Container, screen document.Point) bool {
	moved := s.drag.Drop(target, screen)
	if moved {
		s.dirty = true
	}
	return moved
}

func (s *Session) requestDelete(id string) {
	if s.confirm == nil || !s.confirm.Confirm(DeletePrompt) {
		s.log.Debug("delete declined", "entity", id)
		return
	}
	if err := s.DeleteEntity(id); err != nil {
		s.log.Warn("delete entity", "entity", id, "error", err)
	}
}

// DeleteEntity destroys id and releases any gesture holding it.
func (s *Session) DeleteEntity(id string) error {
	if _, ok := s.scene.Entity(id); !ok {
		return fmt.Errorf("delete %s: %w", id, ErrUnknownEntity)
	}
	if cur, ok := s.drag.Repositioning(); ok && cur == id {
		s.drag.Cancel()
	}
	s.drag.EndDrag(id)
	s.scene.remove(id)
	s.detachBehavior(id)
	s.dirty = true
	return nil
}

// Generate replaces the staged shapes with a fresh batch. Placed shapes
// are kept.
func (s *Session) Generate() error {
	recs := s.shapes.Generate()
	next := make([]*Entity, 0, len(recs))
	for _, rec := range recs {
		if rec.ID == "" {
			rec.ID = typeid.NewShapeID()
		}
		e, err := entityFromRecord(rec, document.ContainerStaging)
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		next = append(next, e)
	}

	if cur, ok := s.drag.Captured(); ok {
		if e, ok := s.scene.Entity(cur); ok && e.Container == document.ContainerStaging {
			s.drag.EndDrag(cur)
		}
	}
	old, err := s.scene.replaceStaging(next)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	for _, e := range old {
		s.detachBehavior(e.ID)
	}
	for _, e := range next {
		s.attachBehavior(e)
	}
	s.dirty = true
	s.log.Info("shapes generated", "count", len(next))
	return nil
}

// --- Queries ---

// HitTest returns the topmost placed entity under a screen point, or "".
func (s *Session) HitTest(screen document.Point) string {
	p := screen.Sub(s.origin)
	return HitTest(s.graph(), p.X, p.Y)
}

// Render returns the current frame.
func (s *Session) Render() Frame {
	staged := s.scene.Staging()
	views := make([]StagedShape, len(staged))
	for i, e := range staged {
		views[i] = StagedShape{ID: e.ID, Fill: e.FillColor, Path: polygonPath(e.geometry)}
	}
	captured, _ := s.drag.Captured()
	return Frame{
		Transform: s.viewport.CSS(),
		Matrix:    s.viewport.Matrix().ToSlice(),
		Scale:     s.viewport.Scale(),
		Rulers:    s.rulers,
		Staging:   views,
		Workspace: CompileDrawCommands(s.graph()),
		Dragging:  captured,
	}
}

// RenderJSON returns the current frame as JSON.
func (s *Session) RenderJSON() string {
	data, err := json.Marshal(s.Render())
	if err != nil {
		s.log.Error("marshal frame", "error", err)
		return "{}"
	}
	return string(data)
}

func (s *Session) graph() *SceneGraph {
	view := s.viewport.Matrix()
	if s.dirty || s.sceneGraph == nil || view != s.graphView {
		s.sceneGraph = BuildSceneGraph(s.scene, view)
		s.graphView = view
		s.dirty = false
	}
	return s.sceneGraph
}

func (s *Session) refreshRulers() {
	s.rulers = GenerateRulers(s.viewport.Scale(), s.width, s.height)
}
