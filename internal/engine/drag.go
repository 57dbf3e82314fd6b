package engine

import (
	"github.com/polystage/polystage/internal/document"
)

type dragMode int

const (
	modeIdle dragMode = iota
	modeRepositioning
)

// DragController turns pointer input into entity moves. It handles two
// gestures: dragging an entity between the staging tray and the
// workspace, and repositioning a placed entity in place.
type DragController struct {
	scene    func() *Scene
	viewport *Viewport
	window   *Window
	origin   func() document.Point
	onMove   func(id string, pos document.Point)

	// captured is the entity picked up by a cross-container drag.
	captured string

	// Reposition state: Idle -> Repositioning(entity, grab) -> Idle.
	mode   dragMode
	entity string
	grab   document.Point
	moveID ListenerID
	upID   ListenerID
}

func newDragController(scene func() *Scene, vp *Viewport, w *Window, origin func() document.Point) *DragController {
	return &DragController{
		scene:    scene,
		viewport: vp,
		window:   w,
		origin:   origin,
	}
}

// StartDrag captures id for a cross-container drag. An in-place
// reposition in progress is abandoned.
func (d *DragController) StartDrag(id string) {
	if _, ok := d.scene().Entity(id); !ok {
		return
	}
	d.Cancel()
	d.captured = id
}

// EndDrag releases id without moving it. A stale end for an entity that
// is no longer captured leaves the current drag alone.
func (d *DragController) EndDrag(id string) {
	if d.captured == id {
		d.captured = ""
	}
}

// Captured returns the entity held by a cross-container drag.
func (d *DragController) Captured() (string, bool) {
	return d.captured, d.captured != ""
}

// Drop places the captured entity into target. A drop onto the workspace
// positions the entity at the world point under screen; a drop onto the
// staging tray clears its position. Drops with nothing captured, onto an
// invalid target, or for an entity that no longer exists do nothing.
func (d *DragController) Drop(target document.Container, screen document.Point) bool {
	if d.captured == "" || !target.Valid() {
		return false
	}
	e, ok := d.scene().Entity(d.captured)
	d.captured = ""
	if !ok {
		return false
	}

	var pos document.Point
	if target == document.ContainerWorkspace {
		pos = d.viewport.ScreenToWorld(screen, d.origin())
	}
	d.scene().move(e, target, pos)
	if target == document.ContainerWorkspace {
		d.notify(e.ID, pos)
	}
	return true
}

// BeginReposition starts moving a placed entity with the pointer. It
// installs one window move listener and one window release listener.
func (d *DragController) BeginReposition(id string, ev PointerEvent) bool {
	if ev.Button != ButtonPrimary {
		return false
	}
	e, ok := d.scene().Entity(id)
	if !ok || e.Container != document.ContainerWorkspace || e.Position == nil {
		return false
	}
	d.Cancel()

	d.mode = modeRepositioning
	d.entity = id
	d.grab = d.viewport.ScreenToWorld(ev.Point(), d.origin()).Sub(*e.Position)
	d.moveID = d.window.AddMoveListener(d.reposition)
	d.upID = d.window.AddUpListener(d.release)
	return true
}

// Repositioning returns the entity being moved in place.
func (d *DragController) Repositioning() (string, bool) {
	return d.entity, d.mode == modeRepositioning
}

func (d *DragController) reposition(ev PointerEvent) {
	if d.mode != modeRepositioning {
		return
	}
	e, ok := d.scene().Entity(d.entity)
	if !ok || e.Container != document.ContainerWorkspace {
		d.Cancel()
		return
	}
	pos := d.viewport.ScreenToWorld(ev.Point(), d.origin()).Sub(d.grab)
	e.Position = &pos
	d.notify(e.ID, pos)
}

func (d *DragController) release(PointerEvent) {
	d.Cancel()
}

// Cancel ends any in-place reposition and removes its window listeners.
// Calling it while idle does nothing.
func (d *DragController) Cancel() {
	if d.mode != modeRepositioning {
		return
	}
	d.window.RemoveMoveListener(d.moveID)
	d.window.RemoveUpListener(d.upID)
	d.mode = modeIdle
	d.entity = ""
	d.grab = document.Point{}
	d.moveID, d.upID = 0, 0
}

// reset drops all drag state, e.g. when the scene is replaced.
func (d *DragController) reset() {
	d.Cancel()
	d.captured = ""
}

func (d *DragController) notify(id string, pos document.Point) {
	if d.onMove != nil {
		d.onMove(id, pos)
	}
}
