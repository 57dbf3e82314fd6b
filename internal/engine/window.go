package engine

import "sort"

// ListenerID identifies an installed window listener.
type ListenerID int

// PointerHandler receives pointer events.
type PointerHandler func(PointerEvent)

// Window is the session-wide event target. Listeners installed on it see
// every pointer move and release regardless of which entity is under the
// pointer.
type Window struct {
	nextID ListenerID
	move   map[ListenerID]PointerHandler
	up     map[ListenerID]PointerHandler
}

func NewWindow() *Window {
	return &Window{
		move: make(map[ListenerID]PointerHandler),
		up:   make(map[ListenerID]PointerHandler),
	}
}

func (w *Window) AddMoveListener(h PointerHandler) ListenerID {
	w.nextID++
	w.move[w.nextID] = h
	return w.nextID
}

func (w *Window) AddUpListener(h PointerHandler) ListenerID {
	w.nextID++
	w.up[w.nextID] = h
	return w.nextID
}

func (w *Window) RemoveMoveListener(id ListenerID) { delete(w.move, id) }
func (w *Window) RemoveUpListener(id ListenerID)   { delete(w.up, id) }

// ListenerCount returns how many move and release listeners are installed.
func (w *Window) ListenerCount() int {
	return len(w.move) + len(w.up)
}

// DispatchMove delivers ev to every move listener in install order.
func (w *Window) DispatchMove(ev PointerEvent) {
	for _, h := range snapshot(w.move) {
		h(ev)
	}
}

// DispatchUp delivers ev to every release listener in install order.
// Listeners may remove themselves while being dispatched.
func (w *Window) DispatchUp(ev PointerEvent) {
	for _, h := range snapshot(w.up) {
		h(ev)
	}
}

func snapshot(m map[ListenerID]PointerHandler) []PointerHandler {
	ids := make([]ListenerID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]PointerHandler, len(ids))
	for i, id := range ids {
		out[i] = m[id]
	}
	return out
}
