package engine

// Behavior is the set of interaction handlers bound to one entity. The
// host routes entity-targeted input through it; an entity without a
// behavior is inert.
type Behavior struct {
	DragStart     func()
	DragEnd       func()
	PointerDown   func(PointerEvent)
	DeleteRequest func()
}

// attachBehavior binds the standard handlers to e. Fresh shapes from the
// generator and shapes rebuilt from a stored record both come through
// here. Attaching twice keeps the first binding.
func (s *Session) attachBehavior(e *Entity) {
	if _, ok := s.behaviors[e.ID]; ok {
		return
	}
	id := e.ID
	s.behaviors[id] = &Behavior{
		DragStart:     func() { s.drag.StartDrag(id) },
		DragEnd:       func() { s.drag.EndDrag(id) },
		PointerDown:   func(ev PointerEvent) { s.drag.BeginReposition(id, ev) },
		DeleteRequest: func() { s.requestDelete(id) },
	}
}

func (s *Session) detachBehavior(id string) {
	delete(s.behaviors, id)
}

func (s *Session) detachAll() {
	clear(s.behaviors)
}

// Attached reports whether id currently has interaction handlers.
func (s *Session) Attached(id string) bool {
	_, ok := s.behaviors[id]
	return ok
}

// AttachedCount returns the number of entities with bound handlers.
func (s *Session) AttachedCount() int {
	return len(s.behaviors)
}
