package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/polystage/polystage/internal/document"
	"github.com/polystage/polystage/internal/store"
)

// ErrBusy is returned when a save, load or reset starts while another is
// still running.
var ErrBusy = errors.New("scene persistence already in progress")

// Snapshot captures the scene and transform as a data-only record.
func (s *Session) Snapshot() *document.SceneRecord {
	rec := document.NewEmptyRecord()
	for _, e := range s.scene.staging {
		rec.Staging = append(rec.Staging, e.Record())
	}
	for _, e := range s.scene.workspace {
		rec.Workspace = append(rec.Workspace, e.Record())
	}
	t := s.viewport.Transform()
	rec.Transform = &t
	return rec
}

// Save writes the current snapshot to the store.
func (s *Session) Save(ctx context.Context) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	data, err := document.Encode(s.Snapshot())
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	s.log.Info("scene saved", "key", s.key, "staging", len(s.scene.staging), "workspace", len(s.scene.workspace))
	return nil
}

// Load replaces the scene with the stored record. It reports false, with
// no error and no change, when nothing is stored. A malformed record
// yields a *document.CorruptSceneError and leaves the scene untouched.
func (s *Session) Load(ctx context.Context) (bool, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return false, ErrBusy
	}
	defer s.busy.Store(false)

	data, err := s.store.Get(ctx, s.key)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Debug("no stored scene", "key", s.key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load scene: %w", err)
	}
	if err := s.Restore(data); err != nil {
		s.log.Warn("stored scene rejected", "key", s.key, "error", err)
		return false, err
	}
	s.log.Info("scene loaded", "key", s.key, "staging", len(s.scene.staging), "workspace", len(s.scene.workspace))
	return true, nil
}

// Restore rehydrates the scene from an encoded record. The whole record is
// validated and rebuilt before anything is replaced.
func (s *Session) Restore(data []byte) error {
	rec, err := document.Decode(data)
	if err != nil {
		return err
	}
	return s.Apply(rec)
}

// Apply replaces the scene with a decoded record, attaches behavior to
// every entity and re-initialises the viewport.
func (s *Session) Apply(rec *document.SceneRecord) error {
	if rec == nil || rec.Transform == nil {
		return &document.CorruptSceneError{Reason: "missing transform"}
	}
	next := NewScene()
	lists := []struct {
		c    document.Container
		recs []document.EntityRecord
	}{
		{document.ContainerStaging, rec.Staging},
		{document.ContainerWorkspace, rec.Workspace},
	}
	taken := make(map[string]bool)
	for _, l := range lists {
		for _, r := range l.recs {
			if r.ID != "" {
				taken[r.ID] = true
			}
		}
	}
	for _, l := range lists {
		for i, r := range l.recs {
			if r.ID == "" {
				r.ID = fallbackID(l.c, i, taken)
			}
			e, err := entityFromRecord(r, l.c)
			if err != nil {
				return &document.CorruptSceneError{Reason: "invalid entity", Err: err}
			}
			if err := next.add(e); err != nil {
				return &document.CorruptSceneError{Reason: "invalid entity", Err: err}
			}
		}
	}

	s.drag.reset()
	s.pan.end()
	s.detachAll()
	s.scene = next
	s.viewport.Set(*rec.Transform)
	for _, e := range next.staging {
		s.attachBehavior(e)
	}
	for _, e := range next.workspace {
		s.attachBehavior(e)
	}
	s.refreshRulers()
	s.dirty = true
	return nil
}

// fallbackID names an entity stored without an id after its position in
// its container, moving past names the record already uses.
func fallbackID(c document.Container, index int, taken map[string]bool) string {
	for n := index; ; n++ {
		id := fmt.Sprintf("%s-%03d", c, n)
		if !taken[id] {
			taken[id] = true
			return id
		}
	}
}

// Reset deletes the stored record, empties both containers and restores
// the identity transform. If the store cannot be cleared the scene is kept.
func (s *Session) Reset(ctx context.Context) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	if err := s.store.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("reset scene: %w", err)
	}
	s.drag.reset()
	s.pan.end()
	s.detachAll()
	s.scene = NewScene()
	s.viewport.Reset()
	s.refreshRulers()
	s.dirty = true
	s.log.Info("scene reset", "key", s.key)
	return nil
}
