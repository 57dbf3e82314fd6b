package engine

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/polystage/polystage/internal/document"
	"github.com/polystage/polystage/internal/store"
)

func TestSaveLoadRestoresScene(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s := newTestSession(t, st)
	place(t, s, "b1-s2", document.Point{X: 123.5, Y: 47})
	place(t, s, "b1-s0", document.Point{X: 300, Y: 310})
	s.Wheel(-1)
	s.Pan(15, -4)

	if err := s.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := s.Snapshot()

	fresh := NewSession(WithStore(st, DefaultSceneKey))
	ok, err := fresh.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	got := fresh.Snapshot()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("loaded snapshot differs\n got: %+v\nwant: %+v", got, want)
	}
	if got := ids(fresh.Scene().Staging()); !slices.Equal(got, []string{"b1-s1"}) {
		t.Fatalf("staging = %v", got)
	}
	if got := ids(fresh.Scene().Workspace()); !slices.Equal(got, []string{"b1-s2", "b1-s0"}) {
		t.Fatalf("workspace = %v", got)
	}
	if fresh.AttachedCount() != 3 {
		t.Fatalf("AttachedCount() = %d, want 3", fresh.AttachedCount())
	}
}

func TestLoadedEntitiesAreInteractive(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s := newTestSession(t, st)
	place(t, s, "b1-s0", document.Point{X: 100, Y: 100})
	if err := s.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fresh := NewSession(WithStore(st, DefaultSceneKey), WithConfirmer(ConfirmFunc(func(string) bool { return true })))
	if _, err := fresh.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	fresh.PointerDown(PointerEvent{X: 120, Y: 130, Button: ButtonPrimary, Target: "b1-s0"})
	fresh.PointerMove(PointerEvent{X: 170, Y: 100})
	fresh.PointerUp(PointerEvent{X: 170, Y: 100})
	e, _ := fresh.Scene().Entity("b1-s0")
	if *e.Position != (document.Point{X: 150, Y: 70}) {
		t.Fatalf("position = %v, want {150 70}", *e.Position)
	}

	fresh.DragStart("b1-s1")
	if !fresh.Drop(document.ContainerWorkspace, document.Point{X: 5, Y: 5}) {
		t.Fatal("restored staged entity cannot be dropped")
	}

	fresh.PointerDown(PointerEvent{Button: ButtonSecondary, Target: "b1-s2"})
	if _, ok := fresh.Scene().Entity("b1-s2"); ok {
		t.Fatal("restored entity cannot be deleted")
	}
}

func TestRepeatedLoadDoesNotStackHandlers(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s := newTestSession(t, st)
	place(t, s, "b1-s0", document.Point{X: 0, Y: 0})
	if err := s.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	updates := 0
	fresh := NewSession(WithStore(st, DefaultSceneKey), WithPositionObserver(func(string, document.Point) { updates++ }))
	for range 4 {
		if _, err := fresh.Load(ctx); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	if fresh.AttachedCount() != 3 {
		t.Fatalf("AttachedCount() = %d, want 3", fresh.AttachedCount())
	}

	fresh.PointerDown(PointerEvent{X: 10, Y: 10, Button: ButtonPrimary, Target: "b1-s0"})
	if n := fresh.Window().ListenerCount(); n != 2 {
		t.Fatalf("window listeners during reposition = %d, want 2", n)
	}
	fresh.PointerMove(PointerEvent{X: 20, Y: 20})
	fresh.PointerMove(PointerEvent{X: 30, Y: 30})
	if updates != 2 {
		t.Fatalf("position updates = %d, want 2", updates)
	}
	fresh.PointerUp(PointerEvent{X: 30, Y: 30})
	if n := fresh.Window().ListenerCount(); n != 0 {
		t.Fatalf("window listeners after release = %d, want 0", n)
	}
}

func TestLoadDuringRepositionCancelsIt(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s := newTestSession(t, st)
	place(t, s, "b1-s0", document.Point{})
	if err := s.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s.PointerDown(PointerEvent{Button: ButtonPrimary, Target: "b1-s0"})
	if _, err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := s.Window().ListenerCount(); n != 0 {
		t.Fatalf("window listeners after load = %d, want 0", n)
	}
}

func TestLoadCorruptRecordKeepsScene(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing transform", `{"staging":[],"workspace":[]}`},
		{"not json", `<div class="polygon"></div>`},
		{"workspace entity without position", `{"staging":[],"workspace":[{"id":"a","geometry":[[0,0],[1,0],[1,1]],"fillColor":"#000000"}],"transform":{"scale":1,"offset":{"x":0,"y":0}}}`},
		{"two points", `{"staging":[{"id":"a","geometry":[[0,0],[1,0]],"fillColor":"#000000"}],"workspace":[],"transform":{"scale":1,"offset":{"x":0,"y":0}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := store.NewMemory()
			s := newTestSession(t, st)
			place(t, s, "b1-s0", document.Point{X: 9, Y: 9})
			before := s.Snapshot()

			if err := st.Put(ctx, DefaultSceneKey, []byte(tt.data)); err != nil {
				t.Fatalf("Put: %v", err)
			}
			ok, err := s.Load(ctx)
			if ok || !document.IsCorrupt(err) {
				t.Fatalf("Load = %v, %v; want CorruptSceneError", ok, err)
			}
			if !reflect.DeepEqual(s.Snapshot(), before) {
				t.Fatal("scene changed after a rejected load")
			}
			if s.AttachedCount() != 3 {
				t.Fatalf("AttachedCount() = %d, want 3", s.AttachedCount())
			}
		})
	}
}

func TestLoadAssignsFallbackIDs(t *testing.T) {
	data := `{"staging":[{"geometry":[[0,0],[10,0],[5,8]],"fillColor":"#ff0000"}],
	"workspace":[{"id":"x","geometry":[[0,0],[10,0],[5,8]],"fillColor":"#0000ff","position":{"x":0,"y":0}},{"geometry":[[0,0],[10,0],[5,8]],"fillColor":"#00ff00","position":{"x":1,"y":2}}],
	"transform":{"scale":1,"offset":{"x":0,"y":0}}}`

	s := NewSession()
	if err := s.Restore([]byte(data)); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := ids(s.Scene().Staging()); !slices.Equal(got, []string{"staging-000"}) {
		t.Fatalf("staging ids = %v", got)
	}
	if got := ids(s.Scene().Workspace()); !slices.Equal(got, []string{"x", "workspace-001"}) {
		t.Fatalf("workspace ids = %v", got)
	}
}

func TestFallbackIDsAvoidExplicitIDs(t *testing.T) {
	data := `{"staging":[{"geometry":[[0,0],[10,0],[5,8]],"fillColor":"#ff0000"},{"id":"staging-001","geometry":[[0,0],[10,0],[5,8]],"fillColor":"#ff0000"},{"geometry":[[0,0],[10,0],[5,8]],"fillColor":"#ff0000"}],
	"workspace":[{"id":"staging-000","geometry":[[0,0],[10,0],[5,8]],"fillColor":"#0000ff","position":{"x":0,"y":0}}],
	"transform":{"scale":1,"offset":{"x":0,"y":0}}}`

	s := NewSession()
	if err := s.Restore([]byte(data)); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	want := []string{"staging-002", "staging-001", "staging-003"}
	if got := ids(s.Scene().Staging()); !slices.Equal(got, want) {
		t.Fatalf("staging ids = %v, want %v", got, want)
	}
	if got := ids(s.Scene().Workspace()); !slices.Equal(got, []string{"staging-000"}) {
		t.Fatalf("workspace ids = %v", got)
	}
}

func TestResetThenLoadIsEmpty(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s := newTestSession(t, st)
	place(t, s, "b1-s0", document.Point{X: 10, Y: 10})
	s.Wheel(-1)
	if err := s.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if s.Scene().Len() != 0 || s.AttachedCount() != 0 {
		t.Fatalf("scene holds %d entities and %d handlers after reset", s.Scene().Len(), s.AttachedCount())
	}
	if s.Viewport().Transform() != document.IdentityTransform() {
		t.Fatalf("transform after reset = %+v", s.Viewport().Transform())
	}

	ok, err := s.Load(ctx)
	if err != nil || ok {
		t.Fatalf("Load after reset = %v, %v; want false, nil", ok, err)
	}
	if s.Scene().Len() != 0 {
		t.Fatalf("scene holds %d entities after loading nothing", s.Scene().Len())
	}
}

func TestLoadWithNothingStoredIsNoop(t *testing.T) {
	s := newTestSession(t, nil)
	ok, err := s.Load(context.Background())
	if err != nil || ok {
		t.Fatalf("Load = %v, %v; want false, nil", ok, err)
	}
	if len(s.Scene().Staging()) != 3 {
		t.Fatalf("staging = %d entities, want 3", len(s.Scene().Staging()))
	}
}

type failingStore struct {
	store.Store
	err error
}

func (f failingStore) Delete(context.Context, string) error { return f.err }

func TestResetStoreFailureKeepsScene(t *testing.T) {
	boom := errors.New("disk full")
	s := newTestSession(t, failingStore{Store: store.NewMemory(), err: boom})
	if err := s.Reset(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Reset err = %v, want %v", err, boom)
	}
	if s.Scene().Len() != 3 {
		t.Fatalf("scene holds %d entities, want 3", s.Scene().Len())
	}
}

func TestPersistenceBusy(t *testing.T) {
	s := newTestSession(t, nil)
	s.busy.Store(true)
	ctx := context.Background()

	if err := s.Save(ctx); !errors.Is(err, ErrBusy) {
		t.Fatalf("Save err = %v, want ErrBusy", err)
	}
	if _, err := s.Load(ctx); !errors.Is(err, ErrBusy) {
		t.Fatalf("Load err = %v, want ErrBusy", err)
	}
	if err := s.Reset(ctx); !errors.Is(err, ErrBusy) {
		t.Fatalf("Reset err = %v, want ErrBusy", err)
	}

	s.busy.Store(false)
	if err := s.Save(ctx); err != nil {
		t.Fatalf("Save after release: %v", err)
	}
}

func TestSnapshotOmitsStagedPositions(t *testing.T) {
	s := newTestSession(t, nil)
	place(t, s, "b1-s0", document.Point{X: 1, Y: 1})
	rec := s.Snapshot()
	for _, e := range rec.Staging {
		if e.Position != nil {
			t.Fatalf("staged record %s has a position", e.ID)
		}
	}
	if len(rec.Workspace) != 1 || rec.Workspace[0].Position == nil {
		t.Fatalf("workspace records = %+v", rec.Workspace)
	}
	if rec.Transform == nil || rec.Transform.Scale != 1 {
		t.Fatalf("transform = %+v", rec.Transform)
	}
}
