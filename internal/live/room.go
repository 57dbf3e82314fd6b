package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polystage/polystage/internal/document"
	"github.com/polystage/polystage/internal/engine"
)

const (
	inboxSize   = 64
	persistWait = 10 * time.Second
)

// Room is the event loop for one editor session. Only the room goroutine
// touches the session.
type Room struct {
	id       string
	session  *engine.Session
	out      func(*Message)
	inbox    chan *Message
	quit     chan struct{}
	stopOnce sync.Once
	autosave bool
	seq      int64
	log      *slog.Logger

	// answer is the delete confirmation carried by the pointer event
	// being dispatched.
	answer bool
}

func newRoom(id string, out func(*Message), autosave bool, opts ...engine.Option) *Room {
	r := &Room{
		id:       id,
		out:      out,
		inbox:    make(chan *Message, inboxSize),
		quit:     make(chan struct{}),
		autosave: autosave,
		log:      slog.With("session", id),
	}
	base := []engine.Option{
		engine.WithID(id),
		engine.WithConfirmer(engine.ConfirmFunc(func(string) bool { return r.answer })),
		engine.WithPositionObserver(r.entityMoved),
	}
	r.session = engine.NewSession(append(base, opts...)...)
	return r
}

// deliver queues msg for the event loop. It gives up once the room stops.
func (r *Room) deliver(msg *Message) {
	select {
	case r.inbox <- msg:
	case <-r.quit:
	}
}

func (r *Room) stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

// run loads the stored scene, greets the client and then handles input
// until the room is stopped.
func (r *Room) run(ctx context.Context, clientID string) {
	loaded := r.load(ctx)
	r.emit(TypeWelcome, WelcomePayload{SessionID: r.id, ClientID: clientID, Loaded: loaded})
	r.sendFrame()

	for {
		select {
		case msg := <-r.inbox:
			r.handle(ctx, msg)
		case <-r.quit:
			r.close()
			return
		case <-ctx.Done():
			r.close()
			return
		}
	}
}

func (r *Room) load(ctx context.Context) bool {
	lctx, cancel := context.WithTimeout(ctx, persistWait)
	defer cancel()
	loaded, err := r.session.Load(lctx)
	if err != nil {
		r.log.Warn("starting with an empty scene", "error", err)
		return false
	}
	return loaded
}

func (r *Room) close() {
	if !r.autosave {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistWait)
	defer cancel()
	if err := r.session.Save(ctx); err != nil {
		r.log.Error("autosave", "error", err)
	}
}

func (r *Room) handle(ctx context.Context, msg *Message) {
	switch msg.Type {
	case TypePointerDown:
		var p PointerPayload
		if !r.decode(msg, &p) {
			return
		}
		r.answer = p.Confirmed
		r.session.PointerDown(p.PointerEvent)
		r.answer = false
	case TypePointerMove:
		var p PointerPayload
		if !r.decode(msg, &p) {
			return
		}
		r.session.PointerMove(p.PointerEvent)
	case TypePointerUp:
		var p PointerPayload
		if !r.decode(msg, &p) {
			return
		}
		r.session.PointerUp(p.PointerEvent)
	case TypePointerLeave:
		r.session.PointerLeave()
	case TypeWheel:
		var p WheelPayload
		if !r.decode(msg, &p) {
			return
		}
		r.session.Wheel(p.DeltaY)
	case TypeDragStart:
		var p DragPayload
		if !r.decode(msg, &p) {
			return
		}
		r.session.DragStart(p.ID)
	case TypeDragEnd:
		var p DragPayload
		if !r.decode(msg, &p) {
			return
		}
		r.session.DragEnd(p.ID)
	case TypeDrop:
		var p DropPayload
		if !r.decode(msg, &p) {
			return
		}
		moved := r.session.Drop(p.Target, document.Point{X: p.X, Y: p.Y})
		r.emit(TypeCommandResult, CommandResultPayload{Command: msg.Type, Changed: moved})
	case TypeResize:
		var p ResizePayload
		if !r.decode(msg, &p) {
			return
		}
		r.session.Resize(document.Point{X: p.OriginX, Y: p.OriginY}, p.Width, p.Height)
	case TypeGenerate, TypeSave, TypeLoad, TypeReset:
		changed, err := r.command(ctx, msg.Type)
		if err != nil {
			r.sendError(err)
			return
		}
		r.emit(TypeCommandResult, CommandResultPayload{Command: msg.Type, Changed: changed})
	default:
		r.log.Warn("unknown message type", "type", msg.Type)
		r.emit(TypeError, ErrorPayload{Message: "unknown message type " + msg.Type})
		return
	}
	r.sendFrame()
}

func (r *Room) command(ctx context.Context, typ string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, persistWait)
	defer cancel()
	switch typ {
	case TypeGenerate:
		return true, r.session.Generate()
	case TypeSave:
		return true, r.session.Save(ctx)
	case TypeLoad:
		return r.session.Load(ctx)
	case TypeReset:
		return true, r.session.Reset(ctx)
	}
	return false, errors.New("unknown command " + typ)
}

func (r *Room) decode(msg *Message, v any) bool {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		r.log.Warn("invalid payload", "type", msg.Type, "error", err)
		r.emit(TypeError, ErrorPayload{Message: "invalid " + msg.Type + " payload"})
		return false
	}
	return true
}

func (r *Room) entityMoved(id string, pos document.Point) {
	r.emit(TypeEntityMoved, EntityMovedPayload{ID: id, X: pos.X, Y: pos.Y})
}

func (r *Room) sendFrame() {
	r.emit(TypeFrame, r.session.Render())
}

func (r *Room) sendError(err error) {
	r.log.Warn("command failed", "error", err)
	r.emit(TypeError, ErrorPayload{Message: err.Error(), Corrupt: document.IsCorrupt(err)})
}

func (r *Room) emit(typ string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		r.log.Error("marshal payload", "type", typ, "error", err)
		return
	}
	r.seq++
	r.out(&Message{Type: typ, SessionID: r.id, Seq: r.seq, Payload: data})
}
