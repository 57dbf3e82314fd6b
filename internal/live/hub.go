package live

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/polystage/polystage/internal/engine"
	"github.com/polystage/polystage/internal/store"
)

// Config controls the sessions the hub creates.
type Config struct {
	SceneKey        string
	Zoom            engine.ZoomPolicy
	AutosaveOnClose bool
}

// Hub owns one Room per connected client. Sessions are private to their
// connection; they only meet in the shared store.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // sessionID -> room
	store      store.Store
	cfg        Config
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	exited     chan struct{}
	running    atomic.Bool
	stopOnce   sync.Once
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewHub(st store.Store, cfg Config) *Hub {
	if cfg.SceneKey == "" {
		cfg.SceneKey = engine.DefaultSceneKey
	}
	if cfg.Zoom == (engine.ZoomPolicy{}) {
		cfg.Zoom = engine.DefaultZoomPolicy()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		rooms:      make(map[string]*Room),
		store:      st,
		cfg:        cfg,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		exited:     make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (h *Hub) Run() {
	h.running.Store(true)
	defer close(h.exited)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

// Register hands a client to the hub. It reports false once the hub has
// been stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Stop ends every session, saving them first when autosave is on, and
// waits for their event loops to exit.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		if h.running.Load() {
			<-h.exited
		}
		h.mu.Lock()
		for id, room := range h.rooms {
			room.stop()
			delete(h.rooms, id)
		}
		h.mu.Unlock()
		h.wg.Wait()
		h.cancel()
	})
}

// Sessions returns the number of live sessions.
func (h *Hub) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) addClient(client *Client) {
	room := newRoom(client.SessionID, client.Send, h.cfg.AutosaveOnClose,
		engine.WithStore(h.store, h.cfg.SceneKey),
		engine.WithZoomPolicy(h.cfg.Zoom),
	)

	h.mu.Lock()
	h.rooms[client.SessionID] = room
	h.mu.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer close(client.send)
		room.run(h.ctx, client.ClientID)
	}()

	slog.Info("session opened", "session", client.SessionID, "client", client.ClientID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if ok {
		delete(h.rooms, client.SessionID)
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	room.stop()

	slog.Info("session closed", "session", client.SessionID, "client", client.ClientID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	h.mu.RLock()
	room, ok := h.rooms[sender.SessionID]
	h.mu.RUnlock()
	if !ok {
		slog.Debug("message for closed session", "session", sender.SessionID, "type", msg.Type)
		return
	}
	room.deliver(msg)
}
