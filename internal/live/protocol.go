package live

import (
	"encoding/json"

	"github.com/polystage/polystage/internal/document"
	"github.com/polystage/polystage/internal/engine"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Input, client -> server
	TypePointerDown  = "pointer.down"
	TypePointerMove  = "pointer.move"
	TypePointerUp    = "pointer.up"
	TypePointerLeave = "pointer.leave"
	TypeWheel        = "wheel"
	TypeDragStart    = "drag.start"
	TypeDragEnd      = "drag.end"
	TypeDrop         = "drop"
	TypeResize       = "resize"

	// Commands, client -> server
	TypeGenerate = "cmd.generate"
	TypeSave     = "cmd.save"
	TypeLoad     = "cmd.load"
	TypeReset    = "cmd.reset"

	// Output, server -> client
	TypeFrame         = "frame"
	TypeCommandResult = "cmd.result"
	TypeEntityMoved   = "entity.moved"
)

type WelcomePayload struct {
	SessionID string `json:"sessionId"`
	ClientID  string `json:"clientId"`
	Loaded    bool   `json:"loaded"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Corrupt bool   `json:"corrupt,omitempty"`
}

// PointerPayload carries a pointer sample. A secondary press on an entity
// is a delete request; Confirmed is the user's answer to the prompt the
// client showed before sending it.
type PointerPayload struct {
	engine.PointerEvent
	Confirmed bool `json:"confirmed,omitempty"`
}

type WheelPayload struct {
	DeltaY float64 `json:"deltaY"`
}

type DragPayload struct {
	ID string `json:"id"`
}

type DropPayload struct {
	Target document.Container `json:"target"`
	X      float64            `json:"x"`
	Y      float64            `json:"y"`
}

type ResizePayload struct {
	OriginX float64 `json:"originX"`
	OriginY float64 `json:"originY"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// CommandResultPayload answers a cmd.* message. Changed is false for a
// drop that moved nothing or a load with nothing stored.
type CommandResultPayload struct {
	Command string `json:"command"`
	Changed bool   `json:"changed"`
}

type EntityMovedPayload struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}
