//go:build js && wasm

package main

import (
	"context"
	"log/slog"
	"os"
	"syscall/js"

	"github.com/polystage/polystage/internal/document"
	"github.com/polystage/polystage/internal/engine"
	"github.com/polystage/polystage/internal/logging"
)

var sess *engine.Session

func main() {
	logging.Setup(os.Stdout, logging.Options{Level: "info"})

	sess = engine.NewSession(
		engine.WithStore(localStorage{}, engine.DefaultSceneKey),
		engine.WithConfirmer(engine.ConfirmFunc(func(prompt string) bool {
			return js.Global().Call("confirm", prompt).Bool()
		})),
	)
	if _, err := sess.Load(context.Background()); err != nil {
		slog.Warn("stored scene not loaded, starting empty", "error", err)
	}

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("generate", js.FuncOf(generate))
	api.Set("save", js.FuncOf(save))
	api.Set("load", js.FuncOf(load))
	api.Set("reset", js.FuncOf(reset))

	// --- Input ---
	api.Set("resize", js.FuncOf(resize))
	api.Set("wheel", js.FuncOf(wheel))
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("pointerLeave", js.FuncOf(pointerLeave))
	api.Set("dragStart", js.FuncOf(dragStart))
	api.Set("dragEnd", js.FuncOf(dragEnd))
	api.Set("drop", js.FuncOf(drop))

	// --- Queries (frontend ← engine) ---
	api.Set("render", js.FuncOf(render))
	api.Set("hitTest", js.FuncOf(hitTest))

	js.Global().Set("polystageEngine", api)
	js.Global().Set("polystageWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func result(err error) interface{} {
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Command Handlers ---

func generate(this js.Value, args []js.Value) interface{} {
	return result(sess.Generate())
}

func save(this js.Value, args []js.Value) interface{} {
	return result(sess.Save(context.Background()))
}

func load(this js.Value, args []js.Value) interface{} {
	loaded, err := sess.Load(context.Background())
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "loaded": loaded})
}

func reset(this js.Value, args []js.Value) interface{} {
	return result(sess.Reset(context.Background()))
}

// --- Input Handlers ---

func resize(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return nil
	}
	sess.Resize(document.Point{X: args[0].Float(), Y: args[1].Float()}, args[2].Float(), args[3].Float())
	return nil
}

func wheel(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	sess.Wheel(args[0].Float())
	return nil
}

// pointerEvent reads (x, y, button?, target?).
func pointerEvent(args []js.Value) (engine.PointerEvent, bool) {
	if len(args) < 2 {
		return engine.PointerEvent{}, false
	}
	ev := engine.PointerEvent{X: args[0].Float(), Y: args[1].Float()}
	if len(args) > 2 && args[2].Type() == js.TypeNumber {
		ev.Button = engine.Button(args[2].Int())
	}
	if len(args) > 3 && args[3].Type() == js.TypeString {
		ev.Target = args[3].String()
	}
	return ev, true
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if ev, ok := pointerEvent(args); ok {
		sess.PointerDown(ev)
	}
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if ev, ok := pointerEvent(args); ok {
		sess.PointerMove(ev)
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if ev, ok := pointerEvent(args); ok {
		sess.PointerUp(ev)
	}
	return nil
}

func pointerLeave(this js.Value, args []js.Value) interface{} {
	sess.PointerLeave()
	return nil
}

func dragStart(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	sess.DragStart(args[0].String())
	return nil
}

func dragEnd(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	sess.DragEnd(args[0].String())
	return nil
}

func drop(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(false)
	}
	target := document.Container(args[0].String())
	return js.ValueOf(sess.Drop(target, document.Point{X: args[1].Float(), Y: args[2].Float()}))
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(sess.RenderJSON())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(sess.HitTest(document.Point{X: args[0].Float(), Y: args[1].Float()}))
}
