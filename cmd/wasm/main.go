//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/heraldry/internal/codec"
	"github.com/inamate/heraldry/internal/engine"
	"github.com/inamate/heraldry/internal/session"
)

var sess *session.Session

func main() {
	sess = session.New()

	// Create the engine API object
	coaEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	coaEngine.Set("loadText", js.FuncOf(loadText))
	coaEngine.Set("loadSample", js.FuncOf(loadSample))
	coaEngine.Set("apply", js.FuncOf(apply))
	coaEngine.Set("undo", js.FuncOf(undo))
	coaEngine.Set("redo", js.FuncOf(redo))

	// --- Queries (frontend ← backend) ---
	coaEngine.Set("serialize", js.FuncOf(serialize))
	coaEngine.Set("serializeLayers", js.FuncOf(serializeLayers))
	coaEngine.Set("getSnapshot", js.FuncOf(getSnapshot))
	coaEngine.Set("reviewMerge", js.FuncOf(reviewMerge))
	coaEngine.Set("canUndo", js.FuncOf(canUndo))
	coaEngine.Set("canRedo", js.FuncOf(canRedo))
	coaEngine.Set("getSeq", js.FuncOf(getSeq))

	// Register on global scope
	js.Global().Set("coaEngine", coaEngine)

	// Signal that WASM is ready
	js.Global().Set("coaWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// jsonResult wraps v as {"json": "..."} so the frontend parses it once.
func jsonResult(v any) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(map[string]interface{}{"json": string(data)})
}

func stringArray(v js.Value) []string {
	if v.Type() != js.TypeObject {
		return nil
	}
	length := v.Length()
	out := make([]string, length)
	for i := 0; i < length; i++ {
		out[i] = v.Index(i).String()
	}
	return out
}

// --- Command Handlers ---

func loadText(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing coat of arms text"})
	}
	ids, err := sess.Load(args[0].String())
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(ids)
}

func loadSample(this js.Value, args []js.Value) interface{} {
	ids, err := sess.Load(codec.Sample)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(ids)
}

func apply(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing operation JSON"})
	}
	ops, err := session.DecodeOperations([]byte(args[0].String()))
	if err != nil {
		return errorResult(err)
	}
	results, err := sess.ApplyAll(ops)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(results)
}

func undo(this js.Value, args []js.Value) interface{} {
	if err := sess.Undo(); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func redo(this js.Value, args []js.Value) interface{} {
	if err := sess.Redo(); err != nil {
		return errorResult(err)
	}
	return okResult()
}

// --- Query Handlers ---

func serialize(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(sess.Serialize())
}

func serializeLayers(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing layer ids"})
	}
	strip := len(args) > 1 && args[1].Truthy()
	text, err := sess.SerializeLayers(stringArray(args[0]), strip)
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(text)
}

func getSnapshot(this js.Value, args []js.Value) interface{} {
	return jsonResult(sess.Snapshot())
}

func reviewMerge(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing layer ids"})
	}
	var review engine.MergeReview
	_ = sess.View(func(c *engine.Composition) error {
		review = c.ReviewMerge(stringArray(args[0]))
		return nil
	})
	return jsonResult(review)
}

func canUndo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(sess.CanUndo())
}

func canRedo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(sess.CanRedo())
}

func getSeq(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(int(sess.Seq()))
}
