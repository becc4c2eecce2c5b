package session

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/inamate/heraldry/internal/codec"
	"github.com/inamate/heraldry/internal/document"
	"github.com/inamate/heraldry/internal/engine"
	"github.com/inamate/heraldry/internal/geom"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func mustApply(t *testing.T, s *Session, op Operation) Result {
	t.Helper()
	r, err := s.Apply(op)
	if err != nil {
		t.Fatalf("Apply(%s): %v", op.Type, err)
	}
	return r
}

func addLayer(t *testing.T, s *Session) string {
	t.Helper()
	r := mustApply(t, s, Operation{Type: TypeLayerAdd, Filename: "ce_fleur.dds", Colors: 3})
	if len(r.Layers) != 1 {
		t.Fatalf("layer.add returned %v", r.Layers)
	}
	return r.Layers[0]
}

func layerCount(t *testing.T, s *Session) int {
	t.Helper()
	var n int
	_ = s.View(func(c *engine.Composition) error {
		n = c.LayerCount()
		return nil
	})
	return n
}

func TestApplySequence(t *testing.T) {
	s := New()
	r1 := mustApply(t, s, Operation{Type: TypeLayerAdd, Filename: "ce_fleur.dds", Colors: 3})
	r2 := mustApply(t, s, Operation{Type: TypeLayerAdd, Filename: "ce_lion.dds", Colors: 2})

	if r1.Seq != 1 || r2.Seq != 2 || s.Seq() != 2 {
		t.Errorf("seq = %d, %d, %d; want 1, 2, 2", r1.Seq, r2.Seq, s.Seq())
	}
	if !strings.HasPrefix(r1.OperationID, "op_") {
		t.Errorf("generated id %q lacks op prefix", r1.OperationID)
	}
	if !strings.HasPrefix(r1.Snapshot, "snap_") {
		t.Errorf("history entry %q lacks snap prefix", r1.Snapshot)
	}

	r3 := mustApply(t, s, Operation{ID: "client-7", Type: TypePatternSet, Filename: "pattern_checkers_01.dds"})
	if r3.OperationID != "client-7" {
		t.Errorf("OperationID = %q, want the client id", r3.OperationID)
	}
}

func TestApplyRejects(t *testing.T) {
	s := New()
	id := addLayer(t, s)
	before := s.Snapshot()

	tests := []struct {
		name string
		op   Operation
		want error
	}{
		{"unknown type", Operation{Type: "layer.explode"}, nil},
		{"missing layer", Operation{Type: TypeLayerRemove, Layers: []string{"nope"}}, engine.ErrNotFound},
		{"missing color", Operation{Type: TypeLayerColor, Layers: []string{id}, Slot: 1}, engine.ErrInvalid},
		{"bad slot", Operation{Type: TypePatternColor, Slot: 4, Color: &document.Color{Name: "red"}}, engine.ErrInvalid},
		{"one unknown in many", Operation{Type: TypeLayerRename, Layers: []string{id, "nope"}, Name: "x"}, engine.ErrNotFound},
		{"bad mode", Operation{Type: TypeLayerRotate, Layers: []string{id}, Delta: 10, Mode: "wobble"}, engine.ErrInvalid},
		{"bad placement", Operation{Type: TypeLayerMove, Layers: []string{id}, Placement: "sideways"}, engine.ErrInvalid},
		{"split single", Operation{Type: TypeLayerSplit, Layers: []string{id}}, engine.ErrInvalid},
		{"apply without begin", Operation{Type: TypeRotationApply, Delta: 5}, engine.ErrNoTransform},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Apply(tt.op)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if !s.Snapshot().Equal(before) {
		t.Error("rejected operations changed the composition")
	}
	if s.Seq() != 1 {
		t.Errorf("seq = %d, want 1", s.Seq())
	}
}

func TestUnknownOperationMessage(t *testing.T) {
	_, err := New().Apply(Operation{Type: "layer.explode"})
	if err == nil || !strings.Contains(err.Error(), "unknown operation type: layer.explode") {
		t.Errorf("err = %v", err)
	}
}

func TestUndoRedo(t *testing.T) {
	s := New()
	a := addLayer(t, s)
	mustApply(t, s, Operation{Type: TypeLayerPosition, Layers: []string{a}, Position: &geom.Vec2{X: 0.2, Y: 0.3}})
	moved := s.Snapshot()

	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	var pos geom.Vec2
	_ = s.View(func(c *engine.Composition) error {
		var err error
		pos, err = c.LayerPosition(a)
		return err
	})
	if !near(pos.X, 0.5) || !near(pos.Y, 0.5) {
		t.Errorf("position after undo = %v, want center", pos)
	}

	if err := s.Undo(); err != nil {
		t.Fatalf("second Undo: %v", err)
	}
	if layerCount(t, s) != 0 {
		t.Errorf("layers after undoing the add = %d, want 0", layerCount(t, s))
	}
	if err := s.Undo(); !errors.Is(err, engine.ErrInvalid) {
		t.Errorf("undo past the start: err = %v", err)
	}

	if err := s.Redo(); err != nil {
		t.Fatal(err)
	}
	if err := s.Redo(); err != nil {
		t.Fatal(err)
	}
	if !s.Snapshot().Equal(moved) {
		t.Error("redo did not restore the moved state")
	}
	if s.CanRedo() {
		t.Error("CanRedo after redoing everything")
	}
}

func TestRotationGestureRecordsOnce(t *testing.T) {
	s := New()
	a := addLayer(t, s)
	mustApply(t, s, Operation{Type: TypeLayerPosition, Layers: []string{a}, Position: &geom.Vec2{X: 0.3, Y: 0.5}})
	b := addLayer(t, s)
	mustApply(t, s, Operation{Type: TypeLayerPosition, Layers: []string{b}, Position: &geom.Vec2{X: 0.7, Y: 0.5}})
	start := s.Snapshot()

	mustApply(t, s, Operation{Type: TypeRotationBegin, Layers: []string{a, b}, Mode: string(engine.ModeOrbitOnly)})
	mustApply(t, s, Operation{Type: TypeRotationApply, Delta: 45})
	mustApply(t, s, Operation{Type: TypeRotationApply, Delta: 90})
	mustApply(t, s, Operation{Type: TypeRotationEnd})

	var pa geom.Vec2
	_ = s.View(func(c *engine.Composition) error {
		var err error
		pa, err = c.LayerPosition(a)
		return err
	})
	if !near(pa.X, 0.5) || !near(pa.Y, 0.3) {
		t.Errorf("orbited position = %v, want (0.5, 0.3)", pa)
	}

	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if !s.Snapshot().Equal(start) {
		t.Error("one undo did not revert the whole gesture")
	}
}

func TestPasteOffset(t *testing.T) {
	src := New()
	a := addLayer(t, src)
	text, err := src.SerializeLayers([]string{a}, false)
	if err != nil {
		t.Fatal(err)
	}

	s := New(WithPasteOffset(0.1))
	r := mustApply(t, s, Operation{Type: TypeLayerPaste, Text: text})
	if len(r.Layers) != 1 || r.Layers[0] == a {
		t.Fatalf("pasted layers = %v", r.Layers)
	}
	var pos geom.Vec2
	_ = s.View(func(c *engine.Composition) error {
		var err error
		pos, err = c.LayerPosition(r.Layers[0])
		return err
	})
	if !near(pos.X, 0.6) || !near(pos.Y, 0.6) {
		t.Errorf("pasted position = %v, want (0.6, 0.6)", pos)
	}
}

func TestLoadResetsHistory(t *testing.T) {
	s := New()
	addLayer(t, s)
	ids, err := s.Load(codec.Sample)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("loaded %d layers, want 3", len(ids))
	}
	if s.CanUndo() {
		t.Error("history survived a load")
	}
	out := s.Serialize()
	if !strings.Contains(out, "pattern_checkers_01.dds") {
		t.Errorf("serialized text lost the pattern:\n%s", out)
	}
}

func TestLoadKeepsHistoryForNonComposition(t *testing.T) {
	s := New()
	addLayer(t, s)
	addLayer(t, s)
	before := s.Snapshot()

	ids, err := s.Load("hello clipboard, not a coat of arms")
	if err != nil || len(ids) != 0 {
		t.Fatalf("Load = %v, %v; want no layers and no error", ids, err)
	}
	if !s.CanUndo() {
		t.Error("ignored text cleared the undo history")
	}
	if !s.Snapshot().Equal(before) {
		t.Error("ignored text changed the composition")
	}

	fragment := `layers_export = {
	colored_emblem = { texture = "ce_cross.dds" instance = { position = { 0.2 0.8 } } }
}`
	ids, err = s.Load(fragment)
	if err != nil || len(ids) != 1 {
		t.Fatalf("Load fragment = %v, %v", ids, err)
	}
	if layerCount(t, s) != 3 {
		t.Errorf("layers = %d, want 3", layerCount(t, s))
	}
	if err := s.Undo(); err != nil {
		t.Fatalf("undo after fragment: %v", err)
	}
	if !s.Snapshot().Equal(before) {
		t.Error("undo did not remove the pasted fragment")
	}
}

func TestMoveKeepsContainersContiguous(t *testing.T) {
	s := New()
	a, b := addLayer(t, s), addLayer(t, s)
	addLayer(t, s)
	mustApply(t, s, Operation{Type: TypeContainerCreate, Layers: []string{a, b}, Name: "Pair"})

	r := mustApply(t, s, Operation{Type: TypeLayerMove, Layers: []string{a}, Placement: PlaceTop})
	if len(r.Splits) != 1 || r.Splits[0].LayerCount != 1 {
		t.Fatalf("move splits = %+v, want one single-layer split", r.Splits)
	}
	_ = s.View(func(c *engine.Composition) error {
		ca, _ := c.LayerContainer(a)
		cb, _ := c.LayerContainer(b)
		if ca == cb {
			t.Errorf("fragmented members still share container %q", ca)
		}
		return nil
	})

	rep := mustApply(t, s, Operation{Type: TypeContainerRepair})
	if len(rep.Splits) != 0 {
		t.Errorf("repair after move found %+v", rep.Splits)
	}
}

func TestBatchIsAtomic(t *testing.T) {
	s := New()
	a := addLayer(t, s)
	before := s.Snapshot()

	_, err := s.Apply(Operation{Type: TypeBatch, Operations: []Operation{
		{Type: TypeLayerRename, Layers: []string{a}, Name: "Fleur"},
		{Type: TypeLayerRemove, Layers: []string{"nope"}},
	}})
	if !errors.Is(err, engine.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if !s.Snapshot().Equal(before) {
		t.Error("failed batch left partial changes")
	}

	r := mustApply(t, s, Operation{Type: TypeBatch, Operations: []Operation{
		{Type: TypeLayerRename, Layers: []string{a}, Name: "Fleur"},
		{Type: TypeLayerDuplicate, Layers: []string{a}},
	}})
	if len(r.Layers) != 1 || layerCount(t, s) != 2 {
		t.Errorf("batch result %v, layers %d", r.Layers, layerCount(t, s))
	}
	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if !s.Snapshot().Equal(before) {
		t.Error("batch is not a single history step")
	}
}

func TestMergeSplitAndContainers(t *testing.T) {
	s := New()
	a, b, c := addLayer(t, s), addLayer(t, s), addLayer(t, s)

	r := mustApply(t, s, Operation{Type: TypeContainerCreate, Layers: []string{a, c}, Name: "Pair"})
	if !strings.HasSuffix(r.Container, "_Pair") {
		t.Errorf("container id = %q", r.Container)
	}

	m := mustApply(t, s, Operation{Type: TypeLayerMerge, Layers: []string{a, b}})
	if m.Review == nil || !m.Review.Valid || len(m.Layers) != 1 || m.Layers[0] != a {
		t.Fatalf("merge result = %+v", m)
	}
	sp := mustApply(t, s, Operation{Type: TypeLayerSplit, Layers: []string{a}})
	if len(sp.Layers) != 2 {
		t.Fatalf("split produced %v", sp.Layers)
	}

	rep := mustApply(t, s, Operation{Type: TypeContainerRepair})
	for _, split := range rep.Splits {
		if split.OldContainer == split.NewContainer {
			t.Errorf("repair reused container id %q", split.OldContainer)
		}
	}
}

func TestApplyAllStopsAtFailure(t *testing.T) {
	s := New()
	ops, err := DecodeOperations([]byte(`[
		{"type": "layer.add", "filename": "ce_fleur.dds", "colors": 3},
		{"type": "pattern.set", "filename": ""},
		{"type": "layer.add", "filename": "ce_lion.dds", "colors": 2}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	results, err := s.ApplyAll(ops)
	if err == nil || !strings.Contains(err.Error(), "operation 1") {
		t.Fatalf("err = %v", err)
	}
	if len(results) != 1 || layerCount(t, s) != 1 {
		t.Errorf("results %d, layers %d; want 1, 1", len(results), layerCount(t, s))
	}
}

func TestDecodeOperationsSingle(t *testing.T) {
	ops, err := DecodeOperations([]byte(`{"type": "layer.flip", "layers": ["x"], "flipX": true}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 1 || ops[0].Type != TypeLayerFlip || !ops[0].FlipX {
		t.Errorf("ops = %+v", ops)
	}
	if _, err := DecodeOperations([]byte(`"nope"`)); err == nil {
		t.Error("expected error for a bare string")
	}
}

func TestConcurrentApply(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Apply(Operation{Type: TypeLayerAdd, Filename: "ce_fleur.dds", Colors: 1}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if s.Seq() != 8 || layerCount(t, s) != 8 {
		t.Errorf("seq %d, layers %d; want 8, 8", s.Seq(), layerCount(t, s))
	}
}

func TestFingerprintTracksState(t *testing.T) {
	s := New()
	f0, err := s.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	addLayer(t, s)
	f1, err := s.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	if f0 == f1 {
		t.Error("fingerprint unchanged after adding a layer")
	}
}
