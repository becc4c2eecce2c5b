package codec

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/inamate/heraldry/internal/document"
	"github.com/inamate/heraldry/internal/engine"
	"github.com/inamate/heraldry/internal/geom"
)

func readSample(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func parsed(t *testing.T, c *Codec, text string) *engine.Composition {
	t.Helper()
	comp := engine.New()
	if _, err := c.Parse(comp, text); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return comp
}

func filenames(comp *engine.Composition) []string {
	out := make([]string, comp.LayerCount())
	for i := range out {
		out[i] = comp.LayerAt(i).Filename
	}
	return out
}

func TestParseSimple(t *testing.T) {
	comp := parsed(t, New(), readSample(t, "simple.txt"))

	if comp.Pattern() != "pattern_solid.dds" {
		t.Errorf("pattern = %q", comp.Pattern())
	}
	for slot, want := range []string{"red", "yellow", "black"} {
		if col, _ := comp.BaseColor(slot + 1); col.Name != want {
			t.Errorf("color%d = %+v, want %s", slot+1, col, want)
		}
	}
	if comp.LayerCount() != 1 {
		t.Fatalf("layers = %d, want 1", comp.LayerCount())
	}
	l := comp.LayerAt(0)
	if l.InstanceCount() != 1 {
		t.Fatalf("instances = %d", l.InstanceCount())
	}
	if l.Scale() != geom.V(0.7, 0.7) || l.Pos() != geom.V(0.5, 0.5) {
		t.Errorf("instance = %+v", l.Instances[0])
	}
	if l.Filename != "ce_fleur.dds" || l.Colors != 2 || l.Color1.Name != "yellow" || l.Color2.Name != "red" {
		t.Errorf("layer = %s colors=%d %s %s", l.Filename, l.Colors, l.Color1.Name, l.Color2.Name)
	}
}

func TestParseSplitsByDepth(t *testing.T) {
	comp := parsed(t, New(), readSample(t, "multi_layer.txt"))

	want := []string{
		"ce_tamgha_oghuz_kayig.dds",
		"ce_tamgha_turkic_09.dds",
		"ce_mena_bend.dds",
		"ce_mena_bend.dds",
	}
	if got := filenames(comp); !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	back, front := comp.LayerAt(2), comp.LayerAt(3)
	if back.Pos() != geom.V(0, 0.55) || back.Rotation() != 20 {
		t.Errorf("depth 1.01 part = %+v", back.Instances)
	}
	if front.Pos() != geom.V(0.97, 0.56) || front.Rotation() != 70 {
		t.Errorf("depth 0 part = %+v", front.Instances)
	}
	if back.UUID == front.UUID || back.Color1.Name != "white" || front.Color1.Name != "white" {
		t.Errorf("split parts must share appearance under distinct uuids")
	}
	if oghuz := comp.LayerAt(0); oghuz.Pos() != geom.V(0.5, 0.5) || oghuz.Rotation() != 59 {
		t.Errorf("default position not applied: %+v", oghuz.Instances)
	}
}

func TestSplitKeepsFirstAppearanceGrouping(t *testing.T) {
	text := `colored_emblem = {
	texture = "ce_eagle.dds"
	instance = { position = { 0.1 0.1 } depth = 1 }
	instance = { position = { 0.2 0.2 } }
	instance = { position = { 0.3 0.3 } depth = 1 }
}`
	d, err := New().Decode(text)
	if err != nil {
		t.Fatal(err)
	}
	if d.Full || len(d.Layers) != 2 {
		t.Fatalf("decoded %d layers, full=%v", len(d.Layers), d.Full)
	}
	if d.Layers[0].InstanceCount() != 2 || d.Layers[1].Pos() != geom.V(0.2, 0.2) {
		t.Errorf("groups = %+v / %+v", d.Layers[0].Instances, d.Layers[1].Instances)
	}
}

func TestRoundTrip(t *testing.T) {
	c := New()
	for _, name := range []string{"simple.txt", "multi_layer.txt"} {
		t.Run(name, func(t *testing.T) {
			first := parsed(t, c, readSample(t, name))
			text := c.Serialize(first)
			second := parsed(t, c, text)

			if !slices.Equal(filenames(first), filenames(second)) {
				t.Fatalf("order %v != %v", filenames(first), filenames(second))
			}
			if first.Pattern() != second.Pattern() {
				t.Errorf("pattern %q != %q", first.Pattern(), second.Pattern())
			}
			for i := 0; i < first.LayerCount(); i++ {
				a, b := first.LayerAt(i), second.LayerAt(i)
				if a.InstanceCount() != b.InstanceCount() {
					t.Errorf("layer %d instances %d != %d", i, a.InstanceCount(), b.InstanceCount())
				}
				if !slices.Equal(a.ActiveColors(), b.ActiveColors()) {
					t.Errorf("layer %d colors %v != %v", i, a.ActiveColors(), b.ActiveColors())
				}
				if a.Pos() != b.Pos() || a.Rotation() != b.Rotation() {
					t.Errorf("layer %d placement changed: %+v -> %+v", i, a.Instances, b.Instances)
				}
			}
			if again := c.Serialize(second); again != text {
				t.Errorf("serialization not stable:\n%s\n---\n%s", text, again)
			}
		})
	}
}

func TestSerializeSimple(t *testing.T) {
	c := New()
	got := c.Serialize(parsed(t, c, readSample(t, "simple.txt")))
	want := `coa_export = {
	pattern = "pattern_solid.dds"
	color1 = red
	color2 = yellow
	color3 = black
	colored_emblem = {
		texture = "ce_fleur.dds"
		color1 = yellow
		color2 = red
		instance = {
			position = { 0.5 0.5 }
			scale = { 0.7 0.7 }
		}
	}
}
`
	if got != want {
		t.Errorf("Serialize =\n%s\nwant\n%s", got, want)
	}
}

func TestSerializeDepthFromIndex(t *testing.T) {
	c := New()
	comp := parsed(t, c, readSample(t, "multi_layer.txt"))
	text := c.Serialize(comp)
	for _, want := range []string{"depth = 3\n", "depth = 2\n", "depth = 1\n"} {
		if strings.Count(text, want) != 1 {
			t.Errorf("want exactly one %q in\n%s", want, text)
		}
	}
	if strings.Contains(text, "depth = 0") || strings.Contains(text, "1.01") {
		t.Errorf("stale depth written:\n%s", text)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	c := New()
	comp := engine.New()
	a, _ := comp.AddLayer("ce_star_08.dds", 1, "")
	b, _ := comp.AddLayer("ce_cross.dds", 3, "")
	container, err := comp.CreateContainer([]string{a, b}, "Pair")
	if err != nil {
		t.Fatal(err)
	}
	_ = comp.SetLayerName(a, `Star "north"`)
	_ = comp.SetLayerVisible(b, false)
	_ = comp.SetLayerMask(b, []int{0, 1, 0})
	_ = comp.SetLayerColor(b, 2, document.RGB(10, 20, 30))
	sym := document.Symmetry{Type: document.SymmetryBisector, Properties: []float64{0.5, 0.5, 0, 1}}
	_ = comp.SetLayerSymmetry(a, sym)
	_ = comp.SetLayerPosition(a, geom.V(0.3, 0.2))

	text := c.Serialize(comp)
	if strings.Count(text, MetaMarker+metaIsMirror+"=yes") != 3 {
		t.Errorf("expected 3 marked mirrors:\n%s", text)
	}
	if !strings.Contains(text, MetaMarker+"container_uuid=\""+container+"\"") {
		t.Errorf("container not written:\n%s", text)
	}

	back := parsed(t, c, text)
	if back.LayerCount() != 2 {
		t.Fatalf("layers = %d", back.LayerCount())
	}
	la, lb := back.LayerAt(0), back.LayerAt(1)
	if la.InstanceCount() != 1 || la.Pos() != geom.V(0.3, 0.2) {
		t.Errorf("mirrors leaked into model: %+v", la.Instances)
	}
	if !la.Symmetry.Equal(sym) || la.Name != `Star 'north'` {
		t.Errorf("a = %+v name %q", la.Symmetry, la.Name)
	}
	if la.ContainerUUID != container || lb.ContainerUUID != container {
		t.Errorf("containers = %q, %q", la.ContainerUUID, lb.ContainerUUID)
	}
	if lb.Visible || !slices.Equal(lb.Mask, []int{0, 1, 0}) || lb.Color2 != document.RGB(10, 20, 30) {
		t.Errorf("b = visible %v mask %v color2 %+v", lb.Visible, lb.Mask, lb.Color2)
	}
}

func TestForceRGB(t *testing.T) {
	c := New(WithForceRGB(true))
	text := c.Serialize(parsed(t, c, readSample(t, "simple.txt")))
	if !strings.Contains(text, "color1 = rgb { 114 33 22 }") {
		t.Errorf("red not forced to rgb:\n%s", text)
	}
	if strings.Contains(text, "= red") {
		t.Errorf("named color written:\n%s", text)
	}
}

func TestParseColors(t *testing.T) {
	text := `coa_export = {
	pattern = "pattern_solid.dds"
	color1 = rgb { 1 2 3 }
	color2 = hsv { 0 1 1 }
	color3 = "blue"
}`
	d, err := New().Decode(text)
	if err != nil {
		t.Fatal(err)
	}
	if d.Colors[0] != document.RGB(1, 2, 3) {
		t.Errorf("rgb = %+v", d.Colors[0])
	}
	if d.Colors[1] != document.RGB(255, 0, 0) {
		t.Errorf("hsv = %+v", d.Colors[1])
	}
	if d.Colors[2].Name != "blue" {
		t.Errorf("quoted name = %+v", d.Colors[2])
	}

	if _, err := New().Decode(`pattern = "p" color1 = cmyk { 1 2 3 }`); err == nil {
		t.Error("unknown color type accepted")
	}
	if _, err := New().Decode(`pattern = "p" color1 = rgb { 1 2 }`); err == nil {
		t.Error("short rgb accepted")
	}
}

func TestPasteLooseLayers(t *testing.T) {
	c := New()
	comp := parsed(t, c, readSample(t, "simple.txt"))
	existing := comp.UUIDs()

	fragment := `layers_export = {
	colored_emblem = { texture = "ce_cross.dds" instance = { position = { 0.2 0.8 } } }
	colored_emblem = { texture = "ce_eagle.dds" }
}`
	ids, err := c.Parse(comp, fragment)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || comp.LayerCount() != 3 {
		t.Fatalf("pasted %v, now %d layers", ids, comp.LayerCount())
	}
	if comp.LayerAt(0).UUID != existing[0] || comp.Pattern() != "pattern_solid.dds" {
		t.Error("loose paste disturbed the composition")
	}
	if got := filenames(comp); !slices.Equal(got, []string{"ce_fleur.dds", "ce_cross.dds", "ce_eagle.dds"}) {
		t.Errorf("order = %v", got)
	}

	again, err := c.ParseLayers(comp, fragment, existing[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 2 || slices.Contains(ids, again[0]) {
		t.Errorf("second paste ids = %v", again)
	}
	if idx, _ := comp.IndexOf(again[0]); idx != 1 {
		t.Errorf("paste after target landed at %d", idx)
	}
}

func TestSerializeLayersFragment(t *testing.T) {
	c := New()
	comp := parsed(t, c, Sample)
	ids := comp.UUIDs()
	container := comp.LayerAt(0).ContainerUUID
	if container == "" {
		t.Fatal("sample lost its container")
	}

	kept, err := c.SerializeLayers(comp, []string{ids[1], ids[0]}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(kept, RootLayers) || !strings.Contains(kept, container) {
		t.Errorf("fragment =\n%s", kept)
	}
	stripped, err := c.SerializeLayers(comp, ids[:2], true)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(stripped, "container_uuid") {
		t.Errorf("container kept:\n%s", stripped)
	}

	other := engine.New()
	pasted, err := c.Parse(other, kept)
	if err != nil {
		t.Fatal(err)
	}
	if got := filenames(other); !slices.Equal(got, filenames(comp)[:2]) {
		t.Errorf("pasted order = %v (%v)", got, pasted)
	}

	if _, err := c.SerializeLayers(comp, []string{"ghost"}, false); !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("unknown uuid err = %v", err)
	}
	if _, err := c.SerializeLayers(comp, []string{ids[0], ids[0]}, false); !errors.Is(err, engine.ErrInvalid) {
		t.Errorf("repeated uuid err = %v", err)
	}
}

func TestParseToleratesNonComposition(t *testing.T) {
	c := New()
	for _, text := range []string{"", "   \n", "just some clipboard words", "settings = { volume = 3 }"} {
		comp := parsed(t, c, readSample(t, "simple.txt"))
		before := comp.Snapshot()
		ids, err := c.Parse(comp, text)
		if err != nil || ids != nil {
			t.Errorf("Parse(%q) = %v, %v", text, ids, err)
		}
		if !before.Equal(comp.Snapshot()) {
			t.Errorf("Parse(%q) changed state", text)
		}
	}
	if _, err := c.Decode("x = { y = 1 }"); !errors.Is(err, ErrNotComposition) {
		t.Errorf("Decode err = %v", err)
	}
}

func TestParseMalformed(t *testing.T) {
	c := New()
	comp := parsed(t, c, readSample(t, "simple.txt"))
	before := comp.Snapshot()

	for _, text := range []string{
		"coa_export = { pattern = \"pattern_solid.dds\"",
		"coa_export = { pattern = \"x\" colored_emblem = { instance = { scale = { a b } } } }",
		"coa_export = { pattern = \"x\" colored_emblem = { texture = \"y }",
		"coa_export = { pattern = \"x\" colored_emblem = { instance = { depth = nan } instance = { depth = nan } } }",
		"coa_export = { pattern = \"x\" colored_emblem = { instance = { rotation = inf } } }",
	} {
		_, err := c.Parse(comp, text)
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("Parse(%q) err = %v, want SyntaxError", text, err)
		}
		if err != nil && !strings.HasPrefix(err.Error(), "parse coat of arms") {
			t.Errorf("unwrapped error %v", err)
		}
	}
	if !before.Equal(comp.Snapshot()) {
		t.Error("malformed input changed state")
	}
}

func TestSample(t *testing.T) {
	comp := parsed(t, New(), Sample)
	want := []string{"ce_star_08.dds", "ce_circle.dds", "ce_lion_passant_guardant.dds"}
	if got := filenames(comp); !slices.Equal(got, want) {
		t.Fatalf("order = %v", got)
	}
	if len(comp.ValidateContiguity()) != 0 {
		t.Error("sample container fragmented")
	}
	lion := comp.LayerAt(2)
	if !lion.Instances[0].FlipX || lion.Scale() != geom.V(0.6, 0.6) || lion.Name != "Lion" {
		t.Errorf("lion = %+v", lion)
	}
	if comp.LayerAt(1).Color1 != document.RGB(200, 160, 40) {
		t.Errorf("custom color = %+v", comp.LayerAt(1).Color1)
	}
}

func TestFormatFloat(t *testing.T) {
	tests := map[float64]string{
		0.7:          "0.7",
		70:           "70",
		-0.0000001:   "0",
		1.0100000001: "1.01",
		-0.5:         "-0.5",
		0.123456789:  "0.123457",
		1e-7:         "0",
	}
	for in, want := range tests {
		if got := formatFloat(in); got != want {
			t.Errorf("formatFloat(%v) = %q, want %q", in, got, want)
		}
	}
}
