package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/inamate/heraldry/internal/codec"
	"github.com/inamate/heraldry/internal/engine"
)

// execute runs the CLI with stdin and returns stdout and the log output.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var logs, out bytes.Buffer
	c := New(&logs, LogInfo, nil)
	root := c.RootCommand()
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), logs.String(), err
}

func reparse(t *testing.T, text string) *engine.Composition {
	t.Helper()
	comp := engine.New()
	if _, err := codec.New().Parse(comp, text); err != nil {
		t.Fatalf("output does not parse: %v\n%s", err, text)
	}
	return comp
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo, nil).RootCommand()
	want := []string{"normalize", "inspect", "rotate", "align", "flip", "merge", "split", "group", "repair", "fingerprint", "apply", "sample"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	out, _, err := execute(t, codec.Sample, "normalize")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	again, _, err := execute(t, out, "normalize")
	if err != nil {
		t.Fatal(err)
	}
	if out != again {
		t.Errorf("normalize is not stable:\n%s\n---\n%s", out, again)
	}
	if reparse(t, out).LayerCount() != 3 {
		t.Errorf("normalized sample lost layers")
	}
}

func TestSample(t *testing.T) {
	out, _, err := execute(t, "", "sample")
	if err != nil {
		t.Fatal(err)
	}
	if out != codec.Sample {
		t.Error("sample output differs from the embedded sample")
	}
}

func TestInspectFormats(t *testing.T) {
	out, _, err := execute(t, codec.Sample, "inspect", "--format", "json")
	if err != nil {
		t.Fatalf("inspect json: %v", err)
	}
	var r Report
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if r.Pattern != "pattern_checkers_01.dds" || len(r.Layers) != 3 || len(r.Containers) != 1 {
		t.Errorf("report = %+v", r)
	}
	if r.Layers[1].Colors[0] != "rgb(200,160,40)" {
		t.Errorf("custom color reported as %q", r.Layers[1].Colors[0])
	}
	if r.Layers[0].Symmetry != "rotational" || r.Layers[2].Name != "Lion" {
		t.Errorf("layer metadata lost: %+v", r.Layers)
	}

	out, _, err = execute(t, codec.Sample, "inspect", "-f", "yaml")
	if err != nil {
		t.Fatalf("inspect yaml: %v", err)
	}
	var y Report
	if err := yaml.Unmarshal([]byte(out), &y); err != nil {
		t.Fatalf("invalid yaml: %v\n%s", err, out)
	}
	if y.Fingerprint != r.Fingerprint || len(y.Layers) != 3 {
		t.Errorf("yaml report differs from json report")
	}

	out, _, err = execute(t, codec.Sample, "inspect")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "ce_lion_passant_guardant.dds") || !strings.Contains(out, "TEXTURE") {
		t.Errorf("text report:\n%s", out)
	}

	if _, _, err := execute(t, codec.Sample, "inspect", "-f", "xml"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestFingerprintStable(t *testing.T) {
	a, _, err := execute(t, codec.Sample, "fingerprint")
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := execute(t, codec.Sample, "fingerprint")
	if err != nil {
		t.Fatal(err)
	}
	if a != b || len(strings.TrimSpace(a)) != 64 {
		t.Errorf("fingerprints %q and %q", a, b)
	}
	c, _, err := execute(t, codec.Sample, "flip", "--index", "2", "--x")
	if err != nil {
		t.Fatal(err)
	}
	d, _, err := execute(t, c, "fingerprint")
	if err != nil {
		t.Fatal(err)
	}
	if d == a {
		t.Error("flip did not change the fingerprint")
	}
}

func TestFlipIndex(t *testing.T) {
	out, _, err := execute(t, codec.Sample, "flip", "-i", "2", "--x")
	if err != nil {
		t.Fatal(err)
	}
	lion := reparse(t, out).LayerAt(2)
	if lion.Instances[0].FlipX {
		t.Error("lion still flipped after a second horizontal flip")
	}
}

func TestSelectionErrors(t *testing.T) {
	tests := [][]string{
		{"flip", "--x"},
		{"flip", "-i", "9", "--x"},
		{"flip", "-i", "1,1", "--x"},
		{"flip", "-i", "1"},
		{"rotate", "-i", "0", "-d", "10", "-m", "wobble"},
	}
	for _, args := range tests {
		if _, _, err := execute(t, codec.Sample, args...); err == nil {
			t.Errorf("%v succeeded", args)
		}
	}
}

func TestGroupAndMerge(t *testing.T) {
	out, _, err := execute(t, codec.Sample, "group", "--ungroup", "--all")
	if err != nil {
		t.Fatal(err)
	}
	if len(reparse(t, out).Containers()) != 0 {
		t.Error("ungroup left containers")
	}

	out, _, err = execute(t, out, "group", "-i", "0,2", "-n", "Pair")
	if err != nil {
		t.Fatal(err)
	}
	comp := reparse(t, out)
	if got := comp.Containers(); len(got) != 1 || !strings.HasSuffix(got[0], "_Pair") {
		t.Errorf("containers = %v", got)
	}

	out, logs, err := execute(t, codec.Sample, "merge", "-i", "0,1", "--force")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !strings.Contains(logs, "WARN") {
		t.Errorf("texture difference not reported:\n%s", logs)
	}
	if n := reparse(t, out).LayerCount(); n != 2 {
		t.Errorf("layers after merge = %d, want 2", n)
	}
}

func TestApplyWithIndices(t *testing.T) {
	dir := t.TempDir()
	ops := filepath.Join(dir, "ops.json")
	results := filepath.Join(dir, "results.json")
	if err := os.WriteFile(ops, []byte(`[
		{"type": "layer.rename", "layers": ["1"], "name": "Roundel"},
		{"type": "layer.move", "layers": ["2"], "placement": "bottom"}
	]`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, logs, err := execute(t, codec.Sample, "apply", ops, "--stats", "--results", results)
	if err != nil {
		t.Fatalf("apply: %v\n%s", err, logs)
	}
	comp := reparse(t, out)
	if comp.LayerAt(0).Name != "Lion" || comp.LayerAt(2).Name != "Roundel" {
		t.Errorf("unexpected stack: %q %q %q", comp.LayerAt(0).Name, comp.LayerAt(1).Name, comp.LayerAt(2).Name)
	}
	if !strings.Contains(logs, "coa_mutations_total") {
		t.Errorf("stats not logged:\n%s", logs)
	}
	data, err := os.ReadFile(results)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"seq": 2`)) {
		t.Errorf("results:\n%s", data)
	}
}

func TestApplyStopsOnError(t *testing.T) {
	ops := filepath.Join(t.TempDir(), "ops.json")
	if err := os.WriteFile(ops, []byte(`{"type": "layer.split", "layers": ["0"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, codec.Sample, "apply", ops)
	if err == nil {
		t.Fatal("split of a single-instance layer succeeded")
	}
	if out != "" {
		t.Errorf("output written after a failure: %q", out)
	}

	if err := os.WriteFile(ops, []byte(`{"type": "layer.remove", "layers": ["7"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := execute(t, codec.Sample, "apply", ops); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("err = %v", err)
	}
}
