package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/inamate/heraldry/internal/document"
	"github.com/inamate/heraldry/internal/engine"
	"github.com/inamate/heraldry/internal/symmetry"
)

// Root keys written by Serialize and SerializeLayers.
const (
	RootComposition = "coa_export"
	RootLayers      = "layers_export"
)

// Serialize writes the whole composition. Instance depth is derived from
// stack position: the front layer gets 0 and is omitted.
func (c *Codec) Serialize(comp *engine.Composition) string {
	var w writer
	w.open(0, RootComposition)
	w.line(1, "pattern = %s", quote(comp.Pattern()))
	for slot := 1; slot <= 3; slot++ {
		col, _ := comp.BaseColor(slot)
		w.line(1, "color%d = %s", slot, c.formatColor(col))
	}
	n := comp.LayerCount()
	for i := 0; i < n; i++ {
		c.writeLayer(&w, comp.LayerAt(i), float64(n-1-i), false)
	}
	w.close(0)
	return w.String()
}

// SerializeLayers writes the listed layers as a loose fragment in stack
// order, with depths relative to the selection. With stripContainer the
// container metadata is left out.
func (c *Codec) SerializeLayers(comp *engine.Composition, uuids []string, stripContainer bool) (string, error) {
	layers := make([]*document.Layer, 0, len(uuids))
	for i := 0; i < comp.LayerCount(); i++ {
		l := comp.LayerAt(i)
		for _, u := range uuids {
			if l.UUID == u {
				layers = append(layers, l)
				break
			}
		}
	}
	if len(layers) != len(uuids) {
		for _, u := range uuids {
			if _, err := comp.Layer(u); err != nil {
				return "", err
			}
		}
		return "", fmt.Errorf("%w: layer listed twice", engine.ErrInvalid)
	}

	var w writer
	w.open(0, RootLayers)
	for i, l := range layers {
		c.writeLayer(&w, l, float64(len(layers)-1-i), stripContainer)
	}
	w.close(0)
	return w.String(), nil
}

func (c *Codec) writeLayer(w *writer, l *document.Layer, depth float64, stripContainer bool) {
	w.open(1, "colored_emblem")
	if !stripContainer {
		if l.ContainerUUID != "" {
			w.meta(2, metaContainerUUID, quote(l.ContainerUUID))
		}
		if l.ContainerSymmetry != "" {
			w.meta(2, metaContainerSymmetry, quote(l.ContainerSymmetry))
		}
	}
	if l.Name != "" {
		w.meta(2, metaName, quote(l.Name))
	}
	if !l.Visible {
		w.meta(2, metaVisible, "no")
	}
	if l.Symmetry.Active() {
		w.meta(2, metaSymmetryType, quote(string(l.Symmetry.Type)))
		w.meta(2, metaSymmetryProperties, "{ "+formatList(l.Symmetry.Properties)+" }")
	}

	w.line(2, "texture = %s", quote(l.Filename))
	for slot, col := range l.ActiveColors() {
		w.line(2, "color%d = %s", slot+1, c.formatColor(col))
	}
	if len(l.Mask) > 0 {
		parts := make([]string, len(l.Mask))
		for i, m := range l.Mask {
			parts[i] = strconv.Itoa(m)
		}
		w.line(2, "mask = { %s }", strings.Join(parts, " "))
	}

	for _, inst := range symmetry.Expand(l.Symmetry, l.Instances) {
		w.open(2, "instance")
		scale := inst.WireScale()
		w.line(3, "position = { %s %s }", formatFloat(inst.Pos.X), formatFloat(inst.Pos.Y))
		w.line(3, "scale = { %s %s }", formatFloat(scale.X), formatFloat(scale.Y))
		if inst.Rotation != 0 {
			w.line(3, "rotation = %s", formatFloat(inst.Rotation))
		}
		if depth != 0 {
			w.line(3, "depth = %s", formatFloat(depth))
		}
		if inst.Mirror {
			w.meta(3, metaIsMirror, "yes")
		}
		w.close(2)
	}
	w.close(1)
}

// formatColor writes a palette name, or an rgb literal for custom colors
// and when every color is forced to rgb.
func (c *Codec) formatColor(col document.Color) string {
	if col.Name != "" && !c.forceRGB {
		return col.Name
	}
	f := col.Float3()
	return fmt.Sprintf("rgb { %d %d %d }", to255(f[0]), to255(f[1]), to255(f[2]))
}

func to255(f float64) int {
	return int(math.Round(f * 255))
}

// formatFloat rounds to six decimals and drops trailing zeros and the
// sign of zero.
func formatFloat(f float64) string {
	f = math.Round(f*1e6) / 1e6
	if f == 0 {
		f = 0
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatList(fs []float64) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = formatFloat(f)
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `'`) + `"`
}

type writer struct {
	strings.Builder
}

func (w *writer) line(depth int, format string, args ...any) {
	w.WriteString(strings.Repeat("\t", depth))
	fmt.Fprintf(w, format, args...)
	w.WriteByte('\n')
}

func (w *writer) open(depth int, key string) { w.line(depth, "%s = {", key) }
func (w *writer) close(depth int)            { w.line(depth, "}") }

func (w *writer) meta(depth int, key, value string) {
	w.line(depth, "%s%s=%s", MetaMarker, key, value)
}
