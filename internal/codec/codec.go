// Package codec reads and writes the brace-delimited coat of arms text
// format.
//
// A full composition looks like
//
//	coa_export = {
//		pattern = "pattern_solid.dds"
//		color1 = red
//		colored_emblem = {
//			texture = "ce_fleur.dds"
//			instance = { position = { 0.5 0.5 } scale = { 0.7 0.7 } }
//		}
//	}
//
// A loose fragment carries colored_emblem blocks without a pattern and is
// pasted on top of an existing composition. Data the format has no field
// for is written on lines prefixed with MetaMarker.
package codec

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/inamate/heraldry/internal/document"
	"github.com/inamate/heraldry/internal/engine"
	"github.com/inamate/heraldry/internal/palette"
	"github.com/inamate/heraldry/internal/texture"
)

// Codec converts between text and compositions. The zero value is not
// usable; call New.
type Codec struct {
	palette  *palette.Palette
	textures texture.ColorCounter
	forceRGB bool
	logger   *slog.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithPalette sets the named color table.
func WithPalette(p *palette.Palette) Option {
	return func(c *Codec) { c.palette = p }
}

// WithTextures sets the source of per-texture color counts.
func WithTextures(t texture.ColorCounter) Option {
	return func(c *Codec) { c.textures = t }
}

// WithForceRGB writes every color as an rgb literal, even palette colors.
func WithForceRGB(force bool) Option {
	return func(c *Codec) { c.forceRGB = force }
}

// WithLogger sets the logger used for recoverable oddities in the input.
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) { c.logger = l }
}

// New returns a codec using the built-in palette and texture table.
func New(opts ...Option) *Codec {
	c := &Codec{
		palette:  palette.Default(),
		textures: texture.Default(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ErrNotComposition is returned by Decode for text that holds neither a
// pattern nor any colored_emblem block.
var ErrNotComposition = errors.New("no coat of arms in text")

// Parse loads text into comp. A full composition replaces pattern, base
// colors and every layer; a loose fragment is pasted on top. Text that
// holds no coat of arms is ignored. It returns the UUIDs of the layers
// created.
func (c *Codec) Parse(comp *engine.Composition, text string) ([]string, error) {
	d, err := c.Decode(text)
	if errors.Is(err, ErrNotComposition) {
		c.logger.Debug("ignoring text without a coat of arms", "bytes", len(text))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c.Apply(comp, d)
}

// Apply loads a decoded composition into comp: a full composition
// replaces all state, a loose fragment is pasted on top.
func (c *Codec) Apply(comp *engine.Composition, d *Decoded) ([]string, error) {
	if !d.Full {
		return c.paste(comp, d.Layers, "")
	}

	snap := engine.Snapshot{Pattern: d.Pattern, Colors: d.Colors}
	for _, l := range d.Layers {
		snap.Layers = append(snap.Layers, *l)
	}
	if err := comp.SetSnapshot(snap); err != nil {
		return nil, fmt.Errorf("load coat of arms: %w", err)
	}
	c.repair(comp)
	return comp.UUIDs(), nil
}

// ParseLayers pastes only the layers found in text directly in front of
// target, or on top when target is empty. Existing layers are kept and
// every pasted layer gets a fresh UUID.
func (c *Codec) ParseLayers(comp *engine.Composition, text, target string) ([]string, error) {
	d, err := c.Decode(text)
	if errors.Is(err, ErrNotComposition) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c.paste(comp, d.Layers, target)
}

func (c *Codec) paste(comp *engine.Composition, layers []*document.Layer, target string) ([]string, error) {
	if len(layers) == 0 {
		return nil, nil
	}
	ids, err := comp.InsertLayers(layers, target)
	if err != nil {
		return ids, fmt.Errorf("paste layers: %w", err)
	}
	c.repair(comp)
	return ids, nil
}

func (c *Codec) repair(comp *engine.Composition) {
	for _, s := range comp.ValidateContiguity() {
		c.logger.Info("split fragmented container",
			"container", s.OldContainer, "new", s.NewContainer, "layers", s.LayerCount)
	}
}
