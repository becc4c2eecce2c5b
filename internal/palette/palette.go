// Package palette maps named heraldic colors to RGB and back.
package palette

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed colors.toml
var defaultTable []byte

type paletteFile struct {
	Color []struct {
		Name string     `toml:"name"`
		RGB  [3]float64 `toml:"rgb"`
	} `toml:"color"`
}

// Palette is a bidirectional name <-> RGB table.
type Palette struct {
	names  []string
	byName map[string][3]uint8
}

var (
	defaultOnce    sync.Once
	defaultPalette *Palette
)

// Default returns the built-in palette.
func Default() *Palette {
	defaultOnce.Do(func() {
		p, err := Parse(defaultTable)
		if err != nil {
			panic("palette: embedded table is invalid: " + err.Error())
		}
		defaultPalette = p
	})
	return defaultPalette
}

// Parse reads a palette table in TOML form.
func Parse(data []byte) (*Palette, error) {
	var f paletteFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse palette: %w", err)
	}
	p := &Palette{byName: make(map[string][3]uint8, len(f.Color))}
	for _, c := range f.Color {
		if c.Name == "" {
			return nil, fmt.Errorf("parse palette: color without name")
		}
		if _, dup := p.byName[c.Name]; dup {
			return nil, fmt.Errorf("parse palette: duplicate color %q", c.Name)
		}
		p.names = append(p.names, c.Name)
		p.byName[c.Name] = [3]uint8{to255(c.RGB[0]), to255(c.RGB[1]), to255(c.RGB[2])}
	}
	return p, nil
}

// to255 truncates, matching how the game converts palette floats.
func to255(f float64) uint8 {
	return uint8(max(0, min(255, int(f*255))))
}

// Lookup returns the RGB components for name.
func (p *Palette) Lookup(name string) ([3]uint8, bool) {
	rgb, ok := p.byName[name]
	return rgb, ok
}

// NameFor returns the first palette name whose components equal rgb.
func (p *Palette) NameFor(rgb [3]uint8) (string, bool) {
	for _, n := range p.names {
		if p.byName[n] == rgb {
			return n, true
		}
	}
	return "", false
}

// Names returns the color names in picker order.
func (p *Palette) Names() []string {
	return append([]string(nil), p.names...)
}
