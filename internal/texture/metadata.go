// Package texture answers how many color slots a texture uses.
package texture

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed textures.toml
var defaultTable []byte

const (
	defaultEmblemColors  = 3
	defaultPatternColors = 1
)

// ColorCounter returns the active color-slot count (1-3) of a texture.
type ColorCounter interface {
	ColorCount(filename string) int
}

// Table is a static ColorCounter.
type Table struct {
	Emblems  map[string]int `toml:"emblems"`
	Patterns map[string]int `toml:"patterns"`
}

var (
	defaultOnce sync.Once
	builtin     *Table
)

// Default returns the built-in table.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(defaultTable)
		if err != nil {
			panic("texture: embedded table is invalid: " + err.Error())
		}
		builtin = t
	})
	return builtin
}

// Parse reads a metadata table in TOML form.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse texture metadata: %w", err)
	}
	for name, n := range t.Emblems {
		if n < 1 || n > 3 {
			return nil, fmt.Errorf("parse texture metadata: %s has %d colors", name, n)
		}
	}
	for name, n := range t.Patterns {
		if n < 1 || n > 3 {
			return nil, fmt.Errorf("parse texture metadata: %s has %d colors", name, n)
		}
	}
	return &t, nil
}

// ColorCount looks the texture up among emblems, then patterns. Unknown
// pattern files get one color, anything else three.
func (t *Table) ColorCount(filename string) int {
	if n, ok := t.Emblems[filename]; ok {
		return n
	}
	if n, ok := t.Patterns[filename]; ok {
		return n
	}
	if strings.HasPrefix(filename, "pattern_") {
		return defaultPatternColors
	}
	return defaultEmblemColors
}

// Fixed is a ColorCounter that always answers N.
type Fixed int

func (f Fixed) ColorCount(string) int { return int(f) }
