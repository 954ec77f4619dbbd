package radar

import (
	"fmt"
	"image/color"
	"regexp"
	"sort"
	"strings"

	"github.com/aclements/go-gg/palette/brewer"
)

// DefaultPaletteName is the ColorBrewer palette used when none is configured.
const DefaultPaletteName = "Set1"

// set1 mirrors ColorBrewer Set1 (9 levels); it backs the lookup when the
// brewer tables cannot supply a palette.
var set1 = Palette{
	"#e41a1c", "#377eb8", "#4daf4a", "#984ea3", "#ff7f00",
	"#ffff33", "#a65628", "#f781bf", "#999999",
}

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Palette is an ordered, finite list of "#rrggbb" colors.
type Palette []string

// ColorAssignment maps a series name to its color.
type ColorAssignment map[string]string

// PaletteByName returns the widest variant of the named ColorBrewer palette
// ("Set1", "Dark2", "Paired", ...). Unknown names fall back to Set1.
func PaletteByName(name string) Palette {
	if p := lookupBrewer(name); len(p) > 0 {
		return p
	}
	if p := lookupBrewer(DefaultPaletteName); len(p) > 0 {
		return p
	}
	return append(Palette(nil), set1...)
}

// PaletteNames lists the known palette names in sorted order.
func PaletteNames() []string {
	names := make([]string, 0, len(brewer.ByName))
	for name := range brewer.ByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KnownPalette reports whether name is a ColorBrewer palette.
func KnownPalette(name string) bool {
	_, ok := brewer.ByName[name]
	return ok
}

func lookupBrewer(name string) Palette {
	levels, ok := brewer.ByName[name]
	if !ok {
		return nil
	}
	var out Palette
	widest := 0
	for n, colors := range levels {
		if n <= widest {
			continue
		}
		widest = n
		out = out[:0]
		for _, c := range colors {
			out = append(out, HexColor(c))
		}
	}
	return out
}

// HexColor formats c as "#rrggbb", dropping alpha.
func HexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// ValidColor reports whether s is a "#rrggbb" color.
func ValidColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

// AssignColors returns a copy of existing extended with a color for every
// name it does not yet hold. New names take palette colors in first-seen
// order, continuing the cycle from the size of existing. Names already in
// existing keep their color, so a series keeps its color across reparses.
func AssignColors(names []string, existing ColorAssignment, palette Palette) ColorAssignment {
	if len(palette) == 0 {
		palette = set1
	}

	out := make(ColorAssignment, len(existing)+len(names))
	for name, c := range existing {
		out[name] = c
	}

	next := len(existing)
	for _, name := range names {
		if _, ok := out[name]; ok {
			continue
		}
		out[name] = palette[next%len(palette)]
		next++
	}
	return out
}

// MergeOverrides returns the effective colors: assignment with every
// override laid on top. Neither input is modified.
func MergeOverrides(assignment ColorAssignment, overrides map[string]string) ColorAssignment {
	out := make(ColorAssignment, len(assignment))
	for name, c := range assignment {
		out[name] = c
	}
	for name, c := range overrides {
		out[name] = strings.ToLower(c)
	}
	return out
}
