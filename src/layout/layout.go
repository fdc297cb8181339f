// Package layout describes where each field of the inventory detail panel is
// drawn at a reference resolution, and maps that description onto the real
// window.
package layout

import (
	"fmt"
	"math"
	"strings"

	"artifact-scanner/src/geometry"
)

// Region identifiers. The order of Dispatch is the order recognition results
// are joined in.
const (
	ItemName      = "item-name"
	MainStatName  = "main-stat-name"
	MainStatValue = "main-stat-value"
	Level         = "level"
	Rarity        = "rarity"
	SubStat1      = "sub-stat-1"
	SubStat2      = "sub-stat-2"
	SubStat3      = "sub-stat-3"
	SubStat4      = "sub-stat-4"
	Equip         = "equip"

	// ItemCounter is read after every navigation click to detect a UI that
	// does not advance.
	ItemCounter = "item-counter"
	// InventoryCount holds the "N/2100" header of the inventory page.
	InventoryCount = "inventory-count"
)

// Pixel sample identifiers.
const (
	SampleRarityColor = "rarity-color"
	SampleLockColor   = "lock-color"
	SampleScrollFlag  = "scroll-flag"
)

// Dispatch lists the per-item regions in join order.
var Dispatch = []string{
	ItemName, MainStatName, MainStatValue, Level, Rarity,
	SubStat1, SubStat2, SubStat3, SubStat4, Equip,
}

// Required lists the regions the parser cannot do without.
var Required = []string{ItemName, MainStatName, MainStatValue, Rarity}

// SubStats lists the secondary attribute regions in display order.
var SubStats = []string{SubStat1, SubStat2, SubStat3, SubStat4}

// Region is one rectangle of the detail panel.
type Region struct {
	ID       string
	Rect     geometry.Rect
	Required bool
}

// Grid is the inventory item grid.
type Grid struct {
	Origin            geometry.Point
	Cell              geometry.Size
	Gap               geometry.Size
	Rows              int
	Cols              int
	ScrollTicksPerRow int
}

// CellCenter returns the click point for a visible cell: horizontally
// centred, a quarter of the way down so the level badge is not hit.
func (g Grid) CellCenter(row, col int) geometry.Point {
	x := g.Origin.X + (g.Gap.Width+g.Cell.Width)*col + g.Cell.Width/2
	y := g.Origin.Y + (g.Gap.Height+g.Cell.Height)*row + g.Cell.Height/4
	return geometry.Pt(x, y)
}

// Layout is immutable once built. Accessors return copies.
type Layout struct {
	name      string
	reference geometry.Size
	window    geometry.Rect
	regions   []Region
	aux       []Region
	grid      Grid
	samples   map[string]geometry.Point
}

// New validates and copies its inputs.
func New(name string, reference geometry.Size, regions, aux []Region, grid Grid, samples map[string]geometry.Point) (Layout, error) {
	if reference.Empty() {
		return Layout{}, fmt.Errorf("layout %s: empty reference size", name)
	}
	bounds := geometry.R(0, 0, reference.Width, reference.Height)
	seen := make(map[string]bool, len(regions)+len(aux))
	for _, set := range [][]Region{regions, aux} {
		for _, r := range set {
			if r.ID == "" {
				return Layout{}, fmt.Errorf("layout %s: region without id", name)
			}
			if seen[r.ID] {
				return Layout{}, fmt.Errorf("layout %s: duplicate region %q", name, r.ID)
			}
			seen[r.ID] = true
			if !bounds.ContainsRect(r.Rect) {
				return Layout{}, fmt.Errorf("layout %s: region %q %v outside %v", name, r.ID, r.Rect, reference)
			}
		}
	}
	if grid.Rows <= 0 || grid.Cols <= 0 {
		return Layout{}, fmt.Errorf("layout %s: grid must have rows and columns", name)
	}

	l := Layout{
		name:      name,
		reference: reference,
		window:    bounds,
		regions:   append([]Region(nil), regions...),
		aux:       append([]Region(nil), aux...),
		grid:      grid,
		samples:   make(map[string]geometry.Point, len(samples)),
	}
	for k, v := range samples {
		l.samples[k] = v
	}
	return l, nil
}

func (l Layout) Name() string { return l.name }

func (l Layout) Reference() geometry.Size { return l.reference }

// Window is the screen rectangle this layout was resolved against. For an
// unresolved layout it is the reference bounds.
func (l Layout) Window() geometry.Rect { return l.window }

// Regions returns the per-item regions in dispatch order.
func (l Layout) Regions() []Region { return append([]Region(nil), l.regions...) }

func (l Layout) Grid() Grid { return l.grid }

// Lookup finds a dispatched or auxiliary region.
func (l Layout) Lookup(id string) (Region, bool) {
	for _, set := range [][]Region{l.regions, l.aux} {
		for _, r := range set {
			if r.ID == id {
				return r, true
			}
		}
	}
	return Region{}, false
}

func (l Layout) Sample(id string) (geometry.Point, bool) {
	p, ok := l.samples[id]
	return p, ok
}

// MissingRegionError lists identifiers a consumer needs but the layout lacks.
type MissingRegionError struct {
	Layout string
	IDs    []string
}

func (e *MissingRegionError) Error() string {
	return fmt.Sprintf("layout %s: missing regions %s", e.Layout, strings.Join(e.IDs, ", "))
}

// Validate checks that every id in required is present with a non-empty rect.
func (l Layout) Validate(required []string) error {
	var missing []string
	for _, id := range required {
		r, ok := l.Lookup(id)
		if !ok || r.Rect.Empty() {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &MissingRegionError{Layout: l.name, IDs: missing}
	}
	return nil
}

// UnsupportedResolutionError is returned for windows outside the 16:9 family.
type UnsupportedResolutionError struct {
	Size geometry.Size
}

func (e *UnsupportedResolutionError) Error() string {
	return fmt.Sprintf("unsupported resolution %v: supported are 2560x1440, 1920x1080, 1600x900 and other 16:9 sizes", e.Size)
}

const aspectTolerance = 0.01

// Resolve scales the layout onto window (screen coordinates) and clamps every
// region inside it.
func (l Layout) Resolve(window geometry.Rect) (Layout, error) {
	if window.Empty() {
		return Layout{}, &UnsupportedResolutionError{Size: window.Size()}
	}
	refAspect := float64(l.reference.Width) / float64(l.reference.Height)
	aspect := float64(window.Width) / float64(window.Height)
	if math.Abs(aspect-refAspect)/refAspect > aspectTolerance {
		return Layout{}, &UnsupportedResolutionError{Size: window.Size()}
	}

	f := float64(window.Width) / float64(l.reference.Width)
	place := func(r geometry.Rect) geometry.Rect {
		return r.Scale(f).Translate(window.X, window.Y).Clamp(window)
	}
	point := func(p geometry.Point) geometry.Point {
		return geometry.Pt(int(math.Round(float64(p.X)*f))+window.X, int(math.Round(float64(p.Y)*f))+window.Y)
	}
	size := func(s geometry.Size) geometry.Size {
		return geometry.Sz(int(math.Round(float64(s.Width)*f)), int(math.Round(float64(s.Height)*f)))
	}

	out := Layout{
		name:      l.name,
		reference: l.reference,
		window:    window,
		regions:   make([]Region, len(l.regions)),
		aux:       make([]Region, len(l.aux)),
		samples:   make(map[string]geometry.Point, len(l.samples)),
	}
	for i, r := range l.regions {
		out.regions[i] = Region{ID: r.ID, Rect: place(r.Rect), Required: r.Required}
	}
	for i, r := range l.aux {
		out.aux[i] = Region{ID: r.ID, Rect: place(r.Rect), Required: r.Required}
	}
	for k, p := range l.samples {
		out.samples[k] = point(p)
	}
	out.grid = Grid{
		Origin:            point(l.grid.Origin),
		Cell:              size(l.grid.Cell),
		Gap:               size(l.grid.Gap),
		Rows:              l.grid.Rows,
		Cols:              l.grid.Cols,
		ScrollTicksPerRow: l.grid.ScrollTicksPerRow,
	}
	return out, nil
}
