// Package snap quantizes layout coordinates onto a fixed-pitch
// construction grid.
//
// Snapping is performed per coordinate. If two elements share an
// identical endpoint before snapping they stay connected afterwards,
// because the same input coordinate maps to the same grid point.
// Close-but-not-identical endpoints may collapse onto a shared
// coordinate after snapping; that is accepted, not an error.
package snap

// #region imports
import (
	"fmt"
	"math"

	"github.com/archbom/planforge/internal/layout"
)

// #endregion

// #region value

// Value rounds v to the nearest multiple of gridMM using
// round-half-away-from-zero: a value exactly halfway between two grid
// lines rounds outward from zero, never toward even.
func Value(v float64, gridMM int) (float64, error) {
	if gridMM <= 0 {
		return 0, fmt.Errorf("snap: grid_mm must be greater than 0, got %d", gridMM)
	}

	ratio := v / float64(gridMM)
	var snapped float64
	if ratio >= 0 {
		snapped = math.Floor(ratio + 0.5)
	} else {
		snapped = math.Ceil(ratio - 0.5)
	}
	return snapped * float64(gridMM), nil
}

// #endregion value

// #region shoelace

// ShoelaceAreaSqm computes polygon area in square meters from a closed
// boundary in millimeters via the shoelace formula.
func ShoelaceAreaSqm(boundary [][2]float64) float64 {
	var areaTwice float64
	for i := 0; i+1 < len(boundary); i++ {
		x1, y1 := boundary[i][0], boundary[i][1]
		x2, y2 := boundary[i+1][0], boundary[i+1][1]
		areaTwice += x1*y2 - x2*y1
	}
	areaMM2 := math.Abs(areaTwice) / 2.0
	return areaMM2 / 1_000_000.0
}

// #endregion shoelace

// #region layout

// Layout returns a snapped copy of l with every coordinate-like field
// quantized to gridMM and room areas recomputed from the snapped
// boundaries. The input is left unchanged.
func Layout(l layout.Layout, gridMM int) (layout.Layout, error) {
	if gridMM <= 0 {
		return layout.Layout{}, fmt.Errorf("snap: grid_mm must be greater than 0, got %d", gridMM)
	}

	out := l.Clone()

	// gridMM > 0 is checked above, so Value cannot fail below.
	sv := func(v float64) float64 {
		snapped, _ := Value(v, gridMM)
		return snapped
	}

	for i := range out.InteriorWalls {
		wall := &out.InteriorWalls[i]
		wall.X1 = sv(wall.X1)
		wall.Y1 = sv(wall.Y1)
		wall.X2 = sv(wall.X2)
		wall.Y2 = sv(wall.Y2)
	}

	for i := range out.Fixtures {
		fixture := &out.Fixtures[i]
		fixture.CenterX = sv(fixture.CenterX)
		fixture.CenterY = sv(fixture.CenterY)
		fixture.WidthMM = sv(fixture.WidthMM)
		fixture.DepthMM = sv(fixture.DepthMM)
	}

	for i := range out.Rooms {
		room := &out.Rooms[i]
		for j := range room.Boundary {
			room.Boundary[j][0] = sv(room.Boundary[j][0])
			room.Boundary[j][1] = sv(room.Boundary[j][1])
		}
		room.AreaSqm = ShoelaceAreaSqm(room.Boundary)
	}

	for _, wall := range out.PerimeterWalls {
		for _, key := range []string{"x1", "y1", "x2", "y2", "thickness_mm"} {
			if num, ok := asNumber(wall[key]); ok {
				wall[key] = sv(num)
			}
		}
	}

	out.PageDimensionsMM[0] = sv(out.PageDimensionsMM[0])
	out.PageDimensionsMM[1] = sv(out.PageDimensionsMM[1])
	out.GridSizeMM = gridMM

	return out, nil
}

// #endregion layout

// #region helpers

// asNumber accepts the numeric types that survive a JSON round trip of
// loosely typed perimeter-wall data.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// #endregion helpers
