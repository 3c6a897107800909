package constraint

// #region imports
import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"

	"github.com/archbom/planforge/internal/geom"
	"github.com/archbom/planforge/internal/layout"
)

// #endregion

// #region constants

// corridorRoomTypes are the room types subject to the minimum clear
// width rule.
var corridorRoomTypes = map[string]bool{
	"corridor": true,
	"hallway":  true,
	"passage":  true,
}

// erodeSliverMM2: eroded areas below this are slivers of the
// segment-approximated erosion band, not usable clear width.
const erodeSliverMM2 = 100.0

// perimeterFallbackThicknessMM is applied when pass-through perimeter
// wall data has a missing or non-positive thickness.
const perimeterFallbackThicknessMM = 100.0

// #endregion constants

// #region checker

// Checker validates layouts against the spatial rulebook.
type Checker struct {
	cfg Config
}

// NewChecker creates a checker with the given thresholds.
func NewChecker(cfg Config) *Checker {
	return &Checker{cfg: cfg}
}

// #endregion checker

// #region validate

// Validate runs every check against a snapped layout and returns the
// aggregate verdict. Malformed pass-through perimeter data is coerced
// to safe defaults rather than rejected.
func (c *Checker) Validate(l layout.Layout) Verdict {
	var violations []Violation

	if len(l.Rooms) == 0 {
		violations = append(violations, Violation{
			Type:             RoomNotEnclosed,
			Description:      "Layout contains no generated rooms.",
			Severity:         SeverityError,
			AffectedElements: []string{},
		})
	}

	roomPolys := make([]orb.Polygon, len(l.Rooms))
	roomValid := make([]bool, len(l.Rooms))
	for i, room := range l.Rooms {
		ring := geom.Ring(room.Boundary)
		roomPolys[i] = geom.Polygon(ring)
		roomValid[i] = geom.IsValidRing(ring)

		if !roomValid[i] {
			violations = append(violations, Violation{
				Type:             RoomNotEnclosed,
				Description:      fmt.Sprintf("Room '%s' boundary is not a valid enclosed polygon.", room.Name),
				Severity:         SeverityError,
				AffectedElements: []string{room.Name},
			})
		}
	}

	violations = append(violations, c.checkRoomOverlaps(l, roomPolys, roomValid)...)
	violations = append(violations, c.checkCorridors(l, roomPolys, roomValid)...)
	violations = append(violations, c.checkDoorSwings(l)...)
	violations = append(violations, c.checkPerimeterBudget(l, roomPolys, roomValid)...)
	violations = append(violations, c.checkFixturePlacement(l, roomPolys, roomValid)...)
	violations = append(violations, c.checkFixtureOverlaps(l)...)

	errorCount := 0
	for _, v := range violations {
		if v.Severity == SeverityError {
			errorCount++
		}
	}
	warningCount := len(violations) - errorCount

	return Verdict{
		Passed:     errorCount == 0,
		Violations: violations,
		Summary:    fmt.Sprintf("%d errors, %d warnings", errorCount, warningCount),
	}
}

// #endregion validate

// #region room-overlap

// checkRoomOverlaps finds room pairs whose intersection area exceeds
// the tolerance. Candidate pairs come from a bounding-box tree so large
// layouts avoid the full pairwise scan; only candidates get the exact
// clipping test.
func (c *Checker) checkRoomOverlaps(l layout.Layout, polys []orb.Polygon, valid []bool) []Violation {
	var tr rtree.RTreeG[int]
	for i := range l.Rooms {
		if !valid[i] {
			continue
		}
		min, max := geom.Bound(polys[i])
		tr.Insert(min, max, i)
	}

	type pair struct{ a, b int }
	seen := make(map[pair]bool)
	var pairs []pair
	for i := range l.Rooms {
		if !valid[i] {
			continue
		}
		min, max := geom.Bound(polys[i])
		tr.Search(min, max, func(_, _ [2]float64, j int) bool {
			if j == i {
				return true
			}
			p := pair{i, j}
			if j < i {
				p = pair{j, i}
			}
			if !seen[p] {
				seen[p] = true
				pairs = append(pairs, p)
			}
			return true
		})
	}
	sort.Slice(pairs, func(x, y int) bool {
		if pairs[x].a != pairs[y].a {
			return pairs[x].a < pairs[y].a
		}
		return pairs[x].b < pairs[y].b
	})

	var violations []Violation
	for _, p := range pairs {
		overlapMM2 := geom.IntersectionArea(polys[p.a], polys[p.b])
		if overlapMM2 > c.cfg.RoomOverlapToleranceMM2 {
			roomA := l.Rooms[p.a]
			roomB := l.Rooms[p.b]
			violations = append(violations, Violation{
				Type: RoomOverlap,
				Description: fmt.Sprintf("%s and %s overlap by %.2f sqm.",
					roomA.Name, roomB.Name, overlapMM2/1_000_000.0),
				Severity:         SeverityError,
				AffectedElements: []string{roomA.Name, roomB.Name},
			})
		}
	}
	return violations
}

// #endregion room-overlap

// #region corridor-width

// checkCorridors shrinks each corridor-type room inward by half the
// minimum clear width; an empty result means the corridor pinches below
// the minimum somewhere along its run.
func (c *Checker) checkCorridors(l layout.Layout, polys []orb.Polygon, valid []bool) []Violation {
	var violations []Violation
	for i, room := range l.Rooms {
		if !corridorRoomTypes[strings.ToLower(room.RoomType)] {
			continue
		}
		if !valid[i] {
			continue
		}

		if geom.ErodedArea(polys[i], c.cfg.CorridorHalfWidthMM) <= erodeSliverMM2 {
			violations = append(violations, Violation{
				Type: CorridorTooNarrow,
				Description: fmt.Sprintf("%s is narrower than %.0fmm at one or more points.",
					room.Name, 2*c.cfg.CorridorHalfWidthMM),
				Severity:         SeverityError,
				AffectedElements: []string{room.Name},
			})
		}
	}
	return violations
}

// #endregion corridor-width

// #region door-swings

// checkDoorSwings tests each hinged door's quarter-circle swing sector
// against every other wall's buffered geometry, then against fixture
// rectangles. The first blocking wall wins and skips the fixture pass
// for that door.
func (c *Checker) checkDoorSwings(l layout.Layout) []Violation {
	wallOrder, wallIndex := buildWallIndex(l)

	wallGeoms := make(map[string]orb.Polygon, len(wallIndex))
	for id, wall := range wallIndex {
		wallGeoms[id] = geom.WallPolygon(wall.X1, wall.Y1, wall.X2, wall.Y2, wall.ThicknessMM)
	}

	fixtureGeoms := make([]orb.Polygon, len(l.Fixtures))
	for i, fixture := range l.Fixtures {
		fixtureGeoms[i] = geom.FixturePolygon(
			fixture.CenterX, fixture.CenterY, fixture.WidthMM, fixture.DepthMM, fixture.RotationDeg)
	}

	var violations []Violation
	for _, door := range l.Doors {
		if door.DoorType == layout.DoorSliding || door.SwingDirection == layout.SwingSliding {
			continue
		}

		host, ok := wallIndex[door.WallID]
		if !ok {
			violations = append(violations, Violation{
				Type:             DoorSwingBlocked,
				Description:      fmt.Sprintf("Door '%s' references unknown wall '%s'.", door.ID, door.WallID),
				Severity:         SeverityError,
				AffectedElements: []string{door.ID, door.WallID},
			})
			continue
		}

		sector := geom.SwingSector(
			host.X1, host.Y1, host.X2, host.Y2,
			door.PositionAlongWall, door.WidthMM,
			door.SwingDirection == layout.SwingRight)
		if len(sector) == 0 {
			continue
		}

		blocked := false
		for _, wallID := range wallOrder {
			if wallID == door.WallID {
				continue
			}
			if geom.IntersectionArea(sector, wallGeoms[wallID]) > 0 {
				violations = append(violations, Violation{
					Type:             DoorSwingBlocked,
					Description:      fmt.Sprintf("Door '%s' swing intersects wall '%s'.", door.ID, wallID),
					Severity:         SeverityError,
					AffectedElements: []string{door.ID, wallID},
				})
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}

		for i, fixture := range l.Fixtures {
			if geom.IntersectionArea(sector, fixtureGeoms[i]) > 0 {
				violations = append(violations, Violation{
					Type:             DoorSwingBlocked,
					Description:      fmt.Sprintf("Door '%s' swing intersects fixture '%s'.", door.ID, fixture.ID),
					Severity:         SeverityError,
					AffectedElements: []string{door.ID, fixture.ID},
				})
				break
			}
		}
	}
	return violations
}

// buildWallIndex merges interior walls with pass-through perimeter
// walls into one id-ordered index. Perimeter wall metadata can be
// sparse or malformed in generator output; coerce to safe defaults.
func buildWallIndex(l layout.Layout) ([]string, map[string]layout.InteriorWall) {
	order := make([]string, 0, len(l.InteriorWalls)+len(l.PerimeterWalls))
	index := make(map[string]layout.InteriorWall, cap(order))

	for _, wall := range l.InteriorWalls {
		if _, dup := index[wall.ID]; !dup {
			order = append(order, wall.ID)
		}
		index[wall.ID] = wall
	}

	for i, raw := range l.PerimeterWalls {
		id := fmt.Sprintf("perimeter_%d", i+1)
		if v, ok := raw["id"]; ok {
			id = fmt.Sprint(v)
		}

		thickness := asFloat(raw["thickness_mm"], perimeterFallbackThicknessMM)
		if thickness <= 0 {
			thickness = 1.0
		}

		material := "drywall"
		if v, ok := raw["material"]; ok {
			material = fmt.Sprint(v)
		}

		if _, dup := index[id]; !dup {
			order = append(order, id)
		}
		index[id] = layout.InteriorWall{
			ID:          id,
			X1:          asFloat(raw["x1"], 0),
			Y1:          asFloat(raw["y1"], 0),
			X2:          asFloat(raw["x2"], 0),
			Y2:          asFloat(raw["y2"], 0),
			ThicknessMM: thickness,
			Material:    material,
		}
	}

	return order, index
}

// #endregion door-swings

// #region perimeter-budget

// checkPerimeterBudget compares the summed room area against the
// perimeter bounding-box budget (or the page dimensions when perimeter
// data is degenerate).
func (c *Checker) checkPerimeterBudget(l layout.Layout, polys []orb.Polygon, valid []bool) []Violation {
	var totalRoomMM2 float64
	for i := range l.Rooms {
		if valid[i] {
			totalRoomMM2 += geom.Area(polys[i])
		}
	}

	perimeterMM2 := perimeterBBoxAreaMM2(l)
	if perimeterMM2 <= 0 || totalRoomMM2 <= perimeterMM2*c.cfg.PerimeterAreaFactor {
		return nil
	}

	names := make([]string, len(l.Rooms))
	for i, room := range l.Rooms {
		names[i] = room.Name
	}
	return []Violation{{
		Type: AreaExceedsPerim,
		Description: fmt.Sprintf("Total room area %.2f sqm exceeds perimeter budget %.2f sqm.",
			totalRoomMM2/1_000_000.0, perimeterMM2/1_000_000.0),
		Severity:         SeverityError,
		AffectedElements: names,
	}}
}

// perimeterBBoxAreaMM2 computes the bounding-box area of the perimeter
// walls, falling back to the declared page dimensions.
func perimeterBBoxAreaMM2(l layout.Layout) float64 {
	var xs, ys []float64
	for _, wall := range l.PerimeterWalls {
		x1 := asFloat(wall["x1"], math.NaN())
		y1 := asFloat(wall["y1"], math.NaN())
		x2 := asFloat(wall["x2"], math.NaN())
		y2 := asFloat(wall["y2"], math.NaN())
		if isFinite(x1) && isFinite(y1) && isFinite(x2) && isFinite(y2) {
			xs = append(xs, x1, x2)
			ys = append(ys, y1, y2)
		}
	}

	if len(xs) > 0 && len(ys) > 0 {
		width := maxOf(xs) - minOf(xs)
		height := maxOf(ys) - minOf(ys)
		if width > 0 && height > 0 {
			return width * height
		}
	}

	return l.PageDimensionsMM[0] * l.PageDimensionsMM[1]
}

// #endregion perimeter-budget

// #region fixture-placement

// checkFixturePlacement verifies each fixture's center point is covered
// by its declared room polygon. A miss is a generation quality signal,
// not a blocking defect.
func (c *Checker) checkFixturePlacement(l layout.Layout, polys []orb.Polygon, valid []bool) []Violation {
	roomByName := make(map[string]int, len(l.Rooms))
	for i, room := range l.Rooms {
		if _, ok := roomByName[room.Name]; !ok {
			roomByName[room.Name] = i
		}
	}

	var violations []Violation
	for _, fixture := range l.Fixtures {
		idx, found := roomByName[fixture.RoomName]
		covered := false
		if found && valid[idx] {
			covered = geom.Covers(polys[idx], orb.Point{fixture.CenterX, fixture.CenterY})
		}
		if !covered {
			violations = append(violations, Violation{
				Type: FixtureOutsideRoom,
				Description: fmt.Sprintf("Fixture '%s' center lies outside assigned room '%s'.",
					fixture.ID, fixture.RoomName),
				Severity:         SeverityWarning,
				AffectedElements: []string{fixture.ID, fixture.RoomName},
			})
		}
	}
	return violations
}

// #endregion fixture-placement

// #region fixture-overlap

// checkFixtureOverlaps reports overlapping fixture pairs within the
// same room. Candidates come from a bounding-box tree, same as the
// room-overlap fast path.
func (c *Checker) checkFixtureOverlaps(l layout.Layout) []Violation {
	if len(l.Fixtures) < 2 {
		return nil
	}

	polys := make([]orb.Polygon, len(l.Fixtures))
	var tr rtree.RTreeG[int]
	for i, fixture := range l.Fixtures {
		polys[i] = geom.FixturePolygon(
			fixture.CenterX, fixture.CenterY, fixture.WidthMM, fixture.DepthMM, fixture.RotationDeg)
		min, max := geom.Bound(polys[i])
		tr.Insert(min, max, i)
	}

	type pair struct{ a, b int }
	seen := make(map[pair]bool)
	var pairs []pair
	for i := range l.Fixtures {
		min, max := geom.Bound(polys[i])
		tr.Search(min, max, func(_, _ [2]float64, j int) bool {
			if j == i || l.Fixtures[i].RoomName != l.Fixtures[j].RoomName {
				return true
			}
			p := pair{i, j}
			if j < i {
				p = pair{j, i}
			}
			if !seen[p] {
				seen[p] = true
				pairs = append(pairs, p)
			}
			return true
		})
	}
	sort.Slice(pairs, func(x, y int) bool {
		if pairs[x].a != pairs[y].a {
			return pairs[x].a < pairs[y].a
		}
		return pairs[x].b < pairs[y].b
	})

	var violations []Violation
	for _, p := range pairs {
		if geom.IntersectionArea(polys[p.a], polys[p.b]) > 0 {
			fa := l.Fixtures[p.a]
			fb := l.Fixtures[p.b]
			violations = append(violations, Violation{
				Type: FixtureOverlap,
				Description: fmt.Sprintf("Fixtures '%s' and '%s' overlap in room '%s'.",
					fa.ID, fb.ID, fa.RoomName),
				Severity:         SeverityWarning,
				AffectedElements: []string{fa.ID, fb.ID, fa.RoomName},
			})
		}
	}
	return violations
}

// #endregion fixture-overlap

// #region helpers

func asFloat(v any, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		var parsed float64
		if _, err := fmt.Sscanf(n, "%g", &parsed); err == nil {
			return parsed
		}
		return fallback
	default:
		return fallback
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func minOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// #endregion helpers
