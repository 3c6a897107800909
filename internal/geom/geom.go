// Package geom implements the 2D primitives the constraint engine is
// built on: buffered wall rectangles, oriented fixture rectangles, door
// swing sectors, polygon intersection areas, and inward erosion.
//
// Polygons are orb geometries; boolean operations go through polygol's
// Martinez clipping. All boolean helpers are tolerant: a degenerate or
// failing operation yields an empty result, never a panic.
package geom

// #region imports
import (
	"math"

	"github.com/engelsjk/polygol"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// #endregion

// #region ring

// Ring builds an orb ring from a boundary vertex list, closing it if
// the input is not already closed.
func Ring(boundary [][2]float64) orb.Ring {
	ring := make(orb.Ring, 0, len(boundary)+1)
	for _, pt := range boundary {
		ring = append(ring, orb.Point{pt[0], pt[1]})
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// Polygon wraps a single ring as an orb polygon.
func Polygon(ring orb.Ring) orb.Polygon {
	if len(ring) == 0 {
		return nil
	}
	return orb.Polygon{ring}
}

// #endregion ring

// #region area

// Area returns the unsigned area of a polygon.
func Area(p orb.Polygon) float64 {
	if len(p) == 0 {
		return 0
	}
	return math.Abs(planar.Area(p))
}

// multiArea sums the unsigned area of every polygon in a multipolygon.
func multiArea(mp orb.MultiPolygon) float64 {
	var total float64
	for _, p := range mp {
		total += math.Abs(planar.Area(p))
	}
	return total
}

// #endregion area

// #region validity

// IsValidRing reports whether a ring forms a non-empty, positive-area
// simple polygon: at least 3 distinct vertices, closed, no
// self-intersection.
func IsValidRing(ring orb.Ring) bool {
	if len(ring) < 4 {
		return false
	}
	if ring[0] != ring[len(ring)-1] {
		return false
	}
	if Area(orb.Polygon{ring}) <= 0 {
		return false
	}
	return isSimple(ring)
}

// isSimple checks for proper crossings between non-adjacent edges of a
// closed ring. Rings here are small (room boundaries), so the pairwise
// scan is fine.
func isSimple(ring orb.Ring) bool {
	n := len(ring) - 1 // edge count on a closed ring
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			adjacent := j == i+1 || (i == 0 && j == n-1)
			if adjacent {
				continue
			}
			if segmentsCross(ring[i], ring[i+1], ring[j], ring[j+1]) {
				return false
			}
		}
	}
	return true
}

// segmentsCross reports a proper intersection between segments ab and cd.
func segmentsCross(a, b, c, d orb.Point) bool {
	o1 := orientation(a, b, c)
	o2 := orientation(a, b, d)
	o3 := orientation(c, d, a)
	o4 := orientation(c, d, b)
	return o1*o2 < 0 && o3*o4 < 0
}

func orientation(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// Covers reports whether p contains pt, counting points exactly on the
// boundary as covered. planar.PolygonContains uses ray casting and can
// reject on-edge points; grid snapping makes exact on-edge centers
// plausible.
func Covers(p orb.Polygon, pt orb.Point) bool {
	if planar.PolygonContains(p, pt) {
		return true
	}
	for _, ring := range p {
		for i := 0; i+1 < len(ring); i++ {
			if onSegment(ring[i], ring[i+1], pt) {
				return true
			}
		}
	}
	return false
}

// onSegment reports whether pt lies on the closed segment ab.
func onSegment(a, b, pt orb.Point) bool {
	if orientation(a, b, pt) != 0 {
		return false
	}
	return pt[0] >= math.Min(a[0], b[0]) && pt[0] <= math.Max(a[0], b[0]) &&
		pt[1] >= math.Min(a[1], b[1]) && pt[1] <= math.Max(a[1], b[1])
}

// #endregion validity

// #region polygol-conversion

func toGeom(p orb.Polygon) polygol.Geom {
	poly := make([][][]float64, 0, len(p))
	for _, ring := range p {
		pts := make([][]float64, 0, len(ring)+1)
		for _, pt := range ring {
			pts = append(pts, []float64{pt[0], pt[1]})
		}
		if len(pts) > 0 {
			first, last := pts[0], pts[len(pts)-1]
			if first[0] != last[0] || first[1] != last[1] {
				pts = append(pts, []float64{first[0], first[1]})
			}
		}
		poly = append(poly, pts)
	}
	return polygol.Geom{poly}
}

func fromGeom(g polygol.Geom) orb.MultiPolygon {
	mp := make(orb.MultiPolygon, 0, len(g))
	for _, poly := range g {
		op := make(orb.Polygon, 0, len(poly))
		for _, ring := range poly {
			or := make(orb.Ring, 0, len(ring))
			for _, pt := range ring {
				if len(pt) < 2 {
					continue
				}
				or = append(or, orb.Point{pt[0], pt[1]})
			}
			op = append(op, or)
		}
		mp = append(mp, op)
	}
	return mp
}

// #endregion polygol-conversion

// #region boolean-ops

// IntersectionArea returns the overlap area of two polygons, or 0 when
// either is empty or the clipping fails.
func IntersectionArea(a, b orb.Polygon) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	out, err := polygol.Intersection(toGeom(a), toGeom(b))
	if err != nil {
		return 0
	}
	return multiArea(fromGeom(out))
}

// ErodedArea returns the area of p after shrinking it inward by d: the
// area of all interior points at least d away from the boundary. A
// result of 0 means the polygon is narrower than 2*d somewhere.
func ErodedArea(p orb.Polygon, d float64) float64 {
	if len(p) == 0 || len(p[0]) < 4 || d <= 0 {
		return 0
	}

	ring := p[0]
	bands := make([]polygol.Geom, 0, 2*len(ring))
	for i := 0; i+1 < len(ring); i++ {
		edge := WallPolygon(ring[i][0], ring[i][1], ring[i+1][0], ring[i+1][1], 2*d)
		if len(edge) > 0 {
			bands = append(bands, toGeom(edge))
		}
		bands = append(bands, toGeom(diskPolygon(ring[i], d)))
	}
	if len(bands) == 0 {
		return Area(p)
	}

	band, err := polygol.Union(bands[0], bands[1:]...)
	if err != nil {
		return 0
	}
	core, err := polygol.Difference(toGeom(p), band)
	if err != nil {
		return 0
	}
	return multiArea(fromGeom(core))
}

// diskPolygon approximates a disk of radius r as a 16-gon. Slightly
// inscribed, matching the under-coverage of segment-approximated round
// buffers.
func diskPolygon(center orb.Point, r float64) orb.Polygon {
	const sides = 16
	ring := make(orb.Ring, 0, sides+1)
	for i := 0; i < sides; i++ {
		angle := 2 * math.Pi * float64(i) / sides
		ring = append(ring, orb.Point{
			center[0] + r*math.Cos(angle),
			center[1] + r*math.Sin(angle),
		})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// #endregion boolean-ops

// #region wall-polygon

// WallPolygon buffers a wall centerline outward by half its thickness
// with flat end caps and mitered joints: for a single segment, an
// oriented rectangle. A zero-length centerline yields nil.
func WallPolygon(x1, y1, x2, y2, thicknessMM float64) orb.Polygon {
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return nil
	}

	half := math.Max(thicknessMM, 1.0) / 2.0
	// Unit normal to the centerline.
	nx := -dy / length * half
	ny := dx / length * half

	ring := orb.Ring{
		{x1 + nx, y1 + ny},
		{x2 + nx, y2 + ny},
		{x2 - nx, y2 - ny},
		{x1 - nx, y1 - ny},
		{x1 + nx, y1 + ny},
	}
	return orb.Polygon{ring}
}

// #endregion wall-polygon

// #region fixture-polygon

// FixturePolygon builds the oriented rectangle of a fixture: an
// axis-aligned (width x depth) box rotated about its own center by
// rotDeg, then translated to (cx, cy).
func FixturePolygon(cx, cy, widthMM, depthMM, rotDeg float64) orb.Polygon {
	hw := widthMM / 2.0
	hd := depthMM / 2.0
	corners := [][2]float64{
		{-hw, -hd},
		{hw, -hd},
		{hw, hd},
		{-hw, hd},
	}

	rad := rotDeg * math.Pi / 180.0
	sin, cos := math.Sin(rad), math.Cos(rad)

	ring := make(orb.Ring, 0, 5)
	for _, c := range corners {
		ring = append(ring, orb.Point{
			cx + c[0]*cos - c[1]*sin,
			cy + c[0]*sin + c[1]*cos,
		})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// #endregion fixture-polygon

// #region swing-sector

// swingSectorSegments is the angular resolution of the arc fan.
const swingSectorSegments = 32

// SwingSector builds the quarter-circle swing sector of a hinged door:
// hinge at the given fraction along the host wall centerline, radius
// equal to the door width, sweeping 90 degrees off the wall direction.
// swingRight sweeps clockwise off the wall, otherwise counterclockwise.
// A zero-length host wall yields nil.
func SwingSector(x1, y1, x2, y2, fraction, radius float64, swingRight bool) orb.Polygon {
	dx := x2 - x1
	dy := y2 - y1
	if math.Hypot(dx, dy) == 0 {
		return nil
	}

	hingeX := x1 + fraction*dx
	hingeY := y1 + fraction*dy
	wallAngle := math.Atan2(dy, dx)
	endAngle := wallAngle + math.Pi/2.0
	if swingRight {
		endAngle = wallAngle - math.Pi/2.0
	}

	ring := make(orb.Ring, 0, swingSectorSegments+3)
	ring = append(ring, orb.Point{hingeX, hingeY})
	for step := 0; step <= swingSectorSegments; step++ {
		t := float64(step) / swingSectorSegments
		angle := wallAngle + (endAngle-wallAngle)*t
		ring = append(ring, orb.Point{
			hingeX + radius*math.Cos(angle),
			hingeY + radius*math.Sin(angle),
		})
	}
	ring = append(ring, orb.Point{hingeX, hingeY})
	return orb.Polygon{ring}
}

// #endregion swing-sector

// #region bound

// Bound returns the bounding box of a polygon as rtree min/max corners.
func Bound(p orb.Polygon) (min, max [2]float64) {
	if len(p) == 0 {
		return
	}
	b := p.Bound()
	return [2]float64{b.Min[0], b.Min[1]}, [2]float64{b.Max[0], b.Max[1]}
}

// #endregion bound
