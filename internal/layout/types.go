// Package layout defines the data model shared by the generation
// pipeline: the read-only perimeter graph extracted upstream, the
// generated layout candidates, and per-element structural validation.
package layout

// #region perimeter-graph

// WallSegment is one structural wall extracted from the source document.
// Coordinates are in PDF points.
type WallSegment struct {
	X1        float64 `json:"x1"`
	Y1        float64 `json:"y1"`
	X2        float64 `json:"x2"`
	Y2        float64 `json:"y2"`
	LengthPts float64 `json:"length_pts"`
	Thickness float64 `json:"thickness"`
}

// GraphRoom is a room recognized by the upstream extraction stage.
type GraphRoom struct {
	Name          string   `json:"name"`
	BoundaryWalls []int    `json:"boundary_walls"`
	AreaSqPts     float64  `json:"area_sq_pts"`
	AreaSqFt      *float64 `json:"area_sq_ft,omitempty"`
}

// PerimeterGraph is the fixed structural geometry a layout must fit
// inside. It is produced upstream and never mutated by this pipeline.
type PerimeterGraph struct {
	Walls          []WallSegment `json:"walls"`
	Rooms          []GraphRoom   `json:"rooms"`
	ScaleFactor    *float64      `json:"scale_factor,omitempty"`
	PageDimensions [2]float64    `json:"page_dimensions"`
}

// #endregion perimeter-graph

// #region layout-elements

// SwingDirection is how a door opens.
type SwingDirection string

const (
	SwingLeft    SwingDirection = "left"
	SwingRight   SwingDirection = "right"
	SwingSliding SwingDirection = "sliding"
)

// DoorType tags the physical door construction.
type DoorType string

const (
	DoorSingle  DoorType = "single"
	DoorDouble  DoorType = "double"
	DoorSliding DoorType = "sliding"
)

// InteriorWall is a generated partition in real-world millimeters.
type InteriorWall struct {
	ID          string  `json:"id"`
	X1          float64 `json:"x1"`
	Y1          float64 `json:"y1"`
	X2          float64 `json:"x2"`
	Y2          float64 `json:"y2"`
	ThicknessMM float64 `json:"thickness_mm"`
	Material    string  `json:"material"`
}

// Door is an opening anchored on an interior or perimeter wall.
// PositionAlongWall is a fraction of the host wall's length in [0,1].
type Door struct {
	ID                string         `json:"id"`
	WallID            string         `json:"wall_id"`
	PositionAlongWall float64        `json:"position_along_wall"`
	WidthMM           float64        `json:"width_mm"`
	SwingDirection    SwingDirection `json:"swing_direction"`
	DoorType          DoorType       `json:"door_type"`
}

// Fixture is a furniture or equipment element owned by a room.
type Fixture struct {
	ID          string  `json:"id"`
	RoomName    string  `json:"room_name"`
	FixtureType string  `json:"fixture_type"`
	CenterX     float64 `json:"center_x"`
	CenterY     float64 `json:"center_y"`
	WidthMM     float64 `json:"width_mm"`
	DepthMM     float64 `json:"depth_mm"`
	RotationDeg float64 `json:"rotation_deg"`
}

// Room is a generated room polygon with metadata. Boundary is a closed
// ring: the first and last vertex must be identical.
type Room struct {
	Name     string       `json:"name"`
	RoomType string       `json:"room_type"`
	Boundary [][2]float64 `json:"boundary"`
	AreaSqm  float64      `json:"area_sqm"`
}

// #endregion layout-elements

// #region layout

// Layout is one complete candidate produced by a generator call.
// PerimeterWalls are pass-through data from the perimeter graph and can
// be sparse or malformed, so they stay loosely typed.
type Layout struct {
	Rooms            []Room           `json:"rooms"`
	InteriorWalls    []InteriorWall   `json:"interior_walls"`
	Doors            []Door           `json:"doors"`
	Fixtures         []Fixture        `json:"fixtures"`
	GridSizeMM       int              `json:"grid_size_mm"`
	Prompt           string           `json:"prompt"`
	PerimeterWalls   []map[string]any `json:"perimeter_walls"`
	PageDimensionsMM [2]float64       `json:"page_dimensions_mm"`
}

// #endregion layout
