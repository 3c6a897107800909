package layout

// #region imports
import (
	"fmt"
)

// #endregion

// #region validation-error

// ValidationError reports a malformed layout shape. It is raised at
// construction/parse time and never retried.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid layout: %s: %s", e.Field, e.Msg)
}

// #endregion validation-error

// #region defaults

const (
	defaultWallThicknessMM = 100.0
	defaultWallMaterial    = "drywall"
	defaultGridSizeMM      = 50
)

// ApplyDefaults fills the optional fields the generator is allowed to
// omit, mirroring the schema defaults the service is prompted with.
func (l *Layout) ApplyDefaults() {
	if l.GridSizeMM == 0 {
		l.GridSizeMM = defaultGridSizeMM
	}
	for i := range l.InteriorWalls {
		if l.InteriorWalls[i].ThicknessMM == 0 {
			l.InteriorWalls[i].ThicknessMM = defaultWallThicknessMM
		}
		if l.InteriorWalls[i].Material == "" {
			l.InteriorWalls[i].Material = defaultWallMaterial
		}
	}
}

// #endregion defaults

// #region validate

// Validate checks the structural invariants of a layout: closed room
// boundaries, door fractions in [0,1], strictly positive element sizes,
// and positive page dimensions. It does not judge spatial quality; that
// is the constraint engine's job.
func (l *Layout) Validate() error {
	if l.GridSizeMM <= 0 {
		return &ValidationError{Field: "grid_size_mm", Msg: "must be greater than 0"}
	}
	if l.PageDimensionsMM[0] <= 0 || l.PageDimensionsMM[1] <= 0 {
		return &ValidationError{Field: "page_dimensions_mm", Msg: "width and height must be positive"}
	}

	for _, room := range l.Rooms {
		if room.Name == "" {
			return &ValidationError{Field: "rooms", Msg: "room name must not be empty"}
		}
		if room.RoomType == "" {
			return &ValidationError{Field: "rooms", Msg: fmt.Sprintf("room %q has no room_type", room.Name)}
		}
		if len(room.Boundary) < 4 {
			return &ValidationError{
				Field: "rooms",
				Msg:   fmt.Sprintf("room %q boundary needs at least 4 vertices", room.Name),
			}
		}
		first := room.Boundary[0]
		last := room.Boundary[len(room.Boundary)-1]
		if first != last {
			return &ValidationError{
				Field: "rooms",
				Msg:   fmt.Sprintf("room %q boundary must be closed (first and last points must match)", room.Name),
			}
		}
		if room.AreaSqm <= 0 {
			return &ValidationError{
				Field: "rooms",
				Msg:   fmt.Sprintf("room %q area_sqm must be positive", room.Name),
			}
		}
	}

	for _, wall := range l.InteriorWalls {
		if wall.ID == "" {
			return &ValidationError{Field: "interior_walls", Msg: "wall id must not be empty"}
		}
		if wall.ThicknessMM <= 0 {
			return &ValidationError{
				Field: "interior_walls",
				Msg:   fmt.Sprintf("wall %q thickness_mm must be positive", wall.ID),
			}
		}
	}

	for _, door := range l.Doors {
		if door.ID == "" {
			return &ValidationError{Field: "doors", Msg: "door id must not be empty"}
		}
		if door.PositionAlongWall < 0 || door.PositionAlongWall > 1 {
			return &ValidationError{
				Field: "doors",
				Msg:   fmt.Sprintf("door %q position_along_wall must be in [0,1]", door.ID),
			}
		}
		if door.WidthMM <= 0 {
			return &ValidationError{
				Field: "doors",
				Msg:   fmt.Sprintf("door %q width_mm must be positive", door.ID),
			}
		}
		switch door.SwingDirection {
		case SwingLeft, SwingRight, SwingSliding:
		default:
			return &ValidationError{
				Field: "doors",
				Msg:   fmt.Sprintf("door %q has unknown swing_direction %q", door.ID, door.SwingDirection),
			}
		}
		switch door.DoorType {
		case DoorSingle, DoorDouble, DoorSliding:
		default:
			return &ValidationError{
				Field: "doors",
				Msg:   fmt.Sprintf("door %q has unknown door_type %q", door.ID, door.DoorType),
			}
		}
	}

	for _, fixture := range l.Fixtures {
		if fixture.ID == "" {
			return &ValidationError{Field: "fixtures", Msg: "fixture id must not be empty"}
		}
		if fixture.RoomName == "" {
			return &ValidationError{
				Field: "fixtures",
				Msg:   fmt.Sprintf("fixture %q has no room_name", fixture.ID),
			}
		}
		if fixture.WidthMM <= 0 || fixture.DepthMM <= 0 {
			return &ValidationError{
				Field: "fixtures",
				Msg:   fmt.Sprintf("fixture %q width_mm and depth_mm must be positive", fixture.ID),
			}
		}
		if fixture.RotationDeg < 0 || fixture.RotationDeg > 360 {
			return &ValidationError{
				Field: "fixtures",
				Msg:   fmt.Sprintf("fixture %q rotation_deg must be in [0,360]", fixture.ID),
			}
		}
	}

	return nil
}

// #endregion validate

// #region clone

// Clone returns a deep copy. The snapper transforms copies so callers
// can rely on candidates never being mutated in place.
func (l Layout) Clone() Layout {
	out := l

	out.Rooms = make([]Room, len(l.Rooms))
	for i, room := range l.Rooms {
		out.Rooms[i] = room
		out.Rooms[i].Boundary = make([][2]float64, len(room.Boundary))
		copy(out.Rooms[i].Boundary, room.Boundary)
	}

	out.InteriorWalls = append([]InteriorWall(nil), l.InteriorWalls...)
	out.Doors = append([]Door(nil), l.Doors...)
	out.Fixtures = append([]Fixture(nil), l.Fixtures...)

	out.PerimeterWalls = make([]map[string]any, len(l.PerimeterWalls))
	for i, wall := range l.PerimeterWalls {
		copied := make(map[string]any, len(wall))
		for k, v := range wall {
			copied[k] = v
		}
		out.PerimeterWalls[i] = copied
	}

	return out
}

// #endregion clone
