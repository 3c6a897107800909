package layout

import (
	"errors"
	"strings"
	"testing"
)

func validLayout() Layout {
	return Layout{
		Rooms: []Room{
			{Name: "Operatory 1", RoomType: "operatory",
				Boundary: [][2]float64{{0, 0}, {3000, 0}, {3000, 3200}, {0, 3200}, {0, 0}},
				AreaSqm:  9.6},
		},
		InteriorWalls: []InteriorWall{
			{ID: "iw_1", X1: 3000, Y1: 0, X2: 3000, Y2: 6000, ThicknessMM: 100, Material: "drywall"},
		},
		Doors: []Door{
			{ID: "d_1", WallID: "iw_1", PositionAlongWall: 0.5, WidthMM: 900,
				SwingDirection: SwingLeft, DoorType: DoorSingle},
		},
		Fixtures: []Fixture{
			{ID: "f_1", RoomName: "Operatory 1", FixtureType: "dental_chair",
				CenterX: 1500, CenterY: 1600, WidthMM: 1000, DepthMM: 2200, RotationDeg: 90},
		},
		GridSizeMM:       50,
		PageDimensionsMM: [2]float64{10000, 8000},
	}
}

func TestValidate_OK(t *testing.T) {
	l := validLayout()
	if err := l.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Layout)
		field  string
	}{
		{"zero grid", func(l *Layout) { l.GridSizeMM = 0 }, "grid_size_mm"},
		{"zero page width", func(l *Layout) { l.PageDimensionsMM[0] = 0 }, "page_dimensions_mm"},
		{"unnamed room", func(l *Layout) { l.Rooms[0].Name = "" }, "rooms"},
		{"untyped room", func(l *Layout) { l.Rooms[0].RoomType = "" }, "rooms"},
		{"short boundary", func(l *Layout) { l.Rooms[0].Boundary = l.Rooms[0].Boundary[:3] }, "rooms"},
		{"open boundary", func(l *Layout) { l.Rooms[0].Boundary[4] = [2]float64{1, 1} }, "rooms"},
		{"non-positive area", func(l *Layout) { l.Rooms[0].AreaSqm = 0 }, "rooms"},
		{"unnamed wall", func(l *Layout) { l.InteriorWalls[0].ID = "" }, "interior_walls"},
		{"paper wall", func(l *Layout) { l.InteriorWalls[0].ThicknessMM = 0 }, "interior_walls"},
		{"unnamed door", func(l *Layout) { l.Doors[0].ID = "" }, "doors"},
		{"door before wall start", func(l *Layout) { l.Doors[0].PositionAlongWall = -0.1 }, "doors"},
		{"door past wall end", func(l *Layout) { l.Doors[0].PositionAlongWall = 1.1 }, "doors"},
		{"zero-width door", func(l *Layout) { l.Doors[0].WidthMM = 0 }, "doors"},
		{"unknown swing", func(l *Layout) { l.Doors[0].SwingDirection = "up" }, "doors"},
		{"unknown door type", func(l *Layout) { l.Doors[0].DoorType = "revolving" }, "doors"},
		{"unnamed fixture", func(l *Layout) { l.Fixtures[0].ID = "" }, "fixtures"},
		{"orphan fixture", func(l *Layout) { l.Fixtures[0].RoomName = "" }, "fixtures"},
		{"flat fixture", func(l *Layout) { l.Fixtures[0].DepthMM = 0 }, "fixtures"},
		{"over-rotated fixture", func(l *Layout) { l.Fixtures[0].RotationDeg = 361 }, "fixtures"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validLayout()
			tt.mutate(&l)
			err := l.Validate()
			if err == nil {
				t.Fatal("want error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %T", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
			if !strings.Contains(err.Error(), "invalid layout") {
				t.Errorf("message = %q", err.Error())
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	l := Layout{
		InteriorWalls: []InteriorWall{
			{ID: "iw_1"},
			{ID: "iw_2", ThicknessMM: 200, Material: "concrete"},
		},
	}
	l.ApplyDefaults()

	if l.GridSizeMM != 50 {
		t.Errorf("grid = %d, want 50", l.GridSizeMM)
	}
	if l.InteriorWalls[0].ThicknessMM != 100 || l.InteriorWalls[0].Material != "drywall" {
		t.Errorf("defaults not applied: %+v", l.InteriorWalls[0])
	}
	if l.InteriorWalls[1].ThicknessMM != 200 || l.InteriorWalls[1].Material != "concrete" {
		t.Errorf("explicit values overwritten: %+v", l.InteriorWalls[1])
	}
}

func TestClone_Isolation(t *testing.T) {
	original := validLayout()
	original.PerimeterWalls = []map[string]any{
		{"id": "perimeter_1", "x1": 0.0, "y1": 0.0, "x2": 10000.0, "y2": 0.0},
	}

	clone := original.Clone()
	clone.Rooms[0].Boundary[0] = [2]float64{-1, -1}
	clone.InteriorWalls[0].ThicknessMM = 999
	clone.Doors[0].WidthMM = 1
	clone.Fixtures[0].CenterX = -5
	clone.PerimeterWalls[0]["x2"] = 1.0

	if original.Rooms[0].Boundary[0] != [2]float64{0, 0} {
		t.Error("room boundary shared with clone")
	}
	if original.InteriorWalls[0].ThicknessMM != 100 {
		t.Error("interior walls shared with clone")
	}
	if original.Doors[0].WidthMM != 900 {
		t.Error("doors shared with clone")
	}
	if original.Fixtures[0].CenterX != 1500 {
		t.Error("fixtures shared with clone")
	}
	if original.PerimeterWalls[0]["x2"] != 10000.0 {
		t.Error("perimeter wall maps shared with clone")
	}
}
