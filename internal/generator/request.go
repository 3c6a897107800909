package generator

// #region imports
import (
	"encoding/json"
	"fmt"

	"github.com/archbom/planforge/internal/layout"
)

// #endregion

// #region request

// Request is the assembled generation input: the prompt sent to the
// provider plus the converted pass-through data used to backfill fields
// the service omits.
type Request struct {
	Prompt           string
	PerimeterWalls   []map[string]any
	PageDimensionsMM [2]float64
}

// #endregion request

// #region scale

// mmPerPDFPoint converts one PDF point to millimeters. Scale factors
// that are missing, non-positive, or close to 1.0 are treated as
// uncalibrated: 1 pt = 1 mm.
func mmPerPDFPoint(scaleFactor *float64) float64 {
	if scaleFactor == nil || *scaleFactor <= 0 {
		return 1.0
	}
	if *scaleFactor <= 2.0 {
		return 1.0
	}
	return 304.8 / *scaleFactor
}

// #endregion scale

// #region layout-contract

// layoutContract is the JSON shape the provider must return, embedded
// verbatim in every prompt.
const layoutContract = `{
  "rooms": [
    {"name": "Operatory 1", "room_type": "operatory",
     "boundary": [[0,0],[3000,0],[3000,3200],[0,3200],[0,0]],
     "area_sqm": 9.6}
  ],
  "interior_walls": [
    {"id": "iw_1", "x1": 3000, "y1": 0, "x2": 3000, "y2": 6000,
     "thickness_mm": 100, "material": "drywall"}
  ],
  "doors": [
    {"id": "d_1", "wall_id": "iw_1", "position_along_wall": 0.5,
     "width_mm": 900, "swing_direction": "left", "door_type": "single"}
  ],
  "fixtures": [
    {"id": "f_1", "room_name": "Operatory 1", "fixture_type": "dental_chair",
     "center_x": 1500, "center_y": 1600, "width_mm": 1000,
     "depth_mm": 2200, "rotation_deg": 90}
  ],
  "grid_size_mm": 50,
  "prompt": "6 operatory dental clinic with reception",
  "perimeter_walls": [
    {"id": "perimeter_1", "x1": 0, "y1": 0, "x2": 10000, "y2": 0,
     "thickness_mm": 200}
  ],
  "page_dimensions_mm": [10000, 8000]
}`

// #endregion layout-contract

// #region build-request

// BuildRequest converts the perimeter graph from PDF points to
// millimeters and assembles the full generation prompt: perimeter
// walls, bounding box, page dimensions, extracted room hints, the user
// brief, and the layout JSON contract.
func BuildRequest(graph layout.PerimeterGraph, prompt string) Request {
	mmPerPoint := mmPerPDFPoint(graph.ScaleFactor)

	perimeterWalls := make([]map[string]any, 0, len(graph.Walls))
	for i, wall := range graph.Walls {
		perimeterWalls = append(perimeterWalls, map[string]any{
			"id":           fmt.Sprintf("perimeter_%d", i+1),
			"x1":           wall.X1 * mmPerPoint,
			"y1":           wall.Y1 * mmPerPoint,
			"x2":           wall.X2 * mmPerPoint,
			"y2":           wall.Y2 * mmPerPoint,
			"thickness_mm": wall.Thickness * mmPerPoint,
		})
	}

	pageDims := [2]float64{
		graph.PageDimensions[0] * mmPerPoint,
		graph.PageDimensions[1] * mmPerPoint,
	}

	bbox := map[string]float64{
		"min_x": 0, "min_y": 0,
		"max_x": pageDims[0], "max_y": pageDims[1],
	}
	if len(perimeterWalls) > 0 {
		minX, minY := perimeterWalls[0]["x1"].(float64), perimeterWalls[0]["y1"].(float64)
		maxX, maxY := minX, minY
		for _, wall := range perimeterWalls {
			for _, x := range []float64{wall["x1"].(float64), wall["x2"].(float64)} {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
			}
			for _, y := range []float64{wall["y1"].(float64), wall["y2"].(float64)} {
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
		bbox = map[string]float64{"min_x": minX, "min_y": minY, "max_x": maxX, "max_y": maxY}
	}

	roomHints := make([]map[string]any, 0, len(graph.Rooms))
	for _, room := range graph.Rooms {
		hint := map[string]any{
			"name":                  room.Name,
			"area_sq_pts":           room.AreaSqPts,
			"boundary_wall_indices": room.BoundaryWalls,
		}
		if room.AreaSqFt != nil {
			hint["area_sq_ft"] = *room.AreaSqFt
		}
		roomHints = append(roomHints, hint)
	}

	wallsJSON, _ := json.MarshalIndent(perimeterWalls, "", "  ")
	bboxJSON, _ := json.MarshalIndent(bbox, "", "  ")
	dimsJSON, _ := json.MarshalIndent(map[string]float64{
		"width_mm":  pageDims[0],
		"height_mm": pageDims[1],
	}, "", "  ")
	hintsJSON, _ := json.MarshalIndent(roomHints, "", "  ")

	fullPrompt := fmt.Sprintf(
		"You are an expert interior layout planner.\n"+
			"Generate a complete layout JSON that conforms exactly to the provided shape.\n\n"+
			"Perimeter walls in millimeters:\n%s\n\n"+
			"Perimeter bounding box in millimeters:\n%s\n\n"+
			"Page dimensions in millimeters:\n%s\n\n"+
			"Extracted room hints from the perimeter graph:\n%s\n\n"+
			"User description:\n%s\n\n"+
			"Generate interior walls, doors, and fixtures that subdivide the perimeter "+
			"into the described rooms. All coordinates must be in millimeters.\n"+
			"Return only valid JSON.\n\n"+
			"JSON shape:\n%s",
		wallsJSON, bboxJSON, dimsJSON, hintsJSON, prompt, layoutContract)

	return Request{
		Prompt:           fullPrompt,
		PerimeterWalls:   perimeterWalls,
		PageDimensionsMM: pageDims,
	}
}

// #endregion build-request
