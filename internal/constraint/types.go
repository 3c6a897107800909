// Package constraint validates snapped layouts against the spatial
// rulebook and reports itemized violations. Validation is deterministic
// and side-effect free: the same layout always yields the same verdict.
package constraint

// #region violation-type

// ViolationType is the closed set of spatial rule categories.
type ViolationType string

const (
	RoomOverlap        ViolationType = "ROOM_OVERLAP"
	CorridorTooNarrow  ViolationType = "CORRIDOR_TOO_NARROW"
	DoorSwingBlocked   ViolationType = "DOOR_SWING_BLOCKED"
	RoomNotEnclosed    ViolationType = "ROOM_NOT_ENCLOSED"
	AreaExceedsPerim   ViolationType = "AREA_EXCEEDS_PERIMETER"
	FixtureOutsideRoom ViolationType = "FIXTURE_OUTSIDE_ROOM"
	FixtureOverlap     ViolationType = "FIXTURE_OVERLAP"
)

// #endregion violation-type

// #region severity

// Severity splits violations into blocking errors and quality warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// #endregion severity

// #region violation

// Violation is a single spatial rule finding. It is a data value, not
// an error: violations drive the retry loop and are never thrown.
type Violation struct {
	Type             ViolationType `json:"type"`
	Description      string        `json:"description"`
	Severity         Severity      `json:"severity"`
	AffectedElements []string      `json:"affected_elements"`
}

// #endregion violation

// #region verdict

// Verdict is the aggregate result of validating one candidate.
type Verdict struct {
	Passed     bool        `json:"passed"`
	Violations []Violation `json:"violations"`
	Summary    string      `json:"summary"`
}

// Score returns the rank key (error count, warning count) used to
// compare candidates. Lower is better, compared lexicographically.
func (v Verdict) Score() (errors, warnings int) {
	for _, violation := range v.Violations {
		if violation.Severity == SeverityError {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}

// #endregion verdict

// #region config

// Config holds the tunable thresholds of the checker. The defaults are
// the product-decided values; they are fields rather than literals so
// deployments can adjust them.
type Config struct {
	// RoomOverlapToleranceMM2 is the intersection area above which two
	// rooms count as overlapping. Default 10000 mm^2 (0.01 sqm).
	RoomOverlapToleranceMM2 float64
	// CorridorHalfWidthMM is half the minimum clear corridor width.
	// Default 450 mm (a 900 mm minimum corridor).
	CorridorHalfWidthMM float64
	// PerimeterAreaFactor is the allowed ratio of total room area to
	// perimeter bounding-box area. Default 1.05.
	PerimeterAreaFactor float64
}

// DefaultConfig returns the documented default thresholds.
func DefaultConfig() Config {
	return Config{
		RoomOverlapToleranceMM2: 10_000.0,
		CorridorHalfWidthMM:     450.0,
		PerimeterAreaFactor:     1.05,
	}
}

// #endregion config
