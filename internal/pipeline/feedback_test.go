package pipeline

import (
	"strings"
	"testing"

	"github.com/archbom/planforge/internal/constraint"
	"github.com/archbom/planforge/internal/layout"
)

func TestCandidatePrompt(t *testing.T) {
	if got := candidatePrompt("base", 1, 1); got != "base" {
		t.Errorf("single candidate prompt = %q", got)
	}

	got := candidatePrompt("base", 2, 3)
	if !strings.HasPrefix(got, "base\n\nCANDIDATE_VARIATION 2/3: ") {
		t.Errorf("varied prompt = %q", got)
	}

	// Distinct indexes get distinct hints within one rotation.
	a := candidatePrompt("base", 1, 3)
	b := candidatePrompt("base", 2, 3)
	c := candidatePrompt("base", 3, 3)
	if a == b || b == c || a == c {
		t.Errorf("variation hints repeat: %q %q %q", a, b, c)
	}

	// Index 4 wraps around to the first hint.
	wrapped := candidatePrompt("base", 4, 4)
	if !strings.HasSuffix(wrapped, strings.TrimPrefix(a, "base\n\nCANDIDATE_VARIATION 1/3: ")) {
		t.Errorf("index 4 did not wrap to the first hint: %q", wrapped)
	}
}

func TestFormatConstraintFeedback(t *testing.T) {
	verdict := constraint.Verdict{
		Violations: []constraint.Violation{
			{
				Type:             constraint.RoomOverlap,
				Description:      "Room A and Room B overlap by 1.20 sqm.",
				Severity:         constraint.SeverityError,
				AffectedElements: []string{"Room A", "Room B"},
			},
			{
				Type:        constraint.FixtureOutsideRoom,
				Description: "Fixture 'desk_1' center lies outside assigned room 'Room A'.",
				Severity:    constraint.SeverityWarning,
			},
		},
	}

	errorBlock, warningBlock := formatConstraintFeedback(verdict)
	if errorBlock != "- [ERROR] Room A and Room B overlap by 1.20 sqm. (affected: Room A, Room B)" {
		t.Errorf("error block = %q", errorBlock)
	}
	if !strings.HasPrefix(warningBlock, "- [WARNING] Fixture 'desk_1'") {
		t.Errorf("warning block = %q", warningBlock)
	}
	if strings.Contains(warningBlock, "affected") {
		t.Errorf("empty affected list rendered: %q", warningBlock)
	}
}

func TestFormatConstraintFeedback_NoExplicitErrors(t *testing.T) {
	errorBlock, _ := formatConstraintFeedback(constraint.Verdict{})
	if !strings.Contains(errorBlock, "no explicit blocking errors") {
		t.Errorf("fallback error line missing: %q", errorBlock)
	}
}

func TestBuildFeedbackPrompt(t *testing.T) {
	previous := layout.Layout{
		Rooms: []layout.Room{{
			Name: "Operatory 1", RoomType: "operatory",
			Boundary: [][2]float64{{0, 0}, {3000, 0}, {3000, 3000}, {0, 3000}, {0, 0}},
			AreaSqm:  9,
		}},
	}
	verdict := constraint.Verdict{
		Violations: []constraint.Violation{
			{Description: "Hall is narrower than 900mm at one or more points.",
				Severity: constraint.SeverityError, AffectedElements: []string{"Hall"}},
			{Description: "Fixtures 'a' and 'b' overlap in room 'Operatory 1'.",
				Severity: constraint.SeverityWarning},
		},
	}

	got := buildFeedbackPrompt("dental clinic", previous, verdict)

	for _, want := range []string{
		"dental clinic",
		"PREVIOUS ATTEMPT FAILED VALIDATION.",
		`"Operatory 1"`,
		"Blocking errors to fix first:",
		"- [ERROR] Hall is narrower than 900mm",
		"Secondary warnings to improve after fixing blocking errors:",
		"Regenerate the layout fixing these constraint violations.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("feedback prompt missing %q", want)
		}
	}
	if !strings.HasPrefix(got, "dental clinic\n\n") {
		t.Error("original brief must lead the feedback prompt")
	}
}

func TestBuildFeedbackPrompt_NoWarningsOmitsBlock(t *testing.T) {
	verdict := constraint.Verdict{
		Violations: []constraint.Violation{
			{Description: "x", Severity: constraint.SeverityError},
		},
	}
	got := buildFeedbackPrompt("brief", layout.Layout{}, verdict)
	if strings.Contains(got, "Secondary warnings") {
		t.Error("warning block rendered with no warnings")
	}
}
