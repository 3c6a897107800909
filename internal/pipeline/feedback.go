package pipeline

// #region imports
import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/archbom/planforge/internal/constraint"
	"github.com/archbom/planforge/internal/layout"
)

// #endregion

// #region variation-hints

// variationHints are rotated by candidate index so parallel candidates
// explore slightly different failure modes.
var variationHints = []string{
	"Prioritize conflict-free door swings around interior walls.",
	"Prioritize fixture spacing to avoid overlaps while preserving circulation.",
	"Prefer sliding doors in tight spaces where swing clearance is hard.",
}

// candidatePrompt derives a lightly varied prompt for candidate index
// (1-based). With a single candidate the base prompt passes through
// unchanged.
func candidatePrompt(basePrompt string, candidateIndex, totalCandidates int) string {
	if totalCandidates <= 1 {
		return basePrompt
	}
	hint := variationHints[(candidateIndex-1)%len(variationHints)]
	return fmt.Sprintf("%s\n\nCANDIDATE_VARIATION %d/%d: %s",
		basePrompt, candidateIndex, totalCandidates, hint)
}

// #endregion variation-hints

// #region format-feedback

// formatConstraintFeedback renders violations as actionable lines,
// split into blocking errors and secondary warnings.
func formatConstraintFeedback(verdict constraint.Verdict) (errorBlock, warningBlock string) {
	var errorLines, warningLines []string
	for _, violation := range verdict.Violations {
		affected := ""
		if len(violation.AffectedElements) > 0 {
			affected = fmt.Sprintf(" (affected: %s)", strings.Join(violation.AffectedElements, ", "))
		}
		line := fmt.Sprintf("- [%s] %s%s",
			strings.ToUpper(string(violation.Severity)), violation.Description, affected)

		if violation.Severity == constraint.SeverityError {
			errorLines = append(errorLines, line)
		} else {
			warningLines = append(warningLines, line)
		}
	}

	if len(errorLines) == 0 {
		errorLines = []string{"- [ERROR] Validation failed with no explicit blocking errors returned."}
	}

	return strings.Join(errorLines, "\n"), strings.Join(warningLines, "\n")
}

// #endregion format-feedback

// #region build-feedback

// buildFeedbackPrompt constructs the next iteration's base prompt: the
// original brief, a failed-validation marker, the previous candidate
// for reference, and the enumerated violations to eliminate.
func buildFeedbackPrompt(originalPrompt string, previous layout.Layout, verdict constraint.Verdict) string {
	errorBlock, warningBlock := formatConstraintFeedback(verdict)
	previousJSON, _ := json.MarshalIndent(previous, "", "  ")

	warnings := ""
	if warningBlock != "" {
		warnings = fmt.Sprintf(
			"\nSecondary warnings to improve after fixing blocking errors:\n%s\n", warningBlock)
	}

	return fmt.Sprintf(
		"%s\n\n"+
			"PREVIOUS ATTEMPT FAILED VALIDATION.\n"+
			"Previous generated layout JSON:\n%s\n\n"+
			"Blocking errors to fix first:\n%s\n%s\n"+
			"Regenerate the layout fixing these constraint violations. "+
			"Keep all valid elements unchanged where possible. "+
			"Return a full layout JSON and ensure no blocking [ERROR] violations remain.",
		originalPrompt, previousJSON, errorBlock, warnings)
}

// #endregion build-feedback
