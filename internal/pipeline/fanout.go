package pipeline

// #region imports
import (
	"github.com/archbom/planforge/internal/constraint"
)

// #endregion

// #region next-fanout

// NextFanout computes how many parallel candidates to request in the
// next iteration. Serial runs never reach it; the pipeline pins their
// count at 1 without consulting the controller.
//
// On the first iteration (no prior verdict) the requested count is
// clamped to [min, max]. Afterwards:
//
//   - any generation-stage failure in the prior iteration reduces the
//     count by 1 (the external service is under stress);
//   - a zero-error, warnings-only prior verdict increases the count by
//     1 (cast a wider net for a cleaner candidate), even from a count
//     that earlier failures decayed to 1;
//   - blocking errors with no generation failures leave the count
//     unchanged, the feedback prompt drives convergence.
//
// The result is always clamped to [min, max].
func NextFanout(requested int, prior *constraint.Verdict, priorFailures, priorTotal, min, max int) int {
	if prior == nil {
		return clamp(requested, min, max)
	}

	next := requested
	errors, warnings := prior.Score()
	switch {
	case priorFailures > 0:
		next--
	case errors == 0 && warnings > 0:
		next++
	}

	return clamp(next, min, max)
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// #endregion next-fanout
