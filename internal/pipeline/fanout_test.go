package pipeline

import (
	"testing"

	"github.com/archbom/planforge/internal/constraint"
)

func verdictWith(errors, warnings int) *constraint.Verdict {
	v := &constraint.Verdict{Passed: errors == 0}
	for i := 0; i < errors; i++ {
		v.Violations = append(v.Violations, constraint.Violation{Severity: constraint.SeverityError})
	}
	for i := 0; i < warnings; i++ {
		v.Violations = append(v.Violations, constraint.Violation{Severity: constraint.SeverityWarning})
	}
	return v
}

func TestNextFanout(t *testing.T) {
	tests := []struct {
		name          string
		requested     int
		prior         *constraint.Verdict
		priorFailures int
		want          int
	}{
		{"first iteration clamps to min", 0, nil, 0, 1},
		{"first iteration passes requested through", 3, nil, 0, 3},
		{"first iteration clamps to max", 9, nil, 0, 4},
		{"generation failure shrinks", 3, verdictWith(2, 0), 1, 2},
		{"failure takes priority over warnings", 3, verdictWith(0, 2), 1, 2},
		{"warnings-only widens", 2, verdictWith(0, 3), 0, 3},
		{"errors without failures hold", 3, verdictWith(2, 1), 0, 3},
		{"clean verdict holds", 3, verdictWith(0, 0), 0, 3},
		{"shrink clamps at min", 2, verdictWith(1, 0), 2, 1},
		{"failure at floor holds the floor", 1, verdictWith(3, 0), 2, 1},
		{"decayed count recovers on warnings-only", 1, verdictWith(0, 2), 0, 2},
		{"widen clamps at max", 4, verdictWith(0, 1), 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextFanout(tt.requested, tt.prior, tt.priorFailures, tt.requested, 1, 4)
			if got != tt.want {
				t.Errorf("NextFanout = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNextFanout_ShrinkNeverBelowMin(t *testing.T) {
	// Repeated failures walk the count down to the floor and stay there.
	fanout := 4
	for i := 0; i < 6; i++ {
		fanout = NextFanout(fanout, verdictWith(1, 0), 2, fanout, 2, 4)
		if fanout < 2 {
			t.Fatalf("fanout dropped to %d below min", fanout)
		}
	}
	if fanout != 2 {
		t.Errorf("fanout = %d, want pinned at 2", fanout)
	}
}
