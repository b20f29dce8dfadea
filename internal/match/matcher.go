package match

import (
	"strings"

	"github.com/haavardr/testament/internal/model"
)

// Apply correlates a run's parsed outcomes onto the tests that were part of
// that run, using the two-pass algorithm: exact/suffix matching first, then
// a bare-display-name fallback pass for results the first pass couldn't
// place. Every test still Running after both passes is marked Skipped —
// the run reported no result for it.
//
// tests must already be set to Running by the caller before the run starts;
// Apply only ever transitions a test away from Running.
func Apply(tests []*model.Test, results []*Outcome) {
	pass1(tests, results)
	pass2(tests, results)
	pass3(tests)
}

// pass1 matches by fully-qualified name, or by the result's own name once
// its namespace/class prefix is stripped, against each test's FQN.
func pass1(tests []*model.Test, results []*Outcome) {
	for _, r := range results {
		if r.consumed {
			continue
		}
		bare := afterLastDot(r.TestName)
		for _, t := range tests {
			if t.Status != model.Running {
				continue
			}
			if t.FullyQualifiedName == r.TestName || bare == t.FullyQualifiedName {
				applyOutcome(t, r)
				r.consumed = true
				break
			}
		}
	}
}

// pass2 matches remaining unconsumed results against any still-Running test
// whose bare display name equals the result's bare name.
func pass2(tests []*model.Test, results []*Outcome) {
	for _, r := range results {
		if r.consumed {
			continue
		}
		bare := afterLastDot(r.TestName)
		for _, t := range tests {
			if t.Status != model.Running {
				continue
			}
			if t.DisplayName == bare {
				applyOutcome(t, r)
				r.consumed = true
				break
			}
		}
	}
}

// pass3 marks every test the run never reported on as Skipped.
func pass3(tests []*model.Test) {
	for _, t := range tests {
		if t.Status == model.Running {
			t.Status = model.Skipped
			t.ErrorMessage = "no result"
		}
	}
}

func applyOutcome(t *model.Test, r *Outcome) {
	switch {
	case r.Passed:
		t.Status = model.Passed
	case r.Failed:
		t.Status = model.Failed
		t.ErrorMessage = r.ErrorMessage
		t.StackTrace = r.StackTrace
	default:
		t.Status = model.Skipped
	}
	t.DurationMS = r.DurationMS
}

func afterLastDot(s string) string {
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}
