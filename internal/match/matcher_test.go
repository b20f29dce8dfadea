package match

import (
	"testing"

	"github.com/haavardr/testament/internal/model"
)

func TestApply_ExactFQNMatch(t *testing.T) {
	tests := []*model.Test{
		model.NewTest("Acme.Tests.FooTests.ItWorks", "ItWorks"),
	}
	tests[0].Status = model.Running

	results := []*Outcome{
		{TestName: "Acme.Tests.FooTests.ItWorks", Passed: true},
	}

	Apply(tests, results)

	if tests[0].Status != model.Passed {
		t.Fatalf("expected Passed, got %v", tests[0].Status)
	}
}

func TestApply_DuplicateDisplayNamesDoNotCrossContaminate(t *testing.T) {
	tests := []*model.Test{
		model.NewTest("Acme.Tests.ATests.ItWorks", "ItWorks"),
		model.NewTest("Acme.Tests.BTests.ItWorks", "ItWorks"),
	}
	tests[0].Status = model.Running
	tests[1].Status = model.Running

	// Both results carry only the bare method name: pass 1 can't resolve
	// either (no FQN or suffix match), so they fall to pass 2, each
	// consuming one of the two Running tests in order without reusing one.
	results := []*Outcome{
		{TestName: "ItWorks", Failed: true, ErrorMessage: "boom"},
		{TestName: "ItWorks", Passed: true},
	}

	Apply(tests, results)

	statuses := map[model.Status]int{}
	for _, tst := range tests {
		statuses[tst.Status]++
	}
	if statuses[model.Failed] != 1 || statuses[model.Passed] != 1 {
		t.Fatalf("expected one Failed and one Passed, got %+v", tests)
	}
}

func TestApply_UnreportedTestBecomesSkipped(t *testing.T) {
	tests := []*model.Test{
		model.NewTest("Acme.Tests.FooTests.ItWorks", "ItWorks"),
		model.NewTest("Acme.Tests.FooTests.NeverRan", "NeverRan"),
	}
	tests[0].Status = model.Running
	tests[1].Status = model.Running

	results := []*Outcome{
		{TestName: "Acme.Tests.FooTests.ItWorks", Passed: true},
	}

	Apply(tests, results)

	if tests[0].Status != model.Passed {
		t.Fatalf("expected Passed, got %v", tests[0].Status)
	}
	if tests[1].Status != model.Skipped || tests[1].ErrorMessage != "no result" {
		t.Fatalf("expected Skipped with 'no result', got %v / %q", tests[1].Status, tests[1].ErrorMessage)
	}
}

func TestApply_SuffixMatchAgainstFQN(t *testing.T) {
	tests := []*model.Test{
		model.NewTest("ItWorks", "ItWorks"),
	}
	tests[0].Status = model.Running

	// The CLI sometimes lists a test by its bare method name while the
	// results file reports it namespace-qualified: the result's name after
	// its last dot equals the test's FQN.
	results := []*Outcome{
		{TestName: "Acme.Tests.FooTests.ItWorks", Passed: true},
	}

	Apply(tests, results)

	if tests[0].Status != model.Passed {
		t.Fatalf("expected Passed, got %v", tests[0].Status)
	}
}
