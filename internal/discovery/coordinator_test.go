package discovery

import (
	"testing"

	"github.com/haavardr/testament/internal/source"
)

func TestCorrelate_DistinctOccurrencesCycleByConsumptionCounter(t *testing.T) {
	idx := source.NewMethodIndex()
	// Two classes each declaring "ItWorks"; the flat name list has three
	// tests named "ItWorks" (cross-project style overload-by-params), so
	// the third should reuse the last occurrence.
	idx.ByName["ItWorks"] = []source.Occurrence{
		{ClassFullName: "ATests", Namespace: "N"},
		{ClassFullName: "BTests", Namespace: "N"},
	}

	names := []string{
		"N.ATests.ItWorks",
		"N.BTests.ItWorks",
		"N.BTests.ItWorks",
	}
	// Force the bare-name path: ByFQN doesn't have these exact keys, so
	// correlate falls back to idx.ByName["ItWorks"].

	classes := correlate(idx, names)

	if len(classes) != 2 {
		t.Fatalf("expected 2 classes, got %d: %+v", len(classes), classes)
	}
	total := 0
	for _, c := range classes {
		total += len(c.Tests)
	}
	if total != 3 {
		t.Fatalf("expected 3 total tests distributed, got %d", total)
	}
}

func TestCorrelate_UnmatchedNameGoesToUncategorized(t *testing.T) {
	idx := source.NewMethodIndex()
	names := []string{"Some.Namespace.GhostTests.ItDoesNotExistInSource"}

	classes := correlate(idx, names)
	if len(classes) != 1 || classes[0].FullName != uncategorizedClassName {
		t.Fatalf("expected a single Uncategorized class, got %+v", classes)
	}
}

func TestCorrelate_ExactFQNMatchPreferred(t *testing.T) {
	idx := source.NewMethodIndex()
	idx.ByFQN["N.FooTests.ItWorks"] = source.Occurrence{ClassFullName: "FooTests", Namespace: "N"}
	// Also seed a decoy bare-name occurrence for a different class, which
	// must not be used since the exact FQN lookup wins first.
	idx.ByName["ItWorks"] = []source.Occurrence{{ClassFullName: "DecoyTests", Namespace: "N"}}

	classes := correlate(idx, []string{"N.FooTests.ItWorks"})
	if len(classes) != 1 || classes[0].FullName != "N.FooTests" {
		t.Fatalf("expected N.FooTests, got %+v", classes)
	}
}
