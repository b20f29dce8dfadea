package history

import (
	"path/filepath"
	"testing"
	"time"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	e := Entry{
		LastRun:     time.Now().Unix(),
		AllPassed:   false,
		FailedTests: []string{"Acme.Tests.FooTests.ItBreaks", "Acme.Tests.BarTests.ItAlsoBreaks"},
	}
	if err := db.Save("/proj/Foo.Tests.csproj", e); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := db.Load("/proj/Foo.Tests.csproj")
	if got.LastRun != e.LastRun || got.AllPassed != e.AllPassed {
		t.Fatalf("got %+v, want %+v", got, e)
	}
	if len(got.FailedTests) != 2 || got.FailedTests[0] != e.FailedTests[0] || got.FailedTests[1] != e.FailedTests[1] {
		t.Fatalf("failed tests mismatch: %+v", got.FailedTests)
	}
}

func TestLoad_MissingProjectReturnsZeroValue(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	got := db.Load("/never/seen.csproj")
	if got.LastRun != 0 || got.AllPassed || len(got.FailedTests) != 0 {
		t.Fatalf("expected zero value, got %+v", got)
	}
}

func TestSave_OverwritesPreviousEntry(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	db.Save("/proj/Foo.Tests.csproj", Entry{LastRun: 1, AllPassed: false, FailedTests: []string{"A"}})
	db.Save("/proj/Foo.Tests.csproj", Entry{LastRun: 2, AllPassed: true})

	got := db.Load("/proj/Foo.Tests.csproj")
	if got.LastRun != 2 || !got.AllPassed || len(got.FailedTests) != 0 {
		t.Fatalf("expected overwritten entry, got %+v", got)
	}
}
