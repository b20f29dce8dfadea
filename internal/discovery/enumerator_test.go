package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_RoundTrip(t *testing.T) {
	tmp := t.TempDir()
	restore := cacheDir
	cacheDir = func() string { return tmp }
	defer func() { cacheDir = restore }()

	proj := filepath.Join(tmp, "Foo.Tests.csproj")
	if err := os.WriteFile(proj, []byte("<Project/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	names := []string{"Acme.Tests.FooTests.ItWorks", "Acme.Tests.FooTests.ItAlsoWorks"}
	writeCache(proj, names)

	got := readCache(proj)
	if len(got) != 2 || got[0] != names[0] || got[1] != names[1] {
		t.Fatalf("got %v, want %v", got, names)
	}
}

func TestCache_InvalidatedByProjectTouch(t *testing.T) {
	tmp := t.TempDir()
	restore := cacheDir
	cacheDir = func() string { return tmp }
	defer func() { cacheDir = restore }()

	proj := filepath.Join(tmp, "Foo.Tests.csproj")
	if err := os.WriteFile(proj, []byte("<Project/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	writeCache(proj, []string{"A.B.C"})
	if got := readCache(proj); len(got) != 1 {
		t.Fatalf("expected cache hit before touch, got %v", got)
	}

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(proj, future, future); err != nil {
		t.Fatal(err)
	}

	if got := readCache(proj); got != nil {
		t.Fatalf("expected cache miss after project mtime advanced, got %v", got)
	}
}

func TestEnumerateTests_UsesOverriddenCLI(t *testing.T) {
	tmp := t.TempDir()
	restore := cacheDir
	cacheDir = func() string { return tmp }
	defer func() { cacheDir = restore }()

	proj := filepath.Join(tmp, "Foo.Tests.csproj")
	if err := os.WriteFile(proj, []byte("<Project/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	fake := filepath.Join(tmp, "fake-dotnet.sh")
	script := "#!/bin/sh\n" +
		"echo 'Test run for Foo.Tests.dll'\n" +
		"echo 'The following Tests are available:'\n" +
		"echo '    Acme.Tests.FooTests.ItWorks'\n"
	if err := os.WriteFile(fake, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := EnumerateTests(context.Background(), fake, proj)
	if err != nil {
		t.Fatalf("EnumerateTests: %v", err)
	}
	if len(names) != 1 || names[0] != "Acme.Tests.FooTests.ItWorks" {
		t.Fatalf("got %v, want [Acme.Tests.FooTests.ItWorks]", names)
	}
}

func TestParseTestListOutput(t *testing.T) {
	output := `Test run for Foo.Tests.dll
The following Tests are available:
    Acme.Tests.FooTests.ItWorks
    Acme.Tests.FooTests.ItAlsoWorks
`
	got := parseTestListOutput(output)
	want := []string{"Acme.Tests.FooTests.ItWorks", "Acme.Tests.FooTests.ItAlsoWorks"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}
