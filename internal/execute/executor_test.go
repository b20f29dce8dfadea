package execute

import "testing"

func TestBuildFilter_StripsParamsAndDedupes(t *testing.T) {
	got := BuildFilter([]string{
		`Acme.Tests.FooTests.ItWorks(x: 1)`,
		`Acme.Tests.FooTests.ItWorks(x: 2)`,
		`Acme.Tests.BarTests.ItAlsoWorks`,
	})
	want := `FullyQualifiedName~Acme.Tests.FooTests.ItWorks|FullyQualifiedName~Acme.Tests.BarTests.ItAlsoWorks`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestBuildFilter_Empty(t *testing.T) {
	if got := BuildFilter(nil); got != "" {
		t.Fatalf("expected empty filter, got %q", got)
	}
}

func TestShouldSuppress(t *testing.T) {
	cases := map[string]bool{
		"  Restoring packages for Acme.Tests.csproj...": true,
		"  Determining projects to restore...":          true,
		"Build succeeded.":                               true,
		"":                                                true,
		"   ":                                             true,
		"Passed Acme.Tests.FooTests.ItWorks [12 ms]":      false,
		"Failed Acme.Tests.FooTests.ItBreaks [3 ms]":       false,
	}
	for line, want := range cases {
		if got := shouldSuppress(line); got != want {
			t.Errorf("shouldSuppress(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestPassFailMarker(t *testing.T) {
	matched, isPass := passFailMarker("Passed Acme.Tests.FooTests.ItWorks [12 ms]")
	if !matched || !isPass {
		t.Fatalf("expected matched pass, got matched=%v isPass=%v", matched, isPass)
	}
	matched, isPass = passFailMarker("Failed Acme.Tests.FooTests.ItBreaks [3 ms]")
	if !matched || isPass {
		t.Fatalf("expected matched fail, got matched=%v isPass=%v", matched, isPass)
	}
	matched, _ = passFailMarker("some unrelated line")
	if matched {
		t.Fatalf("expected no match")
	}
}

func TestCLIOrDefault(t *testing.T) {
	if got := cliOrDefault(""); got != "dotnet" {
		t.Errorf("expected default 'dotnet', got %q", got)
	}
	if got := cliOrDefault("dotnet-fake"); got != "dotnet-fake" {
		t.Errorf("expected override preserved, got %q", got)
	}
}

func TestBuildArgs_ModeFilterExpression(t *testing.T) {
	req := RunRequest{
		ProjectFile: "Foo.Tests.csproj",
		Mode:        ModeFilterExpression,
		Filter:      "FullyQualifiedName~Foo",
	}
	args := buildArgs(req, "out.trx", "/tmp/results")
	joined := false
	for i, a := range args {
		if a == "--filter" && i+1 < len(args) && args[i+1] == "FullyQualifiedName~Foo" {
			joined = true
		}
	}
	if !joined {
		t.Fatalf("expected --filter FullyQualifiedName~Foo in args, got %v", args)
	}
}
