package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/haavardr/testament/internal/model"
)

func TestResolveProjects(t *testing.T) {
	dir := t.TempDir()
	projPath := filepath.Join(dir, "Foo.Tests.csproj")
	if err := os.WriteFile(projPath, []byte("<Project/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, projects, dirs, err := resolveProjects(projPath)
	if err != nil {
		t.Fatalf("resolveProjects: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	if projects[0].Name != "Foo.Tests" {
		t.Errorf("Name = %q, want Foo.Tests", projects[0].Name)
	}
	if projects[0].State != model.Pending {
		t.Errorf("State = %v, want Pending", projects[0].State)
	}
	if dirs[0] != dir {
		t.Errorf("dir = %q, want %q", dirs[0], dir)
	}
	if result.SolutionFile != "" {
		t.Errorf("expected no solution file for a bare project path")
	}
}

func TestWorkspaceRootOf_NoSolution(t *testing.T) {
	dir := t.TempDir()
	projPath := filepath.Join(dir, "Foo.Tests.csproj")
	result, _, _, err := resolveProjects(mustWrite(t, projPath))
	if err != nil {
		t.Fatal(err)
	}
	if got := workspaceRootOf(result, projPath); got != dir {
		t.Errorf("workspaceRootOf = %q, want %q", got, dir)
	}
}

func mustWrite(t *testing.T, path string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte("<Project/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
