package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLocate_SingleProjectFile(t *testing.T) {
	dir := t.TempDir()
	proj := filepath.Join(dir, "Foo.Tests.csproj")
	writeFile(t, proj, "<Project/>")

	res, err := Locate(proj)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if len(res.Projects) != 1 || res.Projects[0].Path != proj {
		t.Fatalf("got %+v", res)
	}
}

func TestLocate_SolutionFiltersToTestProjects(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, ".git"), 0o755)
	writeFile(t, filepath.Join(dir, "App", "App.csproj"), "<Project/>")
	writeFile(t, filepath.Join(dir, "App.Tests", "App.Tests.csproj"), "<Project/>")

	sln := `
Microsoft Visual Studio Solution File, Format Version 12.00
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "App", "App\App.csproj", "{11111111-1111-1111-1111-111111111111}"
EndProject
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "App.Tests", "App.Tests\App.Tests.csproj", "{22222222-2222-2222-2222-222222222222}"
EndProject
`
	writeFile(t, filepath.Join(dir, "Workspace.sln"), sln)

	res, err := Locate(dir)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if res.SolutionFile == "" {
		t.Fatalf("expected solution file to be set")
	}
	if len(res.Projects) != 1 {
		t.Fatalf("expected only the Tests project, got %+v", res.Projects)
	}
	if filepath.Base(res.Projects[0].Path) != "App.Tests.csproj" {
		t.Fatalf("got %s", res.Projects[0].Path)
	}
}

func TestLocate_RecursiveScanSkipsBinObj(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Foo.Tests.csproj"), "<Project/>")
	writeFile(t, filepath.Join(dir, "bin", "Ghost.csproj"), "<Project/>")
	writeFile(t, filepath.Join(dir, "obj", "Ghost2.csproj"), "<Project/>")

	res, err := Locate(dir)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if len(res.Projects) != 1 {
		t.Fatalf("expected 1 project, got %+v", res.Projects)
	}
}

func TestLocate_NoWorkspace(t *testing.T) {
	dir := t.TempDir()
	if _, err := Locate(dir); err == nil {
		t.Fatal("expected ErrNoWorkspace")
	}
}
