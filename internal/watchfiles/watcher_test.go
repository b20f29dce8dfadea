package watchfiles

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIsRelevant(t *testing.T) {
	cases := map[string]bool{
		"Foo.cs":          true,
		"Foo.csproj":      true,
		"Foo.razor":       true,
		"Directory.props": true,
		"Foo.dll":         false,
		"Foo.txt":         false,
		"README.md":       false,
	}
	for name, want := range cases {
		if got := isRelevant(name); got != want {
			t.Errorf("isRelevant(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestShouldSkipDir(t *testing.T) {
	cases := map[string]bool{
		"bin":          true,
		"obj":          true,
		"node_modules": true,
		".git":         true,
		"Controllers":  false,
	}
	for name, want := range cases {
		if got := shouldSkipDir(name); got != want {
			t.Errorf("shouldSkipDir(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNew_UsesConfiguredDebounce(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, 2*time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	if w.debounce != 2*time.Second {
		t.Errorf("expected debounce 2s, got %v", w.debounce)
	}
}

func TestNew_NonPositiveDebounceFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	if w.debounce != DefaultDebounce {
		t.Errorf("expected fallback to DefaultDebounce, got %v", w.debounce)
	}
}

func TestWatcher_GitignoredRespectsRootGitignore(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("Generated/\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "Generated"), 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := New(dir, DefaultDebounce)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	if !w.gitignored(filepath.Join(dir, "Generated", "Client.cs")) {
		t.Errorf("expected Generated/Client.cs to be gitignored")
	}
	if w.gitignored(filepath.Join(dir, "Controllers", "Foo.cs")) {
		t.Errorf("expected Controllers/Foo.cs to not be gitignored")
	}
}
