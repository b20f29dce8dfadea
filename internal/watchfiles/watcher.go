// Package watchfiles watches the workspace root for source changes and
// emits a single debounced notification per burst of activity.
package watchfiles

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	gitignore "github.com/sabhiram/go-gitignore"
)

// DefaultDebounce is the quiet period the watcher waits for before emitting
// a FileChanged notification when the caller doesn't override it, per the
// project's watch-mode contract.
const DefaultDebounce = 500 * time.Millisecond

var relevantExts = map[string]bool{
	".cs":      true,
	".csproj":  true,
	".razor":   true,
	".props":   true,
	".targets": true,
}

var skipDirs = map[string]bool{
	"bin":          true,
	"obj":          true,
	"node_modules": true,
	".vs":          true,
	"TestResults":  true,
}

func shouldSkipDir(name string) bool {
	if skipDirs[name] {
		return true
	}
	return strings.HasPrefix(name, ".")
}

func isRelevant(path string) bool {
	return relevantExts[strings.ToLower(filepath.Ext(path))]
}

// Watcher recursively watches a root directory and publishes a debounced
// FileChanged signal on Changes() whenever relevant files are modified or
// created.
type Watcher struct {
	fsw      *fsnotify.Watcher
	ignore   *gitignore.GitIgnore // nil if root has no .gitignore
	root     string
	debounce time.Duration
	changes  chan struct{}
	done     chan struct{}
}

// New starts watching root recursively, skipping build-artifact and VCS
// directories, plus anything root's own .gitignore excludes (a generated
// client proxy directory, say, that isn't caught by the built-in skip
// list). debounce is the quiet period before a burst of activity is
// coalesced into a single Changes() signal; callers that don't have an
// opinion should pass DefaultDebounce.
func New(root string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ignore, _ := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))

	w := &Watcher{
		fsw:      fsw,
		ignore:   ignore,
		root:     root,
		debounce: debounce,
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	watched := make(map[string]bool)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if shouldSkipDir(d.Name()) || w.gitignored(path) {
			return filepath.SkipDir
		}
		if watched[path] {
			return nil
		}
		if addErr := fsw.Add(path); addErr != nil {
			return nil
		}
		watched[path] = true
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

// gitignored reports whether path falls under root's .gitignore rules, if
// one was found.
func (w *Watcher) gitignored(path string) bool {
	if w.ignore == nil {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return w.ignore.MatchesPath(rel)
}

// Changes delivers one signal per debounced burst of relevant file
// activity. The channel is never closed, not even by Close.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops the underlying watcher and its event loop.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !isRelevant(event.Name) || w.gitignored(event.Name) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}
