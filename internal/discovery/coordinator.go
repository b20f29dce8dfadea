package discovery

import (
	"context"
	"strings"
	"sync"

	"github.com/haavardr/testament/internal/model"
	"github.com/haavardr/testament/internal/source"
)

// EventKind tags a Coordinator event.
type EventKind int

const (
	EventProjectDiscovered EventKind = iota
	EventProjectError
	EventComplete
)

// Event is emitted on the coordinator's output channel.
type Event struct {
	Kind    EventKind
	Index   int
	Classes []*model.TestClass
	Message string
}

// uncategorizedClassName is where tests land when the source indexer
// found no occurrence for their name at all.
const uncategorizedClassName = "Uncategorized"

// Run fans out the Source Indexer and Test Enumerator for each project in
// parallel, correlates their outputs, and emits one ProjectDiscovered or
// ProjectError event per project (in any order) followed by a single
// Complete event. projectDirs and projectFiles are parallel slices index
// by project. cli is the test CLI binary name ("dotnet" unless overridden).
func Run(ctx context.Context, cli string, projectFiles, projectDirs []string, out chan<- Event) {
	defer close(out)

	var wg sync.WaitGroup
	for i := range projectFiles {
		wg.Add(1)
		go func(idx int, file, dir string) {
			defer wg.Done()
			classes, err := discoverProject(ctx, cli, file, dir)
			if err != nil {
				out <- Event{Kind: EventProjectError, Index: idx, Message: err.Error()}
				return
			}
			out <- Event{Kind: EventProjectDiscovered, Index: idx, Classes: classes}
		}(i, projectFiles[i], projectDirs[i])
	}
	wg.Wait()
	out <- Event{Kind: EventComplete}
}

func discoverProject(ctx context.Context, cli, projectFile, projectDir string) ([]*model.TestClass, error) {
	var (
		idx              *source.MethodIndex
		names            []string
		idxErr, namesErr error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		idx, idxErr = source.IndexProject(projectDir)
	}()
	go func() {
		defer wg.Done()
		names, namesErr = EnumerateTests(ctx, cli, projectFile)
	}()
	wg.Wait()

	if idxErr != nil {
		return nil, idxErr
	}
	if namesErr != nil {
		return nil, namesErr
	}

	return correlate(idx, names), nil
}

// correlate joins the flat test-name list against the method index,
// using a per-key consumption counter so that N distinctly-named tests
// sharing a bare method name land on N distinct classes (cycling and
// reusing the last occurrence once the list is exhausted), per the
// coordinator's correlation procedure.
func correlate(idx *source.MethodIndex, names []string) []*model.TestClass {
	consumption := make(map[string]int)
	classes := make(map[string]*model.TestClass)
	var order []string

	classFor := func(fullName string) *model.TestClass {
		c, ok := classes[fullName]
		if !ok {
			c = model.NewTestClass(fullName)
			classes[fullName] = c
			order = append(order, fullName)
		}
		return c
	}

	for _, name := range names {
		display := afterLastDot(name)

		occs, ok := idx.ByFQN[name]
		var occurrences []source.Occurrence
		var lookupKey string
		if ok {
			occurrences = []source.Occurrence{occs}
			lookupKey = name
		} else if byName, ok := idx.ByName[display]; ok {
			occurrences = byName
			lookupKey = display
		}

		var classFullName, docSummary string
		if len(occurrences) > 0 {
			n := consumption[lookupKey]
			pick := n
			if pick >= len(occurrences) {
				pick = len(occurrences) - 1
			}
			consumption[lookupKey] = n + 1

			occ := occurrences[pick]
			classFullName = occ.ClassFullName
			if occ.Namespace != "" {
				classFullName = occ.Namespace + "." + occ.ClassFullName
			}
			docSummary = occ.DocSummary
		} else {
			classFullName = uncategorizedClassName
		}

		class := classFor(classFullName)
		test := model.NewTest(name, display)
		test.DocSummary = docSummary
		class.Tests = append(class.Tests, test)
	}

	result := make([]*model.TestClass, 0, len(order))
	for _, name := range order {
		c := classes[name]
		c.SortTests()
		result = append(result, c)
	}
	return result
}

func afterLastDot(s string) string {
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}
