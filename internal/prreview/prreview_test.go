package prreview

import (
	"reflect"
	"testing"

	"github.com/haavardr/testament/internal/model"
)

func TestChangedTestMethods(t *testing.T) {
	files := []DiffFile{
		{
			Path: "src/Tests/FooTests.cs",
			Patch: "@@ -1,3 +1,8 @@\n" +
				" namespace N.Tests\n" +
				" {\n" +
				"+    public void ShouldInitialise()\n" +
				"+    {\n" +
				"     }\n" +
				" }\n",
		},
		{
			// Not a test file: should be ignored even if it "looks" method-shaped.
			Path: "src/Lib/Foo.cs",
			Patch: "+    public void NotATest()\n",
		},
	}

	got := ChangedTestMethods(files)
	want := []string{"ShouldInitialise"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ChangedTestMethods = %v, want %v", got, want)
	}
}

func TestChangedTestMethods_Dedup(t *testing.T) {
	files := []DiffFile{
		{
			Path: "Tests/A.cs",
			Patch: "+    public void Foo()\n" +
				"+    public void Foo()\n",
		},
	}
	got := ChangedTestMethods(files)
	if len(got) != 1 {
		t.Fatalf("expected de-duplication, got %v", got)
	}
}

func TestResolveAgainstTree(t *testing.T) {
	pa := model.NewTestProject("A", "/a/A.csproj", "/a")
	ca := model.NewTestClass("N.ClassA")
	ca.Tests = append(ca.Tests, model.NewTest("N.ClassA.Foo", "Foo"))
	pa.Classes = []*model.TestClass{ca}

	pb := model.NewTestProject("B", "/b/B.csproj", "/b")
	cb := model.NewTestClass("N.ClassB")
	cb.Tests = append(cb.Tests, model.NewTest("N.ClassB.Foo", "Foo"), model.NewTest("N.ClassB.Bar", "Bar"))
	pb.Classes = []*model.TestClass{cb}

	got := ResolveAgainstTree([]*model.TestProject{pa, pb}, []string{"Foo"})
	if len(got) != 2 {
		t.Fatalf("expected both Foo tests across projects, got %d", len(got))
	}
}

func TestSaveLoadLastReview_RoundTrip(t *testing.T) {
	doc, err := SaveLastReview("https://example.com/pr/42", []string{"N.ClassA.Foo", "N.ClassB.Foo"})
	if err != nil {
		t.Fatalf("SaveLastReview: %v", err)
	}

	pr, names := LoadLastReview(doc)
	if pr != "https://example.com/pr/42" {
		t.Errorf("pr = %q", pr)
	}
	want := []string{"N.ClassA.Foo", "N.ClassB.Foo"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}
