package source

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

// Occurrence is one place a method name was declared.
type Occurrence struct {
	ClassFullName string // class path without the namespace, dot-joined for nested classes
	Namespace     string
	DocSummary    string // text of an immediately preceding "///" doc comment, if any
}

// MethodIndex maps a method's bare name to every class it was declared in,
// across a project. FQN maps the fully-qualified "namespace.class.method"
// form directly to its single occurrence.
type MethodIndex struct {
	ByName map[string][]Occurrence
	ByFQN  map[string]Occurrence
}

// NewMethodIndex returns an empty index ready to be populated by Parser.ParseFile.
func NewMethodIndex() *MethodIndex {
	return &MethodIndex{
		ByName: make(map[string][]Occurrence),
		ByFQN:  make(map[string]Occurrence),
	}
}

func (idx *MethodIndex) add(methodName string, occ Occurrence) {
	idx.ByName[methodName] = append(idx.ByName[methodName], occ)
	fqn := occ.ClassFullName
	if occ.Namespace != "" {
		fqn = occ.Namespace + "." + occ.ClassFullName
	}
	idx.ByFQN[fqn+"."+methodName] = occ
}

// Parser recognizes namespace/class/method declaration boundaries in C#-like
// source. It holds no per-file state; a single instance is safe to reuse
// (and is reused, per spec §4.2) across every file in a project.
type Parser struct {
	namespaceBlockRe *regexp.Regexp
	namespaceFileRe  *regexp.Regexp
	classRe          *regexp.Regexp
	methodRe         *regexp.Regexp
}

// NewParser builds a Parser with its regular expressions precompiled once.
func NewParser() *Parser {
	return &Parser{
		// namespace Foo.Bar {
		namespaceBlockRe: regexp.MustCompile(`^\s*namespace\s+([A-Za-z_][\w.]*)\s*\{?\s*$`),
		// namespace Foo.Bar; (file-scoped, C# 10+)
		namespaceFileRe: regexp.MustCompile(`^\s*namespace\s+([A-Za-z_][\w.]*)\s*;\s*$`),
		// class Foo, class Foo<T>, record Foo, struct Foo, partial class Foo : Base
		classRe: regexp.MustCompile(`^\s*(?:\[[^\]]*\]\s*)*(?:public|private|protected|internal|static|sealed|abstract|partial|\s)*\b(?:class|record|struct)\s+([A-Za-z_]\w*)`),
		// method declarations: modifiers, return type, Name(
		methodRe: regexp.MustCompile(`^\s*(?:\[[^\]]*\]\s*)*(?:public|private|protected|internal|static|virtual|override|async|sealed|new|\s)+[\w<>\[\],.?]+\s+([A-Za-z_]\w*)\s*(?:<[^>]*>)?\s*\(`),
	}
}

type scopeKind int

const (
	scopeNamespace scopeKind = iota
	scopeClass
	scopeOther // method body, if-block, etc: tracked only for brace depth
)

type scope struct {
	kind  scopeKind
	name  string
	depth int // brace depth at which this scope was opened
}

// ParseFile scans one source file and adds every method declaration found
// to idx, keyed by its enclosing namespace/class. It performs no semantic
// analysis: every method-shaped declaration is indexed, attributes are not
// inspected.
func (p *Parser) ParseFile(r io.Reader, idx *MethodIndex) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var stack []scope
	depth := 0
	fileNamespace := ""
	var pendingDoc []string // accumulated "///" lines immediately above the next declaration

	currentNamespace := func() string {
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].kind == scopeNamespace {
				return stack[i].name
			}
		}
		return fileNamespace
	}
	currentClassPath := func() string {
		var parts []string
		for _, s := range stack {
			if s.kind == scopeClass {
				parts = append(parts, s.name)
			}
		}
		return strings.Join(parts, ".")
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "///") {
			pendingDoc = append(pendingDoc, strings.TrimSpace(strings.TrimPrefix(trimmed, "///")))
			continue
		}

		if m := p.namespaceFileRe.FindStringSubmatch(trimmed); m != nil {
			fileNamespace = m[1]
			continue
		}
		if m := p.namespaceBlockRe.FindStringSubmatch(trimmed); m != nil {
			// The scope opens at the next depth; a brace on its own line
			// below is counted when that line is scanned.
			stack = append(stack, scope{kind: scopeNamespace, name: m[1], depth: depth + 1})
			if strings.Contains(trimmed, "{") {
				depth++
			}
			continue
		}
		if m := p.classRe.FindStringSubmatch(trimmed); m != nil {
			opensBrace := strings.Contains(trimmed, "{")
			stack = append(stack, scope{kind: scopeClass, name: m[1], depth: depth + 1})
			if opensBrace {
				depth++
			}
			// Otherwise the brace is on its own line below and is counted
			// when that line is scanned.
			continue
		}

		className := currentClassPath()
		if className != "" {
			if m := p.methodRe.FindStringSubmatch(trimmed); m != nil {
				methodName := m[1]
				// Constructors have no return type, so methodRe never
				// matches them and they are not indexed.
				idx.add(methodName, Occurrence{
					ClassFullName: className,
					Namespace:     currentNamespace(),
					DocSummary:    joinDocLines(pendingDoc),
				})
				pendingDoc = nil
			}
		}
		if !strings.HasPrefix(trimmed, "[") {
			pendingDoc = nil
		}

		depth += strings.Count(line, "{") - strings.Count(line, "}")
		for len(stack) > 0 && depth < stack[len(stack)-1].depth {
			stack = stack[:len(stack)-1]
		}
	}
	return scanner.Err()
}

// joinDocLines collapses accumulated "///" doc-comment lines into a single
// summary string, unwrapping a <summary> tag if the comment used one.
func joinDocLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	var parts []string
	for _, l := range lines {
		l = strings.TrimPrefix(l, "<summary>")
		l = strings.TrimSuffix(l, "</summary>")
		l = strings.TrimSpace(l)
		if l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, " ")
}
