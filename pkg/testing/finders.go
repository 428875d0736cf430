package testing

import (
	"fmt"
	"reflect"

	"github.com/go-drift/fasten/pkg/core"
	"github.com/go-drift/fasten/pkg/fastener"
)

// Finder locates owners in the tree.
type Finder interface {
	// Evaluate returns all matching nodes under root (depth-first pre-order).
	Evaluate(root *core.Node) []*core.Node
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	nodes  []*core.Node
	finder Finder
}

func (r FinderResult) description() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *core.Node {
	if len(r.nodes) == 0 {
		panic(fmt.Sprintf("Finder found no owners: %s", r.description()))
	}
	return r.nodes[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *core.Node {
	if len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *core.Node {
	if index < 0 || index >= len(r.nodes) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.nodes), r.description()))
	}
	return r.nodes[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*core.Node {
	return r.nodes
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.nodes)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.nodes) > 0
}

// Fastener returns the fastener name of the first match. Panics if there is
// no match or the owner does not declare name.
func (r FinderResult) Fastener(name string) fastener.Fastener {
	n := r.First()
	f := n.Fastener(name)
	if f == nil {
		panic(fmt.Sprintf("%s declares no fastener %q", n.Name(), name))
	}
	return f
}

// Value returns the value of fastener name on the first match as a T.
// Panics if the fastener is missing or holds another type.
func Value[T any](r FinderResult, name string) T {
	raw, _ := r.Fastener(name).AnyValue()
	if raw == nil {
		var zero T
		return zero
	}
	v, ok := raw.(T)
	if !ok {
		panic(fmt.Sprintf("fastener %q holds %T, not %s", name, raw, reflect.TypeFor[T]()))
	}
	return v
}

// --- Concrete finders ---

// nameFinder matches owners by name.
type nameFinder struct {
	name string
}

func (f *nameFinder) Evaluate(root *core.Node) []*core.Node {
	return collectMatches(root, func(n *core.Node) bool { return n.Name() == f.name })
}

func (f *nameFinder) Description() string {
	return fmt.Sprintf("ByName(%q)", f.name)
}

// ByName returns a finder that matches owners with the given name.
func ByName(name string) Finder {
	return &nameFinder{name: name}
}

// typeFinder matches owners whose embedding value is of the specified type.
type typeFinder struct {
	ownerType reflect.Type
	typeName  string
}

func (f *typeFinder) Evaluate(root *core.Node) []*core.Node {
	return collectMatches(root, func(n *core.Node) bool {
		return reflect.TypeOf(n.Self()) == f.ownerType
	})
}

func (f *typeFinder) Description() string {
	return fmt.Sprintf("ByType(%s)", f.typeName)
}

// ByType returns a finder that matches owners whose Self is a T.
func ByType[T any]() Finder {
	t := reflect.TypeFor[T]()
	return &typeFinder{ownerType: t, typeName: t.String()}
}

// fastenerFinder matches owners that declare a fastener name.
type fastenerFinder struct {
	name string
}

func (f *fastenerFinder) Evaluate(root *core.Node) []*core.Node {
	return collectMatches(root, func(n *core.Node) bool { return n.Fastener(f.name) != nil })
}

func (f *fastenerFinder) Description() string {
	return fmt.Sprintf("ByFastener(%q)", f.name)
}

// ByFastener returns a finder that matches owners declaring a fastener with
// the given name.
func ByFastener(name string) Finder {
	return &fastenerFinder{name: name}
}

// predicateFinder matches owners satisfying a predicate.
type predicateFinder struct {
	fn   func(*core.Node) bool
	desc string
}

func (f *predicateFinder) Evaluate(root *core.Node) []*core.Node {
	return collectMatches(root, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches owners satisfying fn.
func ByPredicate(fn func(*core.Node) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// descendantFinder finds owners matching 'matching' that are descendants
// of owners matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(root *core.Node) []*core.Node {
	ancestors := f.of.Evaluate(root)
	if len(ancestors) == 0 {
		return nil
	}
	var results []*core.Node
	seen := make(map[*core.Node]bool)
	for _, ancestor := range ancestors {
		// Search within each ancestor's subtree (skip the ancestor itself)
		ancestor.VisitChildren(func(child *core.Node) bool {
			for _, match := range f.matching.Evaluate(child) {
				if !seen[match] {
					seen[match] = true
					results = append(results, match)
				}
			}
			return true
		})
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches owners satisfying 'matching'
// that are descendants of owners matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

// ancestorFinder finds owners matching 'matching' that are ancestors of
// owners matching 'of'.
type ancestorFinder struct {
	of       Finder
	matching Finder
}

func (f *ancestorFinder) Evaluate(root *core.Node) []*core.Node {
	descendants := f.of.Evaluate(root)
	if len(descendants) == 0 {
		return nil
	}
	candidates := make(map[*core.Node]bool)
	for _, n := range f.matching.Evaluate(root) {
		candidates[n] = true
	}
	var results []*core.Node
	seen := make(map[*core.Node]bool)
	for _, desc := range descendants {
		for p := desc.Parent(); p != nil; p = p.Parent() {
			if candidates[p] && !seen[p] {
				seen[p] = true
				results = append(results, p)
			}
		}
	}
	return results
}

func (f *ancestorFinder) Description() string {
	return fmt.Sprintf("Ancestor(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Ancestor returns a finder that matches owners satisfying 'matching' that
// are ancestors of owners matching 'of'. Results are ordered nearest first.
func Ancestor(of, matching Finder) Finder {
	return &ancestorFinder{of: of, matching: matching}
}

// collectMatches performs depth-first pre-order traversal, collecting
// owners that satisfy the predicate.
func collectMatches(root *core.Node, predicate func(*core.Node) bool) []*core.Node {
	var results []*core.Node
	walkTree(root, func(n *core.Node) bool {
		if predicate(n) {
			results = append(results, n)
		}
		return true
	})
	return results
}

// walkTree performs a depth-first pre-order traversal of the owner tree.
// The visitor returns false to skip the subtree below a node.
func walkTree(root *core.Node, visitor func(*core.Node) bool) {
	if !visitor(root) {
		return
	}
	root.VisitChildren(func(child *core.Node) bool {
		walkTree(child, visitor)
		return true
	})
}
