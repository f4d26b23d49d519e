// Package matcher evaluates pattern trees against star systems.
package matcher

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/starscan/model"
	"github.com/hupe1980/starscan/pattern"
)

// Result is the outcome of evaluating a tree against one system.
type Result struct {
	Matched bool
	// Bodies holds the indices of bodies that satisfied at least one
	// satisfied clause. Empty when Matched is false.
	Bodies *roaring.Bitmap
	// Clauses lists the IDs of satisfied clauses in ascending order.
	Clauses []int
}

// BodyIndices returns the matched body indices in ascending order.
func (r Result) BodyIndices() []int {
	if r.Bodies == nil {
		return nil
	}
	out := make([]int, 0, r.Bodies.GetCardinality())
	it := r.Bodies.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// bodyTest is one compiled predicate. Implementations never fail: an
// absent attribute simply does not match.
type bodyTest interface {
	Test(sys *model.System, i int) bool
}

type compiledClause struct {
	id    int
	tests []bodyTest
}

type compiledTerm struct {
	clauses []compiledClause
}

// Matcher is a compiled pattern tree. It is immutable and safe for
// concurrent use.
type Matcher struct {
	name  Glob
	terms []compiledTerm
}

// Compile prepares tree for repeated evaluation.
func Compile(tree *pattern.Tree) *Matcher {
	m := &Matcher{name: CompileGlob(tree.Name)}
	for _, term := range tree.Terms {
		switch t := term.(type) {
		case *pattern.Clause:
			m.terms = append(m.terms, compiledTerm{clauses: []compiledClause{compileClause(t)}})
		case *pattern.AnyOf:
			ct := compiledTerm{}
			for _, c := range t.Clauses {
				ct.clauses = append(ct.clauses, compileClause(c))
			}
			m.terms = append(m.terms, ct)
		}
	}
	return m
}

// Evaluate compiles tree and evaluates it against sys.
func Evaluate(tree *pattern.Tree, sys *model.System) Result {
	return Compile(tree).Evaluate(sys)
}

// MatchName reports whether the system name passes the name wildcard.
func (m *Matcher) MatchName(name string) bool {
	return m.name.Match(name)
}

// Evaluate tests sys against the compiled tree.
//
// Every clause is evaluated on its own over all bodies, so the outcome does
// not depend on the order of terms or bodies.
func (m *Matcher) Evaluate(sys *model.System) Result {
	res := Result{Bodies: roaring.New()}
	if !m.name.Match(sys.Name) {
		return res
	}

	matched := true
	for _, term := range m.terms {
		termOK := false
		for _, c := range term.clauses {
			set := c.bodies(sys)
			if set.IsEmpty() {
				continue
			}
			termOK = true
			res.Clauses = append(res.Clauses, c.id)
			res.Bodies.Or(set)
		}
		if !termOK {
			matched = false
		}
	}
	if !matched {
		return Result{Bodies: roaring.New()}
	}
	res.Matched = true
	slices.Sort(res.Clauses)
	return res
}

func (c compiledClause) bodies(sys *model.System) *roaring.Bitmap {
	set := roaring.New()
	for i := range sys.Bodies {
		if c.accepts(sys, i) {
			set.Add(uint32(i))
		}
	}
	return set
}

func (c compiledClause) accepts(sys *model.System, i int) bool {
	for _, t := range c.tests {
		if !t.Test(sys, i) {
			return false
		}
	}
	return true
}

func compileClause(c *pattern.Clause) compiledClause {
	out := compiledClause{id: c.ID, tests: make([]bodyTest, 0, len(c.Predicates))}
	for _, p := range c.Predicates {
		out.tests = append(out.tests, compilePredicate(p))
	}
	return out
}

func compilePredicate(p pattern.Predicate) bodyTest {
	switch v := p.(type) {
	case pattern.Membership:
		return membershipTest{m: v}
	case pattern.Range:
		return rangeTest{r: v}
	case pattern.Parent:
		return parentTest{typ: CompileGlob(v.Type), subType: CompileGlob(v.SubType)}
	default:
		return neverTest{}
	}
}
