package pattern

import (
	"math"
	"slices"
)

// Attr identifies a body attribute a predicate tests.
type Attr uint8

const (
	AttrType Attr = iota
	AttrSubType
	AttrAtmosphere
	AttrName
	AttrGravity
	AttrTemperature
	AttrPressure
)

var attrNames = [...]string{
	AttrType:        "type",
	AttrSubType:     "subType",
	AttrAtmosphere:  "atmosphereType",
	AttrName:        "bodyName",
	AttrGravity:     "gravity",
	AttrTemperature: "surfaceTemperature",
	AttrPressure:    "surfacePressure",
}

// attrAliases maps every accepted document key to its attribute.
var attrAliases = map[string]Attr{
	"type":               AttrType,
	"subType":            AttrSubType,
	"subtype":            AttrSubType,
	"atmosphereType":     AttrAtmosphere,
	"atmosphere":         AttrAtmosphere,
	"bodyName":           AttrName,
	"gravity":            AttrGravity,
	"surfaceTemperature": AttrTemperature,
	"temperature":        AttrTemperature,
	"surfacePressure":    AttrPressure,
	"pressure":           AttrPressure,
}

// ParseAttr resolves a document key (canonical name or alias).
func ParseAttr(key string) (Attr, bool) {
	a, ok := attrAliases[key]
	return a, ok
}

// String returns the canonical document key.
func (a Attr) String() string {
	if int(a) < len(attrNames) {
		return attrNames[a]
	}
	return "unknown"
}

// Numeric reports whether the attribute holds a number.
func (a Attr) Numeric() bool {
	return a >= AttrGravity
}

// Predicate is a single test against one body. The set of predicates is
// closed: Membership, Range and Parent.
type Predicate interface {
	isPredicate()
}

// Membership requires a string attribute to equal one of Values.
// Values is sorted and free of duplicates.
type Membership struct {
	Attr   Attr
	Values []string
}

// Range requires a numeric attribute to lie in [Min, Max]. Open ends are
// represented by infinities.
type Range struct {
	Attr     Attr
	Min, Max float64
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// Parent requires some ancestor of the body to match Type and SubType.
// Both are wildcards (* and ?); an empty field matches anything.
type Parent struct {
	Type    string
	SubType string
}

func (Membership) isPredicate() {}
func (Range) isPredicate()      {}
func (Parent) isPredicate()     {}

// Has reports whether v is one of the allowed values.
func (m Membership) Has(v string) bool {
	_, ok := slices.BinarySearch(m.Values, v)
	return ok
}

// Term is a conjunct of the tree: a *Clause or an *AnyOf group.
type Term interface {
	isTerm()
}

// Clause is satisfied by a system when at least one body satisfies all
// predicates. A clause without predicates is satisfied by any body.
type Clause struct {
	// ID is the document-order index of the clause, unique within a Tree.
	ID         int
	Comment    string
	Predicates []Predicate
}

// AnyOf is satisfied when any of its clauses is.
type AnyOf struct {
	Name    string
	Clauses []*Clause
}

func (*Clause) isTerm() {}
func (*AnyOf) isTerm()  {}

// Tree is a validated pattern. Terms are ANDed.
type Tree struct {
	Description string
	// Name is a wildcard over the system name; "*" matches every system.
	Name  string
	Terms []Term
}

// Clauses returns every clause of the tree ordered by ID.
func (t *Tree) Clauses() []*Clause {
	var out []*Clause
	for _, term := range t.Terms {
		switch v := term.(type) {
		case *Clause:
			out = append(out, v)
		case *AnyOf:
			out = append(out, v.Clauses...)
		}
	}
	return out
}

// NumClauses returns the number of clauses in the tree.
func (t *Tree) NumClauses() int {
	return len(t.Clauses())
}

// MatchAll returns a tree that every system satisfies.
func MatchAll() *Tree {
	return &Tree{Name: "*"}
}

func openRange(a Attr) Range {
	return Range{Attr: a, Min: math.Inf(-1), Max: math.Inf(1)}
}
