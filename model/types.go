package model

import (
	"fmt"
	"iter"
	"math"
)

// NoParent marks a body without a parent.
const NoParent = -1

// Coordinate is a galactic position in light years.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns c + o.
func (c Coordinate) Add(o Coordinate) Coordinate {
	return Coordinate{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

// Sub returns c - o.
func (c Coordinate) Sub(o Coordinate) Coordinate {
	return Coordinate{X: c.X - o.X, Y: c.Y - o.Y, Z: c.Z - o.Z}
}

// Scale returns c * f.
func (c Coordinate) Scale(f float64) Coordinate {
	return Coordinate{X: c.X * f, Y: c.Y * f, Z: c.Z * f}
}

// Dot returns the dot product of c and o.
func (c Coordinate) Dot(o Coordinate) float64 {
	return c.X*o.X + c.Y*o.Y + c.Z*o.Z
}

// Len returns the euclidean length of c.
func (c Coordinate) Len() float64 {
	return math.Sqrt(c.Dot(c))
}

// DistanceTo returns the euclidean distance between c and o.
func (c Coordinate) DistanceTo(o Coordinate) float64 {
	return c.Sub(o).Len()
}

// IsFinite reports whether all components are finite numbers.
func (c Coordinate) IsFinite() bool {
	return isFinite(c.X) && isFinite(c.Y) && isFinite(c.Z)
}

// String returns a string representation of the Coordinate.
func (c Coordinate) String() string {
	return fmt.Sprintf("(%g, %g, %g)", c.X, c.Y, c.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Body is a physical body (star, planet, belt, ...) inside a System.
//
// Numeric attributes are optional; a nil pointer means the attribute is
// absent from the record.
type Body struct {
	ID          *int64   `json:"bodyId,omitempty"`
	Name        string   `json:"name,omitempty"`
	Type        string   `json:"type"`
	SubType     string   `json:"subType,omitempty"`
	Atmosphere  string   `json:"atmosphereType,omitempty"`
	Gravity     *float64 `json:"gravity,omitempty"`
	Temperature *float64 `json:"surfaceTemperature,omitempty"`
	Pressure    *float64 `json:"surfacePressure,omitempty"`
	// Parent is the index of the parent body in System.Bodies, or NoParent.
	Parent int `json:"parent"`
}

// HasParent reports whether the body references a parent.
func (b *Body) HasParent() bool {
	return b.Parent != NoParent
}

// System is one star system and its bodies.
type System struct {
	Name   string     `json:"name"`
	ID64   uint64     `json:"id64,omitempty"`
	Coords Coordinate `json:"coords"`
	Bodies []Body     `json:"bodies"`
}

// Ancestors yields the indices of the ancestors of body i, nearest first.
//
// The walk is bounded by the number of bodies, so a malformed parent cycle
// terminates instead of looping.
func (s *System) Ancestors(i int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if i < 0 || i >= len(s.Bodies) {
			return
		}
		p := s.Bodies[i].Parent
		for steps := 0; p >= 0 && p < len(s.Bodies) && steps < len(s.Bodies); steps++ {
			if !yield(p) {
				return
			}
			p = s.Bodies[p].Parent
		}
	}
}
