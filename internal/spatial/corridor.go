package spatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/starscan/model"
)

// ErrGeometry is matched by every GeometryError.
var ErrGeometry = errors.New("invalid geometry")

// GeometryError reports degenerate or invalid corridor or grid parameters.
type GeometryError struct {
	Reason string
}

func (e *GeometryError) Error() string {
	return "invalid geometry: " + e.Reason
}

// Unwrap returns ErrGeometry.
func (e *GeometryError) Unwrap() error { return ErrGeometry }

func geometryErrorf(format string, args ...any) error {
	return &GeometryError{Reason: fmt.Sprintf(format, args...)}
}

// Corridor is the set of points within Radius of the segment Start-End.
// When Start equals End the corridor is a sphere.
type Corridor struct {
	Start, End model.Coordinate
	Radius     float64

	dir  model.Coordinate
	len2 float64
}

// NewCorridor validates the parameters and returns a corridor.
func NewCorridor(start, end model.Coordinate, radius float64) (*Corridor, error) {
	if !start.IsFinite() {
		return nil, geometryErrorf("start %v is not finite", start)
	}
	if !end.IsFinite() {
		return nil, geometryErrorf("end %v is not finite", end)
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius <= 0 {
		return nil, geometryErrorf("radius must be a positive finite number, got %g", radius)
	}
	dir := end.Sub(start)
	return &Corridor{
		Start:  start,
		End:    end,
		Radius: radius,
		dir:    dir,
		len2:   dir.Dot(dir),
	}, nil
}

// IsSphere reports whether the corridor degenerates to a sphere.
func (c *Corridor) IsSphere() bool {
	return c.len2 == 0
}

// Nearest returns the point of the segment closest to p.
func (c *Corridor) Nearest(p model.Coordinate) model.Coordinate {
	if c.len2 == 0 {
		return c.Start
	}
	t := p.Sub(c.Start).Dot(c.dir) / c.len2
	t = max(0, min(1, t))
	return c.Start.Add(c.dir.Scale(t))
}

// Distance returns the distance from p to the segment.
func (c *Corridor) Distance(p model.Coordinate) float64 {
	return p.DistanceTo(c.Nearest(p))
}

// Contains reports whether p lies within the corridor, boundary included.
func (c *Corridor) Contains(p model.Coordinate) bool {
	return c.Distance(p) <= c.Radius
}

// Bounds returns the axis-aligned box of the segment expanded by Radius.
func (c *Corridor) Bounds() Box {
	r := model.Coordinate{X: c.Radius, Y: c.Radius, Z: c.Radius}
	lo := model.Coordinate{X: min(c.Start.X, c.End.X), Y: min(c.Start.Y, c.End.Y), Z: min(c.Start.Z, c.End.Z)}
	hi := model.Coordinate{X: max(c.Start.X, c.End.X), Y: max(c.Start.Y, c.End.Y), Z: max(c.Start.Z, c.End.Z)}
	return Box{Min: lo.Sub(r), Max: hi.Add(r)}
}

// Box is an axis-aligned box, bounds inclusive.
type Box struct {
	Min, Max model.Coordinate
}
