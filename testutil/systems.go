package testutil

import (
	"github.com/hupe1980/starscan/model"
)

// BodyOption sets an optional body attribute.
type BodyOption func(*model.Body)

// Gravity sets the surface gravity.
func Gravity(g float64) BodyOption {
	return func(b *model.Body) { b.Gravity = &g }
}

// Temperature sets the surface temperature.
func Temperature(k float64) BodyOption {
	return func(b *model.Body) { b.Temperature = &k }
}

// Pressure sets the surface pressure.
func Pressure(p float64) BodyOption {
	return func(b *model.Body) { b.Pressure = &p }
}

// Atmosphere sets the atmosphere type.
func Atmosphere(a string) BodyOption {
	return func(b *model.Body) { b.Atmosphere = a }
}

// Named sets the body name.
func Named(name string) BodyOption {
	return func(b *model.Body) { b.Name = name }
}

// Body builds a body with the given type, subtype and parent index.
func Body(typ, subType string, parent int, opts ...BodyOption) model.Body {
	b := model.Body{Type: typ, SubType: subType, Parent: parent}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// System builds a system at (x, y, z).
func System(name string, x, y, z float64, bodies ...model.Body) model.System {
	return model.System{
		Name:   name,
		Coords: model.Coordinate{X: x, Y: y, Z: z},
		Bodies: bodies,
	}
}
