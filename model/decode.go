package model

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// ErrInvalidRecord is returned when a line decodes as JSON but violates the
// record invariants (missing name or coordinate, untyped body, bad parent
// reference).
var ErrInvalidRecord = errors.New("invalid record")

// UnmarshalJSON accepts both {"x":..,"y":..,"z":..} and [x, y, z].
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var arr []float64
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		if len(arr) != 3 {
			return fmt.Errorf("%w: coordinate needs 3 components, got %d", ErrInvalidRecord, len(arr))
		}
		c.X, c.Y, c.Z = arr[0], arr[1], arr[2]
		return nil
	}

	type plain Coordinate
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Coordinate(p)
	return nil
}

type wireBody struct {
	BodyID      *int64             `json:"bodyId"`
	Name        string             `json:"name"`
	Type        string             `json:"type"`
	SubType     string             `json:"subType"`
	Atmosphere  string             `json:"atmosphereType"`
	AtmosAlias  string             `json:"atmosphere"`
	Gravity     *float64           `json:"gravity"`
	Temperature *float64           `json:"surfaceTemperature"`
	TempAlias   *float64           `json:"temperature"`
	Pressure    *float64           `json:"surfacePressure"`
	PressAlias  *float64           `json:"pressure"`
	Parent      *int               `json:"parent"`
	Parents     []map[string]int64 `json:"parents"`
}

type wireSystem struct {
	Name       string      `json:"name"`
	ID64       uint64      `json:"id64"`
	Coords     *Coordinate `json:"coords"`
	Coordinate *Coordinate `json:"coordinate"`
	Bodies     []wireBody  `json:"bodies"`
}

// DecodeSystem parses one shard line into a System.
func DecodeSystem(line []byte) (*System, error) {
	var w wireSystem
	if err := json.Unmarshal(line, &w); err != nil {
		return nil, err
	}
	if w.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidRecord)
	}

	sys := &System{
		Name:   w.Name,
		ID64:   w.ID64,
		Bodies: make([]Body, len(w.Bodies)),
	}
	switch {
	case w.Coords != nil:
		sys.Coords = *w.Coords
	case w.Coordinate != nil:
		sys.Coords = *w.Coordinate
	default:
		return nil, fmt.Errorf("%w: missing coordinate", ErrInvalidRecord)
	}
	if !sys.Coords.IsFinite() {
		return nil, fmt.Errorf("%w: non-finite coordinate", ErrInvalidRecord)
	}

	byID := make(map[int64]int, len(w.Bodies))
	for i := range w.Bodies {
		if id := w.Bodies[i].BodyID; id != nil {
			if _, dup := byID[*id]; !dup {
				byID[*id] = i
			}
		}
	}

	for i := range w.Bodies {
		wb := &w.Bodies[i]
		if wb.Type == "" {
			return nil, fmt.Errorf("%w: body %d has no type", ErrInvalidRecord, i)
		}
		b := Body{
			ID:          wb.BodyID,
			Name:        wb.Name,
			Type:        wb.Type,
			SubType:     wb.SubType,
			Atmosphere:  firstString(wb.Atmosphere, wb.AtmosAlias),
			Gravity:     wb.Gravity,
			Temperature: firstFloat(wb.Temperature, wb.TempAlias),
			Pressure:    firstFloat(wb.Pressure, wb.PressAlias),
			Parent:      NoParent,
		}

		switch {
		case wb.Parent != nil && *wb.Parent != NoParent:
			p := *wb.Parent
			if p < 0 || p >= len(w.Bodies) || p == i {
				return nil, fmt.Errorf("%w: body %d has parent index %d", ErrInvalidRecord, i, p)
			}
			b.Parent = p
		case len(wb.Parents) > 0:
			b.Parent = resolveParents(wb.Parents, byID, i)
		}

		sys.Bodies[i] = b
	}

	return sys, nil
}

// resolveParents maps a Spansh parent list to the index of the nearest
// parent that is present in the record. Barycentres ("Null") are usually
// not listed as bodies and are skipped that way.
func resolveParents(parents []map[string]int64, byID map[int64]int, self int) int {
	for _, entry := range parents {
		for _, id := range entry {
			if idx, ok := byID[id]; ok && idx != self {
				return idx
			}
		}
	}
	return NoParent
}

func firstString(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstFloat(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}
