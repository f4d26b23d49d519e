package matcher

import (
	"github.com/hupe1980/starscan/model"
	"github.com/hupe1980/starscan/pattern"
)

type membershipTest struct {
	m pattern.Membership
}

func (t membershipTest) Test(sys *model.System, i int) bool {
	v, ok := stringAttr(&sys.Bodies[i], t.m.Attr)
	return ok && t.m.Has(v)
}

type rangeTest struct {
	r pattern.Range
}

func (t rangeTest) Test(sys *model.System, i int) bool {
	v := numericAttr(&sys.Bodies[i], t.r.Attr)
	return v != nil && t.r.Contains(*v)
}

// parentTest accepts a body when any ancestor matches both globs.
type parentTest struct {
	typ, subType Glob
}

func (t parentTest) Test(sys *model.System, i int) bool {
	for a := range sys.Ancestors(i) {
		b := &sys.Bodies[a]
		if t.typ.Match(b.Type) && t.subType.Match(b.SubType) {
			return true
		}
	}
	return false
}

type neverTest struct{}

func (neverTest) Test(*model.System, int) bool { return false }

func stringAttr(b *model.Body, a pattern.Attr) (string, bool) {
	var v string
	switch a {
	case pattern.AttrType:
		v = b.Type
	case pattern.AttrSubType:
		v = b.SubType
	case pattern.AttrAtmosphere:
		v = b.Atmosphere
	case pattern.AttrName:
		v = b.Name
	}
	return v, v != ""
}

func numericAttr(b *model.Body, a pattern.Attr) *float64 {
	switch a {
	case pattern.AttrGravity:
		return b.Gravity
	case pattern.AttrTemperature:
		return b.Temperature
	case pattern.AttrPressure:
		return b.Pressure
	default:
		return nil
	}
}
