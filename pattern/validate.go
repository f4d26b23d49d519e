package pattern

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MaxWildcardLen bounds the length of a wildcard or value string.
const MaxWildcardLen = 256

var patternValidate *validator.Validate

func init() {
	patternValidate = validator.New(validator.WithRequiredStructEnabled())
	patternValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = patternValidate.RegisterValidation("wildcard", validateWildcard)
}

// validateWildcard rejects overlong strings and control characters.
func validateWildcard(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) > MaxWildcardLen {
		return false
	}
	return !strings.ContainsFunc(s, unicode.IsControl)
}

type rawPattern struct {
	Description string            `json:"description"`
	Name        string            `json:"name" validate:"wildcard"`
	Bodies      []json.RawMessage `json:"bodies"`
}

type rawRange struct {
	Min *float64 `json:"min" validate:"required_without=Max"`
	Max *float64 `json:"max" validate:"required_without=Min"`
}

type rawParent struct {
	Type    string `json:"type" validate:"required_without=SubType,wildcard"`
	SubType string `json:"subType" validate:"wildcard"`
}

type rawGroup struct {
	AnyOf []json.RawMessage `json:"anyOf" validate:"required,min=1"`
	Group string            `json:"group" validate:"wildcard"`
}

// Validate decodes and checks a pattern document. On failure the error is a
// SchemaErrors listing every problem found, ordered by path.
func Validate(raw []byte) (*Tree, error) {
	v := &validation{}
	tree := v.document(raw)
	if len(v.errs) > 0 {
		slices.SortStableFunc(v.errs, func(a, b *SchemaError) int {
			return strings.Compare(a.Path, b.Path)
		})
		v.errs = slices.CompactFunc(v.errs, func(a, b *SchemaError) bool {
			return *a == *b
		})
		return nil, v.errs
	}
	return tree, nil
}

type validation struct {
	errs   SchemaErrors
	nextID int
}

func (v *validation) fail(path, format string, args ...any) {
	v.errs = append(v.errs, &SchemaError{Path: path, Message: fmt.Sprintf(format, args...)})
}

// check runs the struct validator and reports each field failure.
func (v *validation) check(path string, s any) bool {
	err := patternValidate.Struct(s)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v.fail(path, "%v", err)
		return false
	}
	for _, fe := range verrs {
		p := path + "/" + fe.Field()
		switch fe.Tag() {
		case "required_without":
			names := []string{fe.Field(), jsonName(s, fe.Param())}
			slices.Sort(names)
			v.fail(path, "one of %s is required", strings.Join(names, ", "))
		case "required", "min":
			v.fail(p, "must not be empty")
		case "wildcard":
			v.fail(p, "invalid wildcard (at most %d characters, no control characters)", MaxWildcardLen)
		default:
			v.fail(p, "failed %q check", fe.Tag())
		}
	}
	return false
}

func jsonName(s any, field string) string {
	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(field); ok {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	}
	return field
}

func (v *validation) document(raw []byte) *Tree {
	fields, ok := v.object("", raw)
	if !ok {
		return nil
	}
	for key := range fields {
		switch key {
		case "description", "name", "bodies":
		default:
			if !ignoredKey(key) {
				v.fail("/"+key, "unsupported key")
			}
		}
	}

	var doc rawPattern
	if !v.decode("", raw, &doc) || !v.check("", &doc) {
		return nil
	}
	if body, ok := fields["bodies"]; ok && isNull(body) {
		v.fail("/bodies", "null is not allowed")
	}

	tree := &Tree{Description: doc.Description, Name: doc.Name}
	if tree.Name == "" {
		tree.Name = "*"
	}
	for i, elem := range doc.Bodies {
		path := "/bodies/" + strconv.Itoa(i)
		if term := v.term(path, elem); term != nil {
			tree.Terms = append(tree.Terms, term)
		}
	}
	return tree
}

func (v *validation) term(path string, raw json.RawMessage) Term {
	fields, ok := v.object(path, raw)
	if !ok {
		return nil
	}
	if _, isGroup := fields["anyOf"]; isGroup {
		return v.group(path, raw, fields)
	}
	return v.clause(path, fields)
}

func (v *validation) group(path string, raw json.RawMessage, fields map[string]json.RawMessage) Term {
	for key := range fields {
		if key != "anyOf" && key != "group" && !ignoredKey(key) {
			v.fail(path+"/"+key, "unsupported key in anyOf group")
		}
	}
	var g rawGroup
	if !v.decode(path, raw, &g) || !v.check(path, &g) {
		return nil
	}
	out := &AnyOf{Name: g.Group}
	for i, elem := range g.AnyOf {
		p := path + "/anyOf/" + strconv.Itoa(i)
		member, ok := v.object(p, elem)
		if !ok {
			continue
		}
		if _, nested := member["anyOf"]; nested {
			v.fail(p, "nested anyOf is not supported")
			continue
		}
		if c := v.clause(p, member); c != nil {
			out.Clauses = append(out.Clauses, c)
		}
	}
	return out
}

func (v *validation) clause(path string, fields map[string]json.RawMessage) *Clause {
	c := &Clause{ID: v.nextID}
	v.nextID++

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		raw := fields[key]
		p := path + "/" + key
		switch {
		case key == "comment":
			_ = json.Unmarshal(raw, &c.Comment)
		case ignoredKey(key):
		case key == "parents":
			c.Predicates = append(c.Predicates, v.parents(p, raw)...)
		default:
			attr, ok := ParseAttr(key)
			if !ok {
				v.fail(p, "unknown attribute")
				continue
			}
			if pred := v.value(p, attr, raw); pred != nil {
				c.Predicates = append(c.Predicates, pred)
			}
		}
	}
	return c
}

func (v *validation) parents(path string, raw json.RawMessage) []Predicate {
	var list []json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &list) != nil {
		v.fail(path, "expected an array of {type, subType} objects")
		return nil
	}
	var out []Predicate
	for i, elem := range list {
		p := path + "/" + strconv.Itoa(i)
		var rp rawParent
		if !v.decodeStrict(p, elem, &rp) || !v.check(p, &rp) {
			continue
		}
		if rp.Type == "*" {
			rp.Type = ""
		}
		if rp.SubType == "*" {
			rp.SubType = ""
		}
		out = append(out, Parent{Type: rp.Type, SubType: rp.SubType})
	}
	return out
}

// value converts one attribute value. A nil result with no recorded error
// means the value is the "*" wildcard.
func (v *validation) value(path string, attr Attr, raw json.RawMessage) Predicate {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		v.fail(path, "null is not allowed")
		return nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			v.fail(path, "invalid string")
			return nil
		}
		if s == "*" {
			return nil
		}
		if attr.Numeric() {
			v.fail(path, "expected a number or {min, max} range")
			return nil
		}
		return v.membership(path, attr, []string{s})
	case '[':
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			v.fail(path, "expected an array of strings")
			return nil
		}
		if len(list) == 0 {
			v.fail(path, "must not be empty")
			return nil
		}
		if slices.Contains(list, "*") {
			return nil
		}
		if attr.Numeric() {
			v.fail(path, "expected a number or {min, max} range")
			return nil
		}
		return v.membership(path, attr, list)
	case '{':
		if !attr.Numeric() {
			v.fail(path, "ranges apply only to numeric attributes")
			return nil
		}
		var rr rawRange
		if !v.decodeStrict(path, raw, &rr) || !v.check(path, &rr) {
			return nil
		}
		r := openRange(attr)
		if rr.Min != nil {
			r.Min = *rr.Min
		}
		if rr.Max != nil {
			r.Max = *rr.Max
		}
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
			v.fail(path, "range bounds must be numbers")
			return nil
		}
		if r.Min > r.Max {
			v.fail(path+"/min", "min %g exceeds max %g", r.Min, r.Max)
			return nil
		}
		return r
	case 't', 'f':
		v.fail(path, "booleans are not supported")
		return nil
	default:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			v.fail(path, "invalid value")
			return nil
		}
		if !attr.Numeric() {
			v.fail(path, "expected a string or array of strings")
			return nil
		}
		return Range{Attr: attr, Min: f, Max: f}
	}
}

func (v *validation) membership(path string, attr Attr, values []string) Predicate {
	for i, s := range values {
		if len(s) > MaxWildcardLen {
			v.fail(path+"/"+strconv.Itoa(i), "value longer than %d characters", MaxWildcardLen)
			return nil
		}
	}
	vals := slices.Clone(values)
	slices.Sort(vals)
	return Membership{Attr: attr, Values: slices.Compact(vals)}
}

func (v *validation) object(path string, raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		v.fail(path, "expected an object")
		return nil, false
	}
	return fields, true
}

func (v *validation) decode(path string, raw []byte, dst any) bool {
	if err := json.Unmarshal(raw, dst); err != nil {
		v.fail(path, "%s", describeJSONError(err))
		return false
	}
	return true
}

func (v *validation) decodeStrict(path string, raw []byte, dst any) bool {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		v.fail(path, "%s", describeJSONError(err))
		return false
	}
	return true
}

func describeJSONError(err error) string {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		if te.Field != "" {
			return fmt.Sprintf("%s: expected %s, got %s", te.Field, te.Type, te.Value)
		}
		return fmt.Sprintf("expected %s, got %s", te.Type, te.Value)
	}
	return err.Error()
}

// ignoredKey reports keys carried for humans only.
func ignoredKey(key string) bool {
	return strings.HasPrefix(key, "comment") ||
		strings.HasPrefix(key, "_") ||
		key == "description" ||
		key == "note"
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
