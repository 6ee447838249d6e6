package aot

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// valueKind tags the variant held by a Value.
type valueKind uint8

const (
	kindString valueKind = iota
	kindInt
	kindFloat
)

// Value is a single filter token. It holds either a string or a number and is
// kept as given until serialization.
type Value struct {
	kind valueKind
	str  string
	num  int64
	flt  float64
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: kindString, str: s}
}

// Int returns an integer Value.
func Int(i int64) Value {
	return Value{kind: kindInt, num: i}
}

// Float returns a floating point Value.
func Float(f float64) Value {
	return Value{kind: kindFloat, flt: f}
}

// ValueOf converts a Go value to a Value. Strings and numeric kinds keep their
// variant, time.Time is rendered as RFC3339 with fractional seconds only when
// they are non-zero and anything else goes through fmt.Sprint.
func ValueOf(v any) Value {
	switch val := v.(type) {
	case Value:
		return val
	case string:
		return String(val)
	case int:
		return Int(int64(val))
	case int8:
		return Int(int64(val))
	case int16:
		return Int(int64(val))
	case int32:
		return Int(int64(val))
	case int64:
		return Int(val)
	case uint:
		return uintValue(uint64(val))
	case uint8:
		return Int(int64(val))
	case uint16:
		return Int(int64(val))
	case uint32:
		return Int(int64(val))
	case uint64:
		return uintValue(val)
	case float32:
		return Float(float64(val))
	case float64:
		return Float(val)
	case time.Time:
		return String(val.Format(time.RFC3339Nano))
	case fmt.Stringer:
		return String(val.String())
	default:
		return String(fmt.Sprint(val))
	}
}

func uintValue(u uint64) Value {
	if u > math.MaxInt64 {
		return String(strconv.FormatUint(u, 10))
	}

	return Int(int64(u))
}

// IsNumber reports whether the value holds a number.
func (v Value) IsNumber() bool {
	return v.kind == kindInt || v.kind == kindFloat
}

// String renders the value as it appears on the wire.
func (v Value) String() string {
	switch v.kind {
	case kindInt:
		return strconv.FormatInt(v.num, 10)
	case kindFloat:
		return formatFloat(v.flt)
	default:
		return v.str
	}
}

// formatFloat renders plain decimals, switching to exponent notation below
// 1e-6 and from 1e21 up, with the exponent unpadded (1e+21, 1e-7).
func formatFloat(f float64) string {
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) || math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")

	return mantissa + "e" + sign + digits
}

// Group is one ordered sequence of values attached to a key. It is serialized
// as a single query parameter.
type Group []Value

// String joins the group tokens with ':'.
func (g Group) String() string {
	parts := make([]string, len(g))
	for i, v := range g {
		parts[i] = v.String()
	}

	return strings.Join(parts, ":")
}

// QueryParam is a single serialized (key, value) pair.
type QueryParam struct {
	Key   string
	Value string
}

// MergeMode selects how Merge combines two filter sets.
type MergeMode int

// Merge modes.
const (
	// MergeAnd appends the other set's groups after the receiver's.
	MergeAnd MergeMode = iota
	// MergeOr replaces the receiver's groups with the other set's, key by key.
	MergeOr
)

func (m MergeMode) String() string {
	switch m {
	case MergeAnd:
		return "and"
	case MergeOr:
		return "or"
	default:
		return "merge(" + strconv.Itoa(int(m)) + ")"
	}
}

// FilterSet is an ordered multimap from filter keys to value groups.
//
// And and Or mutate the receiver and return it so calls can be chained. A
// FilterSet is not safe for concurrent use; Clone it before sharing.
type FilterSet struct {
	keys   []string
	groups map[string][]Group
}

// NewFilterSet returns an empty filter set.
func NewFilterSet() *FilterSet {
	return &FilterSet{groups: make(map[string][]Group)}
}

// F builds a filter set holding a single group of values under key.
//
//	aot.F("value", "lt", 42)          // value=lt:42
//	aot.F("timestamp", "ge", t)       // timestamp=ge:2018-04-21T15:00:00Z
func F(key string, values ...any) *FilterSet {
	group := make(Group, len(values))
	for i, v := range values {
		group[i] = ValueOf(v)
	}

	f := NewFilterSet()
	f.keys = append(f.keys, key)
	f.groups[key] = []Group{group}

	return f
}

// And merges other into f: groups for keys f already holds are appended after
// the existing ones, new keys are added at the end. A nil other is a no-op.
func (f *FilterSet) And(other *FilterSet) *FilterSet {
	if other == nil {
		return f
	}

	f.init()

	for _, key := range other.keys {
		incoming := cloneGroups(other.groups[key])

		existing, ok := f.groups[key]
		if !ok {
			f.keys = append(f.keys, key)
		}

		f.groups[key] = append(existing, incoming...)
	}

	return f
}

// Or merges other into f: for every key in other the receiver's groups are
// replaced by other's. Keys only present in f are left untouched. A nil other
// is a no-op.
func (f *FilterSet) Or(other *FilterSet) *FilterSet {
	if other == nil {
		return f
	}

	f.init()

	for _, key := range other.keys {
		if _, ok := f.groups[key]; !ok {
			f.keys = append(f.keys, key)
		}

		f.groups[key] = cloneGroups(other.groups[key])
	}

	return f
}

// Merge combines an arbitrary value into f using mode. It fails with a
// *TypeMismatchError when other is not a filter set, leaving f unchanged.
func (f *FilterSet) Merge(mode MergeMode, other any) (*FilterSet, error) {
	var set *FilterSet

	switch val := other.(type) {
	case *FilterSet:
		set = val
	case FilterSet:
		set = &val
	}

	if set == nil {
		return f, &TypeMismatchError{Op: mode.String(), Got: fmt.Sprintf("%T", other)}
	}

	switch mode {
	case MergeAnd:
		return f.And(set), nil
	case MergeOr:
		return f.Or(set), nil
	default:
		return f, fmt.Errorf("%w: %s", ErrInvalidMergeMode, mode)
	}
}

// ToQueryParams serializes the set into ordered (key, value) pairs. Each group
// becomes one pair whose value is its tokens joined with ':'. Keys holding more
// than one group are suffixed with "[]".
func (f *FilterSet) ToQueryParams() []QueryParam {
	if f == nil {
		return nil
	}

	params := make([]QueryParam, 0, len(f.keys))

	for _, key := range f.keys {
		groups := f.groups[key]

		name := key
		if len(groups) > 1 {
			name = key + "[]"
		}

		for _, group := range groups {
			params = append(params, QueryParam{Key: name, Value: group.String()})
		}
	}

	return params
}

// Values returns the serialized pairs as url.Values. Note that url.Values does
// not keep key order; use Encode when order matters on the wire.
func (f *FilterSet) Values() url.Values {
	values := url.Values{}
	for _, p := range f.ToQueryParams() {
		values.Add(p.Key, p.Value)
	}

	return values
}

// Encode renders the set as a URL query string in serialization order.
func (f *FilterSet) Encode() string {
	params := f.ToQueryParams()
	parts := make([]string, len(params))

	for i, p := range params {
		parts[i] = url.QueryEscape(p.Key) + "=" + url.QueryEscape(p.Value)
	}

	return strings.Join(parts, "&")
}

// String renders the set unescaped, mostly for logs.
func (f *FilterSet) String() string {
	params := f.ToQueryParams()
	parts := make([]string, len(params))

	for i, p := range params {
		parts[i] = p.Key + "=" + p.Value
	}

	return strings.Join(parts, "&")
}

// Keys returns the keys in insertion order.
func (f *FilterSet) Keys() []string {
	if f == nil {
		return nil
	}

	return append([]string(nil), f.keys...)
}

// Groups returns a copy of the groups stored under key.
func (f *FilterSet) Groups(key string) []Group {
	if f == nil {
		return nil
	}

	return cloneGroups(f.groups[key])
}

// Len returns the number of keys.
func (f *FilterSet) Len() int {
	if f == nil {
		return 0
	}

	return len(f.keys)
}

// IsEmpty reports whether the set holds no keys.
func (f *FilterSet) IsEmpty() bool {
	return f.Len() == 0
}

// Clone returns a deep copy of f.
func (f *FilterSet) Clone() *FilterSet {
	clone := NewFilterSet()
	if f == nil {
		return clone
	}

	clone.keys = append(clone.keys, f.keys...)
	for key, groups := range f.groups {
		clone.groups[key] = cloneGroups(groups)
	}

	return clone
}

func (f *FilterSet) init() {
	if f.groups == nil {
		f.groups = make(map[string][]Group)
	}
}

func cloneGroups(groups []Group) []Group {
	if groups == nil {
		return nil
	}

	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = append(Group(nil), g...)
	}

	return out
}

// ParseFilter parses a "key:token:token" expression into a filter set with a
// single group. The key must be non-empty and at least one token is required.
func ParseFilter(expr string) (*FilterSet, error) {
	key, rest, found := strings.Cut(expr, ":")
	if key == "" || !found || rest == "" {
		return nil, fmt.Errorf("%w: %q (expected key:op:value)", ErrInvalidFilter, expr)
	}

	tokens := strings.Split(rest, ":")
	values := make([]any, len(tokens))

	for i, t := range tokens {
		values[i] = t
	}

	return F(key, values...), nil
}

// Comparison helpers for the operators understood by the API.

// Eq builds key=eq:value.
func Eq(key string, value any) *FilterSet { return F(key, "eq", value) }

// Ne builds key=ne:value.
func Ne(key string, value any) *FilterSet { return F(key, "ne", value) }

// Lt builds key=lt:value.
func Lt(key string, value any) *FilterSet { return F(key, "lt", value) }

// Le builds key=le:value.
func Le(key string, value any) *FilterSet { return F(key, "le", value) }

// Gt builds key=gt:value.
func Gt(key string, value any) *FilterSet { return F(key, "gt", value) }

// Ge builds key=ge:value.
func Ge(key string, value any) *FilterSet { return F(key, "ge", value) }

// In builds key=in:v1:v2:...
func In(key string, values ...any) *FilterSet {
	return F(key, append([]any{"in"}, values...)...)
}

// Within builds key=within:polygon, where polygon is a WKT or GeoJSON string.
func Within(key, polygon string) *FilterSet { return F(key, "within", polygon) }

// Proximity builds key=proximity:meters:point.
func Proximity(key string, meters any, point string) *FilterSet {
	return F(key, "proximity", meters, point)
}

// Order builds order=direction:field, e.g. Order("desc", "timestamp").
func Order(direction, field string) *FilterSet { return F("order", direction, field) }

// Size builds size=n.
func Size(n int) *FilterSet { return F("size", n) }

// Page builds page=n.
func Page(n int) *FilterSet { return F("page", n) }
