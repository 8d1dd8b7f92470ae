package unitypes

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Value is a typed argument value produced by coercion. The set of implementations is
// closed: every concrete type below corresponds to exactly one KindType.
type Value interface {
	// Type returns the kind variant this value was coerced to.
	Type() KindType
	// String renders the value for display.
	String() string
	// Interface returns the underlying Go value.
	Interface() any

	value()
}

// StringValue holds a String kind value.
type StringValue string

// IntegerValue holds an Integer kind value.
type IntegerValue int64

// FloatValue holds a Float kind value.
type FloatValue float64

// BooleanValue holds a Boolean kind value.
type BooleanValue bool

// PathValue holds a Path kind value.
type PathValue string

// FileValue holds a path that referred to an existing file at coercion time.
type FileValue string

// DirectoryValue holds a path that referred to an existing directory at coercion time.
type DirectoryValue string

// EnumValue holds the selected choice of an Enum kind.
type EnumValue string

// URLValue holds a parsed URL.
type URLValue struct {
	URL *url.URL
}

// DateTimeValue holds a parsed timestamp.
type DateTimeValue struct {
	Time time.Time
}

// PatternValue holds a compiled regular expression.
type PatternValue struct {
	Regexp *regexp.Regexp
}

// ListValue holds coerced list items in input order.
type ListValue []Value

// MapValue holds coerced map entries keyed by their raw key text.
type MapValue map[string]Value

// JSONStringValue holds a JSON document as validated text.
type JSONStringValue string

// ObjectValue holds a decoded JSON object.
type ObjectValue map[string]any

func (StringValue) Type() KindType     { return KindString }
func (IntegerValue) Type() KindType    { return KindInteger }
func (FloatValue) Type() KindType      { return KindFloat }
func (BooleanValue) Type() KindType    { return KindBoolean }
func (PathValue) Type() KindType       { return KindPath }
func (FileValue) Type() KindType       { return KindFile }
func (DirectoryValue) Type() KindType  { return KindDirectory }
func (EnumValue) Type() KindType       { return KindEnum }
func (URLValue) Type() KindType        { return KindURL }
func (DateTimeValue) Type() KindType   { return KindDateTime }
func (PatternValue) Type() KindType    { return KindPattern }
func (ListValue) Type() KindType       { return KindList }
func (MapValue) Type() KindType        { return KindMap }
func (JSONStringValue) Type() KindType { return KindJSONString }
func (ObjectValue) Type() KindType     { return KindObject }

func (v StringValue) String() string     { return string(v) }
func (v IntegerValue) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v FloatValue) String() string      { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v BooleanValue) String() string    { return strconv.FormatBool(bool(v)) }
func (v PathValue) String() string       { return string(v) }
func (v FileValue) String() string       { return string(v) }
func (v DirectoryValue) String() string  { return string(v) }
func (v EnumValue) String() string       { return string(v) }
func (v JSONStringValue) String() string { return string(v) }

func (v URLValue) String() string {
	if v.URL == nil {
		return ""
	}
	return v.URL.String()
}

func (v DateTimeValue) String() string { return v.Time.Format(time.RFC3339) }

func (v PatternValue) String() string {
	if v.Regexp == nil {
		return ""
	}
	return v.Regexp.String()
}

func (v ListValue) String() string {
	items := make([]string, len(v))
	for i, item := range v {
		items[i] = item.String()
	}
	return "[" + strings.Join(items, ", ") + "]"
}

func (v MapValue) String() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]string, len(keys))
	for i, k := range keys {
		entries[i] = fmt.Sprintf("%s=%s", k, v[k].String())
	}
	return "{" + strings.Join(entries, ", ") + "}"
}

func (v ObjectValue) String() string {
	data, err := json.Marshal(map[string]any(v))
	if err != nil {
		return "{}"
	}
	return string(data)
}

func (v StringValue) Interface() any     { return string(v) }
func (v IntegerValue) Interface() any    { return int64(v) }
func (v FloatValue) Interface() any      { return float64(v) }
func (v BooleanValue) Interface() any    { return bool(v) }
func (v PathValue) Interface() any       { return string(v) }
func (v FileValue) Interface() any       { return string(v) }
func (v DirectoryValue) Interface() any  { return string(v) }
func (v EnumValue) Interface() any       { return string(v) }
func (v URLValue) Interface() any        { return v.URL }
func (v DateTimeValue) Interface() any   { return v.Time }
func (v PatternValue) Interface() any    { return v.Regexp }
func (v JSONStringValue) Interface() any { return string(v) }
func (v ObjectValue) Interface() any     { return map[string]any(v) }

func (v ListValue) Interface() any {
	items := make([]any, len(v))
	for i, item := range v {
		items[i] = item.Interface()
	}
	return items
}

func (v MapValue) Interface() any {
	entries := make(map[string]any, len(v))
	for k, item := range v {
		entries[k] = item.Interface()
	}
	return entries
}

func (StringValue) value()     {}
func (IntegerValue) value()    {}
func (FloatValue) value()      {}
func (BooleanValue) value()    {}
func (PathValue) value()       {}
func (FileValue) value()       {}
func (DirectoryValue) value()  {}
func (EnumValue) value()       {}
func (URLValue) value()        {}
func (DateTimeValue) value()   {}
func (PatternValue) value()    {}
func (ListValue) value()       {}
func (MapValue) value()        {}
func (JSONStringValue) value() {}
func (ObjectValue) value()     {}
