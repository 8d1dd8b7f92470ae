package semantic

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"unilang/pkg/unitypes"

	"github.com/spf13/afero"
)

// Coercer converts raw argument text into typed values. File and Directory kinds
// are checked against its filesystem.
type Coercer struct {
	fs afero.Fs
}

// NewCoercer creates a Coercer backed by fs. A nil fs selects the OS filesystem.
func NewCoercer(fs afero.Fs) *Coercer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Coercer{fs: fs}
}

// Coerce converts raw to a value of kind.
func (c *Coercer) Coerce(raw string, kind unitypes.Kind) (unitypes.Value, error) {
	switch kind.Type {
	case unitypes.KindString:
		return unitypes.StringValue(raw), nil
	case unitypes.KindInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a valid integer", raw)
		}
		return unitypes.IntegerValue(n), nil
	case unitypes.KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a valid number", raw)
		}
		return unitypes.FloatValue(f), nil
	case unitypes.KindBoolean:
		return coerceBoolean(raw)
	case unitypes.KindPath:
		if raw == "" {
			return nil, fmt.Errorf("path cannot be empty")
		}
		return unitypes.PathValue(raw), nil
	case unitypes.KindFile:
		return c.coerceFile(raw)
	case unitypes.KindDirectory:
		return c.coerceDirectory(raw)
	case unitypes.KindEnum:
		for _, choice := range kind.Choices {
			if raw == choice {
				return unitypes.EnumValue(raw), nil
			}
		}
		return nil, fmt.Errorf("'%s' is not one of [%s]", raw, strings.Join(kind.Choices, ", "))
	case unitypes.KindURL:
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" {
			return nil, fmt.Errorf("'%s' is not an absolute URL", raw)
		}
		return unitypes.URLValue{URL: u}, nil
	case unitypes.KindDateTime:
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not an RFC 3339 date-time", raw)
		}
		return unitypes.DateTimeValue{Time: t}, nil
	case unitypes.KindPattern:
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a valid regular expression: %w", raw, err)
		}
		return unitypes.PatternValue{Regexp: re}, nil
	case unitypes.KindList:
		return c.coerceList(raw, kind)
	case unitypes.KindMap:
		return c.coerceMap(raw, kind)
	case unitypes.KindJSONString:
		if !json.Valid([]byte(raw)) {
			return nil, fmt.Errorf("'%s' is not valid JSON", raw)
		}
		return unitypes.JSONStringValue(raw), nil
	case unitypes.KindObject:
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
			return nil, fmt.Errorf("'%s' is not a JSON object", raw)
		}
		return unitypes.ObjectValue(obj), nil
	default:
		return nil, fmt.Errorf("unsupported kind %s", kind)
	}
}

func coerceBoolean(raw string) (unitypes.Value, error) {
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return unitypes.BooleanValue(true), nil
	case "false", "0", "no":
		return unitypes.BooleanValue(false), nil
	default:
		return nil, fmt.Errorf("'%s' is not a boolean (use true/false, yes/no or 1/0)", raw)
	}
}

func (c *Coercer) stat(raw string) (os.FileInfo, error) {
	if raw == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	info, err := c.fs.Stat(raw)
	if err != nil {
		return nil, fmt.Errorf("'%s' does not exist", raw)
	}
	return info, nil
}

func (c *Coercer) coerceFile(raw string) (unitypes.Value, error) {
	info, err := c.stat(raw)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("'%s' is a directory, not a file", raw)
	}
	return unitypes.FileValue(raw), nil
}

func (c *Coercer) coerceDirectory(raw string) (unitypes.Value, error) {
	info, err := c.stat(raw)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("'%s' is not a directory", raw)
	}
	return unitypes.DirectoryValue(raw), nil
}

func (c *Coercer) coerceList(raw string, kind unitypes.Kind) (unitypes.Value, error) {
	if raw == "" {
		return unitypes.ListValue{}, nil
	}
	item := kind.ItemKind()
	if kind.Item == nil {
		item = unitypes.String
	}
	parts := strings.Split(raw, string(kind.ListDelimiter()))
	list := make(unitypes.ListValue, 0, len(parts))
	for i, part := range parts {
		v, err := c.Coerce(part, item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		list = append(list, v)
	}
	return list, nil
}

func (c *Coercer) coerceMap(raw string, kind unitypes.Kind) (unitypes.Value, error) {
	result := unitypes.MapValue{}
	if raw == "" {
		return result, nil
	}
	keyKind, valueKind := unitypes.String, unitypes.String
	if kind.Key != nil {
		keyKind = *kind.Key
	}
	if kind.Item != nil {
		valueKind = *kind.Item
	}

	kv := string(kind.KeyValueDelimiter())
	for _, entry := range strings.Split(raw, string(kind.EntryDelimiter())) {
		rawKey, rawValue, found := strings.Cut(entry, kv)
		if !found {
			return nil, fmt.Errorf("entry '%s' has no '%s' separator", entry, kv)
		}
		key, err := c.Coerce(rawKey, keyKind)
		if err != nil {
			return nil, fmt.Errorf("key: %w", err)
		}
		if _, dup := result[key.String()]; dup {
			return nil, fmt.Errorf("duplicate key '%s'", key.String())
		}
		value, err := c.Coerce(rawValue, valueKind)
		if err != nil {
			return nil, fmt.Errorf("value of '%s': %w", key.String(), err)
		}
		result[key.String()] = value
	}
	return result, nil
}
