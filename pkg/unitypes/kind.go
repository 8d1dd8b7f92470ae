// Package unitypes defines the shared data model of the unilang command pipeline.
// This file contains argument kinds and their textual form as used in command manifests.
package unitypes

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// KindType identifies the variant of a Kind.
type KindType int

const (
	// KindString accepts any text.
	KindString KindType = iota
	// KindInteger accepts a signed 64-bit integer.
	KindInteger
	// KindFloat accepts a 64-bit floating point number.
	KindFloat
	// KindBoolean accepts true/false, 1/0 and yes/no in any case.
	KindBoolean
	// KindPath accepts any non-empty path.
	KindPath
	// KindFile accepts a path to an existing regular file.
	KindFile
	// KindDirectory accepts a path to an existing directory.
	KindDirectory
	// KindEnum accepts one of a fixed set of choices.
	KindEnum
	// KindURL accepts an absolute URL.
	KindURL
	// KindDateTime accepts an RFC 3339 timestamp.
	KindDateTime
	// KindPattern accepts a regular expression.
	KindPattern
	// KindList accepts delimiter-separated items of a single item kind.
	KindList
	// KindMap accepts delimiter-separated key/value entries.
	KindMap
	// KindJSONString accepts any valid JSON document, kept as text.
	KindJSONString
	// KindObject accepts a JSON object.
	KindObject
)

// Default delimiters for collection kinds.
const (
	DefaultListDelimiter     = ','
	DefaultMapEntryDelimiter = ','
	DefaultMapKVDelimiter    = '='
)

var kindNames = map[KindType]string{
	KindString:     "String",
	KindInteger:    "Integer",
	KindFloat:      "Float",
	KindBoolean:    "Boolean",
	KindPath:       "Path",
	KindFile:       "File",
	KindDirectory:  "Directory",
	KindEnum:       "Enum",
	KindURL:        "Url",
	KindDateTime:   "DateTime",
	KindPattern:    "Pattern",
	KindList:       "List",
	KindMap:        "Map",
	KindJSONString: "JsonString",
	KindObject:     "Object",
}

// String returns the manifest name of the kind type.
func (k KindType) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KindType(%d)", int(k))
}

// Kind describes the expected type of an argument value.
// Choices is used by Enum; Item by List and Map (value kind); Key by Map.
type Kind struct {
	Type        KindType
	Choices     []string
	Item        *Kind
	Key         *Kind
	Delimiter   rune
	KVDelimiter rune
}

// Simple kind constructors.
var (
	String     = Kind{Type: KindString}
	Integer    = Kind{Type: KindInteger}
	Float      = Kind{Type: KindFloat}
	Boolean    = Kind{Type: KindBoolean}
	Path       = Kind{Type: KindPath}
	File       = Kind{Type: KindFile}
	Directory  = Kind{Type: KindDirectory}
	URL        = Kind{Type: KindURL}
	DateTime   = Kind{Type: KindDateTime}
	Pattern    = Kind{Type: KindPattern}
	JSONString = Kind{Type: KindJSONString}
	Object     = Kind{Type: KindObject}
)

// Enum returns an enumeration kind with the given choices.
func Enum(choices ...string) Kind {
	return Kind{Type: KindEnum, Choices: choices}
}

// List returns a list kind. A zero delimiter selects DefaultListDelimiter.
func List(item Kind, delimiter rune) Kind {
	return Kind{Type: KindList, Item: &item, Delimiter: delimiter}
}

// Map returns a map kind. Zero delimiters select the defaults.
func Map(key, value Kind, entryDelimiter, kvDelimiter rune) Kind {
	return Kind{Type: KindMap, Key: &key, Item: &value, Delimiter: entryDelimiter, KVDelimiter: kvDelimiter}
}

// IsList reports whether the kind is a list.
func (k Kind) IsList() bool {
	return k.Type == KindList
}

// ListDelimiter returns the effective list item delimiter.
func (k Kind) ListDelimiter() rune {
	if k.Delimiter == 0 {
		return DefaultListDelimiter
	}
	return k.Delimiter
}

// EntryDelimiter returns the effective map entry delimiter.
func (k Kind) EntryDelimiter() rune {
	if k.Delimiter == 0 {
		return DefaultMapEntryDelimiter
	}
	return k.Delimiter
}

// KeyValueDelimiter returns the effective map key/value delimiter.
func (k Kind) KeyValueDelimiter() rune {
	if k.KVDelimiter == 0 {
		return DefaultMapKVDelimiter
	}
	return k.KVDelimiter
}

// ItemKind returns the element kind of a list, or the kind itself for scalars.
func (k Kind) ItemKind() Kind {
	if k.Type == KindList && k.Item != nil {
		return *k.Item
	}
	return k
}

// String renders the kind in the same textual form ParseKind accepts.
func (k Kind) String() string {
	switch k.Type {
	case KindEnum:
		return fmt.Sprintf("Enum(%s)", strings.Join(k.Choices, ","))
	case KindList:
		item := "String"
		if k.Item != nil {
			item = k.Item.String()
		}
		if k.Delimiter != 0 && k.Delimiter != DefaultListDelimiter {
			return fmt.Sprintf("List(%s,%c)", item, k.Delimiter)
		}
		return fmt.Sprintf("List(%s)", item)
	case KindMap:
		key, value := "String", "String"
		if k.Key != nil {
			key = k.Key.String()
		}
		if k.Item != nil {
			value = k.Item.String()
		}
		if k.Delimiter != 0 || k.KVDelimiter != 0 {
			return fmt.Sprintf("Map(%s,%s,%c,%c)", key, value, k.EntryDelimiter(), k.KeyValueDelimiter())
		}
		return fmt.Sprintf("Map(%s,%s)", key, value)
	default:
		return k.Type.String()
	}
}

// Equal reports whether two kinds describe the same type.
func (k Kind) Equal(other Kind) bool {
	return k.String() == other.String()
}

// ParseKind parses the textual form of a kind, for example "Integer", "Enum(a,b)",
// "List(Integer,;)" or "Map(String,Integer,;,:)".
func ParseKind(text string) (Kind, error) {
	s := strings.TrimSpace(text)
	for t, name := range kindNames {
		if s == name && t != KindEnum && t != KindList && t != KindMap {
			return Kind{Type: t}, nil
		}
	}

	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Kind{}, fmt.Errorf("unknown kind '%s'", text)
	}
	head, inner := s[:open], s[open+1:len(s)-1]

	switch head {
	case "Enum":
		choices := splitTrimmed(inner)
		if len(choices) == 0 {
			return Kind{}, fmt.Errorf("empty enum choices in '%s'", text)
		}
		return Enum(choices...), nil
	case "List":
		parts := splitTrimmed(inner)
		if len(parts) == 0 {
			return Kind{}, fmt.Errorf("list kind '%s' requires an item type", text)
		}
		item, err := ParseKind(parts[0])
		if err != nil {
			return Kind{}, fmt.Errorf("list item: %w", err)
		}
		var delimiter rune
		if len(parts) > 1 {
			delimiter, _ = utf8.DecodeRuneInString(parts[1])
		} else if strings.HasSuffix(inner, ",") {
			delimiter = ','
		}
		return List(item, delimiter), nil
	case "Map":
		parts := splitTrimmed(inner)
		if len(parts) < 2 {
			return Kind{}, fmt.Errorf("map kind '%s' requires key and value types", text)
		}
		key, err := ParseKind(parts[0])
		if err != nil {
			return Kind{}, fmt.Errorf("map key: %w", err)
		}
		value, err := ParseKind(parts[1])
		if err != nil {
			return Kind{}, fmt.Errorf("map value: %w", err)
		}
		var entry, kv rune
		if len(parts) > 2 {
			entry, _ = utf8.DecodeRuneInString(parts[2])
		}
		if len(parts) > 3 {
			kv, _ = utf8.DecodeRuneInString(parts[3])
		}
		return Map(key, value, entry, kv), nil
	default:
		return Kind{}, fmt.Errorf("unknown kind '%s'", text)
	}
}

// splitTrimmed splits on commas outside parentheses, trims each part and
// drops empty parts, so nested kinds like List(Enum(a,b)) stay whole.
func splitTrimmed(s string) []string {
	var parts []string
	add := func(p string) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				add(s[start:i])
				start = i + 1
			}
		}
	}
	add(s[start:])
	return parts
}

// UnmarshalYAML decodes a kind from its textual form.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var text string
	if err := node.Decode(&text); err != nil {
		return fmt.Errorf("kind must be a string: %w", err)
	}
	parsed, err := ParseKind(text)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalYAML encodes a kind as its textual form.
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}
