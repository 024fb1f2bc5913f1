// Package codec decodes condition documents into where input.
//
// JSON, YAML and MessagePack objects decode into where.Map values, so the
// key order of the document is the order of the compiled SQL. Operator keys
// keep their "$name" spelling and are resolved by the compiler. Wrapper
// objects that have no Go counterpart in a document are expanded here:
//
//	{"$literal": "created_at > now()"}
//	{"$fn": ["lower", {"$col": "name"}]}
//	{"$cast": ["42", "integer"]}
//	{"$where": [{"$fn": ["lower", {"$col": "name"}]}, "$eq", "a8m"]}
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/syssam/sqlcond/where"
)

// Format is the encoding of a condition document.
type Format uint8

// Supported document formats.
const (
	JSON Format = iota + 1
	YAML
	Msgpack
)

var formatNames = map[Format]string{
	JSON:    "json",
	YAML:    "yaml",
	Msgpack: "msgpack",
}

// String returns the format name.
func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return "unknown"
}

// ParseFormat returns the format with the given name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "msgpack", "mpk":
		return Msgpack, nil
	}
	return 0, fmt.Errorf("codec: unknown format %q", name)
}

// FormatOf returns the format of a file by its extension. Files without a
// known extension are YAML, a superset of JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".msgpack", ".mpk":
		return Msgpack
	}
	return YAML
}

// Decode decodes one document of the given format.
func Decode(r io.Reader, f Format) (any, error) {
	switch f {
	case JSON:
		return DecodeJSON(r)
	case YAML:
		return DecodeYAML(r)
	case Msgpack:
		return DecodeMsgpack(r)
	}
	return nil, fmt.Errorf("codec: unknown format %d", f)
}

// Unmarshal decodes a document held in memory.
func Unmarshal(data []byte, f Format) (any, error) {
	return Decode(bytes.NewReader(data), f)
}

// Wrapper keys expanded by the decoders.
const (
	keyLiteral = "$literal"
	keyFn      = "$fn"
	keyCast    = "$cast"
	keyWhere   = "$where"
)

// ErrWrapper is returned for a malformed wrapper object.
var ErrWrapper = errors.New("codec: malformed wrapper")

func wrapperError(key, format string, args ...any) error {
	return fmt.Errorf("%w %q: %s", ErrWrapper, key, fmt.Sprintf(format, args...))
}

// expand replaces the wrapper objects of a decoded document by their where
// values.
func expand(v any) (any, error) {
	switch v := v.(type) {
	case where.Map:
		if len(v) == 1 {
			if k, ok := v[0].Key.(string); ok {
				switch k {
				case keyLiteral, keyFn, keyCast, keyWhere:
					return wrapper(k, v[0].Value)
				}
			}
		}
		out := make(where.Map, len(v))
		for i, p := range v {
			e, err := expand(p.Value)
			if err != nil {
				return nil, err
			}
			out[i] = where.Pair{Key: p.Key, Value: e}
		}
		return out, nil
	case []any:
		return expandAll(v)
	}
	return v, nil
}

func expandAll(l []any) ([]any, error) {
	out := make([]any, len(l))
	for i, e := range l {
		v, err := expand(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func wrapper(key string, v any) (any, error) {
	if key == keyLiteral {
		s, ok := v.(string)
		if !ok {
			return nil, wrapperError(key, "expects a string, got %T", v)
		}
		return where.Literal(s), nil
	}
	l, ok := v.([]any)
	if !ok {
		return nil, wrapperError(key, "expects a list, got %T", v)
	}
	args, err := expandAll(l)
	if err != nil {
		return nil, err
	}
	switch key {
	case keyFn:
		if len(args) == 0 {
			return nil, wrapperError(key, "expects a function name")
		}
		name, ok := args[0].(string)
		if !ok {
			return nil, wrapperError(key, "function name must be a string, got %T", args[0])
		}
		return where.Fn(name, args[1:]...), nil
	case keyCast:
		if len(args) != 2 {
			return nil, wrapperError(key, "expects [value, type], got %d elements", len(args))
		}
		typ, ok := args[1].(string)
		if !ok {
			return nil, wrapperError(key, "type must be a string, got %T", args[1])
		}
		return where.Cast(args[0], typ), nil
	default:
		if len(args) != 3 {
			return nil, wrapperError(key, "expects [left, operator, right], got %d elements", len(args))
		}
		name, ok := args[1].(string)
		if !ok {
			return nil, wrapperError(key, "operator must be a string, got %T", args[1])
		}
		op, ok := where.ParseOp(name)
		if !ok {
			return nil, wrapperError(key, "unknown operator %q", name)
		}
		return where.Where(args[0], op, args[2]), nil
	}
}
