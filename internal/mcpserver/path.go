// Copyright (c) 2025 Neomantra Corp

package mcpserver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nrbf-go/nrbf-go"
)

// Locate walks root using the same path grammar internal/tui's browser
// renders: "$" is the root, ".name" an Object member, "[i]" an Array or
// NdArray element, "{i}.k"/"{i}.v" a Map entry's key/value, and "<i>" a
// Set element. Paths are produced by list_objects so a caller never has to
// hand-write one, only echo one back.
func Locate(root *nrbf.Value, path string) (*nrbf.Value, error) {
	if path == "" || path == "$" {
		return root, nil
	}
	if !strings.HasPrefix(path, "$") {
		return nil, fmt.Errorf("path must start with %q", "$")
	}
	cur := root
	rest := path[1:]
	for len(rest) > 0 {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			end := strings.IndexAny(rest, ".[{<")
			if end < 0 {
				end = len(rest)
			}
			name := rest[:end]
			rest = rest[end:]
			if cur.Kind != nrbf.KindObject {
				return nil, fmt.Errorf("%q is not an object", name)
			}
			v, ok := cur.Object[name]
			if !ok {
				return nil, fmt.Errorf("no member %q", name)
			}
			cur = &v
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated [ in path")
			}
			i, err := strconv.Atoi(rest[1:end])
			if err != nil {
				return nil, fmt.Errorf("bad index: %w", err)
			}
			rest = rest[end+1:]
			switch cur.Kind {
			case nrbf.KindArray:
				if i < 0 || i >= len(cur.Array) {
					return nil, fmt.Errorf("index %d out of range", i)
				}
				cur = &cur.Array[i]
			case nrbf.KindNdArray:
				if i < 0 || i >= len(cur.Nd.Elements) {
					return nil, fmt.Errorf("index %d out of range", i)
				}
				cur = &cur.Nd.Elements[i]
			default:
				return nil, fmt.Errorf("%v is not indexable", cur.Kind)
			}
		case '{':
			end := strings.IndexByte(rest, '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated { in path")
			}
			i, err := strconv.Atoi(rest[1:end])
			if err != nil {
				return nil, fmt.Errorf("bad index: %w", err)
			}
			rest = rest[end+1:]
			if cur.Kind != nrbf.KindMap || i < 0 || i >= len(cur.MapEntries) {
				return nil, fmt.Errorf("index %d out of range", i)
			}
			if strings.HasPrefix(rest, ".k") {
				rest = rest[2:]
				cur = &cur.MapEntries[i].Key
			} else if strings.HasPrefix(rest, ".v") {
				rest = rest[2:]
				cur = &cur.MapEntries[i].Value
			} else {
				return nil, fmt.Errorf("expected .k or .v after {%d}", i)
			}
		case '<':
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				return nil, fmt.Errorf("unterminated < in path")
			}
			i, err := strconv.Atoi(rest[1:end])
			if err != nil {
				return nil, fmt.Errorf("bad index: %w", err)
			}
			rest = rest[end+1:]
			if cur.Kind != nrbf.KindSet || i < 0 || i >= len(cur.SetElements) {
				return nil, fmt.Errorf("index %d out of range", i)
			}
			cur = &cur.SetElements[i]
		default:
			return nil, fmt.Errorf("unexpected character %q in path", rest[0])
		}
	}
	return cur, nil
}

// ValueForKind builds an nrbf.Value of the requested primitive kindName
// from a loosely-typed raw string, for overwrite_member's request body.
func ValueForKind(kindName, raw string) (nrbf.Value, error) {
	switch kindName {
	case "bool":
		b, err := strconv.ParseBool(raw)
		return nrbf.Value{Kind: nrbf.KindBool, Bool: b}, err
	case "i8":
		n, err := strconv.ParseInt(raw, 10, 8)
		return nrbf.Value{Kind: nrbf.KindI8, I8: int8(n)}, err
	case "u8":
		n, err := strconv.ParseUint(raw, 10, 8)
		return nrbf.Value{Kind: nrbf.KindU8, U8: uint8(n)}, err
	case "i16":
		n, err := strconv.ParseInt(raw, 10, 16)
		return nrbf.Value{Kind: nrbf.KindI16, I16: int16(n)}, err
	case "u16":
		n, err := strconv.ParseUint(raw, 10, 16)
		return nrbf.Value{Kind: nrbf.KindU16, U16: uint16(n)}, err
	case "i32":
		n, err := strconv.ParseInt(raw, 10, 32)
		return nrbf.Value{Kind: nrbf.KindI32, I32: int32(n)}, err
	case "u32":
		n, err := strconv.ParseUint(raw, 10, 32)
		return nrbf.Value{Kind: nrbf.KindU32, U32: uint32(n)}, err
	case "i64":
		n, err := strconv.ParseInt(raw, 10, 64)
		return nrbf.Value{Kind: nrbf.KindI64, I64: n}, err
	case "u64":
		n, err := strconv.ParseUint(raw, 10, 64)
		return nrbf.Value{Kind: nrbf.KindU64, U64: n}, err
	case "f32":
		n, err := strconv.ParseFloat(raw, 32)
		return nrbf.Value{Kind: nrbf.KindF32, F32: float32(n)}, err
	case "f64":
		n, err := strconv.ParseFloat(raw, 64)
		return nrbf.Value{Kind: nrbf.KindF64, F64: n}, err
	default:
		return nrbf.Value{}, fmt.Errorf("unsupported overwrite kind %q", kindName)
	}
}
