// Copyright (c) 2025 Neomantra Corp

// Package render projects a decoded nrbf.Value onto a plain JSON shape.
package render

import (
	"io"
	"time"

	"github.com/relvacode/iso8601"
	"github.com/segmentio/encoding/json"

	"github.com/nrbf-go/nrbf-go"
)

// WriteJSON marshals v's JSON projection to w, one value per call.
func WriteJSON(w io.Writer, v nrbf.Value) error {
	enc := json.NewEncoder(w)
	return enc.Encode(project(v))
}

// project converts v into plain Go values (map[string]any, []any, scalars)
// suitable for JSON marshalling. Object instances keep their .NET class
// name alongside their members so the projection stays lossless enough to
// distinguish an opaque class from the map/array/set it might resemble.
func project(v nrbf.Value) any {
	switch v.Kind {
	case nrbf.KindNull:
		return nil
	case nrbf.KindBool:
		return v.Bool
	case nrbf.KindI8:
		return v.I8
	case nrbf.KindU8:
		return v.U8
	case nrbf.KindI16:
		return v.I16
	case nrbf.KindU16:
		return v.U16
	case nrbf.KindI32:
		return v.I32
	case nrbf.KindU32:
		return v.U32
	case nrbf.KindI64:
		return v.I64
	case nrbf.KindU64:
		return v.U64
	case nrbf.KindF32:
		return v.F32
	case nrbf.KindF64:
		return v.F64
	case nrbf.KindChar:
		return string(v.Char)
	case nrbf.KindString, nrbf.KindDecimal:
		return v.Str
	case nrbf.KindTimeSpan:
		return time.Duration(v.TimeSpan * 100).String()
	case nrbf.KindDateTime:
		return projectDateTime(v.DateTime)
	case nrbf.KindObject:
		members := make(map[string]any, len(v.ObjectMembers))
		for _, name := range v.ObjectMembers {
			members[name] = project(v.Object[name])
		}
		return map[string]any{
			"class":   v.ObjectClass,
			"members": members,
		}
	case nrbf.KindArray:
		if v.RawBytes != nil {
			return v.RawBytes // segmentio/encoding/json base64-encodes []byte, same as encoding/json
		}
		return projectSlice(v.Array)
	case nrbf.KindNdArray:
		return map[string]any{
			"lengths":  v.Nd.Lengths,
			"elements": projectSlice(v.Nd.Elements),
		}
	case nrbf.KindMap:
		entries := make([]map[string]any, len(v.MapEntries))
		for i, e := range v.MapEntries {
			entries[i] = map[string]any{"key": project(e.Key), "value": project(e.Value)}
		}
		return entries
	case nrbf.KindSet:
		return projectSlice(v.SetElements)
	default:
		return nil
	}
}

func projectSlice(values []nrbf.Value) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = project(v)
	}
	return out
}

// dotNetUnixEpochTicks is the .NET tick count (100ns since
// 0001-01-01T00:00:00) of the Unix epoch, 1970-01-01T00:00:00.
const dotNetUnixEpochTicks = 621355968000000000

// projectDateTime renders a DateTimeValue as an ISO-8601 instant. Local
// and Unspecified kinds are projected as a naive wall-clock time (no
// offset is recoverable from the wire format); UTC is projected with
// its "Z" suffix.
func projectDateTime(dt nrbf.DateTimeValue) string {
	rel := dt.Ticks - dotNetUnixEpochTicks
	t := time.Unix(rel/10_000_000, (rel%10_000_000)*100).UTC()
	if dt.Kind == nrbf.DateTimeUTC {
		return iso8601.Time{Time: t}.Format(time.RFC3339Nano)
	}
	return t.Format("2006-01-02T15:04:05.999999999")
}
