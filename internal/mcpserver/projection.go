// Copyright (c) 2025 Neomantra Corp

package mcpserver

import (
	"fmt"

	"github.com/segmentio/encoding/json"

	"github.com/nrbf-go/nrbf-go"
)

// childRow is one entry of list_objects' response: a name or index, the
// path a follow-up get_member/list_objects call should pass, and a short
// summary of what's there - the same shape internal/tui's tree browser
// renders, minus the lipgloss styling.
type childRow struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Kind  string `json:"kind"`
}

// childRows lists v's immediate children the way internal/tui's
// appendNode walks one level of a decoded Value.
func childRows(path string, v *nrbf.Value) []childRow {
	var rows []childRow
	switch v.Kind {
	case nrbf.KindObject:
		for _, name := range v.ObjectMembers {
			child := v.Object[name]
			rows = append(rows, childRow{Label: name, Path: path + "." + name, Kind: child.Kind.String()})
		}
	case nrbf.KindArray:
		for i := range v.Array {
			rows = append(rows, childRow{Label: fmt.Sprintf("[%d]", i), Path: fmt.Sprintf("%s[%d]", path, i), Kind: v.Array[i].Kind.String()})
		}
	case nrbf.KindNdArray:
		for i := range v.Nd.Elements {
			rows = append(rows, childRow{Label: fmt.Sprintf("[%d]", i), Path: fmt.Sprintf("%s[%d]", path, i), Kind: v.Nd.Elements[i].Kind.String()})
		}
	case nrbf.KindMap:
		for i, e := range v.MapEntries {
			rows = append(rows, childRow{Label: fmt.Sprintf("{%d}.k", i), Path: fmt.Sprintf("%s{%d}.k", path, i), Kind: e.Key.Kind.String()})
			rows = append(rows, childRow{Label: fmt.Sprintf("{%d}.v", i), Path: fmt.Sprintf("%s{%d}.v", path, i), Kind: e.Value.Kind.String()})
		}
	case nrbf.KindSet:
		for i := range v.SetElements {
			rows = append(rows, childRow{Label: fmt.Sprintf("<%d>", i), Path: fmt.Sprintf("%s<%d>", path, i), Kind: v.SetElements[i].Kind.String()})
		}
	}
	return rows
}

// summarizeTool renders a one-line label for v and reports whether
// list_objects would find children there, mirroring internal/tui's
// summarizeValue without the color styling an MCP client has no use for.
func summarizeTool(v *nrbf.Value) (string, bool) {
	switch v.Kind {
	case nrbf.KindObject:
		return fmt.Sprintf("%s (%d members)", v.ObjectClass, len(v.ObjectMembers)), len(v.ObjectMembers) > 0
	case nrbf.KindArray:
		if v.RawBytes != nil {
			return fmt.Sprintf("bytes[%d]", len(v.RawBytes)), false
		}
		return fmt.Sprintf("array[%d]", len(v.Array)), len(v.Array) > 0
	case nrbf.KindNdArray:
		return fmt.Sprintf("ndarray%v", v.Nd.Lengths), len(v.Nd.Elements) > 0
	case nrbf.KindMap:
		return fmt.Sprintf("map[%d]", len(v.MapEntries)), len(v.MapEntries) > 0
	case nrbf.KindSet:
		return fmt.Sprintf("set[%d]", len(v.SetElements)), len(v.SetElements) > 0
	default:
		return v.String(), false
	}
}

// jsonOrError marshals v with segmentio/encoding/json, the same encoder
// internal/render uses, falling back to a Go-syntax error string - never
// returning an empty body - if marshaling itself somehow fails.
func jsonOrError(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("{%q: %q}", "error", err.Error())
	}
	return string(b)
}
