// Copyright (c) 2025 Neomantra Corp

package mcpserver

import (
	"context"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nrbf-go/nrbf-go"
	"github.com/nrbf-go/nrbf-go/internal/render"
)

// optionalString reads an optional argument via RequireString; a missing
// argument is not an error - it just keeps def.
func optionalString(request mcp.CallToolRequest, name, def string) string {
	if v, err := request.RequireString(name); err == nil && v != "" {
		return v
	}
	return def
}

///////////////////////////////////////////////////////////////////////////////

func (s *Server) decodeFileHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path must be set"), nil
	}
	writable := optionalString(request, "writable", "false") == "true"

	id, root, err := s.openSession(path, writable)
	if err != nil {
		return mcp.NewToolResultErrorf("failed to decode %s: %s", path, err), nil
	}

	label, expandable := summarizeTool(&root)
	s.Logger.Info("decode_file", "path", path, "session", id, "writable", writable)
	return mcp.NewToolResultText(jsonOrError(map[string]any{
		"session_id": id,
		"root":       label,
		"expandable": expandable,
	})), nil
}

func (s *Server) listMembersHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id must be set"), nil
	}
	path := optionalString(request, "path", "$")

	sess, ok := s.session(sessID)
	if !ok {
		return mcp.NewToolResultErrorf("unknown session %q", sessID), nil
	}
	v, err := Locate(&sess.root, path)
	if err != nil {
		return mcp.NewToolResultErrorf("failed to resolve %s: %s", path, err), nil
	}

	children := childRows(path, v)
	s.Logger.Info("list_objects", "session", sessID, "path", path, "count", len(children))
	return mcp.NewToolResultText(jsonOrError(map[string]any{"children": children})), nil
}

func (s *Server) getMemberHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id must be set"), nil
	}
	path := optionalString(request, "path", "$")

	sess, ok := s.session(sessID)
	if !ok {
		return mcp.NewToolResultErrorf("unknown session %q", sessID), nil
	}
	v, err := Locate(&sess.root, path)
	if err != nil {
		return mcp.NewToolResultErrorf("failed to resolve %s: %s", path, err), nil
	}

	var buf strings.Builder
	if err := render.WriteJSON(&buf, *v); err != nil {
		return mcp.NewToolResultErrorf("failed to render %s: %s", path, err), nil
	}

	s.Logger.Info("get_member", "session", sessID, "path", path)
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) overwriteMemberHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id must be set"), nil
	}
	objectIDStr, err := request.RequireString("object_id")
	if err != nil {
		return mcp.NewToolResultError("object_id must be set"), nil
	}
	objectID, err := strconv.ParseInt(objectIDStr, 10, 32)
	if err != nil {
		return mcp.NewToolResultErrorf("object_id was not an integer: %s", err), nil
	}
	locatorKind, err := request.RequireString("locator_kind")
	if err != nil {
		return mcp.NewToolResultError("locator_kind must be one of index, member, map_key, map_value, set_elem"), nil
	}
	kindName, err := request.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError("kind must name a primitive type, e.g. i32, f64, bool"), nil
	}
	raw, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError("value must be set"), nil
	}
	index := 0
	if indexStr := optionalString(request, "index", ""); indexStr != "" {
		n, err := strconv.Atoi(indexStr)
		if err != nil {
			return mcp.NewToolResultErrorf("index was not an integer: %s", err), nil
		}
		index = n
	}

	var locator nrbf.Locator
	switch locatorKind {
	case "index":
		locator = nrbf.IndexLocator(index)
	case "member":
		name, err := request.RequireString("member")
		if err != nil {
			return mcp.NewToolResultError("member must be set for locator_kind=member"), nil
		}
		locator = nrbf.MemberLocator(name)
	case "map_key":
		locator = nrbf.MapKeyLocator(index)
	case "map_value":
		locator = nrbf.MapValueLocator(index)
	case "set_elem":
		locator = nrbf.SetElemLocator(index)
	default:
		return mcp.NewToolResultErrorf("unknown locator_kind %q", locatorKind), nil
	}

	sess, ok := s.session(sessID)
	if !ok {
		return mcp.NewToolResultErrorf("unknown session %q", sessID), nil
	}

	value, err := ValueForKind(kindName, raw)
	if err != nil {
		return mcp.NewToolResultErrorf("invalid value for kind %s: %s", kindName, err), nil
	}
	if !sess.decoder.IsWritable(int32(objectID), locator) {
		return mcp.NewToolResultErrorf("object %d has no writable slot at that locator", objectID), nil
	}
	if err := sess.decoder.Write(int32(objectID), locator, value); err != nil {
		return mcp.NewToolResultErrorf("write failed: %s", err), nil
	}

	s.Logger.Info("overwrite_member", "session", sessID, "object_id", objectID, "locator_kind", locatorKind, "kind", kindName)
	return mcp.NewToolResultText("ok"), nil
}
