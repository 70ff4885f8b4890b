// Copyright (c) 2025 Neomantra Corp

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcp_server "github.com/mark3labs/mcp-go/server"
)

// RegisterTools attaches every tool this package exposes to mcpServer.
func (s *Server) RegisterTools(mcpServer *mcp_server.MCPServer) {
	decodeFileTool := mcp.NewTool("decode_file",
		mcp.WithDescription("Decodes an uncompressed NRBF file into a new session and returns a one-line summary of its root value"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the NRBF file to decode"),
		),
		mcp.WithString("writable",
			mcp.Description(`"true" to open the file for in-place overwrite via overwrite_member; default "false"`),
		),
	)
	mcpServer.AddTool(decodeFileTool, s.decodeFileHandler)

	listObjectsTool := mcp.NewTool("list_objects",
		mcp.WithDescription("Lists the immediate children of a value within a decoded session: object members, array elements, map entries, or set elements"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session ID returned by decode_file"),
		),
		mcp.WithString("path",
			mcp.Description(`Path to the parent value, as returned by an earlier list_objects call; defaults to "$", the root`),
		),
	)
	mcpServer.AddTool(listObjectsTool, s.listMembersHandler)

	getMemberTool := mcp.NewTool("get_member",
		mcp.WithDescription("Renders the value at path as JSON"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session ID returned by decode_file"),
		),
		mcp.WithString("path",
			mcp.Description(`Path to the value, as returned by list_objects; defaults to "$", the root`),
		),
	)
	mcpServer.AddTool(getMemberTool, s.getMemberHandler)

	overwriteMemberTool := mcp.NewTool("overwrite_member",
		mcp.WithDescription("Patches a writable fixed-width primitive slot in place, in the underlying file, for a session opened with writable=true"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session ID returned by decode_file, opened with writable=true"),
		),
		mcp.WithString("object_id",
			mcp.Required(),
			mcp.Description("ObjectId of the container that owns the slot"),
		),
		mcp.WithString("locator_kind",
			mcp.Required(),
			mcp.Description("index, member, map_key, map_value, or set_elem"),
			mcp.Enum("index", "member", "map_key", "map_value", "set_elem"),
		),
		mcp.WithString("index",
			mcp.Description("Element index, for locator_kind in {index, map_key, map_value, set_elem}"),
		),
		mcp.WithString("member",
			mcp.Description("Member name, for locator_kind=member"),
		),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("Primitive type of the replacement value"),
			mcp.Enum("bool", "i8", "u8", "i16", "u16", "i32", "u32", "i64", "u64", "f32", "f64"),
		),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("Replacement value, formatted as plain text (e.g. \"42\", \"3.14\", \"true\")"),
		),
	)
	mcpServer.AddTool(overwriteMemberTool, s.overwriteMemberHandler)
}
