package mcp

import "github.com/mark3labs/mcp-go/mcp"

// getMatterStatusTool defines the get_matter_status MCP tool.
var getMatterStatusTool = mcp.NewTool("get_matter_status",
	mcp.WithDescription("Get the current formation status of a matter: stage, checklist, case brief, and any handoff recommendation."),
	mcp.WithString("team_id",
		mcp.Required(),
		mcp.Description("Team that owns the matter"),
	),
	mcp.WithString("matter_id",
		mcp.Required(),
		mcp.Description("Matter identifier"),
	),
)

// getMatterChecklistTool defines the get_matter_checklist MCP tool.
var getMatterChecklistTool = mcp.NewTool("get_matter_checklist",
	mcp.WithDescription("Get the current stage checklist for a matter, with completion status per item."),
	mcp.WithString("team_id",
		mcp.Required(),
		mcp.Description("Team that owns the matter"),
	),
	mcp.WithString("matter_id",
		mcp.Required(),
		mcp.Description("Matter identifier"),
	),
)

// queryAuditTrailTool defines the query_audit_trail MCP tool.
var queryAuditTrailTool = mcp.NewTool("query_audit_trail",
	mcp.WithDescription("Query the append-only workflow audit trail, newest entries first."),
	mcp.WithString("team_id",
		mcp.Description("Filter by team"),
	),
	mcp.WithString("matter_id",
		mcp.Description("Filter by matter"),
	),
	mcp.WithString("event_type",
		mcp.Description("Filter by workflow event type"),
		mcp.Enum("user_input", "conflict_check_complete", "documents_received", "payment_complete", "letter_signed"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of entries to return (default 20)"),
	),
)
