package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lexflowhq/lexflow/internal/audit"
	"github.com/lexflowhq/lexflow/internal/matter"
)

func (s *Server) handleGetMatterStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	teamID, err := request.RequireString("team_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: team_id"), nil
	}
	matterID, err := request.RequireString("matter_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: matter_id"), nil
	}

	resp, err := s.matters.Engine(teamID, matterID).Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading matter status: %v", err)), nil
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleGetMatterChecklist(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	teamID, err := request.RequireString("team_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: team_id"), nil
	}
	matterID, err := request.RequireString("matter_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: matter_id"), nil
	}

	view, err := s.matters.Engine(teamID, matterID).Checklist(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading checklist: %v", err)), nil
	}

	return mcp.NewToolResultText(formatChecklist(view)), nil
}

func (s *Server) handleQueryAuditTrail(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := audit.QueryFilter{
		TeamID:    request.GetString("team_id", ""),
		MatterID:  request.GetString("matter_id", ""),
		EventType: request.GetString("event_type", ""),
		Limit:     request.GetInt("limit", 20),
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	entries, err := s.audit.Query(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("querying audit trail: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No audit entries match the filter."), nil
	}

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding entries: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// formatChecklist renders a checklist view as a readable task list.
func formatChecklist(view *matter.ChecklistView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stage: %s\n", view.Stage)
	if view.Completed {
		b.WriteString("Matter formation is complete.\n")
	}
	for _, item := range view.Checklist {
		mark := " "
		if item.Status == matter.ItemCompleted {
			mark = "x"
		}
		req := ""
		if item.Required {
			req = " (required)"
		}
		fmt.Fprintf(&b, "- [%s] %s%s\n", mark, item.Title, req)
	}
	return b.String()
}
