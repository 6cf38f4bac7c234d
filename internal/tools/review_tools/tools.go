package review_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/inboxreview/internal/review"
	"github.com/teemow/inboxreview/internal/server"
	"github.com/teemow/inboxreview/internal/tools/common"
)

// Tool names.
const (
	ToolListInbox   = "review_list_inbox"
	ToolRewriteText = "review_rewrite_text"
	ToolRun         = "review_run"
)

// InboxListing is the review_list_inbox result.
type InboxListing struct {
	ProjectID   string        `json:"project_id"`
	SectionID   string        `json:"section_id"`
	SectionName string        `json:"section_name,omitempty"`
	Count       int           `json:"count"`
	Tasks       []review.Task `json:"tasks"`
}

// RegisterReviewTools registers the review tools with the MCP server.
func RegisterReviewTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if s == nil || sc == nil {
		return errors.New("server and server context are required")
	}

	listInboxTool := mcp.NewTool(ToolListInbox,
		mcp.WithDescription("List the inbox tasks that are waiting for review (tasks without a section)"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(listInboxTool, common.InstrumentedToolHandler(ToolListInbox, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListInbox(ctx, request, sc)
		}))

	rewriteTool := mcp.NewTool(ToolRewriteText,
		mcp.WithDescription("Correct spelling and grammar of a text, translate it if needed and cap its length, without touching any task"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text to rewrite"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(rewriteTool, common.InstrumentedToolHandler(ToolRewriteText, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRewriteText(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	runTool := mcp.NewTool(ToolRun,
		mcp.WithDescription("Review the inbox: rewrite every inbox task, write the new text back and move the task to the reviewed section. Returns the run report."),
		mcp.WithDestructiveHintAnnotation(true),
	)
	s.AddTool(runTool, common.InstrumentedToolHandler(ToolRun, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRun(ctx, request, sc)
		}))

	return nil
}

func handleListInbox(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	tasks, err := sc.Pipeline().Inbox(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list inbox: %v", err)), nil
	}

	pipeline := sc.Pipeline()
	listing := InboxListing{
		ProjectID: pipeline.ProjectID(),
		SectionID: pipeline.SectionID(),
		Count:     len(tasks),
		Tasks:     tasks,
	}
	if listing.Tasks == nil {
		listing.Tasks = []review.Task{}
	}
	if name, err := sc.SectionName(ctx, listing.ProjectID, listing.SectionID); err == nil {
		listing.SectionName = name
	}

	result, _ := json.MarshalIndent(listing, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

func handleRewriteText(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	text, ok := args["text"].(string)
	if !ok || strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	out, err := sc.Pipeline().Rewrite(ctx, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to rewrite text: %v", err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

func handleRun(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	report, err := sc.RunReview(ctx)
	if report == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to run review: %v", err)), nil
	}

	payload := struct {
		*review.Report
		Totals  review.Totals `json:"totals"`
		Summary string        `json:"summary"`
		Error   string        `json:"error,omitempty"`
	}{Report: report, Totals: report.Totals(), Summary: report.Summary()}
	if err != nil {
		payload.Error = err.Error()
	}

	result, _ := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(string(result)), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}
