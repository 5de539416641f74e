// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Mazkir tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mazkir/mazkir/internal/apperr"
	"github.com/mazkir/mazkir/internal/codec"
	"github.com/mazkir/mazkir/internal/coordinator"
	"github.com/mazkir/mazkir/internal/vault"
	"github.com/mazkir/mazkir/internal/views"
)

// Server wraps the MCP server with Mazkir tools.
type Server struct {
	mcp   *server.MCPServer
	store *vault.Store
	views *views.Views
	coord *coordinator.Coordinator
}

// New creates a new MCP server with all Mazkir tools registered.
func New(store *vault.Store, v *views.Views, coord *coordinator.Coordinator) *Server {
	s := &Server{store: store, views: v, coord: coord}

	s.mcp = server.NewMCPServer(
		"Mazkir",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("complete_habit",
		mcp.WithDescription("Mark a habit as completed for today. Updates the streak, "+
			"credits motivation tokens, and records the completion in today's day note. "+
			"Safe to call twice: a repeat completion on the same day is a no-op."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Habit name, exact or a fuzzy fragment (e.g. 'gym')")),
	), s.completeHabit)

	s.mcp.AddTool(mcp.NewTool("list_habits",
		mcp.WithDescription("List all active habits with their current streaks."),
		mcp.WithString("sort", mcp.Description("Optional: 'streak' to sort by streak descending")),
	), s.listHabits)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List active tasks sorted by priority (high first), then due date."),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("create_habit",
		mcp.WithDescription("Create a new daily habit. Read the vault layout first via "+
			"the get_vault_contract tool or the mazkir://vault-layout resource."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Human-readable habit name")),
		mcp.WithString("frequency", mcp.Description("Cadence, default 'daily'")),
		mcp.WithString("category", mcp.Description("Grouping label, default 'personal'")),
		mcp.WithNumber("tokens", mcp.Description("Tokens credited per completion, default 5")),
	), s.createHabit)

	s.mcp.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Create a new task. Priority 1 (low) to 5 (urgent)."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Human-readable task name")),
		mcp.WithNumber("priority", mcp.Description("Priority 1-5, default 3")),
		mcp.WithString("due_date", mcp.Description("Optional due date, YYYY-MM-DD")),
	), s.createTask)

	s.mcp.AddTool(mcp.NewTool("list_goals",
		mcp.WithDescription("List open goals with priority, progress, and milestone counts, "+
			"sorted by priority (high first), then target date."),
	), s.listGoals)

	s.mcp.AddTool(mcp.NewTool("create_goal",
		mcp.WithDescription("Create a new goal. Goals start as not-started with zero progress."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Human-readable goal name")),
		mcp.WithString("priority", mcp.Description("One of high, medium, low; default medium")),
		mcp.WithString("target_date", mcp.Description("Optional target date, YYYY-MM-DD")),
		mcp.WithString("category", mcp.Description("Grouping label, default 'personal'")),
	), s.createGoal)

	s.mcp.AddTool(mcp.NewTool("daily_summary",
		mcp.WithDescription("Today's summary: tokens earned, completed habits, streaks, and balances."),
		mcp.WithString("date", mcp.Description("Optional calendar date (YYYY-MM-DD), default today")),
	), s.dailySummary)

	s.mcp.AddTool(mcp.NewTool("token_balance",
		mcp.WithDescription("Current motivation token balances and the next milestone."),
	), s.tokenBalance)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the raw text of any vault document by relative path."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path (e.g. 20-habits/gym.md)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("get_vault_contract",
		mcp.WithDescription("Returns the canonical Mazkir vault layout and document format contract. "+
			"Call this before creating habits or tasks to understand the structure."),
	), s.getVaultContract)

	// Resource: vault layout contract.
	s.mcp.AddResource(
		mcp.NewResource("mazkir://vault-layout", "Vault Layout Contract",
			mcp.WithResourceDescription("Canonical vault directory layout and document frontmatter schemas."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readVaultContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) completeHabit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.coord.CompleteHabit(ctx, name)
	if err != nil {
		var ambiguous *coordinator.AmbiguousError
		switch {
		case errors.As(err, &ambiguous):
			return mcp.NewToolResultError(fmt.Sprintf("ambiguous name %q, candidates: %s",
				name, strings.Join(ambiguous.Candidates, ", "))), nil
		case errors.Is(err, apperr.ErrNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("no habit matches %q", name)), nil
		default:
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listHabits(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	byStreak := false
	if v, err := req.RequireString("sort"); err == nil && v == "streak" {
		byStreak = true
	}
	habits, err := s.views.ActiveHabits(ctx, byStreak)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(habits, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := s.views.ActiveTasks(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(tasks, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createHabit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	spec := coordinator.HabitSpec{Name: name}
	if v, err := req.RequireString("frequency"); err == nil {
		spec.Frequency = v
	}
	if v, err := req.RequireString("category"); err == nil {
		spec.Category = v
	}
	if v, err := req.RequireFloat("tokens"); err == nil {
		spec.TokensPerCompletion = int(v)
	}
	doc, err := s.coord.CreateHabit(ctx, spec)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return mcp.NewToolResultError(fmt.Sprintf("habit already exists: %s", name)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", doc.Path)), nil
}

func (s *Server) createTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	spec := coordinator.TaskSpec{Name: name}
	if v, err := req.RequireFloat("priority"); err == nil {
		spec.Priority = int(v)
	}
	if v, err := req.RequireString("due_date"); err == nil {
		spec.DueDate = v
	}
	doc, err := s.coord.CreateTask(ctx, spec)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return mcp.NewToolResultError(fmt.Sprintf("task already exists: %s", name)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", doc.Path)), nil
}

func (s *Server) listGoals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goals, err := s.views.ActiveGoals(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(goals, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createGoal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	spec := coordinator.GoalSpec{Name: name}
	if v, err := req.RequireString("priority"); err == nil {
		spec.Priority = v
	}
	if v, err := req.RequireString("target_date"); err == nil {
		spec.TargetDate = v
	}
	if v, err := req.RequireString("category"); err == nil {
		spec.Category = v
	}
	doc, err := s.coord.CreateGoal(ctx, spec)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return mcp.NewToolResultError(fmt.Sprintf("goal already exists: %s", name)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", doc.Path)), nil
}

func (s *Server) dailySummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date := s.views.Today()
	if v, err := req.RequireString("date"); err == nil && v != "" {
		date = v
	}
	sum, err := s.views.Daily(ctx, date)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(sum, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) tokenBalance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ledger, err := s.views.Ledger(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError("token ledger not found, run 'mazkir init' first"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(ledger, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.store.Read(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(codec.Encode(doc.Meta, doc.Body))), nil
}

func (s *Server) getVaultContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(VaultLayoutContract), nil
}

func (s *Server) readVaultContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "mazkir://vault-layout",
			MIMEType: "text/markdown",
			Text:     VaultLayoutContract,
		},
	}, nil
}
