// Package mcp exposes the command pipeline and store listings to MCP clients.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/dictado/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/dictado/pkg/application"
	"github.com/felixgeelhaar/dictado/pkg/domain/command"
	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

type Server struct {
	mcpServer *mcp.Server
	commands  *application.CommandService
	store     planning.Store
}

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// mcpErr returns a user-friendly error for MCP clients.
// Internal details are omitted; only the friendly message is returned.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

func NewServer(services *wiring.AppServices) (*Server, error) {
	if services == nil {
		return nil, fmt.Errorf("services initialization returned nil")
	}

	info := mcp.ServerInfo{
		Name:    "dictado",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Dictado MCP Server"),
			mcp.WithDescription("Dictado interprets Spanish voice commands and applies them to projects and tasks."),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Send transcripts to dictado_process; use the list tools to inspect projects and tasks."),
		),
		commands: services.Commands,
		store:    services.Workspace.Store,
	}

	s.registerTools()
	s.registerIntentsResource()
	return s, nil
}

type ProcessArgs struct {
	Text      string `json:"text" jsonschema:"description=Transcript of the spoken command in Spanish"`
	Intent    string `json:"intent,omitempty" jsonschema:"description=Optional intent that skips classification"`
	ProjectID string `json:"project_id,omitempty" jsonschema:"description=Optional project id the command refers to"`
}

type ListTasksArgs struct {
	Status    string `json:"status,omitempty" jsonschema:"description=Filter by status (pending, in_progress, blocked, done)"`
	ProjectID string `json:"project_id,omitempty" jsonschema:"description=Filter by project id"`
	Query     string `json:"query,omitempty" jsonschema:"description=Accent-insensitive text filter on title and description"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("dictado_process").
		Description("Interpret a Spanish transcript (create, search, update or count projects and tasks) and return the command result").
		Handler(s.handleProcess)

	s.mcpServer.Tool("dictado_list_projects").
		Description("List every project").
		Handler(s.handleListProjects)

	s.mcpServer.Tool("dictado_list_tasks").
		Description("List tasks, optionally filtered by status, project or text").
		Handler(s.handleListTasks)
}

func (s *Server) handleProcess(ctx context.Context, args ProcessArgs) (any, error) {
	if strings.TrimSpace(args.Text) == "" && args.Intent == "" {
		return nil, mcpErr("Provide the transcript to interpret in 'text'.")
	}
	req := application.Request{Text: args.Text, ProjectIDHint: args.ProjectID}
	if args.Intent != "" {
		intent, err := command.ParseIntent(args.Intent)
		if err != nil {
			return nil, mcpErr(fmt.Sprintf("Unknown intent %q. Read dictado://intents for the accepted values.", args.Intent))
		}
		req.IntentHint = intent
	}
	return s.commands.ProcessTranscript(ctx, req), nil
}

func (s *Server) handleListProjects(ctx context.Context, args struct{}) (any, error) {
	projects, err := s.store.FindProjects(ctx)
	if err != nil {
		return nil, mcpErr("Failed to load projects. Ensure the workspace is initialized with 'dictado init'.")
	}
	if projects == nil {
		projects = []planning.Project{}
	}
	return projects, nil
}

func (s *Server) handleListTasks(ctx context.Context, args ListTasksArgs) (any, error) {
	filter := planning.TaskFilter{ProjectID: args.ProjectID, Text: args.Query}
	if args.Status != "" {
		status, ok := planning.LookupTaskStatus(args.Status)
		if !ok {
			return nil, mcpErr(fmt.Sprintf("Unknown status %q.", args.Status))
		}
		filter.Status = status
	}
	tasks, err := s.store.FindTasks(ctx, filter)
	if err != nil {
		return nil, mcpErr("Failed to load tasks. Ensure the workspace is initialized with 'dictado init'.")
	}
	if tasks == nil {
		tasks = []planning.Task{}
	}
	return tasks, nil
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}
