// Package mcp exposes patchbay desks to Model Context Protocol clients.
// Agents drive the same command surface the HTTP adapter speaks, plus a
// handful of read tools tuned for conversational use (state, routes, a
// mermaid graph of the live signal flow).
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/internal/presentation/graph"
	"github.com/aretw0/patchbay/pkg/command"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/session"
)

// Server wraps a session.Manager and exposes its desks as an MCP server.
type Server struct {
	manager   *session.Manager
	proc      *command.Processor
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithProcessor swaps the command processor backing the desk_command tool.
func WithProcessor(p *command.Processor) Option {
	return func(s *Server) { s.proc = p }
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a new MCP Server instance over the given desk manager.
func NewServer(manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		manager:   manager,
		proc:      command.NewProcessor(),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("patchbay-mcp", strings.TrimSpace(patchbay.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("mcp server listening (sse)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping mcp server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: open_desk
	openTool := mcp.NewTool("open_desk",
		mcp.WithDescription("Open a routing desk: reuses the live desk, restores it from the snapshot store, or creates a fresh one with the given dimensions. Returns the desk state."),
		mcp.WithString("desk_id", mcp.Description("Desk identifier (generated when omitted)")),
		mcp.WithNumber("inputs", mcp.Description("Input count for a fresh desk (default 8)")),
		mcp.WithNumber("outputs", mcp.Description("Output count for a fresh desk (default 4)")),
	)
	s.mcpServer.AddTool(openTool, s.handleOpenDesk)

	// TOOL: close_desk
	closeTool := mcp.NewTool("close_desk",
		mcp.WithDescription("Close a live desk and drop its in-memory state. Saved snapshots are untouched."),
		mcp.WithString("desk_id", mcp.Required(), mcp.Description("Desk identifier")),
	)
	s.mcpServer.AddTool(closeTool, s.handleCloseDesk)

	// TOOL: list_desks
	s.mcpServer.AddTool(mcp.NewTool("list_desks",
		mcp.WithDescription("List the identifiers of all live desks."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(map[string][]string{"desks": s.manager.List()})
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: get_state
	stateTool := mcp.NewTool("get_state",
		mcp.WithDescription("Get the full state of a desk: levels, crosspoints, mutes, solos and gangs."),
		mcp.WithString("desk_id", mcp.Required(), mcp.Description("Desk identifier")),
	)
	s.mcpServer.AddTool(stateTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.stateResult(ctx, argString(request, "desk_id"))
	})

	// TOOL: get_routes
	routesTool := mcp.NewTool("get_routes",
		mcp.WithDescription("List the audible routes of a desk with their resolved gains."),
		mcp.WithString("desk_id", mcp.Required(), mcp.Description("Desk identifier")),
	)
	s.mcpServer.AddTool(routesTool, s.handleGetRoutes)

	// TOOL: get_graph
	graphTool := mcp.NewTool("get_graph",
		mcp.WithDescription("Render the desk's signal flow as a mermaid diagram."),
		mcp.WithString("desk_id", mcp.Required(), mcp.Description("Desk identifier")),
	)
	s.mcpServer.AddTool(graphTool, s.handleGetGraph)

	// TOOL: desk_command
	commandTool := mcp.NewTool("desk_command",
		mcp.WithDescription("Run one desk command (setCrosspoint, setInputLevel, muteOutput, createGang, unity, ...). Use list_commands for the full set. Params carries the command arguments as a JSON object."),
		mcp.WithString("desk_id", mcp.Required(), mcp.Description("Target desk")),
		mcp.WithString("command", mcp.Required(), mcp.Description("Command name")),
		mcp.WithString("params", mcp.Description("JSON object with the command arguments")),
		mcp.WithOutputSchema[command.Response](),
	)
	s.mcpServer.AddTool(commandTool, mcp.NewStructuredToolHandler(s.handleDeskCommand))

	// TOOL: list_commands
	s.mcpServer.AddTool(mcp.NewTool("list_commands",
		mcp.WithDescription("List the command names desk_command accepts."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		names := s.proc.Commands()
		sort.Strings(names)
		jsonBytes, _ := json.Marshal(map[string][]string{"commands": names})
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: save_desk
	saveTool := mcp.NewTool("save_desk",
		mcp.WithDescription("Persist the desk state to the snapshot store."),
		mcp.WithString("desk_id", mcp.Required(), mcp.Description("Desk identifier")),
	)
	s.mcpServer.AddTool(saveTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := argString(request, "desk_id")
		if err := s.manager.Save(ctx, id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("save desk: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("desk %q saved", id)), nil
	})

	// TOOL: load_desk
	loadTool := mcp.NewTool("load_desk",
		mcp.WithDescription("Replace the desk state with the stored snapshot. Returns the restored state."),
		mcp.WithString("desk_id", mcp.Required(), mcp.Description("Desk identifier")),
	)
	s.mcpServer.AddTool(loadTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := argString(request, "desk_id")
		if err := s.manager.Load(ctx, id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load desk: %v", err)), nil
		}
		return s.stateResult(ctx, id)
	})
}

// Handler methods

func (s *Server) handleOpenDesk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, _ := args["desk_id"].(string)

	inputs := argInt(args, "inputs", 8)
	outputs := argInt(args, "outputs", 4)

	id, err := s.manager.Open(ctx, id, inputs, outputs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("open desk: %v", err)), nil
	}
	return s.stateResult(ctx, id)
}

func (s *Server) handleCloseDesk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := argString(request, "desk_id")
	if err := s.manager.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("close desk: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("desk %q closed", id)), nil
}

func (s *Server) handleGetRoutes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var routes []domain.Route
	err := s.manager.WithDesk(ctx, argString(request, "desk_id"), func(_ context.Context, desk *patchbay.Matrix) error {
		routes = desk.ActiveRoutes()
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if routes == nil {
		routes = []domain.Route{}
	}
	jsonBytes, _ := json.Marshal(map[string][]domain.Route{"routes": routes})
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var diagram string
	err := s.manager.WithDesk(ctx, argString(request, "desk_id"), func(_ context.Context, desk *patchbay.Matrix) error {
		diagram = graph.GenerateMermaid(desk.State(), desk.ActiveRoutes())
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(diagram), nil
}

// handleDeskCommand funnels the MCP tool call into the shared command
// processor. Command failures come back inside the envelope, not as tool
// errors; only a missing desk or an unreadable request aborts the call.
func (s *Server) handleDeskCommand(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (command.Response, error) {
	deskID, _ := args["desk_id"].(string)
	name, _ := args["command"].(string)
	if deskID == "" || name == "" {
		return command.Response{}, fmt.Errorf("desk_id and command are required")
	}

	params := map[string]any{}
	if raw, ok := args["params"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return command.Response{}, fmt.Errorf("params must be a JSON object: %w", err)
		}
	}

	var resp command.Response
	err := s.manager.WithDesk(ctx, deskID, func(ctx context.Context, desk *patchbay.Matrix) error {
		result, err := s.proc.Execute(ctx, desk, name, params)
		if err != nil {
			resp = command.Fail(err.Error(), command.CodeFor(err))
			return nil
		}
		resp = command.OK(result)
		return nil
	})
	if err != nil {
		return command.Response{}, err
	}
	return resp, nil
}

func (s *Server) registerResources() {
	// EXPOSE: patchbay://desks
	s.mcpServer.AddResource(mcp.NewResource("patchbay://desks", "Live Desk States",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		states := make(map[string]*domain.Snapshot)
		for _, id := range s.manager.List() {
			var snap *domain.Snapshot
			if err := s.manager.WithDesk(ctx, id, func(_ context.Context, desk *patchbay.Matrix) error {
				snap = desk.State()
				return nil
			}); err != nil {
				// Desk closed between List and WithDesk.
				continue
			}
			states[id] = snap
		}
		jsonBytes, _ := json.Marshal(states)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "patchbay://desks",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func (s *Server) stateResult(ctx context.Context, id string) (*mcp.CallToolResult, error) {
	var snap *domain.Snapshot
	err := s.manager.WithDesk(ctx, id, func(_ context.Context, desk *patchbay.Matrix) error {
		snap = desk.State()
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	jsonBytes, _ := json.Marshal(snap)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func argString(request mcp.CallToolRequest, key string) string {
	v, _ := request.GetArguments()[key].(string)
	return v
}

// argInt reads a numeric argument; MCP clients send numbers as float64.
func argInt(args map[string]interface{}, key string, def int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return def
}
