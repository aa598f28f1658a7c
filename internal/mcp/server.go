package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "interview-etl"
	serverVersion = "0.1.0"
)

// Services contains all domain services needed by MCP.
type Services struct {
	Workspaces WorkspaceService
	Jobs       JobService
	Constructs ConstructService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(sessionMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	handler := NewHandler(cfg.Services.Workspaces, cfg.Services.Jobs, cfg.Services.Constructs)
	registerTools(server, handler, logger)

	logger.Debug("mcp server configured", "transport", cfg.TransportMode, "tools", len(buildToolCatalog()))
	return server
}

// registerTools exposes every catalog entry as a tool dispatched through the handler.
func registerTools(server *sdkmcp.Server, handler *Handler, logger *slog.Logger) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			sessionID := getSessionID(ctx)
			if req != nil {
				if req.Params != nil {
					args = req.Params.Arguments
				}
				if sessionID == "" && req.Session != nil {
					sessionID = req.Session.ID()
				}
			}

			result, err := handler.Handle(ctx, sessionID, name, args)
			if err != nil {
				apiErr := toAPIError(err)
				logger.Debug("tool failed", "tool", name, "session_id", sessionID, "code", apiErr.Code, "error", err)
				return textResult(apiErr, true), nil
			}
			return textResult(result, false), nil
		})
	}
}

// toAPIError maps err to the error payload returned to the client.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if mapped := MapError(err); mapped != nil {
		return mapped
	}
	if errors.Is(err, ErrInvalidParams) {
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check the tool's input schema"}
	}
	return &APIError{Code: "INTERNAL_ERROR", Message: err.Error()}
}

func textResult(payload any, isError bool) *sdkmcp.CallToolResult {
	data, err := json.Marshal(payload)
	if err != nil {
		data, _ = json.Marshal(&APIError{Code: "INTERNAL_ERROR", Message: err.Error()})
		isError = true
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		IsError: isError,
	}
}
