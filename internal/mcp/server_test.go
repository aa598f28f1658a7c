package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ganot/interview-etl/internal/domain/construct"
	"github.com/ganot/interview-etl/internal/domain/workspace"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func connectClient(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()
	return connectClientWithLogger(t, nil)
}

func connectClientWithLogger(t *testing.T, logger *slog.Logger) *sdkmcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	constructs := construct.NewService(nil, nil)
	server := NewServer(Config{
		Services: Services{
			Workspaces: workspace.NewService(constructs, nil, nil, workspace.Options{}, nil),
			Constructs: constructs,
		},
		TransportMode: "stdio",
		Logger:        logger,
	})

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func callTool(t *testing.T, cs *sdkmcp.ClientSession, name string, args map[string]any) (json.RawMessage, bool) {
	t.Helper()
	result, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "CallTool %s failed", name)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "tool %s returned no text content", name)
	return json.RawMessage(text.Text), result.IsError
}

func TestServer_ToolCatalog(t *testing.T) {
	cs := connectClient(t)

	init := cs.InitializeResult()
	require.NotNil(t, init)
	require.Equal(t, serverName, init.ServerInfo.Name)

	tools, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, def := range buildToolCatalog() {
		require.True(t, names[def.Name], "missing tool %s", def.Name)
	}
}

func TestServer_TableWorkflow(t *testing.T) {
	cs := connectClient(t)

	out, isErr := callTool(t, cs, "ping", nil)
	require.False(t, isErr)
	require.JSONEq(t, `{"status":"pong"}`, string(out))

	out, isErr = callTool(t, cs, "open_workspace", map[string]any{"seed": "sample"})
	require.False(t, isErr, string(out))
	var info workspace.Info
	require.NoError(t, json.Unmarshal(out, &info))
	require.Equal(t, 3, info.Records)

	out, isErr = callTool(t, cs, "get_view", map[string]any{"search": "APPROVER", "direction": "desc"})
	require.False(t, isErr, string(out))
	var view struct {
		Total   int `json:"total"`
		Records []struct {
			ID string `json:"id"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal(out, &view))
	require.Equal(t, 1, view.Total)
	require.Equal(t, "US-3", view.Records[0].ID)

	out, isErr = callTool(t, cs, "update_record", map[string]any{
		"id":     "US-1",
		"fields": map[string]any{"match_score": 1.5},
	})
	require.True(t, isErr)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(out, &apiErr))
	require.Equal(t, "VALIDATION_ERROR", apiErr.Code)

	out, isErr = callTool(t, cs, "export_csv", map[string]any{"field_order": []string{"id", "priority"}})
	require.False(t, isErr, string(out))
	var exported ExportResponse
	require.NoError(t, json.Unmarshal(out, &exported))
	require.Equal(t, "User Story ID,Priority\nUS-1,High\nUS-2,Medium\nUS-3,Low", exported.CSV)

	out, isErr = callTool(t, cs, "publish_csv", nil)
	require.True(t, isErr)
	require.NoError(t, json.Unmarshal(out, &apiErr))
	require.Equal(t, "PUBLISH_UNAVAILABLE", apiErr.Code)
}

func TestServer_DocResources(t *testing.T) {
	cs := connectClient(t)

	res, err := cs.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: "etl://docs/index"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "open_workspace")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServer_TrafficLogging(t *testing.T) {
	var logs syncBuffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cs := connectClientWithLogger(t, logger)

	_, isErr := callTool(t, cs, "open_workspace", map[string]any{"seed": "sample"})
	require.False(t, isErr)
	_, isErr = callTool(t, cs, "export_csv", nil)
	require.False(t, isErr)

	out := logs.String()
	require.Contains(t, out, `msg="mcp traffic"`)
	require.Contains(t, out, "tool=open_workspace")
	require.Contains(t, out, "stage=response")
	require.True(t, strings.Contains(out, "elapsed="))
}

func TestFormatPayloadTruncates(t *testing.T) {
	require.Equal(t, "<nil>", formatPayload(nil))
	require.Equal(t, `{"a":1}`, formatPayload(map[string]int{"a": 1}))

	long := formatPayload(strings.Repeat("x", maxLoggedPayload*2))
	require.True(t, strings.HasSuffix(long, "bytes)"))
	require.Less(t, len(long), maxLoggedPayload+32)
}
