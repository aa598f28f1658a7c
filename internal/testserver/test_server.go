// Package testserver runs the MCP server over streamable HTTP for functional tests.
package testserver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ganot/interview-etl/internal/domain/construct"
	"github.com/ganot/interview-etl/internal/domain/job"
	"github.com/ganot/interview-etl/internal/domain/record"
	"github.com/ganot/interview-etl/internal/domain/workspace"
	"github.com/ganot/interview-etl/internal/exportsink"
	"github.com/ganot/interview-etl/internal/mcp"
	"github.com/ganot/interview-etl/internal/sqlite"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type TestServer struct {
	Server *httptest.Server
	DB     *sqlite.DB
	Jobs   *job.Service
	Sink   *exportsink.Memory
}

// New starts a server backed by an in-memory database and export sink.
func New(t *testing.T) *TestServer {
	t.Helper()

	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)

	constructSvc := construct.NewService(sqlite.NewConstructRepository(db), nil)
	jobSvc := job.NewService(sqlite.NewJobRepository(db), nil)
	sink := exportsink.NewMemory()
	workspaceSvc := workspace.NewService(constructSvc, jobSvc, sink, workspace.Options{Locale: language.English}, nil)

	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Workspaces: workspaceSvc,
			Jobs:       jobSvc,
			Constructs: constructSvc,
		},
		TransportMode: "http",
	})
	httpServer := httptest.NewServer(mcp.NewHTTPHandler(server))

	t.Cleanup(func() {
		httpServer.Close()
		_ = db.Close()
	})

	return &TestServer{Server: httpServer, DB: db, Jobs: jobSvc, Sink: sink}
}

// SeedJob stores records as the results of a completed job.
func (ts *TestServer) SeedJob(t *testing.T, id, construct string, records []record.Record) {
	t.Helper()
	ctx := context.Background()
	_, err := ts.Jobs.Create(ctx, job.CreateRequest{ID: id, Name: id, Construct: construct})
	require.NoError(t, err)
	require.NoError(t, ts.Jobs.Advance(ctx, id, job.StatusProcessing))
	require.NoError(t, ts.Jobs.Complete(ctx, id, records))
}

// Client is one MCP session against the test server.
type Client struct {
	Session *sdkmcp.ClientSession
}

// Connect opens a new MCP session. Every session gets its own workspace.
func (ts *TestServer) Connect(t *testing.T) *Client {
	t.Helper()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{Endpoint: ts.Server.URL + "/mcp"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return &Client{Session: session}
}

// Call invokes a tool and returns the text payload and whether it is an error result.
func (c *Client) Call(t *testing.T, name string, args map[string]any) (json.RawMessage, bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := c.Session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "expected text content")
	return json.RawMessage(text.Text), result.IsError
}

// MustCall invokes a tool and fails the test on an error result.
func (c *Client) MustCall(t *testing.T, name string, args map[string]any) json.RawMessage {
	t.Helper()
	payload, isErr := c.Call(t, name, args)
	require.False(t, isErr, "tool %s failed: %s", name, payload)
	return payload
}
