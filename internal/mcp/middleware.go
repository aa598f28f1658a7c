package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const sessionIDKey contextKey = iota

// sessionHeader carries the streamable HTTP session id.
const sessionHeader = "Mcp-Session-Id"

// getSessionID returns the caller session stored by sessionMiddleware.
func getSessionID(ctx context.Context) string {
	v, _ := ctx.Value(sessionIDKey).(string)
	return v
}

// sessionMiddleware records which caller session a request belongs to. The
// HTTP header wins; stdio clients may name a session in _meta.session_id.
// The session id selects the caller's workspace.
func sessionMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			sessionID := headerSessionID(req)
			if sessionID == "" {
				sessionID = metaSessionID(req)
			}
			if sessionID != "" {
				ctx = context.WithValue(ctx, sessionIDKey, sessionID)
			}
			return next(ctx, method, req)
		}
	}
}

func headerSessionID(req sdkmcp.Request) string {
	extra := req.GetExtra()
	if extra == nil || extra.Header == nil {
		return ""
	}
	return extra.Header.Get(sessionHeader)
}

// metaSessionID reads _meta.session_id. Notifications such as "initialized"
// carry nil params, and GetMeta panics on those.
func metaSessionID(req sdkmcp.Request) (id string) {
	params := req.GetParams()
	if params == nil {
		return ""
	}
	defer func() { recover() }()
	if sid, ok := params.GetMeta()["session_id"].(string); ok {
		id = sid
	}
	return id
}
