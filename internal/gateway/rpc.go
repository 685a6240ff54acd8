package gateway

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/botel-ai/pms-mcp-gateway/internal/rpc"
	"github.com/botel-ai/pms-mcp-gateway/internal/tools"
)

// defaultProtocolVersion is assumed when an initialize request does not name
// one; otherwise the client's version is echoed back as-is.
const defaultProtocolVersion = "2025-03-26"

const (
	serverName    = "pms-mcp-gateway"
	serverVersion = "1.0.0"
)

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    capabilities   `json:"capabilities"`
	ServerInfo      serverInfoBody `json:"serverInfo"`
}

type capabilities struct {
	Tools struct{} `json:"tools"`
}

type serverInfoBody struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// handleMessages accepts one JSON-RPC submission for a session. Only an
// unknown session is answered synchronously; every other outcome - results,
// protocol errors, auth failures, even parse errors - is enqueued for the
// session's SSE stream and the POST acks with 204.
//
// Responses are enqueued in completion order, which may differ from
// submission order when concurrent calls have different latencies; clients
// correlate by the echoed id.
func (s *Server) handleMessages(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Query("session_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	var req *rpc.Request
	if err == nil {
		req, err = rpc.ParseRequest(body)
	}
	if err != nil {
		s.log.Warn("unparseable submission", "session_id", sess.ID, "error", err)
		s.push(sess, rpc.NewError(nil, rpc.ErrCodeParseError, "Parse error"))
		c.Status(http.StatusNoContent)
		return
	}

	s.log.Info("received request", "session_id", sess.ID, "method", req.Method, "id", string(req.ID))

	if s.authToken != "" && c.GetHeader("Authorization") != "Bearer "+s.authToken {
		s.push(sess, rpc.NewError(req.ID, rpc.ErrCodeUnauthorized, "Unauthorized"))
		c.Status(http.StatusNoContent)
		return
	}

	resp := s.dispatch(c.Request.Context(), req)
	s.log.Info("sending response",
		"session_id", sess.ID, "id", string(resp.ID), "has_error", resp.Error != nil)
	s.push(sess, resp)
	c.Status(http.StatusNoContent)
}

func (s *Server) push(sess *Session, resp *rpc.Response) {
	if err := sess.Push(resp); err != nil {
		s.log.Warn("dropping response for closed session", "session_id", sess.ID)
	}
}

// dispatch routes a request over the closed set of supported methods. A
// panic anywhere below becomes a well-formed internal error; nothing escapes
// a session's processing loop uncaught.
func (s *Server) dispatch(ctx context.Context, req *rpc.Request) (resp *rpc.Response) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic in method handler", "method", req.Method, "panic", r)
			resp = rpc.NewError(req.ID, rpc.ErrCodeInternalError, "Internal error: %v", r)
		}
	}()

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "tools/list":
		return rpc.NewResult(req.ID, gin.H{"tools": s.registry.List()})
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return rpc.NewError(req.ID, rpc.ErrCodeMethodNotFound, "Method not found: %s", req.Method)
	}
}

func (s *Server) handleInitialize(req *rpc.Request) *rpc.Response {
	params, err := req.ParamsMap()
	if err != nil {
		return rpc.NewError(req.ID, rpc.ErrCodeInvalidParams, "%v", err)
	}
	version, _ := params["protocolVersion"].(string)
	if version == "" {
		version = defaultProtocolVersion
	}
	return rpc.NewResult(req.ID, initializeResult{
		ProtocolVersion: version,
		ServerInfo:      serverInfoBody{Name: serverName, Version: serverVersion},
	})
}

func (s *Server) handleToolsCall(ctx context.Context, req *rpc.Request) *rpc.Response {
	params, err := req.ParamsMap()
	if err != nil {
		return rpc.NewError(req.ID, rpc.ErrCodeInvalidParams, "%v", err)
	}
	name, _ := params["name"].(string)
	if name == "" {
		return rpc.NewError(req.ID, rpc.ErrCodeInvalidParams, "Tool name required")
	}
	args, _ := params["arguments"].(map[string]any)

	content, err := s.registry.Call(ctx, name, args)
	if err != nil {
		return rpc.NewError(req.ID, rpc.ErrCodeInternalError, "%v", err)
	}
	if content == nil {
		content = []tools.Content{}
	}
	return rpc.NewResult(req.ID, gin.H{"content": content})
}
