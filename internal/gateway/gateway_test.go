package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botel-ai/pms-mcp-gateway/internal/config"
	"github.com/botel-ai/pms-mcp-gateway/internal/rpc"
	"github.com/botel-ai/pms-mcp-gateway/internal/tools"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(&tools.Tool{
		Name:        "echo",
		Description: "echoes a greeting",
		Handler: func(ctx context.Context, args map[string]any) ([]tools.Content, error) {
			name, _ := args["who"].(string)
			return tools.Textf("hello %s", name), nil
		},
	}))
	require.NoError(t, reg.Register(&tools.Tool{
		Name:        "explode",
		Description: "panics on purpose",
		Handler: func(ctx context.Context, args map[string]any) ([]tools.Content, error) {
			panic("boom")
		},
	}))
	return reg
}

func newTestServer(t *testing.T, authToken string) (*Server, *gin.Engine) {
	t.Helper()
	cfg := config.Default()
	cfg.Server.AuthToken = authToken
	srv := NewServer(cfg, testRegistry(t), discardLogger())
	return srv, srv.SetupRouter()
}

// postMessage submits a raw body for the session and returns the response
// pushed onto the session queue.
func postMessage(t *testing.T, router *gin.Engine, sess *Session, body string, headers map[string]string) *rpc.Response {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, messagesPath+"?session_id="+sess.ID, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	select {
	case resp := <-sess.Queue():
		return resp
	case <-time.After(time.Second):
		t.Fatal("no response queued for session")
		return nil
	}
}

func TestMessages_InvalidSession(t *testing.T) {
	_, router := newTestServer(t, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, messagesPath+"?session_id=bogus",
		strings.NewReader(`{"jsonrpc":"2.0","method":"tools/list","id":1}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid session")
}

func TestMessages_Initialize(t *testing.T) {
	srv, router := newTestServer(t, "")
	sess := srv.Sessions().Create()

	resp := postMessage(t, router, sess,
		`{"jsonrpc":"2.0","method":"initialize","id":1,"params":{"protocolVersion":"2024-11-05"}}`, nil)

	require.Nil(t, resp.Error)
	assert.Equal(t, "1", string(resp.ID))
	result, ok := resp.Result.(initializeResult)
	require.True(t, ok)
	assert.Equal(t, "2024-11-05", result.ProtocolVersion)
	assert.Equal(t, serverName, result.ServerInfo.Name)
}

func TestMessages_InitializeDefaultsProtocolVersion(t *testing.T) {
	srv, router := newTestServer(t, "")
	sess := srv.Sessions().Create()

	resp := postMessage(t, router, sess, `{"jsonrpc":"2.0","method":"initialize","id":2}`, nil)

	require.Nil(t, resp.Error)
	result := resp.Result.(initializeResult)
	assert.Equal(t, defaultProtocolVersion, result.ProtocolVersion)
}

func TestMessages_ToolsList(t *testing.T) {
	srv, router := newTestServer(t, "")
	sess := srv.Sessions().Create()

	resp := postMessage(t, router, sess, `{"jsonrpc":"2.0","method":"tools/list","id":3}`, nil)

	require.Nil(t, resp.Error)
	result := resp.Result.(gin.H)
	listed := result["tools"].([]*tools.Tool)
	require.Len(t, listed, 2)
	assert.Equal(t, "echo", listed[0].Name)
	assert.Equal(t, "explode", listed[1].Name)
}

func TestMessages_ToolsCall(t *testing.T) {
	srv, router := newTestServer(t, "")
	sess := srv.Sessions().Create()

	resp := postMessage(t, router, sess,
		`{"jsonrpc":"2.0","method":"tools/call","id":4,"params":{"name":"echo","arguments":{"who":"world"}}}`, nil)

	require.Nil(t, resp.Error)
	result := resp.Result.(gin.H)
	content := result["content"].([]tools.Content)
	require.Len(t, content, 1)
	assert.Equal(t, "hello world", content[0].Text)
}

func TestMessages_ToolsCallUnknownTool(t *testing.T) {
	srv, router := newTestServer(t, "")
	sess := srv.Sessions().Create()

	resp := postMessage(t, router, sess,
		`{"jsonrpc":"2.0","method":"tools/call","id":5,"params":{"name":"ghost"}}`, nil)

	require.NotNil(t, resp.Error)
	assert.Equal(t, rpc.ErrCodeInternalError, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "unknown tool: ghost")
}

func TestMessages_ToolsCallMissingName(t *testing.T) {
	srv, router := newTestServer(t, "")
	sess := srv.Sessions().Create()

	resp := postMessage(t, router, sess,
		`{"jsonrpc":"2.0","method":"tools/call","id":6,"params":{}}`, nil)

	require.NotNil(t, resp.Error)
	assert.Equal(t, rpc.ErrCodeInvalidParams, resp.Error.Code)
}

func TestMessages_PanickingToolBecomesInternalError(t *testing.T) {
	srv, router := newTestServer(t, "")
	sess := srv.Sessions().Create()

	resp := postMessage(t, router, sess,
		`{"jsonrpc":"2.0","method":"tools/call","id":7,"params":{"name":"explode"}}`, nil)

	require.NotNil(t, resp.Error)
	assert.Equal(t, rpc.ErrCodeInternalError, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "boom")
}

func TestMessages_UnknownMethod(t *testing.T) {
	srv, router := newTestServer(t, "")
	sess := srv.Sessions().Create()

	resp := postMessage(t, router, sess, `{"jsonrpc":"2.0","method":"resources/list","id":8}`, nil)

	require.NotNil(t, resp.Error)
	assert.Equal(t, rpc.ErrCodeMethodNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "resources/list")
}

func TestMessages_ParseErrorGoesToStream(t *testing.T) {
	srv, router := newTestServer(t, "")
	sess := srv.Sessions().Create()

	resp := postMessage(t, router, sess, `{not json`, nil)

	require.NotNil(t, resp.Error)
	assert.Equal(t, rpc.ErrCodeParseError, resp.Error.Code)
	assert.Equal(t, "0", string(resp.ID))
}

func TestMessages_StringIDEchoed(t *testing.T) {
	srv, router := newTestServer(t, "")
	sess := srv.Sessions().Create()

	resp := postMessage(t, router, sess, `{"jsonrpc":"2.0","method":"tools/list","id":"req-abc"}`, nil)

	assert.Equal(t, `"req-abc"`, string(resp.ID))
}

func TestMessages_WrappedEnvelope(t *testing.T) {
	srv, router := newTestServer(t, "")
	sess := srv.Sessions().Create()

	resp := postMessage(t, router, sess,
		`{"message":{"root":{"jsonrpc":"2.0","method":"tools/list","id":9}}}`, nil)

	require.Nil(t, resp.Error)
	assert.Equal(t, "9", string(resp.ID))
}

func TestMessages_AuthRequired(t *testing.T) {
	srv, router := newTestServer(t, "hunter2")
	sess := srv.Sessions().Create()

	resp := postMessage(t, router, sess, `{"jsonrpc":"2.0","method":"tools/list","id":10}`, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, rpc.ErrCodeUnauthorized, resp.Error.Code)

	resp = postMessage(t, router, sess, `{"jsonrpc":"2.0","method":"tools/list","id":11}`,
		map[string]string{"Authorization": "Bearer hunter2"})
	assert.Nil(t, resp.Error)
}

func TestHealth(t *testing.T) {
	_, router := newTestServer(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, serverName, body["service"])
}

func TestCORSPreflight(t *testing.T) {
	_, router := newTestServer(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, messagesPath, nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestShutdownClosesSessions(t *testing.T) {
	srv, _ := newTestServer(t, "")
	sess := srv.Sessions().Create()

	srv.Shutdown()

	select {
	case <-sess.Done():
	case <-time.After(time.Second):
		t.Fatal("session not closed by shutdown")
	}
	assert.Zero(t, srv.Sessions().Len())
}
