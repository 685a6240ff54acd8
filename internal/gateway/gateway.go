// Package gateway is the session-oriented SSE/JSON-RPC front of the PMS MCP
// server: it multiplexes concurrent orchestrator sessions, each with an
// inbound POST channel and an outbound SSE stream bridged by a per-session
// queue.
package gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/botel-ai/pms-mcp-gateway/internal/config"
	"github.com/botel-ai/pms-mcp-gateway/internal/tools"
)

type Server struct {
	sessions *SessionManager
	registry *tools.Registry
	log      *slog.Logger

	authToken   string
	keepalive   time.Duration
	idleTimeout time.Duration
}

func NewServer(cfg *config.Config, registry *tools.Registry, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	keepalive := cfg.Session.Keepalive()
	if keepalive <= 0 {
		keepalive = 30 * time.Second
	}
	return &Server{
		sessions:    NewSessionManager(cfg.Session.QueueSize),
		registry:    registry,
		log:         log,
		authToken:   cfg.Server.AuthToken,
		keepalive:   keepalive,
		idleTimeout: cfg.Session.IdleTimeout(),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	r.GET("/health", s.handleHealth)
	r.GET("/sse", s.handleSSE)
	r.POST(messagesPath, s.handleMessages)

	return r
}

// Shutdown closes all live sessions so their SSE loops drain and exit.
func (s *Server) Shutdown() {
	s.sessions.Shutdown()
}

// Sessions exposes the session manager for tests.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serverName})
}

// corsMiddleware mirrors the original deployment: the orchestrator may run
// in a different origin context, so GET/POST/OPTIONS are open with the
// Content-Type and Authorization headers.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
