package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

const messagesPath = "/messages/"

// handleSSE serves one long-lived SSE connection. It registers a session,
// announces the session-specific submission URL as an "endpoint" event, then
// drains the session queue into "message" events until the client
// disconnects or the session is closed.
func (s *Server) handleSSE(c *gin.Context) {
	sess := s.sessions.Create()
	defer s.sessions.Remove(sess.ID)

	s.log.Info("sse connection opened", "session_id", sess.ID, "remote_addr", c.ClientIP())
	defer s.log.Info("sse connection closed", "session_id", sess.ID)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("endpoint", fmt.Sprintf("%s?session_id=%s", messagesPath, sess.ID))
	c.Writer.Flush()

	keepalive := time.NewTicker(s.keepalive)
	defer keepalive.Stop()

	// Idle eviction is opt-in; a zero timeout means sessions live until the
	// connection drops.
	var idle <-chan time.Time
	if s.idleTimeout > 0 {
		idleTimer := time.NewTimer(s.idleTimeout)
		defer idleTimer.Stop()
		idle = idleTimer.C
	}

	for {
		select {
		case resp := <-sess.Queue():
			data, err := json.Marshal(resp)
			if err != nil {
				s.log.Error("failed to serialize response", "session_id", sess.ID, "error", err)
				continue
			}
			c.SSEvent("message", string(data))
			c.Writer.Flush()
		case <-keepalive.C:
			// Liveness only: queued messages are never dropped by a tick.
			c.Writer.WriteString(": keepalive\n\n")
			c.Writer.Flush()
		case <-idle:
			s.log.Warn("session idle timeout", "session_id", sess.ID)
			return
		case <-sess.Done():
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
