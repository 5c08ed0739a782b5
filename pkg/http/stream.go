package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"liyu1981.xyz/vessel-resource-service/pkg/common"
)

const keepAliveInterval = 30 * time.Second

// StreamEvents relays broadcast events to the client as server-sent events until the client
// goes away or the broadcaster closes.
func (rs *RestfulServer) StreamEvents(c *gin.Context) {
	if rs.Broadcaster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream not available"})
		return
	}

	logger := common.GetLoggerWith(common.LoggerNameRestfulServer)

	id, events := rs.Broadcaster.Subscribe()
	defer rs.Broadcaster.Unsubscribe(id)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	logger.Debug("Event stream opened", zap.Uint64("subscriber", id), zap.String("actor", actorOf(c)))

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Event stream closed by client", zap.Uint64("subscriber", id))
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(string(e.Type), e)
			c.Writer.Flush()
		case <-keepAlive.C:
			_, _ = c.Writer.WriteString(": keep-alive\n\n")
			c.Writer.Flush()
		}
	}
}
