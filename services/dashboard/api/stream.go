package api

import (
	"io"

	"github.com/gin-gonic/gin"
)

const snapshotEvent = "snapshot"

// handleStream pushes the current snapshot, then one snapshot per committed change, as server-sent events
func (s *server) handleStream(c *gin.Context) {
	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.SSEvent(snapshotEvent, s.store.Snapshot())
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case snapshot, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(snapshotEvent, snapshot)
			return true
		case <-ctx.Done():
			return false
		case <-s.closing:
			return false
		}
	})
}
