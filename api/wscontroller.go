package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"reelscript/events"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from a separate dev origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// RegisterProgressRoutes registers the websocket progress stream.
func RegisterProgressRoutes(r *gin.Engine, deps Deps) {
	r.GET("/ws/progress", handleProgress(deps))
}

// handleProgress upgrades the connection and mirrors hub events to the
// client until either side goes away. Clients may send "ping" text frames
// and receive a pong event back; anything else from the client is ignored.
// All frames go out through the writer goroutine since the connection
// allows only one concurrent writer.
func handleProgress(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] upgrade failed: %v", err)
			return
		}

		sub, detach := deps.Hub.Subscribe()
		defer detach()
		defer conn.Close()

		done := make(chan struct{})
		pings := make(chan struct{}, 1)

		go func() {
			// closing the connection here unblocks the reader when a
			// write fails first
			defer conn.Close()
			ticker := time.NewTicker(wsPingPeriod)
			defer ticker.Stop()
			for {
				select {
				case ev, ok := <-sub:
					if !ok {
						return
					}
					conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
					if err := conn.WriteJSON(ev); err != nil {
						return
					}
				case <-pings:
					conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
					if err := conn.WriteJSON(events.Event{Type: events.TypePong}); err != nil {
						return
					}
				case <-ticker.C:
					conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Reader: detects disconnects and surfaces application pings.
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				close(done)
				return
			}
			if string(msg) == "ping" {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}
}
