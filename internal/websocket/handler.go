package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches a websocket connection to the progress stream of one
// content id. Blocks until the connection closes.
func ServeWs(hub *Hub, c *websocket.Conn, contentId uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, ContentID: contentId, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
