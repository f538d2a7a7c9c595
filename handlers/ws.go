// handlers/ws.go - WebSocket feed for sync progress events
package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"tyriatrack/services"
)

// UpgradeWebSocket rejects plain HTTP requests on websocket routes.
func UpgradeWebSocket(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// SyncFeed streams sync lifecycle events to the client until it disconnects.
var SyncFeed = websocket.New(func(conn *websocket.Conn) {
	hub := services.GetEventHub()
	if hub == nil {
		conn.Close()
		return
	}

	events := hub.Subscribe()
	defer hub.Unsubscribe(events)

	// Read pump: we never expect client messages, but reading is the only
	// way to notice a closed connection.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("WebSocket write failed: %v", err)
				return
			}
		case <-closed:
			return
		}
	}
})
