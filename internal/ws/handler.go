package ws

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// LocalClassroomID is the fiber Locals key holding the authorized classroom.
const LocalClassroomID = "ws_classroom_id"

// Handler upgrades the connection and subscribes it to one classroom feed.
// The route must run UpgradeMiddleware and an ownership check that stores
// the classroom id under LocalClassroomID.
func Handler(hub *Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		classroomID, ok := c.Locals(LocalClassroomID).(uuid.UUID)
		if !ok {
			_ = c.Close()
			return
		}

		client := &Client{
			hub:         hub,
			conn:        c,
			classroomID: classroomID,
			send:        make(chan []byte, 256),
		}

		if !hub.join(client) {
			_ = c.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}

func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}
