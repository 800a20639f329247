package listener

import (
	"encoding/json"
	"log"

	"chat-service/database"
	"chat-service/event"
	"chat-service/service"
)

var (
	PresenceChannel = make(chan event.EventChannelData)
)

// Presence consumes presence events published by other services (for
// example a session service noticing a dropped connection) and applies
// them to the user directory.
func Presence() {
	users := service.NewUserService(database.Postgres)

	for evt := range PresenceChannel {
		switch evt.Action {
		case event.ActionUserOffline:
			var payload struct {
				UserID uint `json:"user_id"`
			}
			if err := json.Unmarshal(evt.Data, &payload); err != nil {
				log.Printf("bad presence payload: %v", err)
				continue
			}
			if err := users.SetOffline(payload.UserID); err != nil {
				log.Printf("failed to mark user %d offline: %v", payload.UserID, err)
			}
		}
	}
}
