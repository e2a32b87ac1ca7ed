package ws

import (
	"time"

	"github.com/google/uuid"

	"messaging-service/internal/models"
)

// ConnInfo carries the identity and correlation context of one websocket
// connection for lifecycle events and error reporting.
type ConnInfo struct {
	ConnID      string
	Actor       models.Actor
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

func newConnID() string {
	return uuid.NewString()
}
