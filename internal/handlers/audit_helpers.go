package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"messaging-service/internal/middleware"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

// auditActor formats the authenticated actor for audit envelopes, or nil when
// the request carries none.
func auditActor(c *gin.Context) *string {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return nil
	}
	ref := actor.String()
	return &ref
}
