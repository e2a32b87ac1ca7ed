package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/middleware"
	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	"messaging-service/internal/quota"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
	"messaging-service/internal/ws"
)

const (
	defaultPageLimit = 30
	maxPageLimit     = 100
)

// MessageHandler manages message endpoints.
type MessageHandler struct {
	convRepo repositories.ConversationRepository
	msgRepo  repositories.MessageRepository
	gate     *quota.Gate
	hub      *ws.Hub
	emitter  *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(convRepo repositories.ConversationRepository, msgRepo repositories.MessageRepository, gate *quota.Gate, hub *ws.Hub, emitter *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		gate:     gate,
		hub:      hub,
		emitter:  emitter,
	}
}

type messageResponse struct {
	ID      int     `json:"id"`
	FromMe  bool    `json:"fromMe"`
	Text    string  `json:"text"`
	Created *string `json:"created"`
}

func newMessageResponse(m models.Message, viewer models.Actor) messageResponse {
	var created *string
	if !m.CreatedAt.IsZero() {
		v := m.CreatedAt.Format(time.RFC3339)
		created = &v
	}
	return messageResponse{
		ID:      m.ID,
		FromMe:  m.Sender().Equal(viewer),
		Text:    m.Content,
		Created: created,
	}
}

// GetMessages returns a page of messages in ascending order. Pagination is a
// strictly-less-than cursor over message ids.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	conversationID, err := strconv.Atoi(c.Param("conversation_id"))
	if err != nil || conversationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	beforeID := 0
	if raw := c.Query("before_id"); raw != "" {
		beforeID, err = strconv.Atoi(raw)
		if err != nil || beforeID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid before_id"})
			return
		}
	}

	limit := defaultPageLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	conv, err := h.convRepo.Get(c.Request.Context(), conversationID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrConversationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "conversation not found"})
		return
	}
	if !conv.HasParticipant(actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		return
	}

	msgs, err := h.msgRepo.ListMessages(c.Request.Context(), conversationID, beforeID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, newMessageResponse(m, actor))
	}

	// has_more is a heuristic: a full page probably has older messages behind it.
	var nextBeforeID *int
	if len(msgs) > 0 {
		nextBeforeID = &msgs[0].ID
	}
	c.JSON(http.StatusOK, gin.H{
		"messages": resp,
		"paging": gin.H{
			"has_more":       len(msgs) == limit,
			"next_before_id": nextBeforeID,
		},
	})
}

// PostMessage validates, authorizes and quota-checks a send, then stores the
// message and fans it out.
func (h *MessageHandler) PostMessage(c *gin.Context) {
	conversationID, err := strconv.Atoi(c.Param("conversation_id"))
	if err != nil || conversationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	text := models.NormalizeText(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message text is empty"})
		return
	}

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	conv, err := h.convRepo.Get(c.Request.Context(), conversationID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrConversationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "conversation not found"})
		return
	}
	if !conv.HasParticipant(actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		return
	}

	if err := h.gate.Allow(c.Request.Context(), actor, conv); err != nil {
		switch {
		case errors.Is(err, quota.ErrQuotaExceeded):
			observability.IncQuotaRejected()
			h.emitter.Emit(c.Request.Context(), "WARN", "contact quota exceeded", requestIDFromContext(c), auditActor(c))
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":          "you have reached this month's contact limit, upgrade your plan or try again next month",
				"quota_exceeded": true,
			})
		case errors.Is(err, quota.ErrUnknownPlan):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription plan"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check contact quota"})
		}
		return
	}

	msg, err := h.msgRepo.CreateMessage(c.Request.Context(), conversationID, actor, text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	observability.IncMessageSent(string(actor.Kind))
	h.hub.BroadcastMessage(conversationID, msg)

	partner, _ := conv.Partner(actor)
	_ = observability.PublishEvent(c.Request.Context(), "message.sent", observability.EventEnvelope{
		EventType: "messaging",
		EventName: "message.sent",
		Payload: map[string]interface{}{
			"conversation_id": conversationID,
			"message_id":      msg.ID,
			"sender":          actor,
			"recipient":       partner,
		},
	}, observability.BuildHeaders(requestIDFromContext(c), ""))

	c.JSON(http.StatusCreated, newMessageResponse(msg, actor))
}

// DeleteMessage removes a message. Only the message's own sender may do so.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil || messageID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	msg, err := h.msgRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if !msg.Sender().Equal(actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the sender can delete a message"})
		return
	}

	if err := h.msgRepo.DeleteMessage(c.Request.Context(), messageID, actor); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not delete message"})
		return
	}

	h.hub.BroadcastDeletion(msg.ConversationID, messageID)
	h.emitter.Emit(c.Request.Context(), "INFO", "message deleted", requestIDFromContext(c), auditActor(c))
	c.Status(http.StatusNoContent)
}
