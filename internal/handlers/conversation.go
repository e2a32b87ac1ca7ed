package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/middleware"
	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

// ConversationHandler manages conversation endpoints.
type ConversationHandler struct {
	convRepo  repositories.ConversationRepository
	actorRepo repositories.ActorRepository
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(convRepo repositories.ConversationRepository, actorRepo repositories.ActorRepository) *ConversationHandler {
	return &ConversationHandler{convRepo: convRepo, actorRepo: actorRepo}
}

// ListConversations returns the caller's inbox, most recently active first.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	summaries, err := h.convRepo.ListForActor(c.Request.Context(), actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}
	if summaries == nil {
		summaries = []models.ConversationSummary{}
	}

	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// StartConversation creates or returns the conversation with a partner actor.
func (h *ConversationHandler) StartConversation(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req struct {
		PartnerKind string `json:"partner_kind" binding:"required"`
		PartnerID   int    `json:"partner_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind, ok := models.ParseActorKind(req.PartnerKind)
	if !ok || req.PartnerID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid partner"})
		return
	}
	partner := models.Actor{Kind: kind, ID: req.PartnerID}

	if actor.Equal(partner) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot start a conversation with yourself"})
		return
	}

	exists, err := repositories.Exists(c.Request.Context(), h.actorRepo, partner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify partner"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "partner not found"})
		return
	}

	conv, err := h.convRepo.FindOrCreate(c.Request.Context(), actor, partner)
	if err != nil {
		if errors.Is(err, repositories.ErrSelfConversation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot start a conversation with yourself"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation_id": conv.ID})
}
