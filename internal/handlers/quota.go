package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/middleware"
	"messaging-service/internal/models"
	"messaging-service/internal/quota"
	"messaging-service/internal/repositories"
)

// QuotaHandler exposes the company contact-quota standing.
type QuotaHandler struct {
	gate *quota.Gate
}

// NewQuotaHandler builds a QuotaHandler.
func NewQuotaHandler(gate *quota.Gate) *QuotaHandler {
	return &QuotaHandler{gate: gate}
}

// GetQuota returns the caller's plan, limit and month-to-date usage.
// Quotas only apply to company accounts.
func (h *QuotaHandler) GetQuota(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if actor.Kind != models.ActorKindCompany {
		c.JSON(http.StatusForbidden, gin.H{"error": "contact quotas apply to company accounts"})
		return
	}

	usage, err := h.gate.Usage(c.Request.Context(), actor.ID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrCompanyNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
		case errors.Is(err, quota.ErrUnknownPlan):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription plan"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load quota"})
		}
		return
	}

	remaining := 0
	if !usage.Unlimited {
		remaining = usage.Limit - usage.Used
		if remaining < 0 {
			remaining = 0
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"plan":      usage.Plan,
		"limit":     usage.Limit,
		"used":      usage.Used,
		"remaining": remaining,
		"unlimited": usage.Unlimited,
		"resets_at": usage.ResetsAt,
	})
}
