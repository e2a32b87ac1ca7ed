package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

const actorContextKey = "actor"

var errInvalidToken = errors.New("invalid token")

// ActorClaims is the token payload issued at login. ActorKind is set by the
// current auth service; tokens minted before the claim existed carry only the
// subject id and fall back to the table probe.
type ActorClaims struct {
	ActorKind string `json:"actor,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the Authorization header and attaches the
// resolved Actor to the request context. Requests without a resolvable actor
// are rejected with 401.
func AuthMiddleware(secret string, actors repositories.ActorRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		actor, err := ResolveActor(c.Request.Context(), secret, parts[1], actors)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// ResolveActor validates the token and maps its identity to an Actor. The
// kind claim is authoritative when present; otherwise the users table is
// probed first, then companies.
func ResolveActor(ctx context.Context, secret string, tokenString string, actors repositories.ActorRepository) (models.Actor, error) {
	claims := &ActorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return models.Actor{}, errInvalidToken
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil || id <= 0 {
		return models.Actor{}, errInvalidToken
	}

	if kind, ok := models.ParseActorKind(claims.ActorKind); ok {
		return models.Actor{Kind: kind, ID: id}, nil
	}

	if exists, err := actors.UserExists(ctx, id); err != nil {
		return models.Actor{}, err
	} else if exists {
		return models.UserActor(id), nil
	}
	if exists, err := actors.CompanyExists(ctx, id); err != nil {
		return models.Actor{}, err
	} else if exists {
		return models.CompanyActor(id), nil
	}
	return models.Actor{}, errInvalidToken
}

// ActorFromContext returns the Actor set by AuthMiddleware.
func ActorFromContext(c *gin.Context) (models.Actor, bool) {
	val, ok := c.Get(actorContextKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := val.(models.Actor)
	if !ok || !actor.Valid() {
		return models.Actor{}, false
	}
	return actor, true
}
