package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// SendLimiter bounds how fast a single actor can post messages.
type SendLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisSendLimiter is a fixed-window counter backed by Redis INCR/EXPIRE.
type RedisSendLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisSendLimiter constructs a RedisSendLimiter.
func NewRedisSendLimiter(client *redis.Client, limit int, window time.Duration) *RedisSendLimiter {
	return &RedisSendLimiter{client: client, limit: limit, window: window}
}

// Allow counts the hit and reports whether the key is still under its limit.
func (l *RedisSendLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		l.client.Expire(ctx, key, l.window)
	}
	return count <= int64(l.limit), nil
}

// RateLimitMiddleware applies the limiter per actor on message sends. A nil
// limiter disables the check; limiter errors fail open so a Redis outage
// cannot take messaging down with it.
func RateLimitMiddleware(limiter SendLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		actor, ok := ActorFromContext(c)
		if !ok {
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), "msg_rate:"+actor.String())
		if err != nil {
			logrus.Warnf("rate limiter unavailable: %v", err)
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many messages, slow down"})
			return
		}
		c.Next()
	}
}
