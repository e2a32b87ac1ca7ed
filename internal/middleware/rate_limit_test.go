package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/middleware"
	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
)

func setupRateLimitRouter(limiter middleware.SendLimiter, actor models.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("actor", actor)
		c.Next()
	})
	r.POST("/send", middleware.RateLimitMiddleware(limiter), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimitAllows(t *testing.T) {
	limiter := new(mocks.SendLimiterMock)
	router := setupRateLimitRouter(limiter, models.UserActor(5))

	limiter.On("Allow", mock.Anything, "msg_rate:user:5").Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/send", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	limiter.AssertExpectations(t)
}

func TestRateLimitBlocks(t *testing.T) {
	limiter := new(mocks.SendLimiterMock)
	router := setupRateLimitRouter(limiter, models.CompanyActor(7))

	limiter.On("Allow", mock.Anything, "msg_rate:company:7").Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/send", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimitFailsOpen(t *testing.T) {
	limiter := new(mocks.SendLimiterMock)
	router := setupRateLimitRouter(limiter, models.UserActor(5))

	limiter.On("Allow", mock.Anything, "msg_rate:user:5").Return(false, assert.AnError).Once()

	req := httptest.NewRequest(http.MethodPost, "/send", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitNilLimiterDisabled(t *testing.T) {
	router := setupRateLimitRouter(nil, models.UserActor(5))

	req := httptest.NewRequest(http.MethodPost, "/send", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
