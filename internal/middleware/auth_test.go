package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/middleware"
	"messaging-service/internal/mocks"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims middleware.ActorClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func setupAuthRouter(secret string, actors *mocks.ActorRepositoryMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", middleware.AuthMiddleware(secret, actors), func(c *gin.Context) {
		actor, _ := middleware.ActorFromContext(c)
		c.JSON(http.StatusOK, gin.H{"actor": actor.String()})
	})
	return r
}

func TestAuthMiddlewareKindClaim(t *testing.T) {
	actors := new(mocks.ActorRepositoryMock)
	router := setupAuthRouter(testSecret, actors)

	token := signToken(t, testSecret, middleware.ActorClaims{
		ActorKind: "company",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "company:7")
	// Claim resolution never touches the tables.
	actors.AssertNotCalled(t, "UserExists", mock.Anything, mock.Anything)
	actors.AssertNotCalled(t, "CompanyExists", mock.Anything, mock.Anything)
}

func TestAuthMiddlewareLegacyTokenProbesUsersFirst(t *testing.T) {
	actors := new(mocks.ActorRepositoryMock)
	router := setupAuthRouter(testSecret, actors)

	actors.On("UserExists", mock.Anything, 3).Return(true, nil).Once()

	token := signToken(t, testSecret, middleware.ActorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "3",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user:3")
	actors.AssertExpectations(t)
	actors.AssertNotCalled(t, "CompanyExists", mock.Anything, mock.Anything)
}

func TestAuthMiddlewareLegacyTokenFallsBackToCompanies(t *testing.T) {
	actors := new(mocks.ActorRepositoryMock)
	router := setupAuthRouter(testSecret, actors)

	actors.On("UserExists", mock.Anything, 9).Return(false, nil).Once()
	actors.On("CompanyExists", mock.Anything, 9).Return(true, nil).Once()

	token := signToken(t, testSecret, middleware.ActorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "9",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "company:9")
	actors.AssertExpectations(t)
}

func TestAuthMiddlewareUnknownIdentity(t *testing.T) {
	actors := new(mocks.ActorRepositoryMock)
	router := setupAuthRouter(testSecret, actors)

	actors.On("UserExists", mock.Anything, 404).Return(false, nil).Once()
	actors.On("CompanyExists", mock.Anything, 404).Return(false, nil).Once()

	token := signToken(t, testSecret, middleware.ActorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "404",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	router := setupAuthRouter(testSecret, new(mocks.ActorRepositoryMock))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	router := setupAuthRouter(testSecret, new(mocks.ActorRepositoryMock))

	token := signToken(t, "other-secret", middleware.ActorClaims{
		ActorKind: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "3",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	router := setupAuthRouter(testSecret, new(mocks.ActorRepositoryMock))

	token := signToken(t, testSecret, middleware.ActorClaims{
		ActorKind: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "3",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsBadSubject(t *testing.T) {
	router := setupAuthRouter(testSecret, new(mocks.ActorRepositoryMock))

	token := signToken(t, testSecret, middleware.ActorClaims{
		ActorKind: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
