package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/lovestory/lovestory/backend/go-services/internal/sessions"
	"github.com/lovestory/lovestory/backend/go-services/internal/tokens"
)

// fakeVerifier accepts "goodtoken" and "black-token"
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (*tokens.Claims, error) {
	if raw == "goodtoken" || raw == "black-token" {
		return &tokens.Claims{
			ProjectID:        "p-1",
			TemplateType:     "spiderman",
			RegisteredClaims: jwt.RegisteredClaims{Subject: "peter@example.com"},
		}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func serve(t *testing.T, header string) *httptest.ResponseRecorder {
	t.Helper()
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"pid": claims.ProjectID, "token": c.GetString(AccessTokenKey)})
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, serve(t, "").Code)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, serve(t, "BadHeader").Code)
	require.Equal(t, http.StatusUnauthorized, serve(t, "Bearer ").Code)
	require.Equal(t, http.StatusUnauthorized, serve(t, "Bearer nope").Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	rw := serve(t, "Bearer goodtoken")
	require.Equal(t, http.StatusOK, rw.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, "p-1", got["pid"])
	require.Equal(t, "goodtoken", got["token"])
}

func TestAuthMiddleware_RejectsBlacklistedToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	sessions.SetBlacklistClient(client)
	defer sessions.SetBlacklistClient(nil)

	token := "black-token"
	require.Equal(t, http.StatusOK, serve(t, "Bearer "+token).Code)
	require.NoError(t, sessions.BlacklistAccessToken(context.Background(), token, 5*time.Second))
	require.Equal(t, http.StatusUnauthorized, serve(t, "Bearer "+token).Code)
}
