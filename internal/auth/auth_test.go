package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)

	t.Run("Round Trip", func(t *testing.T) {
		token, err := m.GenerateAccessToken("user-1", "provider")
		require.NoError(t, err)

		claims, err := m.ParseAndValidate(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, "provider", claims.Role)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		token, err := NewJWTManager("other", time.Minute).GenerateAccessToken("user-1", "customer")
		require.NoError(t, err)

		_, err = m.ParseAndValidate(token)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := NewJWTManager("secret", -time.Minute).GenerateAccessToken("user-1", "customer")
		require.NoError(t, err)

		_, err = m.ParseAndValidate(token)
		assert.Error(t, err)
	})
}

func TestBcryptPasswordHasher(t *testing.T) {
	h := NewBcryptPasswordHasherWithCost(4)

	hash, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, "password123"))
	assert.Error(t, h.Compare(hash, "wrong"))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewJWTManager("secret", time.Minute)

	r := gin.New()
	r.GET("/any", AuthRequired(m), func(c *gin.Context) {
		a := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"id": a.ID, "role": a.Role})
	})
	r.GET("/providers", AuthRequired(m), RequireRole("provider"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	do := func(path, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	customerToken, err := m.GenerateAccessToken("c1", "customer")
	require.NoError(t, err)
	providerToken, err := m.GenerateAccessToken("p1", "provider")
	require.NoError(t, err)

	t.Run("Missing Header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("/any", "").Code)
	})

	t.Run("Bad Scheme", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("/any", "Basic "+customerToken).Code)
	})

	t.Run("Sets Actor", func(t *testing.T) {
		w := do("/any", "Bearer "+customerToken)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"c1","role":"customer"}`, w.Body.String())
	})

	t.Run("Role Gate", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, do("/providers", "Bearer "+customerToken).Code)
		assert.Equal(t, http.StatusNoContent, do("/providers", "Bearer "+providerToken).Code)
	})
}
