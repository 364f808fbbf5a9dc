package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuthMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "testsecret")

	var got Identity
	h := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = Caller(r)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token", func(t *testing.T) {
		tok := signToken(t, "testsecret", jwt.MapClaims{"sub": "u1", "role": "user", "mahal_id": "5/10"})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, Identity{UserID: "u1", Role: "user", MahalID: "5/10"}, got)
		assert.False(t, got.Admin())
		assert.True(t, got.CanAccess("5/10"))
		assert.False(t, got.CanAccess("1/2"))
	})

	t.Run("admin token", func(t *testing.T) {
		tok := signToken(t, "testsecret", jwt.MapClaims{"sub": "a1", "role": "admin"})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, got.Admin())
		assert.True(t, got.CanAccess("1/2"))
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong signature", func(t *testing.T) {
		tok := signToken(t, "othersecret", jwt.MapClaims{"sub": "u1", "role": "user"})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		tok := signToken(t, "testsecret", jwt.MapClaims{"sub": "u1", "role": "owner"})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthWithoutSecretIsOpen(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	var got Identity
	h := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = Caller(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, got.Admin())
}
