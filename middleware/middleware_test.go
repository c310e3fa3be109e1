package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restran/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, userID, email, role string) string {
	t.Helper()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			Subject:   userID,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	require.NoError(t, err)
	return token
}

func TestAuthenticateSetsClaims(t *testing.T) {
	var gotUser, gotRole string
	h := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gotUser, _ = r.Context().Value(globals.UserIDKey).(string)
		gotRole, _ = r.Context().Value(globals.RoleKey).(string)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/my/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1", "a@b.c", "CLIENT"))
	rec := httptest.NewRecorder()
	h(rec, req, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", gotUser)
	assert.Equal(t, "CLIENT", gotRole)
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	called := false
	h := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/my/bookings", nil)
	rec := httptest.NewRecorder()
	h(rec, req, nil)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsUpgradeWithoutToken(t *testing.T) {
	// upgrade headers must not bypass header auth
	called := false
	h := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/owner/bookings", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	rec := httptest.NewRecorder()
	h(rec, req, nil)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	called := false
	h := RequireRole("OWNER", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	})

	req := httptest.NewRequest(http.MethodPost, "/api/restaurants", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1", "a@b.c", "CLIENT"))
	rec := httptest.NewRecorder()
	h(rec, req, nil)
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/restaurants", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u2", "o@b.c", "OWNER"))
	rec = httptest.NewRecorder()
	h(rec, req, nil)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidateJWT(t *testing.T) {
	_, err := ValidateJWT("")
	assert.Error(t, err)

	_, err = ValidateJWT("Bearer not-a-token")
	assert.Error(t, err)

	claims, err := ValidateJWT("Bearer " + signToken(t, "u9", "x@y.z", "OWNER"))
	require.NoError(t, err)
	assert.Equal(t, "u9", claims.UserID)
	assert.Equal(t, "OWNER", claims.Role)
}
