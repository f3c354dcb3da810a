package auth_test

import (
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qr-admin-service/internal/auth"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return signed
}

func TestExtractTokenFromRequest(t *testing.T) {
	req, _ := http.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")

	token, err := auth.ExtractTokenFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)
}

func TestExtractTokenMissingHeader(t *testing.T) {
	req, _ := http.NewRequest("GET", "/api/auth/me", nil)

	_, err := auth.ExtractTokenFromRequest(req)
	assert.Error(t, err)
}

func TestExtractTokenBadFormat(t *testing.T) {
	req, _ := http.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	_, err := auth.ExtractTokenFromRequest(req)
	assert.Error(t, err)
}

func TestParseClaimsFromJWT(t *testing.T) {
	tokenString := signedToken(t, jwt.MapClaims{
		"sub":   "user-1",
		"email": "admin@example.com",
		"user_metadata": map[string]interface{}{
			"admin":      true,
			"superadmin": false,
			"member":     true,
		},
	})

	claims, err := auth.ParseClaimsFromJWT(tokenString)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.Sub)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.True(t, claims.UserMetadata.Admin)
	assert.False(t, claims.UserMetadata.Superadmin)
	assert.True(t, claims.UserMetadata.Member)
}

func TestParseClaimsWithoutMetadata(t *testing.T) {
	tokenString := signedToken(t, jwt.MapClaims{
		"sub": "user-2",
	})

	claims, err := auth.ParseClaimsFromJWT(tokenString)
	require.NoError(t, err)

	assert.Equal(t, "user-2", claims.Sub)
	assert.False(t, claims.UserMetadata.Admin)
}

func TestParseClaimsMissingSubject(t *testing.T) {
	tokenString := signedToken(t, jwt.MapClaims{
		"email": "nobody@example.com",
	})

	_, err := auth.ParseClaimsFromJWT(tokenString)
	assert.Error(t, err)
}

func TestParseClaimsEmptyToken(t *testing.T) {
	_, err := auth.ParseClaimsFromJWT("")
	assert.Error(t, err)
}
