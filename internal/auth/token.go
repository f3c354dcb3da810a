package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"qr-admin-service/internal/models"
)

// ExtractTokenFromRequest extracts a JWT token from an HTTP request's Authorization header
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	// Bearer token format: "Bearer {token}"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}

	return parts[1], nil
}

// ParseClaimsFromJWT parses role claims out of a JWT without verifying the
// signature. Verification belongs to Middleware; this helper serves code
// paths that only need a best-effort read, such as log enrichment.
func ParseClaimsFromJWT(tokenString string) (*models.Claims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}

	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	claims := &models.Claims{}
	if sub, ok := mapClaims["sub"].(string); ok {
		claims.Sub = sub
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if meta, ok := mapClaims["user_metadata"].(map[string]interface{}); ok {
		claims.UserMetadata.Superadmin, _ = meta["superadmin"].(bool)
		claims.UserMetadata.Admin, _ = meta["admin"].(bool)
		claims.UserMetadata.Member, _ = meta["member"].(bool)
	}

	if claims.Sub == "" {
		return nil, errors.New("subject claim not found in token")
	}

	return claims, nil
}
