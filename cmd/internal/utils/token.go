package utils

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var jwtSecret []byte

// SetJWTSecret installs the HMAC secret used to verify bearer tokens. Called
// once from main before the server starts.
func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

// TokenData is the subset of token claims the services care about. Sub is the
// identity provider's subject, mapped to users.sub_uuid.
type TokenData struct {
	Sub string
}

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid bearer token")
)

// ParseTokenDataCtx extracts and verifies the caller's bearer token from the
// Authorization header.
func ParseTokenDataCtx(c echo.Context) (*TokenData, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return nil, errMissingToken
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return nil, errInvalidToken
	}
	return &TokenData{Sub: sub}, nil
}
