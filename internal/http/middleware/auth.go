package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"staffingapi/internal/config"
)

const (
	// UserIDLocalKey is the key under which Auth stores the authenticated user id.
	UserIDLocalKey = "user_id"
	// AccessTokenCookie is the Supabase session cookie read when no bearer token is sent.
	AccessTokenCookie = "sb-access-token"
)

var errMissingToken = errors.New("missing access token")

// Authenticator verifies Supabase access tokens (HS256, signed with the project JWT secret).
type Authenticator struct {
	secret []byte
	parser *jwt.Parser
}

// NewAuthenticator builds an Authenticator. An empty secret rejects every token.
func NewAuthenticator(cfg config.AuthConfig) *Authenticator {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &Authenticator{secret: []byte(cfg.JWTSecret), parser: jwt.NewParser(opts...)}
}

// Verify checks the token and returns its subject, the Supabase user id.
func (a *Authenticator) Verify(token string) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("auth secret not configured")
	}
	claims := &jwt.RegisteredClaims{}
	if _, err := a.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}); err != nil {
		return "", fmt.Errorf("jwt parse: %w", err)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("jwt subject %q is not a user id", claims.Subject)
	}
	return claims.Subject, nil
}

// Required rejects requests without a valid access token with 401 and stores
// the user id under UserIDLocalKey.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := accessToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		userID, err := a.Verify(token)
		if err != nil {
			c.Locals(ErrorLocalKey, err.Error())
			return fiber.NewError(fiber.StatusUnauthorized, "invalid access token")
		}
		c.Locals(UserIDLocalKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" on public routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocalKey).(string)
	return id
}

func accessToken(c *fiber.Ctx) (string, error) {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			return "", errors.New("malformed authorization header")
		}
		return strings.TrimSpace(token), nil
	}
	if token := c.Cookies(AccessTokenCookie); token != "" {
		return token, nil
	}
	return "", errMissingToken
}
