package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffingapi/internal/config"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func validClaims(sub string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   sub,
		Audience:  jwt.ClaimStrings{"authenticated"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func TestAuthenticator_Required(t *testing.T) {
	auth := NewAuthenticator(config.AuthConfig{JWTSecret: testSecret, Audience: "authenticated"})
	app := fiber.New()
	app.Get("/me", auth.Required(), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})

	userID := uuid.NewString()

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims(userID)))
		resp, _ := app.Test(req)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, userID, string(body))
	})

	t.Run("session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: signToken(t, testSecret, validClaims(userID))})
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	rejected := map[string]func(r *http.Request){
		"no token": func(*http.Request) {},
		"malformed header": func(r *http.Request) {
			r.Header.Set("Authorization", "Token abc")
		},
		"wrong secret": func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, "another-secret", validClaims(userID)))
		},
		"expired": func(r *http.Request) {
			c := validClaims(userID)
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, c))
		},
		"no expiry": func(r *http.Request) {
			c := validClaims(userID)
			c.ExpiresAt = nil
			r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, c))
		},
		"wrong audience": func(r *http.Request) {
			c := validClaims(userID)
			c.Audience = jwt.ClaimStrings{"anon"}
			r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, c))
		},
		"subject is not a uuid": func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims("service_role")))
		},
	}
	for name, prepare := range rejected {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			prepare(req)
			resp, _ := app.Test(req)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestAuthenticator_NoSecret(t *testing.T) {
	auth := NewAuthenticator(config.AuthConfig{})
	_, err := auth.Verify(signToken(t, testSecret, validClaims(uuid.NewString())))
	assert.Error(t, err)
}

func TestUserID_Public(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("[" + UserID(c) + "]")
	})

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "[]", string(body))
}
