package jwt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedApp(iss *Issuer) *fiber.App {
	app := fiber.New()
	app.Get("/me", NewAuthMiddleware(iss), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": c.Locals(LocalUserID), "email": c.Locals(LocalEmail)})
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, header string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestAuthMiddleware(t *testing.T) {
	iss := NewIssuer("secret", "habit-tracker", time.Hour)
	app := newProtectedApp(iss)
	tok, err := iss.Generate(context.Background(), testUser)
	require.NoError(t, err)

	expiredIss := NewIssuer("secret", "habit-tracker", -time.Minute)
	expired, err := expiredIss.Generate(context.Background(), testUser)
	require.NoError(t, err)

	status, body := doGet(t, app, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 42, body["id"])
	assert.Equal(t, "user@example.com", body["email"])

	cases := []struct {
		header string
		msg    string
	}{
		{"", "Missing or invalid token"},
		{tok, "Missing or invalid token"},
		{"Basic abc", "Missing or invalid token"},
		{"Bearer ", "Missing or invalid token"},
		{"Bearer " + expired, "Token expired"},
		{"Bearer garbage", "Invalid token"},
	}
	for _, tc := range cases {
		status, body := doGet(t, app, tc.header)
		assert.Equal(t, http.StatusUnauthorized, status, tc.header)
		assert.Equal(t, tc.msg, body["error"], tc.header)
	}
}
