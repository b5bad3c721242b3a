package presenter

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func send(t *testing.T, app *fiber.App, method, path string) (int, ErrorResponse) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestErrorHandler(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.New(core))})
	app.Get("/catalog/boom", func(c *fiber.Ctx) error { return errors.New("db gone") })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(http.StatusTeapot, "short and stout") })
	app.Get("/x", func(c *fiber.Ctx) error { return errors.New("again") })

	status, body := send(t, app, http.MethodGet, "/catalog/boom")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Server error", body.Error)

	status, body = send(t, app, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not found", body.Error)

	status, body = send(t, app, http.MethodPost, "/teapot")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "Method not allowed", body.Error)

	status, body = send(t, app, http.MethodGet, "/teapot")
	assert.Equal(t, http.StatusTeapot, status)
	assert.Equal(t, "short and stout", body.Error)

	send(t, app, http.MethodGet, "/x")

	// logged paths stay intact after later requests reuse the buffers
	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "/catalog/boom", entries[0].ContextMap()["path"])
	assert.Equal(t, "/x", entries[1].ContextMap()["path"])
}
