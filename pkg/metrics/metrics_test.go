package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsRequests(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", Handler())

	before := testutil.ToFloat64(httpRequests.WithLabelValues("/ping", http.MethodGet, "200"))
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	resp.Body.Close()
	after := testutil.ToFloat64(httpRequests.WithLabelValues("/ping", http.MethodGet, "200"))
	assert.Equal(t, before+1, after)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "habits_http_requests_total")
}

func TestAuthAction(t *testing.T) {
	before := testutil.ToFloat64(authActions.WithLabelValues("login", "ok"))
	AuthAction("login", "ok")
	assert.Equal(t, before+1, testutil.ToFloat64(authActions.WithLabelValues("login", "ok")))
}
