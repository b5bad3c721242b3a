package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/artem13815/habits/pkg/logging"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "habits",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "habits",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	authActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "habits",
			Subsystem: "auth",
			Name:      "actions_total",
			Help:      "Auth actions by outcome",
		},
		[]string{"action", "result"},
	)
)

// Middleware records request count and latency per matched route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = logging.StatusOf(err)
		}
		route := utils.CopyString(c.Route().Path)
		method := utils.CopyString(c.Method())
		httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
		return err
	}
}

// AuthAction counts one auth action outcome, e.g. ("login", "ok").
func AuthAction(action, result string) {
	authActions.WithLabelValues(action, result).Inc()
}

// Handler serves the default registry in Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
