package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/artem13815/habits/pkg/habit"
)

type stubCatalog struct {
	items []habit.Template
	err   error
}

func (s stubCatalog) Catalog(context.Context) ([]habit.Template, error) { return s.items, s.err }

func newHabitApp(uc habit.UseCase) *fiber.App {
	app := fiber.New()
	app.Get("/habits", NewHabitHandler(uc, zap.NewNop()).List)
	return app
}

func TestHabitList(t *testing.T) {
	app := newHabitApp(stubCatalog{items: []habit.Template{
		{ID: 1, Title: "Медитация", Description: "", Image: "", Category: "wellness", Emoji: "⭐"},
		{ID: 2, Title: "Прогулка", Description: "Пройтись", Image: "/img/b.jpg", Category: "health", Emoji: "🚶"},
	}})

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/habits", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["total"])
	habits := body["habits"].([]any)
	assert.Equal(t, map[string]any{
		"id": float64(1), "title": "Медитация", "description": "", "image": "", "category": "wellness", "emoji": "⭐",
	}, habits[0])
	assert.Equal(t, "/img/b.jpg", habits[1].(map[string]any)["image"])
}

func TestHabitList_Empty(t *testing.T) {
	status, body := do(t, newHabitApp(stubCatalog{}), httptest.NewRequest(http.MethodGet, "/habits", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["habits"])
	assert.Equal(t, float64(0), body["total"])
}

func TestHabitList_Error(t *testing.T) {
	status, body := do(t, newHabitApp(stubCatalog{err: errors.New("db down")}), httptest.NewRequest(http.MethodGet, "/habits", nil))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Server error", body["error"])
}
