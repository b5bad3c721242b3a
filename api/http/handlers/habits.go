package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/artem13815/habits/api/http/presenter"
	"github.com/artem13815/habits/pkg/habit"
)

type HabitHandler struct {
	uc  habit.UseCase
	log *zap.Logger
}

func NewHabitHandler(uc habit.UseCase, log *zap.Logger) *HabitHandler {
	return &HabitHandler{uc: uc, log: log}
}

type habitResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Category    string `json:"category"`
	Emoji       string `json:"emoji"`
}

type catalogResponse struct {
	Habits []habitResponse `json:"habits"`
	Total  int             `json:"total"`
}

// @Summary Каталог привычек
// @Description Все шаблоны привычек, отсортированные по ID.
// @Tags    habits
// @Produce json
// @Success 200 {object} catalogResponse
// @Failure 405 {object} presenter.ErrorResponse
// @Router  /habits [get]
func (h *HabitHandler) List(c *fiber.Ctx) error {
	items, err := h.uc.Catalog(c.UserContext())
	if err != nil {
		h.log.Error("list habit templates", zap.Error(err))
		return presenter.Error(c, http.StatusInternalServerError, "Server error")
	}
	res := catalogResponse{Habits: make([]habitResponse, 0, len(items)), Total: len(items)}
	for _, t := range items {
		res.Habits = append(res.Habits, habitResponse{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Image:       t.Image,
			Category:    t.Category,
			Emoji:       t.Emoji,
		})
	}
	return presenter.JSON(c, http.StatusOK, res)
}
