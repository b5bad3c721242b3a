package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/artem13815/habits/pkg/habit"
)

// HabitRepository reads the routine template catalog.
type HabitRepository struct {
	db DB
}

func NewHabitRepository(db DB) *HabitRepository {
	return &HabitRepository{db: db}
}

func (r *HabitRepository) ListTemplates(ctx context.Context) ([]habit.Template, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, title, description, image_url, category, emoji
FROM routine_templates
ORDER BY id
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []habit.Template{}
	for rows.Next() {
		var t habit.Template
		var title, description, image, category, emoji pgtype.Text
		if err := rows.Scan(&t.ID, &title, &description, &image, &category, &emoji); err != nil {
			return nil, err
		}
		t.Title = title.String
		t.Description = description.String
		t.Image = image.String
		t.Category = category.String
		t.Emoji = emoji.String
		res = append(res, t)
	}
	return res, rows.Err()
}
