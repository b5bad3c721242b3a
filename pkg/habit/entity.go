package habit

import "context"

// Defaults substituted for empty catalog fields.
const (
	DefaultCategory = "wellness"
	DefaultEmoji    = "⭐"
)

// Template описывает шаблон привычки из каталога.
type Template struct {
	ID          int64
	Title       string
	Description string
	Image       string
	Category    string
	Emoji       string
}

// Repository — порт для чтения каталога. NULL-колонки возвращаются пустыми строками.
type Repository interface {
	ListTemplates(ctx context.Context) ([]Template, error)
}
