package habit

import (
	"context"
	"sort"
	"strings"
)

// UseCase exposes the read-only habit catalog.
type UseCase interface {
	// Catalog returns all templates ordered by ID.
	Catalog(ctx context.Context) ([]Template, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) UseCase { return &service{repo: repo} }

func (s *service) Catalog(ctx context.Context) ([]Template, error) {
	items, err := s.repo.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]Template, 0, len(items))
	for _, t := range items {
		res = append(res, normalize(t))
	}
	// stable order
	sort.SliceStable(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func normalize(t Template) Template {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	if t.Category == "" {
		t.Category = DefaultCategory
	}
	if t.Emoji == "" {
		t.Emoji = DefaultEmoji
	}
	return t
}
