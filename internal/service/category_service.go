package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// CategoryService manages ticket categories.
type CategoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService constructs the service.
func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, translate(err, "category")
	}
	return categories, nil
}

// Create adds a category; names are unique ignoring case.
func (s *CategoryService) Create(ctx context.Context, name, description, color string) (*domain.Category, error) {
	category := &domain.Category{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Color:       strings.TrimSpace(color),
	}
	if err := required(map[string]string{"name": category.Name, "description": category.Description}); err != nil {
		return nil, err
	}
	if category.Color != "" && !hexColor.MatchString(category.Color) {
		return nil, apperrors.NewValidationError("color must be a hex value", map[string]any{"color": category.Color})
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, translate(err, "category")
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, patch repository.CategoryPatch) (*domain.Category, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperrors.NewValidationError("name cannot be empty", nil)
	}
	if patch.Color != nil && !hexColor.MatchString(*patch.Color) {
		return nil, apperrors.NewValidationError("color must be a hex value", map[string]any{"color": *patch.Color})
	}
	category, err := s.categories.Update(ctx, id, patch)
	if err != nil {
		return nil, translate(err, "category")
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return translate(s.categories.Delete(ctx, id), "category")
}
