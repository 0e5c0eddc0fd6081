package repository

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CategoryPatch lists the category fields an update may change; nil means unchanged.
type CategoryPatch struct {
	Name        *string
	Description *string
	Color       *string
}

// CategoryRepository manages category persistence.
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, id string, patch CategoryPatch) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type categoryRepository struct {
	doc Document
}

// NewCategoryRepository builds the repository.
func NewCategoryRepository(doc Document) CategoryRepository {
	return &categoryRepository{doc: doc}
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	data, err := fetch(ctx, r.doc)
	if err != nil {
		return nil, err
	}
	return data.Categories, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	data, err := fetch(ctx, r.doc)
	if err != nil {
		return nil, err
	}
	idx := data.CategoryIndex(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	return &data.Categories[idx], nil
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	data, err := fetch(ctx, r.doc)
	if err != nil {
		return nil, err
	}
	idx := data.CategoryIndexByName(name)
	if idx < 0 {
		return nil, ErrNotFound
	}
	return &data.Categories[idx], nil
}

// Create counts tickets already naming the category so the counter starts
// consistent.
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.ID == "" {
		category.ID = domain.NewID("cat")
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = domain.Now()
	}
	if category.Color == "" {
		category.Color = domain.DefaultCategoryColor
	}

	_, err := r.doc.Mutate(ctx, func(d *domain.Dataset) error {
		if d.CategoryIndexByName(category.Name) >= 0 {
			return ErrDuplicateName
		}
		category.TicketCount = 0
		for _, t := range d.Tickets {
			if strings.EqualFold(t.Category, category.Name) {
				category.TicketCount++
			}
		}
		d.Categories = append(d.Categories, *category)
		return nil
	})
	return err
}

// Update renames tickets along with the category so its counter stays valid.
func (r *categoryRepository) Update(ctx context.Context, id string, patch CategoryPatch) (*domain.Category, error) {
	var updated domain.Category
	_, err := r.doc.Mutate(ctx, func(d *domain.Dataset) error {
		idx := d.CategoryIndex(id)
		if idx < 0 {
			return ErrNotFound
		}
		category := d.Categories[idx]

		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if other := d.CategoryIndexByName(name); other >= 0 && other != idx {
				return ErrDuplicateName
			}
			for i := range d.Tickets {
				if strings.EqualFold(d.Tickets[i].Category, category.Name) {
					d.Tickets[i].Category = name
				}
			}
			category.Name = name
		}
		if patch.Description != nil {
			category.Description = *patch.Description
		}
		if patch.Color != nil {
			category.Color = *patch.Color
		}

		d.Categories[idx] = category
		updated = category
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the category; tickets keep the name.
func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	_, err := r.doc.Mutate(ctx, func(d *domain.Dataset) error {
		idx := d.CategoryIndex(id)
		if idx < 0 {
			return ErrNotFound
		}
		d.Categories = append(d.Categories[:idx], d.Categories[idx+1:]...)
		return nil
	})
	return err
}
