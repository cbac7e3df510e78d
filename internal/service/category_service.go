package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"spendtrack/internal/domain"
	"spendtrack/internal/repository"
)

// CategoryService manages the shared category set.
type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, name, color string) (*domain.Category, error)
	Update(ctx context.Context, id int64, name, color *string) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

type categoryService struct {
	categories repository.CategoryRepository
}

func NewCategoryService(categories repository.CategoryRepository) CategoryService {
	return &categoryService{categories: categories}
}

func (s *categoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *categoryService) Create(ctx context.Context, name, color string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(color) == "" {
		return nil, fmt.Errorf("%w: color is required", ErrValidation)
	}

	category := &domain.Category{Name: name, Color: color}
	if _, err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: category with this name already exists", ErrConflict)
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id int64, name, color *string) (*domain.Category, error) {
	if name == nil && color == nil {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	if name != nil && strings.TrimSpace(*name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
	}

	category, err := s.categories.Update(ctx, id, name, color)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%w: category", ErrNotFound)
		case errors.Is(err, repository.ErrDuplicate):
			return nil, fmt.Errorf("%w: category with this name already exists", ErrConflict)
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("%w: category", ErrNotFound)
		case errors.Is(err, repository.ErrInUse):
			return fmt.Errorf("%w: category is used by existing expenses", ErrConflict)
		}
		return err
	}
	return nil
}
