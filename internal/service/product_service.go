package service

import (
	"context"
	"strings"
	"time"

	"trade-market/internal/domain"
	"trade-market/internal/dto"
	"trade-market/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ProductService defines the interface for product and category business logic
type ProductService interface {
	GetAll(ctx context.Context) ([]dto.ProductModel, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductModel, error)
	GetByFilter(ctx context.Context, filter dto.FilterSearchModel) ([]dto.ProductModel, error)
	Add(ctx context.Context, model dto.ProductModel) (*dto.ProductModel, error)
	Update(ctx context.Context, model dto.ProductModel) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetAllCategories(ctx context.Context) ([]dto.ProductCategoryModel, error)
	AddCategory(ctx context.Context, model dto.ProductCategoryModel) (*dto.ProductCategoryModel, error)
	UpdateCategory(ctx context.Context, model dto.ProductCategoryModel) error
	RemoveCategory(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	uow repository.UnitOfWork
	now func() time.Time
}

// NewProductService creates a new instance of ProductService
func NewProductService(uow repository.UnitOfWork) ProductService {
	return &productService{uow: uow, now: time.Now}
}

// GetAll returns every product with its category
func (s *productService) GetAll(ctx context.Context) ([]dto.ProductModel, error) {
	products, err := s.uow.Products().ListWithDetails(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}
	return dto.ProductsFromDomain(products), nil
}

// GetByID returns one product with its category
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductModel, error) {
	product, err := s.uow.Products().FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get product %s", id)
	}
	model := dto.ProductFromDomain(product)
	return &model, nil
}

// GetByFilter applies each present criterion and keeps the source order
func (s *productService) GetByFilter(ctx context.Context, filter dto.FilterSearchModel) ([]dto.ProductModel, error) {
	products, err := s.uow.Products().ListWithDetails(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	filtered := []*domain.Product{}
	for _, p := range products {
		if filter.MinPrice != nil && p.Price.LessThan(*filter.MinPrice) {
			continue
		}
		if filter.MaxPrice != nil && p.Price.GreaterThan(*filter.MaxPrice) {
			continue
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		filtered = append(filtered, p)
	}

	return dto.ProductsFromDomain(filtered), nil
}

// Add validates and stores a new product
func (s *productService) Add(ctx context.Context, model dto.ProductModel) (*dto.ProductModel, error) {
	if err := validateProduct(model); err != nil {
		return nil, err
	}

	product := dto.ProductToDomain(model)
	product.ID = uuid.New()
	product.CreatedAt = s.now().UTC()
	product.UpdatedAt = product.CreatedAt

	err := s.uow.Save(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Products().Create(ctx, product)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to add product")
	}

	created := dto.ProductFromDomain(product)
	return &created, nil
}

// Update validates and overwrites an existing product
func (s *productService) Update(ctx context.Context, model dto.ProductModel) error {
	if err := validateProduct(model); err != nil {
		return err
	}

	product := dto.ProductToDomain(model)
	product.UpdatedAt = s.now().UTC()

	err := s.uow.Save(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Products().Update(ctx, product)
	})
	return errors.Wrapf(err, "failed to update product %s", model.ID)
}

// Delete removes a product that is on no receipt
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.uow.Save(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Products().Delete(ctx, id)
	})
	return errors.Wrapf(err, "failed to delete product %s", id)
}

// GetAllCategories returns every category ordered by name
func (s *productService) GetAllCategories(ctx context.Context) ([]dto.ProductCategoryModel, error) {
	categories, err := s.uow.Categories().List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}
	return dto.CategoriesFromDomain(categories), nil
}

// AddCategory validates and stores a new category
func (s *productService) AddCategory(ctx context.Context, model dto.ProductCategoryModel) (*dto.ProductCategoryModel, error) {
	if err := validateCategory(model); err != nil {
		return nil, err
	}

	category := dto.CategoryToDomain(model)
	category.ID = uuid.New()
	category.CreatedAt = s.now().UTC()

	err := s.uow.Save(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Categories().Create(ctx, category)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to add category")
	}

	created := dto.CategoryFromDomain(category)
	return &created, nil
}

// UpdateCategory renames an existing category
func (s *productService) UpdateCategory(ctx context.Context, model dto.ProductCategoryModel) error {
	if err := validateCategory(model); err != nil {
		return err
	}

	err := s.uow.Save(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Categories().Update(ctx, dto.CategoryToDomain(model))
	})
	return errors.Wrapf(err, "failed to update category %s", model.ID)
}

// RemoveCategory deletes a category; a missing id is reported as not found
func (s *productService) RemoveCategory(ctx context.Context, id uuid.UUID) error {
	err := s.uow.Save(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Categories().Delete(ctx, id)
	})
	return errors.Wrapf(err, "failed to remove category %s", id)
}

func validateCategory(model dto.ProductCategoryModel) error {
	if strings.TrimSpace(model.CategoryName) == "" {
		return domain.Invalidf("category name must not be empty")
	}
	return nil
}

func validateProduct(model dto.ProductModel) error {
	if strings.TrimSpace(model.ProductName) == "" {
		return domain.Invalidf("product name must not be empty")
	}
	if model.Price.IsNegative() {
		return domain.Invalidf("product price must not be negative")
	}
	return nil
}
