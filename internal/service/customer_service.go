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

var minBirthDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// CustomerService defines the interface for customer business logic
type CustomerService interface {
	GetAll(ctx context.Context) ([]dto.CustomerModel, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.CustomerModel, error)
	Add(ctx context.Context, model dto.CustomerModel) (*dto.CustomerModel, error)
	Update(ctx context.Context, model dto.CustomerModel) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetCustomersByProductID(ctx context.Context, productID uuid.UUID) ([]dto.CustomerModel, error)
}

type customerService struct {
	uow repository.UnitOfWork
	now func() time.Time
}

// NewCustomerService creates a new instance of CustomerService
func NewCustomerService(uow repository.UnitOfWork) CustomerService {
	return &customerService{uow: uow, now: time.Now}
}

func (s *customerService) GetAll(ctx context.Context) ([]dto.CustomerModel, error) {
	customers, err := s.uow.Customers().List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list customers")
	}
	return dto.CustomersFromDomain(customers), nil
}

func (s *customerService) GetByID(ctx context.Context, id uuid.UUID) (*dto.CustomerModel, error) {
	customer, err := s.uow.Customers().FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get customer %s", id)
	}
	model := dto.CustomerFromDomain(customer)
	return &model, nil
}

func (s *customerService) Add(ctx context.Context, model dto.CustomerModel) (*dto.CustomerModel, error) {
	if err := s.validate(model); err != nil {
		return nil, err
	}

	customer := dto.CustomerToDomain(model)
	customer.ID = uuid.New()
	customer.CreatedAt = s.now().UTC()

	err := s.uow.Save(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Customers().Create(ctx, customer)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to add customer")
	}

	created := dto.CustomerFromDomain(customer)
	return &created, nil
}

// Update changes customer data. A new discount applies to lines added from
// now on; existing lines keep their discount unit price.
func (s *customerService) Update(ctx context.Context, model dto.CustomerModel) error {
	if err := s.validate(model); err != nil {
		return err
	}

	err := s.uow.Save(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Customers().Update(ctx, dto.CustomerToDomain(model))
	})
	return errors.Wrapf(err, "failed to update customer %s", model.ID)
}

func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.uow.Save(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Customers().Delete(ctx, id)
	})
	return errors.Wrapf(err, "failed to delete customer %s", id)
}

// GetCustomersByProductID returns customers who have the product on any receipt
func (s *customerService) GetCustomersByProductID(ctx context.Context, productID uuid.UUID) ([]dto.CustomerModel, error) {
	customers, err := s.uow.Customers().ListByProductID(ctx, productID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list customers of product %s", productID)
	}
	return dto.CustomersFromDomain(customers), nil
}

func (s *customerService) validate(model dto.CustomerModel) error {
	if strings.TrimSpace(model.Name) == "" || strings.TrimSpace(model.Surname) == "" {
		return domain.Invalidf("customer name and surname must not be empty")
	}
	if model.DiscountValue < 0 || model.DiscountValue > 100 {
		return domain.Invalidf("discount value %d must be between 0 and 100", model.DiscountValue)
	}
	if model.BirthDate.Before(minBirthDate) || model.BirthDate.After(s.now()) {
		return domain.Invalidf("birth date must lie between %s and now", minBirthDate.Format(time.DateOnly))
	}
	return nil
}
