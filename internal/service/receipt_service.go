package service

import (
	"context"
	"time"

	"trade-market/internal/domain"
	"trade-market/internal/dto"
	"trade-market/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ReceiptService defines the interface for receipt business logic.
//
// A receipt is open until CheckOut; AddProduct and RemoveProduct reject
// checked out receipts with domain.ErrReceiptCheckedOut.
type ReceiptService interface {
	GetAll(ctx context.Context) ([]dto.ReceiptModel, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ReceiptModel, error)
	Add(ctx context.Context, model dto.ReceiptModel) (*dto.ReceiptModel, error)
	Update(ctx context.Context, model dto.ReceiptModel) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetReceiptDetails(ctx context.Context, receiptID uuid.UUID) ([]dto.ReceiptDetailModel, error)
	AddProduct(ctx context.Context, productID, receiptID uuid.UUID, quantity int) error
	RemoveProduct(ctx context.Context, productID, receiptID uuid.UUID, quantity int) error
	CheckOut(ctx context.Context, receiptID uuid.UUID) error
	ToPay(ctx context.Context, receiptID uuid.UUID) (decimal.Decimal, error)
	MarkOperationTime(ctx context.Context, receiptID uuid.UUID) error
	GetReceiptsByPeriod(ctx context.Context, start, end time.Time) ([]dto.ReceiptModel, error)
}

type receiptService struct {
	uow repository.UnitOfWork
	now func() time.Time
}

// NewReceiptService creates a new instance of ReceiptService
func NewReceiptService(uow repository.UnitOfWork) ReceiptService {
	return &receiptService{uow: uow, now: time.Now}
}

// GetAll returns every receipt with its line ids
func (s *receiptService) GetAll(ctx context.Context) ([]dto.ReceiptModel, error) {
	receipts, err := s.uow.Receipts().ListWithDetails(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list receipts")
	}
	return dto.ReceiptsFromDomain(receipts), nil
}

// GetByID returns one receipt with its line ids
func (s *receiptService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ReceiptModel, error) {
	receipt, err := s.uow.Receipts().FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get receipt %s", id)
	}
	model := dto.ReceiptFromDomain(receipt)
	return &model, nil
}

// Add creates an open receipt for an existing customer
func (s *receiptService) Add(ctx context.Context, model dto.ReceiptModel) (*dto.ReceiptModel, error) {
	if err := s.validateReceipt(model); err != nil {
		return nil, err
	}

	receipt := dto.ReceiptToDomain(model)
	receipt.ID = uuid.New()
	receipt.IsCheckedOut = false
	receipt.CreatedAt = s.now().UTC()

	err := s.uow.Save(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Customers().FindByID(ctx, receipt.CustomerID); err != nil {
			return err
		}
		return repos.Receipts().Create(ctx, receipt)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to add receipt")
	}

	created := dto.ReceiptFromDomain(receipt)
	return &created, nil
}

// Update overwrites the customer and operation date of an open receipt.
// Lines are untouched and the checked out flag only changes through CheckOut.
func (s *receiptService) Update(ctx context.Context, model dto.ReceiptModel) error {
	if err := s.validateReceipt(model); err != nil {
		return err
	}

	err := s.uow.Save(ctx, func(ctx context.Context, repos repository.Repositories) error {
		stored, err := repos.Receipts().FindByID(ctx, model.ID)
		if err != nil {
			return err
		}
		if stored.IsCheckedOut {
			return checkedOut(model.ID)
		}
		if _, err := repos.Customers().FindByID(ctx, model.CustomerID); err != nil {
			return err
		}

		receipt := dto.ReceiptToDomain(model)
		receipt.IsCheckedOut = stored.IsCheckedOut
		receipt.CreatedAt = stored.CreatedAt
		return repos.Receipts().Update(ctx, receipt)
	})
	return errors.Wrapf(err, "failed to update receipt %s", model.ID)
}

// Delete removes every line and then the receipt in one unit of work
func (s *receiptService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.uow.Save(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Receipts().FindByID(ctx, id); err != nil {
			return err
		}
		if _, err := repos.ReceiptDetails().DeleteByReceiptID(ctx, id); err != nil {
			return err
		}
		return repos.Receipts().Delete(ctx, id)
	})
	return errors.Wrapf(err, "failed to delete receipt %s", id)
}

// GetReceiptDetails returns the lines of a receipt
func (s *receiptService) GetReceiptDetails(ctx context.Context, receiptID uuid.UUID) ([]dto.ReceiptDetailModel, error) {
	receipt, err := s.uow.Receipts().FindByIDWithDetails(ctx, receiptID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get receipt %s", receiptID)
	}
	return dto.ReceiptDetailsFromDomain(receipt.Details), nil
}

// AddProduct puts quantity units of a product on an open receipt. A product
// already on the receipt only has its quantity increased; otherwise a new
// line freezes the current price and the customer's current discount.
func (s *receiptService) AddProduct(ctx context.Context, productID, receiptID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return domain.Invalidf("quantity must be positive, got %d", quantity)
	}

	err := s.uow.Save(ctx, func(ctx context.Context, repos repository.Repositories) error {
		receipt, err := repos.Receipts().FindByIDWithDetails(ctx, receiptID)
		if err != nil {
			return err
		}
		if receipt.IsCheckedOut {
			return checkedOut(receiptID)
		}

		if detail := receipt.DetailFor(productID); detail != nil {
			detail.Quantity += quantity
			return repos.ReceiptDetails().Update(ctx, detail)
		}

		product, err := repos.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}

		return repos.ReceiptDetails().Create(ctx, &domain.ReceiptDetail{
			ID:                uuid.New(),
			ReceiptID:         receiptID,
			ProductID:         productID,
			Quantity:          quantity,
			UnitPrice:         product.Price,
			DiscountUnitPrice: domain.DiscountUnitPrice(product.Price, receipt.Customer.DiscountValue),
			CreatedAt:         s.now().UTC(),
		})
	})
	return errors.Wrapf(err, "failed to add product %s to receipt %s", productID, receiptID)
}

// RemoveProduct takes quantity units off a line, dropping the line when
// nothing would remain
func (s *receiptService) RemoveProduct(ctx context.Context, productID, receiptID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return domain.Invalidf("quantity must be positive, got %d", quantity)
	}

	err := s.uow.Save(ctx, func(ctx context.Context, repos repository.Repositories) error {
		receipt, err := repos.Receipts().FindByIDWithDetails(ctx, receiptID)
		if err != nil {
			return err
		}
		if receipt.IsCheckedOut {
			return checkedOut(receiptID)
		}

		detail := receipt.DetailFor(productID)
		if detail == nil {
			return domain.NotFoundf("product %s not found in receipt %s", productID, receiptID)
		}

		if detail.Quantity <= quantity {
			return repos.ReceiptDetails().Delete(ctx, detail.ID)
		}
		detail.Quantity -= quantity
		return repos.ReceiptDetails().Update(ctx, detail)
	})
	return errors.Wrapf(err, "failed to remove product %s from receipt %s", productID, receiptID)
}

// CheckOut closes the receipt for product edits
func (s *receiptService) CheckOut(ctx context.Context, receiptID uuid.UUID) error {
	err := s.uow.Save(ctx, func(ctx context.Context, repos repository.Repositories) error {
		receipt, err := repos.Receipts().FindByID(ctx, receiptID)
		if err != nil {
			return err
		}
		receipt.IsCheckedOut = true
		return repos.Receipts().Update(ctx, receipt)
	})
	return errors.Wrapf(err, "failed to check out receipt %s", receiptID)
}

// ToPay sums quantity * discount unit price over the receipt's lines. It
// does not modify the receipt.
func (s *receiptService) ToPay(ctx context.Context, receiptID uuid.UUID) (decimal.Decimal, error) {
	receipt, err := s.uow.Receipts().FindByIDWithDetails(ctx, receiptID)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "failed to get receipt %s", receiptID)
	}
	return receipt.Total(), nil
}

// MarkOperationTime stamps the receipt's operation date with the current time
func (s *receiptService) MarkOperationTime(ctx context.Context, receiptID uuid.UUID) error {
	err := s.uow.Save(ctx, func(ctx context.Context, repos repository.Repositories) error {
		receipt, err := repos.Receipts().FindByID(ctx, receiptID)
		if err != nil {
			return err
		}
		receipt.OperationDate = s.now().UTC()
		return repos.Receipts().Update(ctx, receipt)
	})
	return errors.Wrapf(err, "failed to mark operation time of receipt %s", receiptID)
}

// GetReceiptsByPeriod returns receipts strictly between start and end
func (s *receiptService) GetReceiptsByPeriod(ctx context.Context, start, end time.Time) ([]dto.ReceiptModel, error) {
	if end.Before(start) {
		return nil, domain.Invalidf("period end %s is before start %s", end, start)
	}

	receipts, err := s.uow.Receipts().ListWithDetails(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list receipts")
	}

	inPeriod := []*domain.Receipt{}
	for _, r := range receipts {
		if r.OperationDate.After(start) && r.OperationDate.Before(end) {
			inPeriod = append(inPeriod, r)
		}
	}

	return dto.ReceiptsFromDomain(inPeriod), nil
}

func (s *receiptService) validateReceipt(model dto.ReceiptModel) error {
	if !domain.OperationDateInRange(model.OperationDate, s.now()) {
		return domain.Invalidf("operation date %s must lie between %s and now",
			model.OperationDate.Format(time.RFC3339), domain.MinOperationDate.Format(time.DateOnly))
	}
	return nil
}

func checkedOut(receiptID uuid.UUID) error {
	return &domain.MarketError{
		Kind:    domain.ErrReceiptCheckedOut,
		Message: "receipt " + receiptID.String() + " is checked out",
	}
}
