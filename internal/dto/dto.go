// Package dto holds the models returned by the services and the explicit
// projections between them and the domain entities.
package dto

import (
	"time"

	"trade-market/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductModel struct {
	ID                uuid.UUID       `json:"id"`
	ProductName       string          `json:"product_name"`
	ProductCategoryID uuid.UUID       `json:"product_category_id"`
	CategoryName      string          `json:"category_name,omitempty"`
	Price             decimal.Decimal `json:"price"`
}

type ProductCategoryModel struct {
	ID           uuid.UUID `json:"id"`
	CategoryName string    `json:"category_name"`
}

type CustomerModel struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Surname       string    `json:"surname"`
	BirthDate     time.Time `json:"birth_date"`
	DiscountValue int       `json:"discount_value"`
}

type ReceiptModel struct {
	ID               uuid.UUID   `json:"id"`
	CustomerID       uuid.UUID   `json:"customer_id"`
	OperationDate    time.Time   `json:"operation_date"`
	IsCheckedOut     bool        `json:"is_checked_out"`
	ReceiptDetailIDs []uuid.UUID `json:"receipt_detail_ids"`
}

type ReceiptDetailModel struct {
	ID                uuid.UUID       `json:"id"`
	ReceiptID         uuid.UUID       `json:"receipt_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	ProductName       string          `json:"product_name,omitempty"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	DiscountUnitPrice decimal.Decimal `json:"discount_unit_price"`
	Quantity          int             `json:"quantity"`
}

// CustomerActivityModel is one row of the most valuable customers report
type CustomerActivityModel struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	ReceiptSum   decimal.Decimal `json:"receipt_sum"`
}

// FilterSearchModel carries optional product filter criteria; nil matches everything.
type FilterSearchModel struct {
	CategoryID *uuid.UUID
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

func ProductFromDomain(p *domain.Product) ProductModel {
	m := ProductModel{
		ID:                p.ID,
		ProductName:       p.Name,
		ProductCategoryID: p.CategoryID,
		Price:             p.Price,
	}
	if p.Category != nil {
		m.CategoryName = p.Category.Name
	}
	return m
}

func ProductsFromDomain(products []*domain.Product) []ProductModel {
	models := make([]ProductModel, 0, len(products))
	for _, p := range products {
		models = append(models, ProductFromDomain(p))
	}
	return models
}

func ProductToDomain(m ProductModel) *domain.Product {
	return &domain.Product{
		ID:         m.ID,
		Name:       m.ProductName,
		Price:      m.Price,
		CategoryID: m.ProductCategoryID,
	}
}

func CategoryFromDomain(c *domain.Category) ProductCategoryModel {
	return ProductCategoryModel{ID: c.ID, CategoryName: c.Name}
}

func CategoriesFromDomain(categories []*domain.Category) []ProductCategoryModel {
	models := make([]ProductCategoryModel, 0, len(categories))
	for _, c := range categories {
		models = append(models, CategoryFromDomain(c))
	}
	return models
}

func CategoryToDomain(m ProductCategoryModel) *domain.Category {
	return &domain.Category{ID: m.ID, Name: m.CategoryName}
}

func CustomerFromDomain(c *domain.Customer) CustomerModel {
	return CustomerModel{
		ID:            c.ID,
		Name:          c.Name,
		Surname:       c.Surname,
		BirthDate:     c.BirthDate,
		DiscountValue: c.DiscountValue,
	}
}

func CustomersFromDomain(customers []*domain.Customer) []CustomerModel {
	models := make([]CustomerModel, 0, len(customers))
	for _, c := range customers {
		models = append(models, CustomerFromDomain(c))
	}
	return models
}

func CustomerToDomain(m CustomerModel) *domain.Customer {
	return &domain.Customer{
		ID:            m.ID,
		Name:          m.Name,
		Surname:       m.Surname,
		BirthDate:     m.BirthDate,
		DiscountValue: m.DiscountValue,
	}
}

func ReceiptFromDomain(r *domain.Receipt) ReceiptModel {
	ids := make([]uuid.UUID, 0, len(r.Details))
	for _, d := range r.Details {
		ids = append(ids, d.ID)
	}
	return ReceiptModel{
		ID:               r.ID,
		CustomerID:       r.CustomerID,
		OperationDate:    r.OperationDate,
		IsCheckedOut:     r.IsCheckedOut,
		ReceiptDetailIDs: ids,
	}
}

func ReceiptsFromDomain(receipts []*domain.Receipt) []ReceiptModel {
	models := make([]ReceiptModel, 0, len(receipts))
	for _, r := range receipts {
		models = append(models, ReceiptFromDomain(r))
	}
	return models
}

// ReceiptToDomain maps the header fields only; lines are never written
// through a ReceiptModel.
func ReceiptToDomain(m ReceiptModel) *domain.Receipt {
	return &domain.Receipt{
		ID:            m.ID,
		CustomerID:    m.CustomerID,
		OperationDate: m.OperationDate,
		IsCheckedOut:  m.IsCheckedOut,
	}
}

func ReceiptDetailFromDomain(d *domain.ReceiptDetail) ReceiptDetailModel {
	m := ReceiptDetailModel{
		ID:                d.ID,
		ReceiptID:         d.ReceiptID,
		ProductID:         d.ProductID,
		UnitPrice:         d.UnitPrice,
		DiscountUnitPrice: d.DiscountUnitPrice,
		Quantity:          d.Quantity,
	}
	if d.Product != nil {
		m.ProductName = d.Product.Name
	}
	return m
}

func ReceiptDetailsFromDomain(details []*domain.ReceiptDetail) []ReceiptDetailModel {
	models := make([]ReceiptDetailModel, 0, len(details))
	for _, d := range details {
		models = append(models, ReceiptDetailFromDomain(d))
	}
	return models
}
