package transport

import (
	"net/http"

	"trade-market/internal/dto"
	"trade-market/internal/middleware"
	"trade-market/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest represents the create/update product payload
type ProductRequest struct {
	ProductName       string          `json:"product_name" validate:"required"`
	ProductCategoryID string          `json:"product_category_id" validate:"required,uuid"`
	Price             decimal.Decimal `json:"price" validate:"gte=0"`
}

// CategoryRequest represents the create/update category payload
type CategoryRequest struct {
	CategoryName string `json:"category_name" validate:"required"`
}

// ProductHandler handles HTTP requests for products and categories
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)

		r.Get("/categories", h.ListCategories)
		r.Post("/categories", h.CreateCategory)
		r.Put("/categories/{id}", h.UpdateCategory)
		r.Delete("/categories/{id}", h.DeleteCategory)
	})
}

// List returns all products, or the filtered subset when any of
// min_price, max_price or category_id is given
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("min_price") && !query.Has("max_price") && !query.Has("category_id") {
		products, err := h.productService.GetAll(r.Context())
		if err != nil {
			middleware.RespondWithDomainError(w, h.logger, err)
			return
		}
		middleware.RespondWithJSON(w, http.StatusOK, products)
		return
	}

	var filter dto.FilterSearchModel
	if raw := query.Get("min_price"); raw != "" {
		minPrice, err := decimal.NewFromString(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid min_price")
			return
		}
		filter.MinPrice = &minPrice
	}
	if raw := query.Get("max_price"); raw != "" {
		maxPrice, err := decimal.NewFromString(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid max_price")
			return
		}
		filter.MaxPrice = &maxPrice
	}
	if raw := query.Get("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		filter.CategoryID = &categoryID
	}

	products, err := h.productService.GetByFilter(r.Context(), filter)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get returns one product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create adds a product
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	product, err := h.productService.Add(r.Context(), dto.ProductModel{
		ProductName:       req.ProductName,
		ProductCategoryID: uuid.MustParse(req.ProductCategoryID),
		Price:             req.Price,
	})
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update overwrites a product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	var req ProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	err = h.productService.Update(r.Context(), dto.ProductModel{
		ID:                id,
		ProductName:       req.ProductName,
		ProductCategoryID: uuid.MustParse(req.ProductCategoryID),
		Price:             req.Price,
	})
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	respondNoContent(w)
}

// Delete removes a product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	respondNoContent(w)
}

// ListCategories returns all categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.productService.GetAllCategories(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// CreateCategory adds a category
func (h *ProductHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	category, err := h.productService.AddCategory(r.Context(), dto.ProductCategoryModel{CategoryName: req.CategoryName})
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("Category created", zap.String("category_id", category.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// UpdateCategory renames a category
func (h *ProductHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	var req CategoryRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	err = h.productService.UpdateCategory(r.Context(), dto.ProductCategoryModel{ID: id, CategoryName: req.CategoryName})
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	respondNoContent(w)
}

// DeleteCategory removes a category without products
func (h *ProductHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	if err := h.productService.RemoveCategory(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	respondNoContent(w)
}
