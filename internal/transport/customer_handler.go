package transport

import (
	"net/http"
	"time"

	"trade-market/internal/dto"
	"trade-market/internal/middleware"
	"trade-market/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CustomerRequest represents the create/update customer payload
type CustomerRequest struct {
	Name          string    `json:"name" validate:"required"`
	Surname       string    `json:"surname" validate:"required"`
	BirthDate     time.Time `json:"birth_date" validate:"required"`
	DiscountValue int       `json:"discount_value" validate:"gte=0,lte=100"`
}

func (req CustomerRequest) model() dto.CustomerModel {
	return dto.CustomerModel{
		Name:          req.Name,
		Surname:       req.Surname,
		BirthDate:     req.BirthDate,
		DiscountValue: req.DiscountValue,
	}
}

// CustomerHandler handles HTTP requests for customers
type CustomerHandler struct {
	customerService service.CustomerService
	logger          *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// RegisterRoutes registers all customer routes
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/customers", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/products/{id}", h.ListByProduct)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerService.GetAll(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	customer, err := h.customerService.GetByID(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

// ListByProduct returns the customers who bought a product
func (h *CustomerHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	customers, err := h.customerService.GetCustomersByProductID(r.Context(), productID)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	customer, err := h.customerService.Add(r.Context(), req.model())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("Customer created", zap.String("customer_id", customer.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	var req CustomerRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	model := req.model()
	model.ID = id
	if err := h.customerService.Update(r.Context(), model); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	respondNoContent(w)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	if err := h.customerService.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("Customer deleted", zap.String("customer_id", id.String()))
	respondNoContent(w)
}
