package transport

import (
	"context"
	"net/http"
	"time"

	"trade-market/internal/dto"
	"trade-market/internal/metrics"
	"trade-market/internal/middleware"
	"trade-market/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReceiptRequest represents the create/update receipt payload
type ReceiptRequest struct {
	CustomerID    string    `json:"customer_id" validate:"required,uuid"`
	OperationDate time.Time `json:"operation_date" validate:"required"`
}

// ToPayResponse represents the receipt total
type ToPayResponse struct {
	ReceiptID uuid.UUID       `json:"receipt_id"`
	Sum       decimal.Decimal `json:"sum"`
}

// ReceiptHandler handles HTTP requests for receipts
type ReceiptHandler struct {
	receiptService service.ReceiptService
	logger         *zap.Logger
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService service.ReceiptService, logger *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
		logger:         logger,
	}
}

// RegisterRoutes registers all receipt routes
func (h *ReceiptHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/receipts", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/period", h.ListByPeriod)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Get("/details", h.Details)
			r.Get("/sum", h.ToPay)
			r.Put("/checkout", h.CheckOut)
			r.Put("/operation-time", h.MarkOperationTime)
			r.Put("/products/add/{productId}/{quantity}", h.AddProduct)
			r.Put("/products/remove/{productId}/{quantity}", h.RemoveProduct)
		})
	})
}

func (h *ReceiptHandler) List(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.receiptService.GetAll(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, receipts)
}

// ListByPeriod returns receipts strictly between start and end
func (h *ReceiptHandler) ListByPeriod(w http.ResponseWriter, r *http.Request) {
	start, end, err := periodQuery(r, "start", "end")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	receipts, err := h.receiptService.GetReceiptsByPeriod(r.Context(), start, end)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, receipts)
}

func (h *ReceiptHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	receipt, err := h.receiptService.GetByID(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, receipt)
}

func (h *ReceiptHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	details, err := h.receiptService.GetReceiptDetails(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, details)
}

func (h *ReceiptHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ReceiptRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	receipt, err := h.receiptService.Add(r.Context(), dto.ReceiptModel{
		CustomerID:    uuid.MustParse(req.CustomerID),
		OperationDate: req.OperationDate,
	})
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	metrics.RecordReceiptEvent("created")
	h.logger.Info("Receipt created", zap.String("receipt_id", receipt.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, receipt)
}

func (h *ReceiptHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	var req ReceiptRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	err = h.receiptService.Update(r.Context(), dto.ReceiptModel{
		ID:            id,
		CustomerID:    uuid.MustParse(req.CustomerID),
		OperationDate: req.OperationDate,
	})
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	respondNoContent(w)
}

func (h *ReceiptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	if err := h.receiptService.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	metrics.RecordReceiptEvent("deleted")
	h.logger.Info("Receipt deleted", zap.String("receipt_id", id.String()))
	respondNoContent(w)
}

func (h *ReceiptHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	h.changeProduct(w, r, "product_added", h.receiptService.AddProduct)
}

func (h *ReceiptHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	h.changeProduct(w, r, "product_removed", h.receiptService.RemoveProduct)
}

type productChange func(ctx context.Context, productID, receiptID uuid.UUID, quantity int) error

func (h *ReceiptHandler) changeProduct(w http.ResponseWriter, r *http.Request, event string, change productChange) {
	receiptID, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	productID, err := uuidParam(r, "productId")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	quantity, err := intParam(r, "quantity")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	if err := change(r.Context(), productID, receiptID, quantity); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	metrics.RecordReceiptEvent(event)
	respondNoContent(w)
}

func (h *ReceiptHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	if err := h.receiptService.CheckOut(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	metrics.RecordReceiptEvent("checked_out")
	h.logger.Info("Receipt checked out", zap.String("receipt_id", id.String()))
	respondNoContent(w)
}

func (h *ReceiptHandler) ToPay(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	sum, err := h.receiptService.ToPay(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, ToPayResponse{ReceiptID: id, Sum: sum})
}

func (h *ReceiptHandler) MarkOperationTime(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	if err := h.receiptService.MarkOperationTime(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	respondNoContent(w)
}
