package transport

import (
	"net/http"

	"trade-market/internal/middleware"
	"trade-market/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// IncomeResponse represents a category's income over a period
type IncomeResponse struct {
	CategoryID uuid.UUID       `json:"category_id"`
	Income     decimal.Decimal `json:"income"`
}

// StatisticHandler handles HTTP requests for sales statistics
type StatisticHandler struct {
	statisticService service.StatisticService
	logger           *zap.Logger
}

// NewStatisticHandler creates a new StatisticHandler
func NewStatisticHandler(statisticService service.StatisticService, logger *zap.Logger) *StatisticHandler {
	return &StatisticHandler{
		statisticService: statisticService,
		logger:           logger,
	}
}

// RegisterRoutes registers all statistic routes
func (h *StatisticHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/statistics", func(r chi.Router) {
		r.Get("/popularProducts", h.PopularProducts)
		r.Get("/customer/{id}/{productCount}", h.CustomerPopularProducts)
		r.Get("/income/{categoryId}", h.CategoryIncome)
		r.Get("/activity/{customerCount}", h.MostValuableCustomers)
	})
}

func (h *StatisticHandler) PopularProducts(w http.ResponseWriter, r *http.Request) {
	count, err := intQuery(r, "productCount")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	products, err := h.statisticService.GetMostPopularProducts(r.Context(), count)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *StatisticHandler) CustomerPopularProducts(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	count, err := intParam(r, "productCount")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	products, err := h.statisticService.GetCustomersMostPopularProducts(r.Context(), count, customerID)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *StatisticHandler) CategoryIncome(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuidParam(r, "categoryId")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	start, end, err := periodQuery(r, "startDate", "endDate")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	income, err := h.statisticService.GetIncomeOfCategoryInPeriod(r.Context(), categoryID, start, end)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, IncomeResponse{CategoryID: categoryID, Income: income})
}

func (h *StatisticHandler) MostValuableCustomers(w http.ResponseWriter, r *http.Request) {
	count, err := intParam(r, "customerCount")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	start, end, err := periodQuery(r, "startDate", "endDate")
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	activity, err := h.statisticService.GetMostValuableCustomers(r.Context(), count, start, end)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, activity)
}
