package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trade-market/internal/dto"
	"trade-market/internal/middleware"
	"trade-market/internal/repository/memory"
	"trade-market/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter() http.Handler {
	store := memory.NewStore()
	logger := zap.NewNop()

	r := chi.NewRouter()
	NewProductHandler(service.NewProductService(store), logger).RegisterRoutes(r)
	NewCustomerHandler(service.NewCustomerService(store), logger).RegisterRoutes(r)
	NewReceiptHandler(service.NewReceiptService(store), logger).RegisterRoutes(r)
	NewStatisticHandler(service.NewStatisticService(store.Receipts()), logger).RegisterRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type seeded struct {
	categoryID uuid.UUID
	productID  uuid.UUID
	customerID uuid.UUID
	receiptID  uuid.UUID
}

func seedMarket(t *testing.T, h http.Handler, price string, discount int) seeded {
	t.Helper()
	var s seeded

	w := do(t, h, http.MethodPost, "/api/products/categories", CategoryRequest{CategoryName: "Dairy"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	s.categoryID = decode[dto.ProductCategoryModel](t, w).ID

	w = do(t, h, http.MethodPost, "/api/products", map[string]interface{}{
		"product_name":        "Milk",
		"product_category_id": s.categoryID.String(),
		"price":               price,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	s.productID = decode[dto.ProductModel](t, w).ID

	w = do(t, h, http.MethodPost, "/api/customers", CustomerRequest{
		Name:          "Ann",
		Surname:       "Lee",
		BirthDate:     time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
		DiscountValue: discount,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	s.customerID = decode[dto.CustomerModel](t, w).ID

	w = do(t, h, http.MethodPost, "/api/receipts", ReceiptRequest{
		CustomerID:    s.customerID.String(),
		OperationDate: time.Now().Add(-time.Hour).UTC(),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	s.receiptID = decode[dto.ReceiptModel](t, w).ID

	return s
}

func toPay(t *testing.T, h http.Handler, receiptID uuid.UUID) decimal.Decimal {
	t.Helper()
	w := do(t, h, http.MethodGet, "/api/receipts/"+receiptID.String()+"/sum", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[ToPayResponse](t, w).Sum
}

func TestReceiptFlowOverHTTP(t *testing.T) {
	h := newTestRouter()
	s := seedMarket(t, h, "100", 10)
	base := "/api/receipts/" + s.receiptID.String()

	w := do(t, h, http.MethodPut, fmt.Sprintf("%s/products/add/%s/3", base, s.productID), nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	assert.True(t, decimal.RequireFromString("270").Equal(toPay(t, h, s.receiptID)))

	w = do(t, h, http.MethodGet, base+"/details", nil)
	require.Equal(t, http.StatusOK, w.Code)
	details := decode[[]dto.ReceiptDetailModel](t, w)
	require.Len(t, details, 1)
	assert.True(t, decimal.RequireFromString("90").Equal(details[0].DiscountUnitPrice))

	w = do(t, h, http.MethodPut, fmt.Sprintf("%s/products/remove/%s/1", base, s.productID), nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	assert.True(t, decimal.RequireFromString("180").Equal(toPay(t, h, s.receiptID)))

	w = do(t, h, http.MethodPut, fmt.Sprintf("%s/products/remove/%s/2", base, s.productID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, toPay(t, h, s.receiptID).IsZero())

	w = do(t, h, http.MethodPut, base+"/checkout", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodPut, fmt.Sprintf("%s/products/add/%s/1", base, s.productID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPut, base, map[string]interface{}{
		"customer_id":    s.customerID.String(),
		"operation_date": time.Now().Add(-time.Hour).UTC(),
		"is_checked_out": false,
	})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.ReceiptModel](t, w).IsCheckedOut)

	w = do(t, h, http.MethodPut, base+"/operation-time", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProperty_InvalidQuantityIsBadRequest(t *testing.T) {
	h := newTestRouter()
	s := seedMarket(t, h, "5", 0)

	properties := gopter.NewProperties(nil)

	properties.Property("non-positive quantities are rejected with 400", prop.ForAll(
		func(q int) bool {
			path := fmt.Sprintf("/api/receipts/%s/products/add/%s/%d", s.receiptID, s.productID, q)
			return do(t, h, http.MethodPut, path, nil).Code == http.StatusBadRequest
		},
		gen.IntRange(-1000, 0),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestErrorStatusMapping(t *testing.T) {
	h := newTestRouter()
	s := seedMarket(t, h, "5", 0)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"malformed id", http.MethodGet, "/api/products/not-a-uuid", nil, http.StatusBadRequest},
		{"missing product", http.MethodGet, "/api/products/" + uuid.NewString(), nil, http.StatusNotFound},
		{"missing receipt", http.MethodGet, "/api/receipts/" + uuid.NewString() + "/sum", nil, http.StatusNotFound},
		{"category in use", http.MethodDelete, "/api/products/categories/" + s.categoryID.String(), nil, http.StatusConflict},
		{"customer in use", http.MethodDelete, "/api/customers/" + s.customerID.String(), nil, http.StatusConflict},
		{"bad quantity", http.MethodPut, "/api/receipts/" + s.receiptID.String() + "/products/add/" + s.productID.String() + "/x", nil, http.StatusBadRequest},
		{"bad period", http.MethodGet, "/api/receipts/period?start=yesterday&end=2024-01-01", nil, http.StatusBadRequest},
		{"negative price", http.MethodPost, "/api/products", map[string]interface{}{
			"product_name": "Tea", "product_category_id": s.categoryID.String(), "price": "-1",
		}, http.StatusBadRequest},
		{"missing customer id", http.MethodPost, "/api/receipts", map[string]interface{}{"operation_date": time.Now()}, http.StatusBadRequest},
		{"discount out of range", http.MethodPost, "/api/customers", map[string]interface{}{
			"name": "Bob", "surname": "Ray", "birth_date": "1990-01-01T00:00:00Z", "discount_value": 150,
		}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())

			var response middleware.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.NotEmpty(t, response.Error.Message)
		})
	}
}

func TestProductFilterQuery(t *testing.T) {
	h := newTestRouter()
	s := seedMarket(t, h, "5", 0)

	w := do(t, h, http.MethodPost, "/api/products", map[string]interface{}{
		"product_name": "Cheese", "product_category_id": s.categoryID.String(), "price": "20",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, http.MethodGet, "/api/products?min_price=10&category_id="+s.categoryID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	products := decode[[]dto.ProductModel](t, w)
	require.Len(t, products, 1)
	assert.Equal(t, "Cheese", products[0].ProductName)

	w = do(t, h, http.MethodGet, "/api/products?max_price=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.ProductModel](t, w), 2)
}

func TestStatisticsEndpoints(t *testing.T) {
	h := newTestRouter()
	s := seedMarket(t, h, "100", 10)

	w := do(t, h, http.MethodPut, fmt.Sprintf("/api/receipts/%s/products/add/%s/2", s.receiptID, s.productID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/statistics/popularProducts?productCount=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	popular := decode[[]dto.ProductModel](t, w)
	require.Len(t, popular, 1)
	assert.Equal(t, s.productID, popular[0].ID)

	w = do(t, h, http.MethodGet, fmt.Sprintf("/api/statistics/customer/%s/5", s.customerID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.ProductModel](t, w), 1)

	period := "startDate=2000-01-01&endDate=" + time.Now().Add(time.Hour).UTC().Format(time.RFC3339)

	w = do(t, h, http.MethodGet, fmt.Sprintf("/api/statistics/income/%s?%s", s.categoryID, period), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decimal.RequireFromString("180").Equal(decode[IncomeResponse](t, w).Income))

	w = do(t, h, http.MethodGet, "/api/statistics/activity/3?"+period, nil)
	require.Equal(t, http.StatusOK, w.Code)
	activity := decode[[]dto.CustomerActivityModel](t, w)
	require.Len(t, activity, 1)
	assert.Equal(t, "Ann Lee", activity[0].CustomerName)

	w = do(t, h, http.MethodGet, "/api/statistics/popularProducts", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCustomerEndpoints(t *testing.T) {
	h := newTestRouter()
	s := seedMarket(t, h, "5", 0)

	w := do(t, h, http.MethodPut, "/api/customers/"+s.customerID.String(), CustomerRequest{
		Name: "Ann", Surname: "Park", BirthDate: time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC), DiscountValue: 20,
	})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, "/api/customers/"+s.customerID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	customer := decode[dto.CustomerModel](t, w)
	assert.Equal(t, "Park", customer.Surname)
	assert.Equal(t, 20, customer.DiscountValue)

	w = do(t, h, http.MethodPut, fmt.Sprintf("/api/receipts/%s/products/add/%s/1", s.receiptID, s.productID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/customers/products/"+s.productID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	buyers := decode[[]dto.CustomerModel](t, w)
	require.Len(t, buyers, 1)
	assert.Equal(t, s.customerID, buyers[0].ID)
}
