package transport

import (
	"net/http"
	"strconv"
	"time"

	"trade-market/internal/domain"
	"trade-market/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// decodeRequest decodes and validates the body into req, writing the 400
// response itself when that fails.
func decodeRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger, req interface{}) bool {
	if err := middleware.DecodeAndValidate(r, req); err != nil {
		logger.Debug("Request validation failed", zap.String("path", r.URL.Path), zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.Invalidf("invalid %s", name)
	}
	return id, nil
}

func intParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, domain.Invalidf("invalid %s", name)
	}
	return n, nil
}

func intQuery(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0, domain.Invalidf("invalid %s", name)
	}
	return n, nil
}

// timeQuery accepts RFC 3339 timestamps and plain dates.
func timeQuery(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, domain.Invalidf("invalid %s", name)
}

func periodQuery(r *http.Request, startName, endName string) (time.Time, time.Time, error) {
	start, err := timeQuery(r, startName)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := timeQuery(r, endName)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func respondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
