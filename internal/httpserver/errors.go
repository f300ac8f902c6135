package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// writeError maps domain errors to HTTP responses. Unknown errors are logged
// by the request logger through the 500 status and reported generically.
func writeError(c *gin.Context, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

func classify(err error) (int, errorBody) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, errorBody{Code: validationCode(verr), Message: verr.Error(), Field: verr.Field}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, errorBody{Code: "validation_failed", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorBody{Code: "not_found", Message: err.Error()}
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, errorBody{Code: "already_exists", Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, errorBody{Code: "unauthorized", Message: "authentication required"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorBody{Code: "forbidden", Message: "admin role required"}
	case errors.Is(err, domain.ErrOrderPersist):
		return http.StatusInternalServerError, errorBody{Code: "order_persist_failed", Message: domain.ErrOrderPersist.Error()}
	case errors.Is(err, domain.ErrCartClear):
		return http.StatusInternalServerError, errorBody{Code: "cart_clear_failed", Message: domain.ErrCartClear.Error()}
	default:
		return http.StatusInternalServerError, errorBody{Code: "internal", Message: "internal error"}
	}
}

func validationCode(verr *domain.ValidationError) string {
	switch verr {
	case domain.ErrEmptyCart:
		return "empty_cart"
	case domain.ErrTotalMismatch:
		return "total_mismatch"
	case domain.ErrCategoryInUse:
		return "category_in_use"
	}
	return "validation_failed"
}

func badRequest(c *gin.Context, field, reason string) {
	writeError(c, domain.Invalid(field, reason))
}
