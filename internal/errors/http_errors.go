package errors

import (
	"encoding/json"
	"net/http"
)

type HTTPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// HandleHTTPError maps application errors to JSON responses.
func HandleHTTPError(w http.ResponseWriter, err error) {
	var httpErr *HTTPError
	switch e := err.(type) {
	case *ValidationError:
		httpErr = &HTTPError{
			Code:    http.StatusBadRequest,
			Message: e.Error(),
			Field:   e.Field,
		}
	case *InvalidSignatureError:
		httpErr = &HTTPError{
			Code:    http.StatusBadRequest,
			Message: e.Error(),
		}
	case *NotFoundError:
		httpErr = &HTTPError{
			Code:    http.StatusNotFound,
			Message: e.Error(),
		}
	case *DuplicateReferenceError:
		httpErr = &HTTPError{
			Code:    http.StatusUnprocessableEntity,
			Message: e.Error(),
		}
	case *GatewayRejectedError:
		httpErr = &HTTPError{
			Code:    http.StatusBadGateway,
			Message: e.Error(),
		}
	case *GatewayUnavailableError:
		httpErr = &HTTPError{
			Code:    http.StatusServiceUnavailable,
			Message: "payment gateway unavailable",
		}
	default:
		httpErr = &HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.Code)
	json.NewEncoder(w).Encode(httpErr)
}
