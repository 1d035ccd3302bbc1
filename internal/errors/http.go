package errors

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error *AppError `json:"error"`
}

// WriteJSON writes err as a JSON error body. Errors that are not an AppError
// are reported as an opaque internal error so causes never leak to clients.
func WriteJSON(w http.ResponseWriter, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = NewInternalError("Internal server error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: appErr})
}
