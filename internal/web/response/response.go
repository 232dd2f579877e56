package response

import (
	"encoding/json"
	"net/http"

	"github.com/conduit-lang/podreg/runtime/pod"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// RenderJSON writes v as JSON with the given status code
func RenderJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// RenderError renders err, deriving the status from its registry error code
func RenderError(w http.ResponseWriter, err error) {
	code := pod.Code(err)
	if code == "" {
		RenderErrorWithCode(w, http.StatusInternalServerError, err, "internal_error")
		return
	}
	RenderErrorWithCode(w, StatusForCode(code), err, code)
}

// RenderErrorWithCode renders an error with a specific error code
func RenderErrorWithCode(w http.ResponseWriter, statusCode int, err error, code string) {
	RenderJSON(w, statusCode, &ErrorResponse{
		Error:   "error",
		Message: err.Error(),
		Code:    code,
	})
}

// StatusForCode maps a registry error code to an HTTP status
func StatusForCode(code string) int {
	switch code {
	case pod.CodeUnknownPod, pod.CodeUnknownType:
		return http.StatusNotFound
	case pod.CodeInvalidName:
		return http.StatusBadRequest
	case pod.CodeDuplicatePod, pod.CodeDuplicateType:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
