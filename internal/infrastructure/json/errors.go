package json

import (
	"net/http"
)

const (
	CodeInternal        = "INTERNAL_ERROR"
	CodeInvalidJSON     = "INVALID_JSON"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"

	fallbackInternalMessage = "Internal server error"
)

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope every failed request is answered with.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

func WriteError(w http.ResponseWriter, status int, code, msg string) {
	resp := ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    code,
			Message: msg,
		},
	}
	// ErrorResponse only holds strings, marshalling cannot fail.
	_ = Write(w, status, resp)
}

// WriteInternalError answers with 500 and the error's own text, falling
// back to a generic message when there is none.
func WriteInternalError(w http.ResponseWriter, err error) {
	WriteError(w, http.StatusInternalServerError, CodeInternal, InternalMessage(err))
}

func WriteBadRequestError(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusBadRequest, CodeInvalidJSON, msg)
}

func WritePayloadTooLargeError(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, msg)
}

func InternalMessage(err error) string {
	if err == nil || err.Error() == "" {
		return fallbackInternalMessage
	}
	return err.Error()
}
