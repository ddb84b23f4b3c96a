package response

import (
	"encoding/json"
	"net/http"
)

const (
	StatOK               = "OK"
	StatCreated          = "CREATED"
	StatNotFound         = "NOT_FOUND"
	StatForbidden        = "FORBIDDEN"
	StatUnauthorized     = "UNAUTHORIZED"
	StatConflict         = "CONFLICT"
	StatusInvalidPayload = "INVALID_PAYLOAD"
	StatUnexpectedError  = "UNEXPECTED_ERROR"
)

type Response struct {
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
	Status   string      `json:"status"`
	Message  string      `json:"message,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}, status string, message string) Response {
	return Response{
		HTTPCode: http.StatusOK,
		Status:   status,
		Message:  message,
		Data:     data,
	}
}

func NewCreatedResponse(data interface{}, message string) Response {
	return Response{
		HTTPCode: http.StatusCreated,
		Status:   StatCreated,
		Message:  message,
		Data:     data,
	}
}

func NewErrorResponse(err error, httpCode int, data interface{}, status string, message string) Response {
	return Response{
		Err:      err,
		HTTPCode: httpCode,
		Status:   status,
		Message:  message,
		Data:     data,
	}
}

func JSON(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	code := resp.HTTPCode
	if code == 0 {
		code = http.StatusOK
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
