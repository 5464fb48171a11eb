package types

import (
	"fmt"
	"net/http"
)

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// BadRequest is a 400 with a user facing message.
func BadRequest(message, errorType string) *CustomError {
	return &CustomError{Code: http.StatusBadRequest, Message: message, Type: errorType}
}
