package errors

import (
	"errors"
	"net/http"
)

// Application error codes. The thousands prefix selects the HTTP status,
// see StatusForCode.
const (
	CodeInvalidData = 20001
	CodeInternal    = 80000
)

const (
	MessageNotFound      = "not found"
	MessageBodyMalformed = "failed to process request body"
	MessageBodyTooLarge  = "request body is too large"
	MessageInternal      = "internal server error"
)

// Envelope is the body of every error response.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	// Status is the HTTP status the envelope is sent with.
	Status int `json:"-"`
}

// StatusForCode projects an application code onto an HTTP status by its
// thousands prefix.
func StatusForCode(code int) int {
	switch prefix := code / 1000; {
	case prefix >= 20 && prefix <= 29:
		return http.StatusUnprocessableEntity
	case prefix >= 30 && prefix <= 39:
		return http.StatusUnauthorized
	case prefix >= 40 && prefix <= 49:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Classify maps any error onto the envelope returned to the client.
//
// Transport-level failures carry their HTTP status as the code. Domain
// failures get an application code and the status follows from it.
func Classify(err error) Envelope {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return transport(http.StatusInternalServerError, MessageInternal)
	}

	switch appErr.Kind {
	case KindNotFound:
		return transport(http.StatusNotFound, MessageNotFound)
	case KindBodyMalformed:
		return transport(http.StatusUnprocessableEntity, MessageBodyMalformed)
	case KindBodyTooLarge:
		// 400 rather than 413 keeps existing clients working.
		return transport(http.StatusBadRequest, MessageBodyTooLarge)
	case KindStorageDecode:
		msg := MessageInternal
		if appErr.Err != nil {
			msg = appErr.Err.Error()
		}
		return domain(CodeInvalidData, msg)
	case KindStorage:
		return domain(CodeInternal, MessageInternal)
	case KindValidation:
		return domain(CodeInvalidData, appErr.Message)
	default:
		return transport(http.StatusInternalServerError, MessageInternal)
	}
}

func transport(status int, message string) Envelope {
	return Envelope{Code: status, Message: message, Status: status}
}

func domain(code int, message string) Envelope {
	return Envelope{Code: code, Message: message, Status: StatusForCode(code)}
}
