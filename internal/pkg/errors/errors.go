package errors

import (
	"errors"
	"fmt"
)

// Kind tags an Error with its place in the taxonomy.
type Kind int

const (
	KindUnclassified Kind = iota
	KindNotFound
	KindBodyTooLarge
	KindBodyMalformed
	KindValidation
	KindStorageDecode
	KindStorage
)

// String returns the kind name used in logs
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBodyTooLarge:
		return "body_too_large"
	case KindBodyMalformed:
		return "body_malformed"
	case KindValidation:
		return "validation"
	case KindStorageDecode:
		return "storage_decode"
	case KindStorage:
		return "storage"
	default:
		return "unclassified"
	}
}

// Error is a tagged application error. Err holds the underlying
// collaborator failure, kept for logging.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports that no route matched the request.
func NotFound(cause error) *Error {
	return &Error{Kind: KindNotFound, Err: cause}
}

// BodyTooLarge reports a request body above the route's cap.
func BodyTooLarge(cause error) *Error {
	return &Error{Kind: KindBodyTooLarge, Err: cause}
}

// BodyMalformed reports a body that could not be decoded into the expected shape.
func BodyMalformed(cause error) *Error {
	return &Error{Kind: KindBodyMalformed, Err: cause}
}

// Validation reports a well-formed input carrying an unacceptable value.
// The message is returned to the client verbatim.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Validationf is Validation with formatting.
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// StorageDecode reports a row the store returned but that could not be
// decoded into a domain value. The cause's description is client-visible.
func StorageDecode(cause error) *Error {
	return &Error{Kind: KindStorageDecode, Err: cause}
}

// Storage reports any other storage failure. Its detail is never
// returned to the client.
func Storage(cause error) *Error {
	return &Error{Kind: KindStorage, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnclassified
}
