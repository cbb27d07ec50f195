// Package validator provides struct validation for request DTOs.
//
// It wraps go-playground/validator with JSON field names in error output,
// so a failure names the field the client actually sent.
//
// # Usage
//
// Use validator.Validate() directly or through dto.ParseAndValidate():
//
//	if err := validator.Validate(req); err != nil {
//	    // err is a validator.ValidationErrors
//	}
//
// The package-level instance is safe for concurrent use.
package validator
