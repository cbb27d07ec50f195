package dto

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/runsapi/runs-api/internal/pkg/errors"
	"github.com/runsapi/runs-api/internal/validator"
)

// ParseAndValidate decodes the JSON request body into v and validates it.
// Any decoding or shape failure is reported as a malformed body.
func ParseAndValidate(c *fiber.Ctx, v any) error {
	if err := c.App().Config().JSONDecoder(c.Body(), v); err != nil {
		return apperrors.BodyMalformed(err)
	}

	if err := validator.Validate(v); err != nil {
		return apperrors.BodyMalformed(err)
	}

	return nil
}
