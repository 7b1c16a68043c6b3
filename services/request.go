package services

import (
	"errors"
	"strconv"
	"strings"

	"team-pairing-system/pairing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// bindJSON parses and validates the request body into dst. On failure it has
// already written the 400 response and the caller should return its error.
func bindJSON(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := validate.Struct(dst); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}
	return true, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := strings.ToLower(fe.Field()) + " failed '" + fe.Tag() + "'"
		if fe.Param() != "" {
			msg += " (" + fe.Param() + ")"
		}
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}

// intParam reads a positive integer route parameter.
func intParam(c *fiber.Ctx, name string) (int, bool) {
	v, err := strconv.Atoi(c.Params(name))
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func invalidParam(c *fiber.Ctx, name string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid " + name})
}

// engineError maps a board precondition failure to its HTTP response.
func engineError(c *fiber.Ctx, err error) error {
	var ce *confirmError
	if errors.As(err, &ce) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":            err.Error(),
			"confirm_required": true,
			"would_clear":      ce.wouldClear,
		})
	}
	status := fiber.StatusBadRequest
	if errors.Is(err, pairing.ErrLayoutTaken) || errors.Is(err, pairing.ErrConfirmationRequired) {
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
