package middleware

import (
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Producdevity/EmuReady-sub005/internal/model"
)

// MaxRequestBodyBytes is the server-wide body limit. Content under it that is
// still longer than the analysis cap is truncated by the spam service.
const MaxRequestBodyBytes = 1 << 20

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateUUID checks that id is a UUID and returns it in canonical lower-case form.
// An empty id is allowed only when the field is optional.
func ValidateUUID(field, id string, required bool) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		if required {
			return "", field + " is required"
		}
		return "", ""
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", field + " must be a valid UUID"
	}
	return parsed.String(), ""
}

// ValidateEntityType checks that t names a content type the spam checker understands.
func ValidateEntityType(t string) (model.EntityType, string) {
	et := model.EntityType(strings.ToLower(strings.TrimSpace(t)))
	if et == "" {
		return "", "entityType is required"
	}
	if !et.Valid() {
		return "", "entityType must be one of: listing, comment"
	}
	return et, ""
}

// ValidateContent checks that content is non-blank valid UTF-8. Length is not
// checked here.
func ValidateContent(content string) (string, string) {
	if strings.TrimSpace(content) == "" {
		return "", "content is required"
	}
	if !utf8.ValidString(content) {
		return "", "content must be valid UTF-8"
	}
	return content, ""
}
