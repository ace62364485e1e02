package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RequestEcho reproduces the failing request in error responses so admins
// can audit what an agent actually sent. Authorization is redacted.
type RequestEcho struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body,omitempty"`
}

// APISuccess writes the success envelope: error:false plus any payload.
func APISuccess(c *fiber.Ctx, payload fiber.Map) error {
	body := fiber.Map{"error": false}
	for k, v := range payload {
		body[k] = v
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

// APIError writes the failure envelope with the request echo.
func APIError(c *fiber.Ctx, errorMsg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":     true,
		"error_msg": errorMsg,
		"request":   echoRequest(c),
	})
}

// ErrorHandler turns uncaught handler errors into the failure envelope;
// every error surface of the API is a 400 except authentication, which
// the auth middleware answers directly.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return APIError(c, err.Error())
}

func echoRequest(c *fiber.Ctx) RequestEcho {
	headers := make(map[string]string)
	for key, values := range c.GetReqHeaders() {
		if strings.EqualFold(key, fiber.HeaderAuthorization) {
			continue
		}
		headers[key] = strings.Join(values, ", ")
	}

	return RequestEcho{
		Method:  c.Method(),
		Path:    c.Path(),
		Headers: headers,
		Body:    string(c.Body()),
	}
}
