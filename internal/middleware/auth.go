package middleware

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"

	"flock-server/internal/domain"
	"flock-server/internal/service/agent"
)

const AgentContextKey = "agent"

// BasicAuth authenticates requests with the username:token credentials
// issued at registration. Failures get a bare 401, no body.
func BasicAuth(agentSvc agent.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, token, ok := parseBasicAuth(c.Get("Authorization"))
		if !ok {
			return c.SendStatus(fiber.StatusUnauthorized)
		}

		a, err := agentSvc.Authenticate(c.Context(), username, token)
		if err != nil || a == nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}

		c.Locals(AgentContextKey, a)
		return c.Next()
	}
}

// GetCurrentAgent returns the authenticated agent set by BasicAuth.
func GetCurrentAgent(c *fiber.Ctx) *domain.Agent {
	a, ok := c.Locals(AgentContextKey).(*domain.Agent)
	if !ok {
		return nil
	}
	return a
}

func parseBasicAuth(header string) (username, token string, ok bool) {
	const prefix = "Basic "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}

	username, token, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", "", false
	}
	return username, token, true
}
