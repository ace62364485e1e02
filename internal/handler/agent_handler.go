package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"flock-server/internal/domain"
	"flock-server/internal/middleware"
	"flock-server/internal/service/agent"
)

type AgentHandler struct {
	agentSvc agent.Service
}

func NewAgentHandler(agentSvc agent.Service) *AgentHandler {
	return &AgentHandler{agentSvc: agentSvc}
}

func (h *AgentHandler) Register(c *fiber.Ctx) error {
	var input domain.RegisterAgentInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.APIError(c, "You must provide a username")
	}

	a, err := h.agentSvc.Register(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, agent.ErrMissingUsername):
			return middleware.APIError(c, "You must provide a username")
		case errors.Is(err, agent.ErrInvalidUsername):
			return middleware.APIError(c, "Usernames must only contain letters, numbers, '-', or '_'")
		case errors.Is(err, agent.ErrUsernameTaken):
			return middleware.APIError(c, fmt.Sprintf("Your computer (%s) is already registered with this server", input.Username))
		}
		return err
	}

	return middleware.APISuccess(c, fiber.Map{"auth_token": a.Token})
}

// Ping lets an agent verify its credentials are configured correctly.
func (h *AgentHandler) Ping(c *fiber.Ctx) error {
	a := middleware.GetCurrentAgent(c)
	if a != nil {
		_ = h.agentSvc.CheckIn(c.Context(), a.Username, nil)
	}
	return middleware.APISuccess(c, nil)
}
