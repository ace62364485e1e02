package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"flock-server/internal/middleware"
	"flock-server/internal/service/submit"
)

type SubmitHandler struct {
	submitSvc submit.Service
}

func NewSubmitHandler(submitSvc submit.Service) *SubmitHandler {
	return &SubmitHandler{submitSvc: submitSvc}
}

func (h *SubmitHandler) Submit(c *fiber.Ctx) error {
	a := middleware.GetCurrentAgent(c)
	if a == nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	processed, err := h.submitSvc.Submit(c.Context(), a, c.Body())
	if err != nil {
		var verr *submit.ValidationError
		if errors.As(err, &verr) {
			return middleware.APIError(c, verr.Error())
		}
		return err
	}

	return middleware.APISuccess(c, fiber.Map{"processed_count": processed})
}

func (h *SubmitHandler) SubmitFlockLogs(c *fiber.Ctx) error {
	a := middleware.GetCurrentAgent(c)
	if a == nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	processed, err := h.submitSvc.SubmitFlockLogs(c.Context(), a, c.Body())
	if err != nil {
		var verr *submit.ValidationError
		if errors.As(err, &verr) {
			return middleware.APIError(c, verr.Error())
		}
		return err
	}

	return middleware.APISuccess(c, fiber.Map{"processed_count": processed})
}
