package handler

import "flock-server/internal/service"

type Handlers struct {
	Agent  *AgentHandler
	Submit *SubmitHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Agent:  NewAgentHandler(services.Agent),
		Submit: NewSubmitHandler(services.Submit),
	}
}
