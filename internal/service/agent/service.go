package agent

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"time"

	"flock-server/internal/domain"
	"flock-server/internal/repository"
	"flock-server/internal/service/notify"
)

var (
	ErrInvalidUsername = errors.New("usernames must only contain letters, numbers, '-', or '_'")
	ErrMissingUsername = errors.New("you must provide a username")
	ErrUsernameTaken   = errors.New("username already registered")
	ErrAgentNotFound   = errors.New("agent not found")
)

type Service interface {
	Register(ctx context.Context, input domain.RegisterAgentInput) (*domain.Agent, error)
	Authenticate(ctx context.Context, username, token string) (*domain.Agent, error)
	GetByUsername(ctx context.Context, username string) (*domain.Agent, error)
	List(ctx context.Context) ([]domain.Agent, error)
	Rename(ctx context.Context, username, name string) error
	Delete(ctx context.Context, username string) error
	CheckIn(ctx context.Context, username string, osVersion *string) error
}

type service struct {
	agentRepo repository.AgentRepository
	notifySvc notify.Service
}

func NewService(agentRepo repository.AgentRepository, notifySvc notify.Service) Service {
	return &service{
		agentRepo: agentRepo,
		notifySvc: notifySvc,
	}
}

// Register creates an identity with a fresh random token. A duplicate
// username fails with ErrUsernameTaken, and that attempt is itself a
// notable event: admins may need to delete the old identity so the agent
// can finish re-registering.
func (s *service) Register(ctx context.Context, input domain.RegisterAgentInput) (*domain.Agent, error) {
	if input.Username == "" {
		return nil, ErrMissingUsername
	}
	if !domain.ValidUsername(input.Username) {
		return nil, ErrInvalidUsername
	}

	existing, err := s.agentRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.enqueue(ctx, "user_already_exists", map[string]string{"username": input.Username})
		return nil, ErrUsernameTaken
	}

	tokenBytes := make([]byte, 16)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, err
	}

	a := &domain.Agent{
		Username: input.Username,
		Name:     domain.SanitizeName(input.Name),
		Token:    hex.EncodeToString(tokenBytes),
	}

	if err := s.agentRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	// The agent pings right after registering; make the record visible.
	if err := s.agentRepo.Refresh(ctx); err != nil {
		return nil, err
	}

	s.enqueue(ctx, "user_registered", map[string]string{
		"username": a.Username,
		"name":     a.Name,
	})

	return a, nil
}

// Authenticate matches a username and token exactly against the stored
// record, returning nil without error on a mismatch.
func (s *service) Authenticate(ctx context.Context, username, token string) (*domain.Agent, error) {
	if username == "" || token == "" {
		return nil, nil
	}
	return s.agentRepo.GetByCredentials(ctx, username, token)
}

func (s *service) GetByUsername(ctx context.Context, username string) (*domain.Agent, error) {
	return s.agentRepo.GetByUsername(ctx, username)
}

func (s *service) List(ctx context.Context) ([]domain.Agent, error) {
	return s.agentRepo.List(ctx)
}

func (s *service) Rename(ctx context.Context, username, name string) error {
	existing, err := s.agentRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrAgentNotFound
	}

	if err := s.agentRepo.UpdateName(ctx, username, domain.SanitizeName(name)); err != nil {
		return err
	}
	return s.agentRepo.Refresh(ctx)
}

func (s *service) Delete(ctx context.Context, username string) error {
	existing, err := s.agentRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrAgentNotFound
	}

	if err := s.agentRepo.Delete(ctx, username); err != nil {
		return err
	}
	return s.agentRepo.Refresh(ctx)
}

// CheckIn records that an agent was just heard from, and its OS version
// when the submission carried one.
func (s *service) CheckIn(ctx context.Context, username string, osVersion *string) error {
	return s.agentRepo.UpdateCheckIn(ctx, username, osVersion, time.Now())
}

func (s *service) enqueue(ctx context.Context, notificationID string, details map[string]string) {
	payload, _ := json.Marshal(details)
	if err := s.notifySvc.Enqueue(ctx, notificationID, payload); err != nil {
		log.Printf("agent: enqueue %s failed: %v", notificationID, err)
	}
}
