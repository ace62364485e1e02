package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"flock-server/internal/domain"
)

type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	GetByUsername(ctx context.Context, username string) (*domain.Agent, error)
	GetByCredentials(ctx context.Context, username, token string) (*domain.Agent, error)
	List(ctx context.Context) ([]domain.Agent, error)
	UpdateName(ctx context.Context, username, name string) error
	UpdateCheckIn(ctx context.Context, username string, osVersion *string, seenAt time.Time) error
	Delete(ctx context.Context, username string) error

	// Refresh forces visibility of prior writes for the next read. The
	// record-store contract requires it between a write and a read that
	// must observe that write; Postgres reads observe committed writes
	// immediately, so this implementation has nothing to flush.
	Refresh(ctx context.Context) error
}

type agentRepository struct {
	db *sqlx.DB
}

func NewAgentRepository(db *sqlx.DB) AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	query := `
		INSERT INTO agents (username, name, token)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		agent.Username, agent.Name, agent.Token,
	).Scan(&agent.CreatedAt)
}

func (r *agentRepository) GetByUsername(ctx context.Context, username string) (*domain.Agent, error) {
	var agent domain.Agent
	query := `SELECT * FROM agents WHERE username = $1`

	err := r.db.GetContext(ctx, &agent, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) GetByCredentials(ctx context.Context, username, token string) (*domain.Agent, error) {
	var agent domain.Agent
	query := `SELECT * FROM agents WHERE username = $1 AND token = $2`

	err := r.db.GetContext(ctx, &agent, query, username, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) List(ctx context.Context) ([]domain.Agent, error) {
	var agents []domain.Agent
	query := `SELECT * FROM agents ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &agents, query)
	return agents, err
}

func (r *agentRepository) UpdateName(ctx context.Context, username, name string) error {
	query := `UPDATE agents SET name = $2 WHERE username = $1`
	_, err := r.db.ExecContext(ctx, query, username, name)
	return err
}

func (r *agentRepository) UpdateCheckIn(ctx context.Context, username string, osVersion *string, seenAt time.Time) error {
	if osVersion != nil {
		query := `UPDATE agents SET last_seen_at = $2, os_version = $3 WHERE username = $1`
		_, err := r.db.ExecContext(ctx, query, username, seenAt, *osVersion)
		return err
	}

	query := `UPDATE agents SET last_seen_at = $2 WHERE username = $1`
	_, err := r.db.ExecContext(ctx, query, username, seenAt)
	return err
}

func (r *agentRepository) Delete(ctx context.Context, username string) error {
	query := `DELETE FROM agents WHERE username = $1`
	_, err := r.db.ExecContext(ctx, query, username)
	return err
}

func (r *agentRepository) Refresh(ctx context.Context) error {
	return nil
}
