package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdventSphere/advent-sphere/internal/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Get(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	err := s.db.QueryRow(ctx,
		`SELECT id, created_at, name FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.CreatedAt, &u.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// Create registers a user under a client-supplied id. Re-registering an
// existing id just refreshes the display name; the client keeps its id in
// local storage and may re-post it on every visit.
func (s *UserService) Create(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	var u user.User
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, created_at, name
	`, req.ID, req.Name).Scan(&u.ID, &u.CreatedAt, &u.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}
