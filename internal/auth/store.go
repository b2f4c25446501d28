package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errNoCredentials = errors.New("no credentials for email")

type credentialRow struct {
	UserID       string
	IsAdmin      bool
	PasswordHash string
}

// credentialsStore persists login credentials keyed by account id,
// separate from the ledger so the identity collaborator owns its table.
type credentialsStore interface {
	emailExists(ctx context.Context, email string) (bool, error)
	insert(ctx context.Context, userID, passwordHash string) error
	lookup(ctx context.Context, email string) (credentialRow, error)
	adminExists(ctx context.Context) (bool, error)
}

type pgCredentials struct {
	pool *pgxpool.Pool
}

func (s *pgCredentials) emailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, "select exists(select 1 from users where email = $1)", email).Scan(&exists)
	return exists, err
}

func (s *pgCredentials) insert(ctx context.Context, userID, passwordHash string) error {
	_, err := s.pool.Exec(ctx,
		"insert into user_credentials (user_id, password_hash) values ($1, $2)", userID, passwordHash)
	return err
}

func (s *pgCredentials) lookup(ctx context.Context, email string) (credentialRow, error) {
	var row credentialRow
	err := s.pool.QueryRow(ctx,
		"select u.id, u.is_admin, c.password_hash from users u join user_credentials c on c.user_id = u.id where u.email = $1",
		email).Scan(&row.UserID, &row.IsAdmin, &row.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return credentialRow{}, errNoCredentials
	}
	if err != nil {
		return credentialRow{}, err
	}
	return row, nil
}

func (s *pgCredentials) adminExists(ctx context.Context) (bool, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "select count(*) from users where is_admin = true").Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
