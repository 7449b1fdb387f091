package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kyat/internal/database"
	"github.com/MrJamesThe3rd/kyat/internal/user"
)

type Store struct {
	db      *sql.DB
	dialect database.Dialect
}

func New(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// CreateUser inserts the user unless the username is taken. The conflict is
// resolved by the database in the same statement, so two concurrent signups
// for one name cannot both succeed.
func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating id: %w", err)
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	query := s.dialect.Rebind(`
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (username) DO NOTHING
		RETURNING id
	`)

	err = s.db.QueryRowContext(ctx, query, id, u.Username, u.PasswordHash, u.CreatedAt.UTC()).Scan(&u.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.ErrDuplicateUsername
		}

		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	query := s.dialect.Rebind(`
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = ?
	`)

	var u user.User

	err := s.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	u.CreatedAt = u.CreatedAt.UTC()

	return &u, nil
}
