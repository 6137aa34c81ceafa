package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/FoodStore/internal/domain"
	"github.com/utafrali/FoodStore/pkg/database"
	apperrors "github.com/utafrali/FoodStore/pkg/errors"
)

// MsgUserExists is the message returned when an email is already registered.
const MsgUserExists = "User already exists"

const userColumns = `id, name, email, password_hash, created_at, updated_at`

// UserRepository stores customer accounts. Emails are unique regardless of
// case; see idx_users_email.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts u. A second account for the same email is a Conflict.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "users.insert", query)
	_, err := r.db.Exec(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	end(err)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return apperrors.Conflict(MsgUserExists)
	default:
		return fmt.Errorf("insert user: %w", err)
	}
}

// GetByID returns the user with id, or ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "users.get", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail looks an account up case-insensitively, or returns ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "users.get_by_email", `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *UserRepository) findOne(ctx context.Context, op, query string, arg string) (*domain.User, error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, op, query)

	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("query user: %w", err)
	}
	u, err := pgx.CollectOneRow(rows, rowToUser)
	if errors.Is(err, pgx.ErrNoRows) {
		end(nil)
		return nil, apperrors.ErrNotFound
	}
	end(err)
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func rowToUser(row pgx.CollectableRow) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}
