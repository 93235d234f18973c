package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
	"github.com/noah-isme/teamsp-admin-api/pkg/database"
)

const userColumns = "user_id, username, password, first_name, last_name, email, role, status, create_date"

// UserRepository provides read access to accounts plus account bootstrap.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user regardless of role or status.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.get(ctx, "find user by id", fmt.Sprintf("SELECT %s FROM users WHERE user_id = $1 LIMIT 1", userColumns), id)
}

// FindByUsername returns a user by login name.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.get(ctx, "find user by username", fmt.Sprintf("SELECT %s FROM users WHERE username = $1 LIMIT 1", userColumns), username)
}

// FindValidByRole returns the user only when it has the role and a valid status.
func (r *UserRepository) FindValidByRole(ctx context.Context, id int64, role models.Role) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE user_id = $1 AND role = $2 AND status = $3 LIMIT 1", userColumns)
	return r.get(ctx, "find user by role", query, id, role, models.StatusValid)
}

// ListValidByIDs batch-loads valid users by id. Invalid users are left out.
func (r *UserRepository) ListValidByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	query := fmt.Sprintf("SELECT %s FROM users WHERE user_id = ANY($1) AND status = $2", userColumns)
	if err := r.db.SelectContext(ctx, &users, query, pq.Array(ids), models.StatusValid); err != nil {
		return nil, fmt.Errorf("list users by ids: %w", err)
	}
	return users, nil
}

// Create inserts a new account and stores the assigned id on it.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const query = `INSERT INTO users (username, password, first_name, last_name, email, role, status, create_date) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING user_id`
	err := r.db.QueryRowxContext(ctx, query, user.Username, user.Password, user.FirstName, user.LastName, user.Email, user.Role, user.Status, user.CreateDate).
		Scan(&user.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("create user: %w", ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) get(ctx context.Context, op, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}
