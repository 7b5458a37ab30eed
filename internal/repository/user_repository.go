package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"citizenpress/internal/models"
)

const userColumns = `user_id, name, email, mobile, password_hash, role, is_verified, created_at, updated_at`

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (user_id, name, email, mobile, password_hash, role, is_verified, created_at, updated_at)
		VALUES (:user_id, :name, :email, :mobile, :password_hash, :role, :is_verified, :created_at, :updated_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return wrapError("create user", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return r.getOne(ctx, "get user by id", `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "get user by email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) GetByMobile(ctx context.Context, mobile string) (*models.User, error) {
	return r.getOne(ctx, "get user by mobile", `SELECT `+userColumns+` FROM users WHERE mobile = $1`, mobile)
}

func (r *userRepository) getOne(ctx context.Context, op, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		return nil, wrapError(op, err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var cond conditions
	if filter.Search != "" {
		cond.add(`(name ILIKE $%[1]d OR email ILIKE $%[1]d OR mobile ILIKE $%[1]d)`, likePattern(filter.Search))
	}
	if filter.Role != "" {
		cond.add(`role = $%d`, filter.Role)
	}
	if filter.IsVerified != nil {
		cond.add(`is_verified = $%d`, *filter.IsVerified)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`+cond.where(), cond.args...); err != nil {
		return nil, 0, wrapError("count users", err)
	}

	suffix, args := cond.page(filter.Limit, filter.Offset)
	query := `SELECT ` + userColumns + ` FROM users` + cond.where() + ` ORDER BY created_at DESC` + suffix

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, wrapError("list users", err)
	}

	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users
		SET name = :name, email = :email, mobile = :mobile, role = :role,
			is_verified = :is_verified, updated_at = :updated_at
		WHERE user_id = :user_id
	`

	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return wrapError("update user", err)
	}

	return expectAffected("update user", result)
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE user_id = $3`

	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now(), userID)
	if err != nil {
		return wrapError("update password", err)
	}

	return expectAffected("update password", result)
}

func (r *userRepository) Delete(ctx context.Context, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return wrapError("delete user", err)
	}

	return expectAffected("delete user", result)
}
