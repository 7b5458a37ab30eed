package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"citizenpress/internal/models"
)

type otpRepository struct {
	db *sqlx.DB
}

func NewOTPRepository(db *sqlx.DB) OTPRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Create(ctx context.Context, code *models.OneTimeCode) error {
	if code.OTPID == "" {
		code.OTPID = uuid.New().String()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO otps (otp_id, email, code, expires_at, is_used, created_at)
		VALUES (:otp_id, :email, :code, :expires_at, :is_used, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, code); err != nil {
		return wrapError("create otp", err)
	}

	return nil
}

// FindValid returns the newest unused, unexpired code matching email and code.
func (r *otpRepository) FindValid(ctx context.Context, email, code string, now time.Time) (*models.OneTimeCode, error) {
	query := `
		SELECT otp_id, email, code, expires_at, is_used, created_at
		FROM otps
		WHERE email = $1 AND code = $2 AND is_used = FALSE AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	var otp models.OneTimeCode
	if err := r.db.GetContext(ctx, &otp, query, email, code, now); err != nil {
		return nil, wrapError("find otp", err)
	}

	return &otp, nil
}

// MarkUsed consumes the code. A code already consumed reports ErrNotFound.
func (r *otpRepository) MarkUsed(ctx context.Context, otpID string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE otps SET is_used = TRUE WHERE otp_id = $1 AND is_used = FALSE`, otpID)
	if err != nil {
		return wrapError("mark otp used", err)
	}

	return expectAffected("mark otp used", result)
}

func (r *otpRepository) DeleteUsed(ctx context.Context, email string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE email = $1 AND is_used = TRUE`, email)
	if err != nil {
		return 0, wrapError("delete used otps", err)
	}

	return result.RowsAffected()
}

func (r *otpRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, wrapError("delete expired otps", err)
	}

	return result.RowsAffected()
}
