package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"citizenpress/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByMobile(ctx context.Context, mobile string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	Delete(ctx context.Context, userID string) error
}

type OTPRepository interface {
	Create(ctx context.Context, code *models.OneTimeCode) error
	FindValid(ctx context.Context, email, code string, now time.Time) (*models.OneTimeCode, error)
	MarkUsed(ctx context.Context, otpID string) error
	DeleteUsed(ctx context.Context, email string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	GetView(ctx context.Context, postID string) (*models.PostView, error)
	List(ctx context.Context, filter models.PostFilter) ([]models.PostView, int, error)
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
	ListByUser(ctx context.Context, userID string) ([]models.PostView, error)
	LatestApproved(ctx context.Context, limit int) ([]models.PostView, error)
	Update(ctx context.Context, post *models.Post) error
	Transition(ctx context.Context, postID string, from, to models.PostStatus, approvedBy *string, approvedAt *time.Time) error
	Delete(ctx context.Context, postID string) error
	ToggleLike(ctx context.Context, postID, userID string) (likes int, liked bool, err error)
}

type EPaperRepository interface {
	Create(ctx context.Context, epaper *models.EPaper) error
	GetByID(ctx context.Context, epaperID string) (*models.EPaper, error)
	GetActiveByDate(ctx context.Context, date time.Time) (*models.EPaper, error)
	ActiveDateTaken(ctx context.Context, date time.Time, excludeID string) (bool, error)
	ListActive(ctx context.Context, limit, offset int) ([]models.EPaper, int, error)
	Latest(ctx context.Context) (*models.EPaper, error)
	Update(ctx context.Context, epaper *models.EPaper) error
	SetActive(ctx context.Context, epaperID string, active bool, deletedAt *time.Time) error
	Delete(ctx context.Context, epaperID string) error
}

type SchemaRepository interface {
	MissingTables(ctx context.Context, tables []string) ([]string, error)
}

type Repository struct {
	User   UserRepository
	OTP    OTPRepository
	Post   PostRepository
	EPaper EPaperRepository
	Schema SchemaRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User:   NewUserRepository(db),
		OTP:    NewOTPRepository(db),
		Post:   NewPostRepository(db),
		EPaper: NewEPaperRepository(db),
		Schema: NewSchemaRepository(db),
	}
}

// wrapError classifies driver errors into ErrNotFound and ErrDuplicate.
// A malformed uuid key (22P02) cannot name an existing row, so it is reported as ErrNotFound.
func wrapError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w (%s)", op, ErrDuplicate, pqErr.Constraint)
		case "23503":
			return fmt.Errorf("%s: %w (%s)", op, ErrNotFound, pqErr.Constraint)
		case "22P02":
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

func expectAffected(op string, result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	return nil
}

// conditions accumulates WHERE clauses with Postgres positional arguments.
// A clause references its own argument with %[1]d.
type conditions struct {
	clauses []string
	args    []interface{}
}

func (c *conditions) add(clause string, arg interface{}) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, fmt.Sprintf(clause, len(c.args)))
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the suffix and the full argument list.
func (c *conditions) page(limit, offset int) (string, []interface{}) {
	args := append(append([]interface{}{}, c.args...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(c.args)+1, len(c.args)+2), args
}

func likePattern(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(s) + "%"
}

func dateArg(t time.Time) string {
	return t.Format("2006-01-02")
}
