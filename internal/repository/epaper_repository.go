package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"citizenpress/internal/models"
)

const epaperColumns = `epaper_id, issue_date, pdf_url, pdf_key, thumbnail_url, thumbnail_key,
	file_name, file_size, original_name, mime_type, is_active, deleted_at, created_at, updated_at`

type epaperRepository struct {
	db *sqlx.DB
}

func NewEPaperRepository(db *sqlx.DB) EPaperRepository {
	return &epaperRepository{db: db}
}

// Create stores a new issue. The issue date is bound as a civil date so the
// session time zone never shifts it.
func (r *epaperRepository) Create(ctx context.Context, e *models.EPaper) error {
	if e.EPaperID == "" {
		e.EPaperID = uuid.New().String()
	}

	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now

	query := `
		INSERT INTO epapers
		(epaper_id, issue_date, pdf_url, pdf_key, thumbnail_url, thumbnail_key,
		 file_name, file_size, original_name, mime_type, is_active, deleted_at, created_at, updated_at)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		e.EPaperID, dateArg(e.IssueDate), e.PDFURL, e.PDFKey, e.ThumbnailURL, e.ThumbnailKey,
		e.FileName, e.FileSize, e.OriginalName, e.MimeType, e.IsActive, e.DeletedAt, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return wrapError("create epaper", err)
	}

	return nil
}

func (r *epaperRepository) GetByID(ctx context.Context, epaperID string) (*models.EPaper, error) {
	var e models.EPaper
	if err := r.db.GetContext(ctx, &e, `SELECT `+epaperColumns+` FROM epapers WHERE epaper_id = $1`, epaperID); err != nil {
		return nil, wrapError("get epaper", err)
	}

	return &e, nil
}

func (r *epaperRepository) GetActiveByDate(ctx context.Context, date time.Time) (*models.EPaper, error) {
	query := `SELECT ` + epaperColumns + ` FROM epapers WHERE issue_date = $1::date AND is_active = TRUE`

	var e models.EPaper
	if err := r.db.GetContext(ctx, &e, query, dateArg(date)); err != nil {
		return nil, wrapError("get epaper by date", err)
	}

	return &e, nil
}

// ActiveDateTaken reports whether an active issue other than excludeID holds date.
func (r *epaperRepository) ActiveDateTaken(ctx context.Context, date time.Time, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM epapers
			WHERE issue_date = $1::date AND is_active = TRUE AND epaper_id::text <> $2
		)
	`

	var taken bool
	if err := r.db.GetContext(ctx, &taken, query, dateArg(date), excludeID); err != nil {
		return false, wrapError("check epaper date", err)
	}

	return taken, nil
}

func (r *epaperRepository) ListActive(ctx context.Context, limit, offset int) ([]models.EPaper, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM epapers WHERE is_active = TRUE`); err != nil {
		return nil, 0, wrapError("count epapers", err)
	}

	query := `SELECT ` + epaperColumns + ` FROM epapers WHERE is_active = TRUE ORDER BY issue_date DESC LIMIT $1 OFFSET $2`

	epapers := []models.EPaper{}
	if err := r.db.SelectContext(ctx, &epapers, query, limit, offset); err != nil {
		return nil, 0, wrapError("list epapers", err)
	}

	return epapers, total, nil
}

func (r *epaperRepository) Latest(ctx context.Context) (*models.EPaper, error) {
	query := `SELECT ` + epaperColumns + ` FROM epapers WHERE is_active = TRUE ORDER BY issue_date DESC LIMIT 1`

	var e models.EPaper
	if err := r.db.GetContext(ctx, &e, query); err != nil {
		return nil, wrapError("latest epaper", err)
	}

	return &e, nil
}

func (r *epaperRepository) Update(ctx context.Context, e *models.EPaper) error {
	e.UpdatedAt = time.Now()

	query := `
		UPDATE epapers SET
			issue_date = $1::date,
			pdf_url = $2,
			pdf_key = $3,
			thumbnail_url = $4,
			thumbnail_key = $5,
			file_name = $6,
			file_size = $7,
			original_name = $8,
			mime_type = $9,
			updated_at = $10
		WHERE epaper_id = $11
	`

	result, err := r.db.ExecContext(ctx, query,
		dateArg(e.IssueDate), e.PDFURL, e.PDFKey, e.ThumbnailURL, e.ThumbnailKey,
		e.FileName, e.FileSize, e.OriginalName, e.MimeType, e.UpdatedAt, e.EPaperID,
	)
	if err != nil {
		return wrapError("update epaper", err)
	}

	return expectAffected("update epaper", result)
}

func (r *epaperRepository) SetActive(ctx context.Context, epaperID string, active bool, deletedAt *time.Time) error {
	query := `UPDATE epapers SET is_active = $1, deleted_at = $2, updated_at = $3 WHERE epaper_id = $4`

	result, err := r.db.ExecContext(ctx, query, active, deletedAt, time.Now(), epaperID)
	if err != nil {
		return wrapError("set epaper active", err)
	}

	return expectAffected("set epaper active", result)
}

func (r *epaperRepository) Delete(ctx context.Context, epaperID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM epapers WHERE epaper_id = $1`, epaperID)
	if err != nil {
		return wrapError("delete epaper", err)
	}

	return expectAffected("delete epaper", result)
}
