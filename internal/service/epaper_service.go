package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"citizenpress/internal/config"
	"citizenpress/internal/models"
	"citizenpress/internal/repository"
	"citizenpress/internal/storage"
	"citizenpress/internal/utils"
)

const defaultArchivePageSize = 12

// EPaperView is an issue with its display dates.
type EPaperView struct {
	models.EPaper
	FormattedDate string `json:"formattedDate"`
	SimpleDate    string `json:"simpleDate"`
}

type ArchivePagination struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	TotalItems      int  `json:"totalItems"`
	ItemsPerPage    int  `json:"itemsPerPage"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

type EPaperPage struct {
	EPapers    []EPaperView      `json:"epapers"`
	Pagination ArchivePagination `json:"pagination"`
}

type EPaperService interface {
	Publish(ctx context.Context, date string, file *storage.Upload) (*EPaperView, error)
	ListActive(ctx context.Context, page utils.Page) (*EPaperPage, error)
	GetByDate(ctx context.Context, date string) (*EPaperView, error)
	GetByID(ctx context.Context, epaperID string) (*EPaperView, error)
	Latest(ctx context.Context) (*EPaperView, error)
	Replace(ctx context.Context, epaperID string, date *string, file *storage.Upload) (*EPaperView, error)
	SoftDelete(ctx context.Context, epaperID string) error
	Restore(ctx context.Context, epaperID string) (*EPaperView, error)
	HardDelete(ctx context.Context, epaperID string) error
}

type epaperService struct {
	repo      repository.EPaperRepository
	storage   storage.Storage
	loc       *time.Location
	formatter *utils.DateFormatter
	log       *zap.Logger
	now       func() time.Time
}

func NewEPaperService(repo repository.EPaperRepository, store storage.Storage, cfg *config.Config, log *zap.Logger) EPaperService {
	return &epaperService{
		repo:      repo,
		storage:   store,
		loc:       cfg.ArchiveLocation(),
		formatter: utils.NewDateFormatter(cfg.Archive.DateLocale),
		log:       log,
		now:       time.Now,
	}
}

func (s *epaperService) present(e *models.EPaper) *EPaperView {
	return &EPaperView{
		EPaper:        *e,
		FormattedDate: s.formatter.Long(e.IssueDate),
		SimpleDate:    utils.SimpleDate(e.IssueDate),
	}
}

func (s *epaperService) parseDate(value string) (time.Time, error) {
	date, err := utils.ParseIssueDate(value, s.loc)
	if err != nil {
		return time.Time{}, wrapError(ErrBadRequest, "date must be YYYY-MM-DD or RFC3339", err)
	}
	return date, nil
}

func requirePDF(file *storage.Upload) error {
	if file == nil {
		return newError(ErrBadRequest, "a PDF file is required")
	}
	if !file.IsPDF() {
		return newError(ErrBadRequest, "only PDF files are accepted")
	}
	return nil
}

func errDateTaken() error {
	return newError(ErrConflict, "an e-paper already exists for this date")
}

func (s *epaperService) ensureDateFree(ctx context.Context, date time.Time, excludeID string) error {
	taken, err := s.repo.ActiveDateTaken(ctx, date, excludeID)
	if err != nil {
		return fmt.Errorf("check issue date: %w", err)
	}
	if taken {
		return errDateTaken()
	}
	return nil
}

// attach uploads the document and points e at it. The preview reference is the document itself.
func (s *epaperService) attach(ctx context.Context, e *models.EPaper, file *storage.Upload) error {
	obj, err := s.storage.Upload(ctx, storage.FolderEPapers, file)
	if err != nil {
		return wrapError(ErrStorage, "failed to store e-paper", err)
	}

	e.PDFURL = obj.URL
	e.PDFKey = obj.Key
	e.ThumbnailURL = obj.URL
	e.ThumbnailKey = obj.Key
	e.FileName = obj.Key
	e.FileSize = file.Size
	e.OriginalName = file.FileName
	e.MimeType = file.ContentType

	return nil
}

func (s *epaperService) release(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			s.log.Warn("failed to release e-paper blob", zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *epaperService) Publish(ctx context.Context, date string, file *storage.Upload) (*EPaperView, error) {
	issueDate, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}

	if err := requirePDF(file); err != nil {
		return nil, err
	}

	if err := s.ensureDateFree(ctx, issueDate, ""); err != nil {
		return nil, err
	}

	epaper := &models.EPaper{IssueDate: issueDate, IsActive: true}
	if err := s.attach(ctx, epaper, file); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, epaper); err != nil {
		s.release(ctx, epaper.PDFKey)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errDateTaken()
		}
		return nil, fmt.Errorf("publish epaper: %w", err)
	}

	s.log.Info("e-paper published", zap.String("epaper_id", epaper.EPaperID), zap.String("date", utils.SimpleDate(issueDate)))
	return s.present(epaper), nil
}

func (s *epaperService) ListActive(ctx context.Context, page utils.Page) (*EPaperPage, error) {
	page = withDefaultLimit(page, defaultArchivePageSize)

	epapers, total, err := s.repo.ListActive(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list epapers: %w", err)
	}

	views := make([]EPaperView, 0, len(epapers))
	for i := range epapers {
		views = append(views, *s.present(&epapers[i]))
	}

	totalPages := utils.TotalPages(total, page.Limit)
	return &EPaperPage{
		EPapers: views,
		Pagination: ArchivePagination{
			CurrentPage:     page.Number,
			TotalPages:      totalPages,
			TotalItems:      total,
			ItemsPerPage:    page.Limit,
			HasNextPage:     page.Number < totalPages,
			HasPreviousPage: page.Number > 1,
		},
	}, nil
}

func (s *epaperService) GetByDate(ctx context.Context, date string) (*EPaperView, error) {
	issueDate, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}

	epaper, err := s.repo.GetActiveByDate(ctx, issueDate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "no e-paper for this date")
		}
		return nil, fmt.Errorf("get epaper by date: %w", err)
	}

	return s.present(epaper), nil
}

func (s *epaperService) load(ctx context.Context, epaperID string) (*models.EPaper, error) {
	epaper, err := s.repo.GetByID(ctx, epaperID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "e-paper not found")
		}
		return nil, fmt.Errorf("load epaper: %w", err)
	}
	return epaper, nil
}

func (s *epaperService) GetByID(ctx context.Context, epaperID string) (*EPaperView, error) {
	epaper, err := s.load(ctx, epaperID)
	if err != nil {
		return nil, err
	}

	if !epaper.IsActive {
		return nil, newError(ErrNotFound, "e-paper not found")
	}

	return s.present(epaper), nil
}

func (s *epaperService) Latest(ctx context.Context) (*EPaperView, error) {
	epaper, err := s.repo.Latest(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "no e-paper published yet")
		}
		return nil, fmt.Errorf("latest epaper: %w", err)
	}

	return s.present(epaper), nil
}

func (s *epaperService) Replace(ctx context.Context, epaperID string, date *string, file *storage.Upload) (*EPaperView, error) {
	if date == nil && file == nil {
		return nil, newError(ErrBadRequest, "provide a new date or a new PDF file")
	}

	epaper, err := s.load(ctx, epaperID)
	if err != nil {
		return nil, err
	}

	if date != nil {
		issueDate, err := s.parseDate(*date)
		if err != nil {
			return nil, err
		}
		if err := s.ensureDateFree(ctx, issueDate, epaper.EPaperID); err != nil {
			return nil, err
		}
		epaper.IssueDate = issueDate
	}

	oldPDF, oldThumb := epaper.PDFKey, epaper.ThumbnailKey
	if file != nil {
		if err := requirePDF(file); err != nil {
			return nil, err
		}
		if err := s.attach(ctx, epaper, file); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, epaper); err != nil {
		if file != nil {
			s.release(ctx, epaper.PDFKey)
		}
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, errDateTaken()
		case errors.Is(err, repository.ErrNotFound):
			return nil, newError(ErrNotFound, "e-paper not found")
		}
		return nil, fmt.Errorf("replace epaper: %w", err)
	}

	if file != nil {
		if oldThumb == oldPDF {
			oldThumb = ""
		}
		s.release(ctx, oldPDF, oldThumb)
	}

	return s.present(epaper), nil
}

func (s *epaperService) SoftDelete(ctx context.Context, epaperID string) error {
	epaper, err := s.load(ctx, epaperID)
	if err != nil {
		return err
	}

	if !epaper.IsActive {
		return newError(ErrConflict, "e-paper is already deleted")
	}

	now := s.now()
	if err := s.repo.SetActive(ctx, epaperID, false, &now); err != nil {
		return fmt.Errorf("soft delete epaper: %w", err)
	}

	s.log.Info("e-paper soft deleted", zap.String("epaper_id", epaperID))
	return nil
}

func (s *epaperService) Restore(ctx context.Context, epaperID string) (*EPaperView, error) {
	epaper, err := s.load(ctx, epaperID)
	if err != nil {
		return nil, err
	}

	if epaper.IsActive {
		return nil, newError(ErrConflict, "e-paper is not deleted")
	}

	if err := s.ensureDateFree(ctx, epaper.IssueDate, epaper.EPaperID); err != nil {
		return nil, err
	}

	if err := s.repo.SetActive(ctx, epaperID, true, nil); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errDateTaken()
		}
		return nil, fmt.Errorf("restore epaper: %w", err)
	}

	epaper.IsActive = true
	epaper.DeletedAt = nil
	return s.present(epaper), nil
}

// HardDelete removes the blobs first. A blob failure aborts and keeps the record.
func (s *epaperService) HardDelete(ctx context.Context, epaperID string) error {
	epaper, err := s.load(ctx, epaperID)
	if err != nil {
		return err
	}

	keys := []string{epaper.PDFKey}
	if epaper.ThumbnailKey != "" && epaper.ThumbnailKey != epaper.PDFKey {
		keys = append(keys, epaper.ThumbnailKey)
	}

	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			return wrapError(ErrStorage, "failed to delete e-paper file", err)
		}
	}

	if err := s.repo.Delete(ctx, epaperID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "e-paper not found")
		}
		return fmt.Errorf("hard delete epaper: %w", err)
	}

	s.log.Info("e-paper permanently deleted", zap.String("epaper_id", epaperID))
	return nil
}
