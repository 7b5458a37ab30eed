package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"citizenpress/internal/models"
	"citizenpress/internal/repository"
	"citizenpress/internal/storage"
	"citizenpress/internal/utils"
)

type epaperFixture struct {
	svc     *epaperService
	epapers *MockEPaperRepository
	store   *MockStorage
	now     time.Time
}

func newEPaperFixture(t *testing.T) *epaperFixture {
	t.Helper()

	f := &epaperFixture{
		epapers: new(MockEPaperRepository),
		store:   new(MockStorage),
		now:     time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewEPaperService(f.epapers, f.store, testConfig(), zap.NewNop()).(*epaperService)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func issueDay(f *epaperFixture, value string) time.Time {
	day, err := utils.ParseIssueDate(value, f.svc.loc)
	if err != nil {
		panic(err)
	}
	return day
}

func pdfUpload() *storage.Upload {
	return &storage.Upload{FileName: "issue.pdf", ContentType: "application/pdf", Size: 2048, Kind: models.KindPDF}
}

func TestEPaperService_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and presents the issue", func(t *testing.T) {
		f := newEPaperFixture(t)
		upload := pdfUpload()
		day := issueDay(f, "2026-10-16")

		f.epapers.On("ActiveDateTaken", ctx, day, "").Return(false, nil)
		f.store.On("Upload", ctx, storage.FolderEPapers, upload).
			Return(&storage.StoredObject{Key: "epaper-files/2026/10/a.pdf", URL: "http://cdn/a.pdf"}, nil)
		f.epapers.On("Create", ctx, mock.AnythingOfType("*models.EPaper")).Return(nil)

		view, err := f.svc.Publish(ctx, "2026-10-16", upload)
		require.NoError(t, err)
		assert.True(t, view.IsActive)
		assert.Equal(t, "http://cdn/a.pdf", view.PDFURL)
		assert.Equal(t, view.PDFURL, view.ThumbnailURL)
		assert.Equal(t, "issue.pdf", view.OriginalName)
		assert.Equal(t, int64(2048), view.FileSize)
		assert.Equal(t, "2026-10-16", view.SimpleDate)
		assert.Equal(t, "16 अक्तूबर 2026", view.FormattedDate)
	})

	t.Run("duplicate active date", func(t *testing.T) {
		f := newEPaperFixture(t)
		f.epapers.On("ActiveDateTaken", ctx, issueDay(f, "2026-10-16"), "").Return(true, nil)

		_, err := f.svc.Publish(ctx, "2026-10-16", pdfUpload())
		assert.ErrorIs(t, err, ErrConflict)
		f.store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("insert race releases blob", func(t *testing.T) {
		f := newEPaperFixture(t)
		upload := pdfUpload()
		f.epapers.On("ActiveDateTaken", ctx, mock.Anything, "").Return(false, nil)
		f.store.On("Upload", ctx, storage.FolderEPapers, upload).Return(&storage.StoredObject{Key: "k", URL: "u"}, nil)
		f.epapers.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate)
		f.store.On("Delete", ctx, "k").Return(nil)

		_, err := f.svc.Publish(ctx, "2026-10-16", upload)
		assert.ErrorIs(t, err, ErrConflict)
		f.store.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		f := newEPaperFixture(t)

		_, err := f.svc.Publish(ctx, "", pdfUpload())
		assert.ErrorIs(t, err, ErrBadRequest)

		_, err = f.svc.Publish(ctx, "16-10-2026", pdfUpload())
		assert.ErrorIs(t, err, ErrBadRequest)

		_, err = f.svc.Publish(ctx, "2026-10-16", nil)
		assert.ErrorIs(t, err, ErrBadRequest)

		_, err = f.svc.Publish(ctx, "2026-10-16", &storage.Upload{FileName: "a.png", Kind: models.KindImage})
		assert.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("rfc3339 instant lands on the archive day", func(t *testing.T) {
		f := newEPaperFixture(t)
		upload := pdfUpload()
		f.epapers.On("ActiveDateTaken", ctx, issueDay(f, "2026-10-16"), "").Return(false, nil)
		f.store.On("Upload", ctx, storage.FolderEPapers, upload).Return(&storage.StoredObject{Key: "k", URL: "u"}, nil)
		f.epapers.On("Create", ctx, mock.Anything).Return(nil)

		view, err := f.svc.Publish(ctx, "2026-10-15T20:00:00Z", upload)
		require.NoError(t, err)
		assert.Equal(t, "2026-10-16", view.SimpleDate)
	})
}

func TestEPaperService_ListActive(t *testing.T) {
	ctx := context.Background()
	f := newEPaperFixture(t)

	day := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	f.epapers.On("ListActive", ctx, 12, 12).Return([]models.EPaper{{EPaperID: "e-13", IssueDate: day, IsActive: true}}, 25, nil)

	page, err := f.svc.ListActive(ctx, utils.Page{Number: 2})
	require.NoError(t, err)
	require.Len(t, page.EPapers, 1)
	assert.Equal(t, "2026-10-16", page.EPapers[0].SimpleDate)
	assert.Equal(t, ArchivePagination{
		CurrentPage:     2,
		TotalPages:      3,
		TotalItems:      25,
		ItemsPerPage:    12,
		HasNextPage:     true,
		HasPreviousPage: true,
	}, page.Pagination)
}

func TestEPaperService_SoftDeleteRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newEPaperFixture(t)

	epaper := &models.EPaper{EPaperID: "e-1", IssueDate: issueDay(f, "2026-10-16"), IsActive: true}
	f.epapers.On("GetByID", ctx, "e-1").Return(epaper, nil)
	f.epapers.On("SetActive", ctx, "e-1", false, mock.MatchedBy(func(at *time.Time) bool {
		return at != nil && at.Equal(f.now)
	})).Run(func(mock.Arguments) {
		epaper.IsActive = false
		at := f.now
		epaper.DeletedAt = &at
	}).Return(nil)

	require.NoError(t, f.svc.SoftDelete(ctx, "e-1"))

	_, err := f.svc.GetByID(ctx, "e-1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, f.svc.SoftDelete(ctx, "e-1"), ErrConflict)

	f.epapers.On("ActiveDateTaken", ctx, epaper.IssueDate, "e-1").Return(false, nil)
	f.epapers.On("SetActive", ctx, "e-1", true, (*time.Time)(nil)).Return(nil)

	restored, err := f.svc.Restore(ctx, "e-1")
	require.NoError(t, err)
	assert.True(t, restored.IsActive)
	assert.Nil(t, restored.DeletedAt)
}

func TestEPaperService_RestoreConflict(t *testing.T) {
	ctx := context.Background()
	f := newEPaperFixture(t)

	deletedAt := f.now
	epaper := &models.EPaper{EPaperID: "e-1", IssueDate: issueDay(f, "2026-10-16"), DeletedAt: &deletedAt}
	f.epapers.On("GetByID", ctx, "e-1").Return(epaper, nil)
	f.epapers.On("ActiveDateTaken", ctx, epaper.IssueDate, "e-1").Return(true, nil)

	_, err := f.svc.Restore(ctx, "e-1")
	assert.ErrorIs(t, err, ErrConflict)
	f.epapers.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEPaperService_HardDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes blobs then record", func(t *testing.T) {
		f := newEPaperFixture(t)
		epaper := &models.EPaper{EPaperID: "e-1", PDFKey: "pdf", ThumbnailKey: "thumb", IsActive: true}
		f.epapers.On("GetByID", ctx, "e-1").Return(epaper, nil).Once()
		f.store.On("Delete", ctx, "pdf").Return(nil)
		f.store.On("Delete", ctx, "thumb").Return(nil)
		f.epapers.On("Delete", ctx, "e-1").Return(nil)

		require.NoError(t, f.svc.HardDelete(ctx, "e-1"))
		f.store.AssertExpectations(t)

		day := issueDay(f, "2026-10-16")
		f.epapers.On("GetByID", ctx, "e-1").Return(nil, repository.ErrNotFound)
		f.epapers.On("GetActiveByDate", ctx, day).Return(nil, repository.ErrNotFound)
		f.epapers.On("ListActive", ctx, 12, 0).Return([]models.EPaper{}, 0, nil)

		_, err := f.svc.GetByID(ctx, "e-1")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = f.svc.GetByDate(ctx, "2026-10-16")
		assert.ErrorIs(t, err, ErrNotFound)
		page, err := f.svc.ListActive(ctx, utils.Page{})
		require.NoError(t, err)
		assert.Empty(t, page.EPapers)
	})

	t.Run("shared preview key is deleted once", func(t *testing.T) {
		f := newEPaperFixture(t)
		epaper := &models.EPaper{EPaperID: "e-1", PDFKey: "pdf", ThumbnailKey: "pdf"}
		f.epapers.On("GetByID", ctx, "e-1").Return(epaper, nil)
		f.store.On("Delete", ctx, "pdf").Return(nil).Once()
		f.epapers.On("Delete", ctx, "e-1").Return(nil)

		require.NoError(t, f.svc.HardDelete(ctx, "e-1"))
		f.store.AssertNumberOfCalls(t, "Delete", 1)
	})

	t.Run("blob failure keeps the record", func(t *testing.T) {
		f := newEPaperFixture(t)
		epaper := &models.EPaper{EPaperID: "e-1", PDFKey: "pdf", ThumbnailKey: "pdf"}
		f.epapers.On("GetByID", ctx, "e-1").Return(epaper, nil)
		f.store.On("Delete", ctx, "pdf").Return(errors.New("access denied"))

		err := f.svc.HardDelete(ctx, "e-1")
		assert.ErrorIs(t, err, ErrStorage)
		f.epapers.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestEPaperService_Replace(t *testing.T) {
	ctx := context.Background()

	t.Run("date collision", func(t *testing.T) {
		f := newEPaperFixture(t)
		f.epapers.On("GetByID", ctx, "e-1").Return(&models.EPaper{EPaperID: "e-1", IsActive: true}, nil)
		f.epapers.On("ActiveDateTaken", ctx, issueDay(f, "2026-10-17"), "e-1").Return(true, nil)

		date := "2026-10-17"
		_, err := f.svc.Replace(ctx, "e-1", &date, nil)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("new file releases old blob", func(t *testing.T) {
		f := newEPaperFixture(t)
		upload := pdfUpload()
		f.epapers.On("GetByID", ctx, "e-1").Return(&models.EPaper{EPaperID: "e-1", PDFKey: "old", ThumbnailKey: "old", IsActive: true}, nil)
		f.store.On("Upload", ctx, storage.FolderEPapers, upload).Return(&storage.StoredObject{Key: "new", URL: "http://cdn/new"}, nil)
		f.epapers.On("Update", ctx, mock.MatchedBy(func(e *models.EPaper) bool {
			return e.PDFKey == "new" && e.ThumbnailKey == "new"
		})).Return(nil)
		f.store.On("Delete", ctx, "old").Return(nil).Once()

		view, err := f.svc.Replace(ctx, "e-1", nil, upload)
		require.NoError(t, err)
		assert.Equal(t, "http://cdn/new", view.PDFURL)
		f.store.AssertExpectations(t)
	})

	t.Run("non pdf rejected", func(t *testing.T) {
		f := newEPaperFixture(t)
		f.epapers.On("GetByID", ctx, "e-1").Return(&models.EPaper{EPaperID: "e-1", IsActive: true}, nil)

		_, err := f.svc.Replace(ctx, "e-1", nil, &storage.Upload{FileName: "a.png", Kind: models.KindImage})
		assert.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("nothing to change", func(t *testing.T) {
		f := newEPaperFixture(t)

		_, err := f.svc.Replace(ctx, "e-1", nil, nil)
		assert.ErrorIs(t, err, ErrBadRequest)
	})
}

func TestEPaperService_Latest(t *testing.T) {
	ctx := context.Background()
	f := newEPaperFixture(t)

	f.epapers.On("Latest", ctx).Return(nil, repository.ErrNotFound)

	_, err := f.svc.Latest(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}
