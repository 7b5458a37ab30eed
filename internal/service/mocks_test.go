package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"citizenpress/internal/models"
	"citizenpress/internal/notify"
	"citizenpress/internal/storage"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByMobile(ctx context.Context, mobile string) (*models.User, error) {
	args := m.Called(ctx, mobile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.User), args.Int(1), args.Error(2)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockOTPRepository struct {
	mock.Mock
}

func (m *MockOTPRepository) Create(ctx context.Context, code *models.OneTimeCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockOTPRepository) FindValid(ctx context.Context, email, code string, now time.Time) (*models.OneTimeCode, error) {
	args := m.Called(ctx, email, code, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OneTimeCode), args.Error(1)
}

func (m *MockOTPRepository) MarkUsed(ctx context.Context, otpID string) error {
	args := m.Called(ctx, otpID)
	return args.Error(0)
}

func (m *MockOTPRepository) DeleteUsed(ctx context.Context, email string) (int64, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOTPRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetView(ctx context.Context, postID string) (*models.PostView, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostView), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, filter models.PostFilter) ([]models.PostView, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.PostView), args.Int(1), args.Error(2)
}

func (m *MockPostRepository) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.StatusCounts), args.Error(1)
}

func (m *MockPostRepository) ListByUser(ctx context.Context, userID string) ([]models.PostView, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.PostView), args.Error(1)
}

func (m *MockPostRepository) LatestApproved(ctx context.Context, limit int) ([]models.PostView, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.PostView), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Transition(ctx context.Context, postID string, from, to models.PostStatus, approvedBy *string, approvedAt *time.Time) error {
	args := m.Called(ctx, postID, from, to, approvedBy, approvedAt)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, postID string) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

func (m *MockPostRepository) ToggleLike(ctx context.Context, postID, userID string) (int, bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Int(0), args.Bool(1), args.Error(2)
}

type MockEPaperRepository struct {
	mock.Mock
}

func (m *MockEPaperRepository) Create(ctx context.Context, epaper *models.EPaper) error {
	args := m.Called(ctx, epaper)
	return args.Error(0)
}

func (m *MockEPaperRepository) GetByID(ctx context.Context, epaperID string) (*models.EPaper, error) {
	args := m.Called(ctx, epaperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EPaper), args.Error(1)
}

func (m *MockEPaperRepository) GetActiveByDate(ctx context.Context, date time.Time) (*models.EPaper, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EPaper), args.Error(1)
}

func (m *MockEPaperRepository) ActiveDateTaken(ctx context.Context, date time.Time, excludeID string) (bool, error) {
	args := m.Called(ctx, date, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEPaperRepository) ListActive(ctx context.Context, limit, offset int) ([]models.EPaper, int, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.EPaper), args.Int(1), args.Error(2)
}

func (m *MockEPaperRepository) Latest(ctx context.Context) (*models.EPaper, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EPaper), args.Error(1)
}

func (m *MockEPaperRepository) Update(ctx context.Context, epaper *models.EPaper) error {
	args := m.Called(ctx, epaper)
	return args.Error(0)
}

func (m *MockEPaperRepository) SetActive(ctx context.Context, epaperID string, active bool, deletedAt *time.Time) error {
	args := m.Called(ctx, epaperID, active, deletedAt)
	return args.Error(0)
}

func (m *MockEPaperRepository) Delete(ctx context.Context, epaperID string) error {
	args := m.Called(ctx, epaperID)
	return args.Error(0)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, folder string, upload *storage.Upload) (*storage.StoredObject, error) {
	args := m.Called(ctx, folder, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.StoredObject), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendResetCode(ctx context.Context, msg notify.ResetCode) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
