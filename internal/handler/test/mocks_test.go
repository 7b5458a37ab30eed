package test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"citizenpress/internal/models"
	"citizenpress/internal/service"
	"citizenpress/internal/storage"
	"citizenpress/internal/utils"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthService) VerifyResetCode(ctx context.Context, email, code string) (string, error) {
	args := m.Called(ctx, email, code)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) CompletePasswordReset(ctx context.Context, resetToken, newPassword string) error {
	args := m.Called(ctx, resetToken, newPassword)
	return args.Error(0)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	args := m.Called(ctx, userID, currentPassword, newPassword)
	return args.Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) PurgeExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context, q service.UserQuery) (*service.UserPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserPage), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, in service.CreateUserInput) (*models.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, userID string, patch service.UserPatch) (*models.User, error) {
	args := m.Called(ctx, userID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) Create(ctx context.Context, owner *models.User, in service.CreatePostInput) (*models.PostView, error) {
	args := m.Called(ctx, owner, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostView), args.Error(1)
}

func (m *MockPostService) List(ctx context.Context, caller *models.User, q service.PostQuery) (*service.PostPage, error) {
	args := m.Called(ctx, caller, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PostPage), args.Error(1)
}

func (m *MockPostService) Get(ctx context.Context, caller *models.User, postID string) (*models.PostView, error) {
	args := m.Called(ctx, caller, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostView), args.Error(1)
}

func (m *MockPostService) MyPosts(ctx context.Context, caller *models.User) ([]models.PostView, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PostView), args.Error(1)
}

func (m *MockPostService) Breaking(ctx context.Context) ([]models.PostView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PostView), args.Error(1)
}

func (m *MockPostService) Update(ctx context.Context, caller *models.User, postID string, patch service.PostPatch) (*models.PostView, error) {
	args := m.Called(ctx, caller, postID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostView), args.Error(1)
}

func (m *MockPostService) Delete(ctx context.Context, caller *models.User, postID string) error {
	args := m.Called(ctx, caller, postID)
	return args.Error(0)
}

func (m *MockPostService) ToggleLike(ctx context.Context, caller *models.User, postID string) (*service.LikeResult, error) {
	args := m.Called(ctx, caller, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LikeResult), args.Error(1)
}

func (m *MockPostService) Approve(ctx context.Context, admin *models.User, postID string) (*models.PostView, error) {
	args := m.Called(ctx, admin, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostView), args.Error(1)
}

func (m *MockPostService) Reject(ctx context.Context, admin *models.User, postID string) (*models.PostView, error) {
	args := m.Called(ctx, admin, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostView), args.Error(1)
}

type MockEPaperService struct {
	mock.Mock
}

func (m *MockEPaperService) Publish(ctx context.Context, date string, file *storage.Upload) (*service.EPaperView, error) {
	args := m.Called(ctx, date, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EPaperView), args.Error(1)
}

func (m *MockEPaperService) ListActive(ctx context.Context, page utils.Page) (*service.EPaperPage, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EPaperPage), args.Error(1)
}

func (m *MockEPaperService) GetByDate(ctx context.Context, date string) (*service.EPaperView, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EPaperView), args.Error(1)
}

func (m *MockEPaperService) GetByID(ctx context.Context, epaperID string) (*service.EPaperView, error) {
	args := m.Called(ctx, epaperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EPaperView), args.Error(1)
}

func (m *MockEPaperService) Latest(ctx context.Context) (*service.EPaperView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EPaperView), args.Error(1)
}

func (m *MockEPaperService) Replace(ctx context.Context, epaperID string, date *string, file *storage.Upload) (*service.EPaperView, error) {
	args := m.Called(ctx, epaperID, date, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EPaperView), args.Error(1)
}

func (m *MockEPaperService) SoftDelete(ctx context.Context, epaperID string) error {
	args := m.Called(ctx, epaperID)
	return args.Error(0)
}

func (m *MockEPaperService) Restore(ctx context.Context, epaperID string) (*service.EPaperView, error) {
	args := m.Called(ctx, epaperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EPaperView), args.Error(1)
}

func (m *MockEPaperService) HardDelete(ctx context.Context, epaperID string) error {
	args := m.Called(ctx, epaperID)
	return args.Error(0)
}

type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) Check(ctx context.Context) (*service.HealthReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HealthReport), args.Error(1)
}
