package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"citizenpress/internal/config"
	"citizenpress/internal/models"
	"citizenpress/internal/notify"
	"citizenpress/internal/repository"
	"citizenpress/internal/utils"
)

const msgInvalidCredentials = "invalid email or password"

type RegisterInput struct {
	Name     string
	Email    string
	Mobile   string
	Password string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	VerifyResetCode(ctx context.Context, email, code string) (string, error)
	CompletePasswordReset(ctx context.Context, resetToken, newPassword string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	Authenticate(ctx context.Context, token string) (*models.User, error)
	PurgeExpiredCodes(ctx context.Context, now time.Time) (int64, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	otpRepo  repository.OTPRepository
	tokens   *utils.TokenManager
	notifier notify.Notifier
	cfg      *config.Config
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	otpRepo repository.OTPRepository,
	tokens *utils.TokenManager,
	notifier notify.Notifier,
	cfg *config.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		userRepo: userRepo,
		otpRepo:  otpRepo,
		tokens:   tokens,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	mobile := strings.TrimSpace(in.Mobile)

	if err := ensureContactFree(ctx, s.userRepo, email, mobile, ""); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Mobile:       mobile,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsVerified:   false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, wrapError(ErrConflict, "user already exists", err)
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.GenerateIdentityToken(user.UserID)
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.UserID))
	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrUnauthorized, msgInvalidCredentials)
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, newError(ErrUnauthorized, msgInvalidCredentials)
	}

	if !user.CanLogin() {
		return nil, newError(ErrPendingApproval, "your reporter account is pending admin approval")
	}

	token, err := s.tokens.GenerateIdentityToken(user.UserID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "no account is registered with this email")
		}
		return fmt.Errorf("request password reset: %w", err)
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return err
	}

	otp := &models.OneTimeCode{
		Email:     email,
		Code:      code,
		ExpiresAt: s.now().Add(s.cfg.OTPDuration),
	}
	if err := s.otpRepo.Create(ctx, otp); err != nil {
		return fmt.Errorf("request password reset: %w", err)
	}

	err = s.notifier.SendResetCode(ctx, notify.ResetCode{
		Email:    email,
		Name:     user.Name,
		Code:     code,
		ValidFor: s.cfg.OTPDuration,
	})
	if err != nil {
		return fmt.Errorf("request password reset: %w", err)
	}

	return nil
}

func (s *authService) VerifyResetCode(ctx context.Context, email, code string) (string, error) {
	email = normalizeEmail(email)
	now := s.now()

	otp, err := s.otpRepo.FindValid(ctx, email, strings.TrimSpace(code), now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", newError(ErrInvalidOrExpired, "invalid or expired code")
		}
		return "", fmt.Errorf("verify reset code: %w", err)
	}

	if !otp.IsValid(now) {
		return "", newError(ErrInvalidOrExpired, "invalid or expired code")
	}

	if err := s.otpRepo.MarkUsed(ctx, otp.OTPID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", newError(ErrInvalidOrExpired, "invalid or expired code")
		}
		return "", fmt.Errorf("verify reset code: %w", err)
	}

	return s.tokens.GenerateResetToken(email)
}

func (s *authService) CompletePasswordReset(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.tokens.ValidateResetToken(resetToken)
	if err != nil {
		return wrapError(ErrInvalidOrExpired, "invalid or expired reset token", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "user not found")
		}
		return fmt.Errorf("complete password reset: %w", err)
	}

	if err := s.setPassword(ctx, user.UserID, newPassword); err != nil {
		return err
	}

	if n, err := s.otpRepo.DeleteUsed(ctx, claims.Email); err != nil {
		s.log.Warn("failed to purge used reset codes", zap.String("email", claims.Email), zap.Error(err))
	} else {
		s.log.Debug("purged used reset codes", zap.Int64("count", n))
	}

	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "user not found")
		}
		return fmt.Errorf("change password: %w", err)
	}

	if !utils.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return newError(ErrUnauthorized, "current password is incorrect")
	}

	return s.setPassword(ctx, user.UserID, newPassword)
}

func (s *authService) setPassword(ctx context.Context, userID, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "user not found")
		}
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

// Authenticate resolves an identity token to the current user record.
func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.ValidateIdentityToken(token)
	if err != nil {
		return nil, wrapError(ErrUnauthorized, "invalid or expired token", err)
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrUnauthorized, "user no longer exists")
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	return user, nil
}

func (s *authService) PurgeExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.otpRepo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("purge expired codes: %w", err)
	}
	return n, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "user not found")
		}
		return nil, fmt.Errorf("me: %w", err)
	}
	return user, nil
}

// ensureContactFree reports a Conflict when mobile or email belongs to a user other than selfID.
// Mobile is checked first.
func ensureContactFree(ctx context.Context, users repository.UserRepository, email, mobile, selfID string) error {
	if mobile != "" {
		existing, err := users.GetByMobile(ctx, mobile)
		switch {
		case err == nil && existing.UserID != selfID:
			return newError(ErrConflict, "mobile number is already registered")
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("check mobile: %w", err)
		}
	}

	if email != "" {
		existing, err := users.GetByEmail(ctx, email)
		switch {
		case err == nil && existing.UserID != selfID:
			return newError(ErrConflict, "email is already registered")
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("check email: %w", err)
		}
	}

	return nil
}
