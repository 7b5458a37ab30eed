package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"citizenpress/internal/models"
	"citizenpress/internal/repository"
	"citizenpress/internal/utils"
)

const defaultUserPageSize = 10

type CreateUserInput struct {
	Name       string
	Email      string
	Mobile     string
	Password   string
	Role       models.Role
	IsVerified bool
}

// UserPatch holds the fields an admin may change. Nil fields are left alone.
type UserPatch struct {
	Name       *string
	Email      *string
	Mobile     *string
	Role       *models.Role
	IsVerified *bool
}

func (p UserPatch) empty() bool {
	return p.Name == nil && p.Email == nil && p.Mobile == nil && p.Role == nil && p.IsVerified == nil
}

type UserQuery struct {
	Search     string
	Role       models.Role
	IsVerified *bool
	Page       utils.Page
}

type UserPage struct {
	Users      []models.User `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

// UserService is the admin-facing management of reporters and other accounts.
type UserService interface {
	List(ctx context.Context, q UserQuery) (*UserPage, error)
	Create(ctx context.Context, in CreateUserInput) (*models.User, error)
	Get(ctx context.Context, userID string) (*models.User, error)
	Update(ctx context.Context, userID string, patch UserPatch) (*models.User, error)
	Delete(ctx context.Context, userID string) error
}

type userService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, log *zap.Logger) UserService {
	return &userService{userRepo: userRepo, log: log}
}

func (s *userService) List(ctx context.Context, q UserQuery) (*UserPage, error) {
	if q.Role != "" && !q.Role.Valid() {
		return nil, newError(ErrBadRequest, fmt.Sprintf("unknown role %q", q.Role))
	}

	page := withDefaultLimit(q.Page, defaultUserPageSize)

	users, total, err := s.userRepo.List(ctx, models.UserFilter{
		Search:     strings.TrimSpace(q.Search),
		Role:       q.Role,
		IsVerified: q.IsVerified,
		Limit:      page.Limit,
		Offset:     page.Offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return &UserPage{Users: users, Pagination: newPagination(page, total)}, nil
}

func (s *userService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleReporter
	}
	if !role.Valid() {
		return nil, newError(ErrBadRequest, fmt.Sprintf("unknown role %q", role))
	}

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
		Role:         role,
		IsVerified:   in.IsVerified,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, wrapError(ErrConflict, "user already exists", err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user created by admin", zap.String("user_id", user.UserID), zap.String("role", string(role)))
	return user, nil
}

func (s *userService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, userID string, patch UserPatch) (*models.User, error) {
	if patch.empty() {
		return nil, newError(ErrBadRequest, "no updatable fields provided")
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var email, mobile string
	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		email = normalizeEmail(*patch.Email)
		user.Email = email
	}
	if patch.Mobile != nil {
		mobile = strings.TrimSpace(*patch.Mobile)
		user.Mobile = mobile
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, newError(ErrBadRequest, fmt.Sprintf("unknown role %q", *patch.Role))
		}
		user.Role = *patch.Role
	}
	if patch.IsVerified != nil {
		user.IsVerified = *patch.IsVerified
	}

	if err := ensureContactFree(ctx, s.userRepo, email, mobile, user.UserID); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, wrapError(ErrConflict, "email or mobile already in use", err)
		case errors.Is(err, repository.ErrNotFound):
			return nil, newError(ErrNotFound, "user not found")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

func (s *userService) Delete(ctx context.Context, userID string) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "user not found")
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info("user deleted", zap.String("user_id", userID))
	return nil
}
