package service

import (
	"go.uber.org/zap"

	"citizenpress/internal/config"
	"citizenpress/internal/notify"
	"citizenpress/internal/repository"
	"citizenpress/internal/storage"
	"citizenpress/internal/utils"
)

type Service struct {
	Auth   AuthService
	User   UserService
	Post   PostService
	EPaper EPaperService
	Health HealthService
}

func NewService(repo *repository.Repository, cfg *config.Config, store storage.Storage, notifier notify.Notifier, log *zap.Logger) *Service {
	tokens := utils.NewTokenManager(cfg.JWTSecretKey, cfg.AccessTokenDuration, cfg.ResetTokenDuration)

	return &Service{
		Auth:   NewAuthService(repo.User, repo.OTP, tokens, notifier, cfg, log.Named("auth")),
		User:   NewUserService(repo.User, log.Named("users")),
		Post:   NewPostService(repo.Post, store, cfg, log.Named("posts")),
		EPaper: NewEPaperService(repo.EPaper, store, cfg, log.Named("epapers")),
		Health: NewHealthService(repo.Schema),
	}
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func newPagination(page utils.Page, total int) Pagination {
	return Pagination{
		Page:       page.Number,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: utils.TotalPages(total, page.Limit),
	}
}

// withDefaultLimit fills a zero limit and caps it at utils.MaxPageSize.
func withDefaultLimit(page utils.Page, def int) utils.Page {
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Limit <= 0 {
		page.Limit = def
	}
	if page.Limit > utils.MaxPageSize {
		page.Limit = utils.MaxPageSize
	}
	return page
}
