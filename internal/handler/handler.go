package handlers

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"citizenpress/internal/config"
	"citizenpress/internal/service"
)

type Handlers struct {
	AuthService   service.AuthService
	UserService   service.UserService
	PostService   service.PostService
	EPaperService service.EPaperService
	HealthService service.HealthService
	Cfg           *config.Config
	Log           *zap.Logger
	Validate      *validator.Validate
}

func NewHandlers(services *service.Service, cfg *config.Config, log *zap.Logger) *Handlers {
	return &Handlers{
		AuthService:   services.Auth,
		UserService:   services.User,
		PostService:   services.Post,
		EPaperService: services.EPaper,
		HealthService: services.Health,
		Cfg:           cfg,
		Log:           log,
		Validate:      newValidator(),
	}
}
