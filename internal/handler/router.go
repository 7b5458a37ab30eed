package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"citizenpress/internal/middleware"
	"citizenpress/internal/models"
)

// NewRouter registers every route and wraps the router with request logging and CORS.
// Static post and e-paper paths are registered before their {id} siblings.
func NewRouter(h *Handlers) http.Handler {
	authed := func(f http.HandlerFunc) http.Handler {
		return middleware.Authenticate(h.AuthService, h.Log)(f)
	}
	optional := func(f http.HandlerFunc) http.Handler {
		return middleware.OptionalAuth(h.AuthService, h.Log)(f)
	}
	admin := func(f http.HandlerFunc) http.Handler {
		return middleware.Chain(f, middleware.Authenticate(h.AuthService, h.Log), middleware.RequireRole(models.RoleAdmin))
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, "route not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	auth.HandleFunc("/forgot-password/request-otp", h.RequestResetCode).Methods(http.MethodPost)
	auth.HandleFunc("/forgot-password/verify-otp", h.VerifyResetCode).Methods(http.MethodPost)
	auth.HandleFunc("/forgot-password/reset", h.ResetPassword).Methods(http.MethodPost)
	auth.Handle("/update-password", authed(h.UpdatePassword)).Methods(http.MethodPut)

	api.Handle("/me", authed(h.GetCurrentUser)).Methods(http.MethodGet)

	posts := api.PathPrefix("/posts").Subrouter()
	posts.Handle("", optional(h.GetPosts)).Methods(http.MethodGet)
	posts.Handle("", authed(h.CreatePost)).Methods(http.MethodPost)
	posts.HandleFunc("/breaking", h.GetBreakingNews).Methods(http.MethodGet)
	posts.Handle("/my-posts", authed(h.GetMyPosts)).Methods(http.MethodGet)
	posts.Handle("/admin/all", admin(h.GetPosts)).Methods(http.MethodGet)
	posts.Handle("/admin/{id}/approve", admin(h.ApprovePost)).Methods(http.MethodPatch)
	posts.Handle("/admin/{id}/reject", admin(h.RejectPost)).Methods(http.MethodPatch)
	posts.Handle("/admin/{id}", admin(h.UpdatePost)).Methods(http.MethodPut)
	posts.Handle("/admin/{id}", admin(h.DeletePost)).Methods(http.MethodDelete)
	posts.Handle("/{id}", optional(h.GetPost)).Methods(http.MethodGet)
	posts.Handle("/{id}", authed(h.UpdatePost)).Methods(http.MethodPut)
	posts.Handle("/{id}", authed(h.DeletePost)).Methods(http.MethodDelete)
	posts.Handle("/{id}/like", authed(h.LikePost)).Methods(http.MethodPost)

	epapers := api.PathPrefix("/epapers").Subrouter()
	epapers.HandleFunc("", h.GetEPapers).Methods(http.MethodGet)
	epapers.Handle("", admin(h.CreateEPaper)).Methods(http.MethodPost)
	epapers.HandleFunc("/epaper-by-date", h.GetEPaperByDate).Methods(http.MethodGet)
	epapers.HandleFunc("/latest", h.GetLatestEPaper).Methods(http.MethodGet)
	epapers.HandleFunc("/{id}", h.GetEPaper).Methods(http.MethodGet)
	epapers.Handle("/{id}", admin(h.UpdateEPaper)).Methods(http.MethodPut)
	epapers.Handle("/{id}", admin(h.DeleteEPaper)).Methods(http.MethodDelete)
	epapers.Handle("/{id}/restore", admin(h.RestoreEPaper)).Methods(http.MethodPatch)

	reporters := api.PathPrefix("/reporters").Subrouter()
	reporters.Handle("", admin(h.GetReporters)).Methods(http.MethodGet)
	reporters.Handle("", admin(h.CreateReporter)).Methods(http.MethodPost)
	reporters.Handle("/{id}", admin(h.GetReporter)).Methods(http.MethodGet)
	reporters.Handle("/{id}", admin(h.UpdateReporter)).Methods(http.MethodPatch)
	reporters.Handle("/{id}", admin(h.DeleteReporter)).Methods(http.MethodDelete)

	return middleware.Chain(r,
		middleware.Logging(h.Log),
		middleware.CORS(h.Cfg.AllowedOrigins),
	)
}
