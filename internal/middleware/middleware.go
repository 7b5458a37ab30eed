package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/rs/xid"
	"go.uber.org/zap"

	"citizenpress/internal/models"
	"citizenpress/internal/requestctx"
	"citizenpress/internal/service"
)

const RequestIDHeader = "X-Request-ID"

type Middleware func(http.Handler) http.Handler

// Authenticator resolves a bearer token to the current user record.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorBody{Error: message})
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("authorization required")
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("invalid authorization header")
	}

	return strings.TrimSpace(token), nil
}

// errLookupFailed marks an Authenticate failure that is not the caller's fault.
var errLookupFailed = errors.New("authentication lookup failed")

func authenticate(auth Authenticator, r *http.Request) (*models.User, error) {
	token, err := bearerToken(r)
	if err != nil {
		return nil, err
	}

	user, err := auth.Authenticate(r.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) || errors.Is(err, service.ErrInvalidOrExpired) {
			if msg := service.PublicMessage(err); msg != "" {
				return nil, errors.New(msg)
			}
			return nil, errors.New("invalid token")
		}
		return nil, fmt.Errorf("%w: %w", errLookupFailed, err)
	}

	return user, nil
}

// writeAuthError answers 401 for rejected credentials and 500 for lookup failures, which are logged.
func writeAuthError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	if errors.Is(err, errLookupFailed) {
		log.Error("authenticate request", zap.String("request_id", requestctx.RequestID(r.Context())),
			zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeError(w, err.Error(), http.StatusUnauthorized)
}

// Authenticate rejects requests without a valid identity token and stores the caller on the context.
func Authenticate(auth Authenticator, log *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authenticate(auth, r)
			if err != nil {
				writeAuthError(w, r, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestctx.WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuth attaches the caller when a valid token is sent and otherwise serves the request anonymously.
// A failed user lookup is not treated as anonymous.
func OptionalAuth(auth Authenticator, log *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authenticate(auth, r)
			if errors.Is(err, errLookupFailed) {
				writeAuthError(w, r, log, err)
				return
			}
			if user != nil {
				r = r.WithContext(requestctx.WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole must run after Authenticate.
func RequireRole(roles ...models.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := requestctx.User(r.Context())
			if !ok {
				writeError(w, "authorization required", http.StatusUnauthorized)
				return
			}

			if !slices.Contains(roles, user.Role) {
				writeError(w, "access denied", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CORS answers preflight requests. allowedOrigins is a comma separated list or "*".
func CORS(allowedOrigins string) Middleware {
	origins := make([]string, 0)
	for _, origin := range strings.Split(allowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	wildcard := len(origins) == 0 || slices.Contains(origins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case wildcard:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && slices.Contains(origins, origin):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// Logging tags each request with an id and logs it once the response is written.
func Logging(log *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = xid.New().String()
			}
			w.Header().Set(RequestIDHeader, id)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(requestctx.WithRequestID(r.Context(), id)))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			fields := []zap.Field{
				zap.String("request_id", id),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Int("bytes", rec.bytes),
				zap.Duration("duration", time.Since(start)),
			}

			switch {
			case rec.status >= http.StatusInternalServerError:
				log.Error("request", fields...)
			case rec.status >= http.StatusBadRequest:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}
		})
	}
}

// Chain wraps h so that the first middleware is the outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
