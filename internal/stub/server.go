// Package stub serves an in-memory BlueMedix backend for tests and local runs.
package stub

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"bluemedix-workflow/internal/common/logger"
	"bluemedix-workflow/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

type Server struct {
	store  *store
	logger logger.Logger
	router chi.Router
}

type ctxKey struct{}

func New(opts Options, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if opts.AdminName == "" {
		opts.AdminName = "Admin"
	}

	s := &Server{store: newStore(), logger: log}

	id, seq := s.store.nextID()
	s.store.accounts.put(id, seq, account{
		user: models.User{
			ID:    id,
			Name:  opts.AdminName,
			Email: strings.ToLower(opts.AdminEmail),
			Role:  models.RoleAdmin,
		},
		password: opts.AdminPassword,
	})

	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Get("/products", s.handleListProducts)
		r.Get("/products/{id}", s.handleGetProduct)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/orders/my-orders", s.handleMyOrders)
			r.Post("/addresses", s.handleCreateAddress)
			r.Post("/orders", s.handleCreateOrder)
			r.Get("/orders/{id}", s.handleGetOrder)

			r.Group(func(r chi.Router) {
				r.Use(requireRole(models.RoleAdmin, models.RoleManager))

				r.Get("/franchises/{id}/orders", s.handleFranchiseOrders)
				r.Get("/franchises/{id}/stats", s.handleFranchiseStats)
				r.Patch("/orders/{id}/status", s.handleUpdateDeliveryStatus)
				r.Patch("/orders/{id}/payment", s.handleUpdatePaymentStatus)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireRole(models.RoleAdmin))

				r.Post("/categories", s.handleCreateCategory)
				r.Post("/products", s.handleCreateProduct)
				r.Put("/products/{id}", s.handleUpdateProduct)
				r.Patch("/products/{id}/stock", s.handleUpdateStock)
				r.Post("/users/manager", s.handleCreateManager)
				r.Post("/franchises", s.handleCreateFranchise)
				r.Get("/franchises", s.handleListFranchises)
				r.Post("/franchises/assign-manager", s.handleAssignManager)
				r.Get("/orders", s.handleListOrders)
			})
		})
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("Stub request", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"durationMs": time.Since(start).Milliseconds(),
		})
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			fail(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		s.store.mu.Lock()
		userID, ok := s.store.tokens[token]
		var acct account
		if ok {
			acct, ok = s.store.accounts.get(userID)
		}
		s.store.mu.Unlock()

		if !ok {
			fail(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, acct.user)))
	})
}

func requireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := currentUser(r)
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			fail(w, http.StatusForbidden, "Not authorized for this action")
		})
	}
}

func currentUser(r *http.Request) models.User {
	u, _ := r.Context().Value(ctxKey{}).(models.User)
	return u
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func respond(w http.ResponseWriter, status int, payload map[string]interface{}) {
	payload["success"] = true
	writeJSON(w, status, payload)
}

func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// populate renders v as a JSON object with the named references expanded.
func populate(v interface{}, refs map[string]interface{}) map[string]interface{} {
	raw, _ := json.Marshal(v)
	out := map[string]interface{}{}
	_ = json.Unmarshal(raw, &out)
	for k, ref := range refs {
		if ref != nil {
			out[k] = ref
		}
	}
	return out
}
