package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/icco/yamdb/lib/auth"
	"github.com/icco/yamdb/lib/health"
	"github.com/icco/yamdb/lib/permissions"
	"gorm.io/gorm"
)

// NewRouter builds the HTTP route table. db is only used by the health check.
func NewRouter(a *API, db *gorm.DB) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.GetHead)
	r.Use(allowOptions(r))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, `Method "`+r.Method+`" not allowed.`)
	})

	r.Get("/health", health.Handler(db, a.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(a.issuer, a.store.GetUser, a.logger))

		r.Post("/auth/email", a.Register)
		r.Post("/auth/token", a.Token)

		r.Route("/users", func(r chi.Router) {
			r.Route("/me", func(r chi.Router) {
				r.Use(requirePolicy(permissions.Authenticated))
				r.Get("/", a.GetMe)
				r.Patch("/", a.UpdateMe)
			})

			r.Group(func(r chi.Router) {
				r.Use(requirePolicy(permissions.AdministratorOnly))
				r.Get("/", a.ListUsers)
				r.Post("/", a.CreateUser)
				r.Get("/{username}", a.GetUser)
				r.Put("/{username}", a.UpdateUser)
				r.Patch("/{username}", a.UpdateUser)
				r.Delete("/{username}", a.DeleteUser)
			})
		})

		categories := a.categories()
		r.Route("/categories", func(r chi.Router) {
			r.Use(requirePolicy(permissions.AdministratorOrReadOnly))
			r.Get("/", categories.List)
			r.Post("/", categories.Create)
			r.Delete("/{slug}", categories.Delete)
		})

		genres := a.genres()
		r.Route("/genres", func(r chi.Router) {
			r.Use(requirePolicy(permissions.AdministratorOrReadOnly))
			r.Get("/", genres.List)
			r.Post("/", genres.Create)
			r.Delete("/{slug}", genres.Delete)
		})

		r.Route("/titles", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(requirePolicy(permissions.AdministratorOrReadOnly))
				r.Get("/", a.ListTitles)
				r.Post("/", a.CreateTitle)
				r.Get("/{titleID}", a.GetTitle)
				r.Put("/{titleID}", a.UpdateTitle)
				r.Patch("/{titleID}", a.UpdateTitle)
				r.Delete("/{titleID}", a.DeleteTitle)
			})

			r.Route("/{titleID}/reviews", func(r chi.Router) {
				r.Use(requirePolicy(reviewPolicy))
				r.Get("/", a.ListReviews)
				r.Post("/", a.CreateReview)

				r.Route("/{reviewID}", func(r chi.Router) {
					r.Get("/", a.GetReview)
					r.Put("/", a.UpdateReview)
					r.Patch("/", a.UpdateReview)
					r.Delete("/", a.DeleteReview)

					r.Route("/comments", func(r chi.Router) {
						r.Get("/", a.ListComments)
						r.Post("/", a.CreateComment)
						r.Get("/{commentID}", a.GetComment)
						r.Put("/{commentID}", a.UpdateComment)
						r.Patch("/{commentID}", a.UpdateComment)
						r.Delete("/{commentID}", a.DeleteComment)
					})
				})
			})
		})
	})

	return r
}

var routedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// allowOptions answers OPTIONS requests with the methods mux routes for the
// path. HEAD is allowed wherever GET is.
func allowOptions(mux *chi.Mux) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			path := r.URL.Path
			if len(path) > 1 {
				path = strings.TrimSuffix(path, "/")
			}

			var allowed []string
			for _, method := range routedMethods {
				if !mux.Match(chi.NewRouteContext(), method, path) {
					continue
				}
				allowed = append(allowed, method)
				if method == http.MethodGet {
					allowed = append(allowed, http.MethodHead)
				}
			}
			if len(allowed) == 0 {
				writeDetail(w, http.StatusNotFound, "Not found.")
				return
			}

			w.Header().Set("Allow", strings.Join(append(allowed, http.MethodOptions), ", "))
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
