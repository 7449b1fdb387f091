package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/kyat/internal/http/auth"
	"github.com/MrJamesThe3rd/kyat/internal/http/export"
	"github.com/MrJamesThe3rd/kyat/internal/http/importer"
	"github.com/MrJamesThe3rd/kyat/internal/http/ledger"
	"github.com/MrJamesThe3rd/kyat/internal/session"
)

type Options struct {
	AllowedOrigins []string
}

func New(
	sessions *session.Manager,
	authV1 *auth.Handler,
	ledgerV1 *ledger.Handler,
	exportV1 *export.Handler,
	importV1 *importer.Handler,
	opts Options,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition", export.WarningHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			authV1.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(sessions.Require)

			r.Route("/ledger", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				ledgerV1.Routes(r)
			})

			r.Route("/export", exportV1.Routes)
			r.Route("/import", importV1.Routes)
		})
	})

	return router
}
