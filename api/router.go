// Package api wires the HTTP surface: routing, auth middleware and the
// JSON presentation of the domain packages.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers bundles every handler mounted on the router.
type Handlers struct {
	Auth         *AuthHandler
	Sale         *SaleHandler
	Property     *PropertyHandler
	Condominium  *CondominiumHandler
	Team         *TeamHandler
	Contact      *ContactHandler
	Simulation   *SimulationHandler
	Verifier     TokenVerifier
	UploadsDir   string
	UploadsRoute string
}

// New builds the application router. Catalog browsing, contact and
// simulations are public; everything that mutates brokerage state sits
// behind the bearer-token middleware.
func New(h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", h.Auth.PublicRoutes)
		r.Route("/properties", h.Property.PublicRoutes)
		r.Route("/condominiums", h.Condominium.PublicRoutes)
		r.Route("/team", h.Team.PublicRoutes)
		r.Route("/contact", h.Contact.PublicRoutes)
		r.Route("/simulations", h.Simulation.PublicRoutes)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth(h.Verifier))

			r.Get("/auth/me", h.Auth.me)
			r.Route("/sales", h.Sale.Routes)
			r.Route("/admin/properties", h.Property.PrivateRoutes)
			r.Route("/admin/condominiums", h.Condominium.PrivateRoutes)
			r.Route("/admin/team", h.Team.PrivateRoutes)
			r.Route("/admin/contact", h.Contact.PrivateRoutes)
		})
	})

	if h.UploadsDir != "" && h.UploadsRoute != "" {
		fs := http.StripPrefix(h.UploadsRoute, http.FileServer(http.Dir(h.UploadsDir)))
		router.Handle(h.UploadsRoute+"/*", fs)
	}

	return router
}
