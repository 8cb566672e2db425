package router

import (
	"net/http"

	"recell-store/internal/handler"
	"recell-store/internal/middleware"
	"recell-store/internal/model"
	"recell-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Ticket  *handler.TicketHandler
	Media   *handler.MediaHandler
}

// New creates the HTTP router with all routes and middleware configured.
// staticDir, when non-empty, serves locally stored media under /static/.
func New(h Handlers, auth service.AuthService, staticDir string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	if staticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Auth.Signup)
			r.Post("/login", h.Auth.Login)
			r.Post("/google", h.Auth.GoogleSignIn)
			r.Post("/reset", h.Auth.RequestPasswordReset)
			r.Post("/reset/confirm", h.Auth.ResetPassword)
		})
		r.Get("/products", h.Product.List)
		r.Get("/products/{id}", h.Product.GetByID)

		// Session-holder routes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(auth, logger))

			r.Post("/auth/logout", h.Auth.Logout)
			r.Get("/auth/me", h.Auth.Me)

			r.Get("/profile", h.User.GetProfile)
			r.Put("/profile", h.User.UpdateProfile)

			r.Get("/cart", h.Cart.List)
			r.Post("/cart", h.Cart.Add)
			r.Delete("/cart/{productId}", h.Cart.Remove)

			r.Post("/orders", h.Order.Checkout)
			r.Get("/orders", h.Order.ListMine)
			r.Get("/orders/{id}", h.Order.GetByID)
			r.Post("/orders/{id}/cancel", h.Order.Cancel)

			r.Post("/tickets", h.Ticket.Create)
			r.Get("/tickets", h.Ticket.ListMine)
		})

		// Back-office routes.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(auth, logger))
			r.Use(middleware.RequireRole(model.RoleAdmin, logger))

			r.Post("/products", h.Product.Create)
			r.Put("/products/{id}", h.Product.Update)
			r.Delete("/products/{id}", h.Product.Delete)

			r.Get("/orders", h.Order.ListAll)
			r.Patch("/orders/{id}", h.Order.UpdateStatus)
			r.Delete("/orders/{id}", h.Order.Delete)

			r.Get("/tickets", h.Ticket.ListAll)
			r.Patch("/tickets/{id}", h.Ticket.Update)

			r.Get("/users", h.User.List)

			r.Post("/media", h.Media.Upload)
		})
	})

	return r
}
