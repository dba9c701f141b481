package router

import (
	"courtpay/internal/handlers/payment"
	"courtpay/internal/handlers/refund"
	"courtpay/internal/handlers/tenant"
	"courtpay/internal/handlers/webhook"
	"courtpay/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Webhook webhook.Handler
	Refund  refund.Handler
	Payment payment.Handler
	Tenant  tenant.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	App            middleware.AppMiddleware
	AuthRole       middleware.AuthRole
}

// SetupRoutes mounts provider facing webhooks without auth and the
// operator endpoints behind API key or JWT plus RBAC.
func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Use(r.App.Tracing, r.App.RateLimit())

		r.DomainHandlers.Webhook.Router(routerGroup)

		routerGroup.Group(func(admin chi.Router) {
			admin.Use(r.AuthRole.APIKey, r.AuthRole.Auth, r.AuthRole.RBAC)

			r.DomainHandlers.Refund.Router(admin)
			r.DomainHandlers.Payment.Router(admin)
			r.DomainHandlers.Tenant.Router(admin)
		})
	})
}

func New(domainHandlers DomainHandlers, app middleware.AppMiddleware, authRole middleware.AuthRole) Router {
	return Router{
		DomainHandlers: domainHandlers,
		App:            app,
		AuthRole:       authRole,
	}
}
