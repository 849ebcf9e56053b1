package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oclservices/ocl-backend/api/controllers"
	assignmentcontrollers "github.com/oclservices/ocl-backend/api/controllers/assignments"
	settlementcontrollers "github.com/oclservices/ocl-backend/api/controllers/settlements"
	"github.com/oclservices/ocl-backend/api/middleware"
	"github.com/oclservices/ocl-backend/internal/assignments"
	"github.com/oclservices/ocl-backend/internal/settlements"
	"github.com/oclservices/ocl-backend/pkg/auth/session"
	"github.com/oclservices/ocl-backend/pkg/broadcast"
	"github.com/oclservices/ocl-backend/pkg/config"
	"github.com/oclservices/ocl-backend/pkg/db"
	"github.com/oclservices/ocl-backend/pkg/enums"
	"github.com/oclservices/ocl-backend/pkg/logger"
	"github.com/oclservices/ocl-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Revoke(context.Context, string) error
}

type counterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

type eventSource interface {
	Subscribe(buffer int) *broadcast.Subscription[assignments.StatusEvent]
}

// Deps bundles what the router wires into handlers. Nil stores disable the
// middleware that needs them.
type Deps struct {
	DB                db.Pinger
	Redis             *redis.Client
	Sessions          sessionManager
	AssignmentService assignments.Service
	SettlementService settlements.Service
	AssignmentEvents  eventSource
	Metrics           http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var (
		idempotencyStore redis.IdempotencyStore
		rateStore        counterStore
	)
	readiness := map[string]controllers.Pinger{}
	if deps.DB != nil {
		readiness["db"] = deps.DB
	}
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
		rateStore = deps.Redis
		readiness["redis"] = deps.Redis
	}
	idempotent := middleware.Idempotency(idempotencyStore, logg)

	invoicePolicy := middleware.NewRateLimitPolicy(
		"invoice_render",
		cfg.RateLimit.InvoiceWindow,
		cfg.RateLimit.InvoiceIPLimit,
		cfg.RateLimit.InvoiceSubjectLimit,
	)
	logoutPolicy := middleware.NewRateLimitPolicy(
		"logout",
		cfg.RateLimit.LogoutWindow,
		cfg.RateLimit.LogoutIPLimit,
		0,
	)
	invoiceLimit := middleware.RateLimit(invoicePolicy, rateStore, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	auth := middleware.Auth(cfg.JWT, deps.Sessions, logg)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(auth)
		r.With(middleware.RateLimit(logoutPolicy, rateStore, logg)).Post("/logout", controllers.AuthLogout(deps.Sessions, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(auth)
		r.Use(middleware.RequireRole(enums.ActorRoleAdmin, logg))

		r.Route("/assignments", func(r chi.Router) {
			r.With(idempotent).Post("/", assignmentcontrollers.Create(deps.AssignmentService, logg))
			r.Get("/", assignmentcontrollers.List(deps.AssignmentService, logg))
			r.Get("/events", assignmentcontrollers.Events(deps.AssignmentEvents, assignmentcontrollers.StreamOptions{
				Buffer:    cfg.Notify.SubscriberBuffer,
				Heartbeat: cfg.Notify.StreamHeartbeat,
			}, logg))
			r.Get("/{id}", assignmentcontrollers.Detail(deps.AssignmentService, logg))
			r.With(idempotent).Post("/{id}/assign", assignmentcontrollers.Assign(deps.AssignmentService, logg))
			r.With(idempotent).Post("/{id}/status", assignmentcontrollers.UpdateStatus(deps.AssignmentService, logg))
		})

		r.Route("/settlements", func(r chi.Router) {
			corporate := settlementcontrollers.FromURLParam("corporateId")
			medicine := settlementcontrollers.FromURLParam("medicineUserId")

			r.Get("/corporate/{corporateId}/bills", settlementcontrollers.CorporateBills(deps.SettlementService, corporate, logg))
			r.With(invoiceLimit).Get("/corporate/{corporateId}/invoice", settlementcontrollers.InvoicePreview(deps.SettlementService, corporate, logg))
			r.With(idempotent).Post("/corporate/{corporateId}/invoices", settlementcontrollers.IssueInvoice(deps.SettlementService, corporate, logg))
			r.With(idempotent).Post("/invoices/{invoiceNumber}/paid", settlementcontrollers.MarkInvoicePaid(deps.SettlementService, logg))
			r.Get("/medicine/{medicineUserId}", settlementcontrollers.MedicineSettlement(deps.SettlementService, medicine, logg))
			r.Put("/medicine/{medicineUserId}/ocl-charge", settlementcontrollers.SetOCLCharge(deps.SettlementService, medicine, logg))
		})
	})

	r.Route("/api/courier/v1", func(r chi.Router) {
		r.Use(auth)
		r.Use(middleware.RequireRole(enums.ActorRoleCourier, logg))

		r.Get("/assignments", assignmentcontrollers.CourierEntries(deps.AssignmentService, logg))
		r.With(idempotent).Post("/assignments/{id}/status", assignmentcontrollers.CourierUpdateStatus(deps.AssignmentService, logg))
	})

	r.Route("/api/corporate/v1", func(r chi.Router) {
		r.Use(auth)
		r.Use(middleware.RequireRole(enums.ActorRoleCorporate, logg))

		own := settlementcontrollers.FromToken()
		r.Get("/bills", settlementcontrollers.CorporateBills(deps.SettlementService, own, logg))
		r.With(invoiceLimit).Get("/invoice", settlementcontrollers.InvoicePreview(deps.SettlementService, own, logg))
	})

	r.Route("/api/medicine/v1", func(r chi.Router) {
		r.Use(auth)
		r.Use(middleware.RequireRole(enums.ActorRoleMedicine, logg))

		r.Get("/settlement", settlementcontrollers.MedicineSettlement(deps.SettlementService, settlementcontrollers.FromToken(), logg))
	})

	return r
}
