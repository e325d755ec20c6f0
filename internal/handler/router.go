package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/boddenberg/erp-finance-bfa/internal/domain"
	"github.com/boddenberg/erp-finance-bfa/internal/infra/observability"
	"github.com/boddenberg/erp-finance-bfa/internal/port"
	"github.com/boddenberg/erp-finance-bfa/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// healthCheckTimeout bounds the upstream probe in /healthz.
const healthCheckTimeout = 2 * time.Second

// Services are the use cases the router exposes. Nil services disable their
// routes.
type Services struct {
	Auth    *service.AuthService
	Finance *service.FinanceService
	HR      *service.HRService
	Periods *service.PeriodService
	ERP     port.HealthChecker
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, metrics *observability.Metrics, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.ERP))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		if svcs.Auth == nil {
			r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, http.StatusServiceUnavailable, "auth service unavailable: ERP not configured")
			}))
			return
		}

		r.Post("/auth/login", authLoginHandler(svcs.Auth, logger))

		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			r.Get("/auth/me", authMeHandler())
			r.Get("/navigation", navigationHandler())

			if svcs.Periods != nil {
				r.Get("/periods/default", defaultPeriodHandler(svcs.Periods, logger))
				r.Get("/periods/resolve", resolvePeriodHandler(svcs.Periods, logger))
			}

			// =============================================
			// Finance: admin, accountant
			// =============================================
			if svcs.Finance != nil {
				r.Route("/finance", func(r chi.Router) {
					r.Use(RequireRole(logger, domain.RoleAdmin, domain.RoleAccountant))

					r.Get("/operations", operationsHandler(svcs.Finance))
					r.Get("/operations/{kind}/options", operationOptionsHandler(svcs.Finance, logger))
					r.Post("/transactions/validate", validateTransactionHandler(svcs.Finance))
					r.Post("/transactions", submitTransactionHandler(svcs.Finance, logger))
					r.Get("/transactions", transactionHistoryHandler(svcs.Finance, logger))
				})
			}

			// =============================================
			// HR: admin, hr
			// =============================================
			if svcs.HR != nil {
				r.Route("/hr", func(r chi.Router) {
					r.Use(RequireRole(logger, domain.RoleAdmin, domain.RoleHR))

					r.Get("/attendance", attendanceHandler(svcs.HR, logger))
					r.Get("/payroll", payrollHandler(svcs.HR, logger))
					r.Get("/employees/{employeeId}/summary", employeeSummaryHandler(svcs.HR, logger))
				})
			}
		})
	})

	return r
}

func healthzHandler(erp port.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "bfa-api", Status: "healthy", LastChecked: now},
		}

		if erp != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()

			start := time.Now()
			err := erp.Ping(ctx)
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "erp", Status: status, LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
