package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/legisfy/assessor-ia-go/internal/domain"
	"github.com/legisfy/assessor-ia-go/internal/infra/observability"
	"github.com/legisfy/assessor-ia-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("handler")

// Pinger is a cheap reachability check on an external dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter creates the HTTP router with all routes and middleware.
// serviceSecret empty disables auth on the action route (local dev).
func NewRouter(svc *service.Assessor, supabase, openrouter Pinger, metrics *observability.Metrics, logger *zap.Logger, serviceSecret string) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(supabase, openrouter, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if serviceSecret != "" {
				r.Use(ServiceAuthMiddleware(serviceSecret, logger))
			}
			r.Post("/whatsapp/actions", actionsHandler(svc, logger))
		})

		r.Get("/metrics/uso", usageHandler(metrics))
	})

	return r
}

// ============================================================
// POST /v1/whatsapp/actions
// ============================================================

func actionsHandler(svc *service.Assessor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/whatsapp/actions")
		defer span.End()

		var req domain.ActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if strings.TrimSpace(req.UserID) == "" {
			handleServiceError(w, &domain.ErrValidation{Field: "userId", Message: "userId is required"}, logger)
			return
		}
		if strings.TrimSpace(req.GabineteID) == "" {
			handleServiceError(w, &domain.ErrValidation{Field: "gabineteId", Message: "gabineteId is required"}, logger)
			return
		}
		if strings.TrimSpace(req.UserRole) == "" {
			handleServiceError(w, &domain.ErrValidation{Field: "userRole", Message: "userRole is required"}, logger)
			return
		}

		span.SetAttributes(
			attribute.String("gabinete.id", req.GabineteID),
			attribute.String("user.role", req.UserRole),
		)

		// Sempre 200: falha de negócio viaja em success=false.
		result := svc.Process(ctx, &req)
		writeJSON(w, http.StatusOK, result)
	}
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(supabase, openrouter Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		var supaErr, orErr error
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			supaErr = supabase.Ping(ctx)
			return nil
		})
		g.Go(func() error {
			orErr = openrouter.Ping(ctx)
			return nil
		})
		_ = g.Wait()

		checks := map[string]string{
			"supabase":   "ok",
			"openrouter": "ok",
		}
		status := "ok"
		code := http.StatusOK

		if supaErr != nil {
			checks["supabase"] = supaErr.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			logger.Warn("healthz: supabase unreachable", zap.Error(supaErr))
		}
		if orErr != nil {
			checks["openrouter"] = orErr.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			logger.Warn("healthz: openrouter unreachable", zap.Error(orErr))
		}

		writeJSON(w, code, map[string]any{
			"status": status,
			"checks": checks,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func usageHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
