package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mbuddy-api/internal/application/otp"
	"github.com/mbuddy-api/internal/config"
	"github.com/mbuddy-api/internal/transport/http/handler"
	appmiddleware "github.com/mbuddy-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — the issuance endpoints send email and
	// must not become an outbound spam vector.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	otpSvc := otp.NewService(otp.ServiceDeps{
		OTPRepo:         deps.OTPRepo,
		DeliveryRepo:    deps.DeliveryRepo,
		Notifier:        deps.Notifier,
		CodeLength:      cfg.OTPCodeLength,
		TTL:             cfg.OTPTTL,
		NotifierTimeout: cfg.NotifierTimeout,
	})

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOTPHandler(otpSvc, cfg.ResendAllowed)
	deliveryH := handler.NewDeliveryHandler(deps.DeliveryRepo)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.With(sensitiveRL.Limit).Post("/otp/issue", otpH.Issue)
		r.With(sensitiveRL.Limit).Post("/otp/resend", otpH.Resend)
		r.Post("/otp/verify", otpH.Verify)

		r.Get("/deliveries", deliveryH.ListByEmail)
	})

	return r
}
