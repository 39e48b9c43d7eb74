// AngelaMos | 2026
// routes.go

package main

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/jobtracker/internal/activity"
	"github.com/carterperez-dev/jobtracker/internal/admin"
	"github.com/carterperez-dev/jobtracker/internal/auth"
	"github.com/carterperez-dev/jobtracker/internal/company"
	"github.com/carterperez-dev/jobtracker/internal/event"
	"github.com/carterperez-dev/jobtracker/internal/health"
	"github.com/carterperez-dev/jobtracker/internal/job"
	"github.com/carterperez-dev/jobtracker/internal/middleware"
	"github.com/carterperez-dev/jobtracker/internal/pricing"
	"github.com/carterperez-dev/jobtracker/internal/server"
	"github.com/carterperez-dev/jobtracker/internal/subscription"
	"github.com/carterperez-dev/jobtracker/internal/usage"
	"github.com/carterperez-dev/jobtracker/internal/user"
)

// buildServer wires every domain package onto one router.
func (a *app) buildServer() *server.Server {
	cfg, db := a.cfg, a.db.DB

	usageStore := usage.NewStore(usage.NewRepository(db))
	subStore := subscription.NewStore(
		subscription.NewRepository(db),
		subscription.StoreConfig{
			DefaultDurationMonths: cfg.Subscription.DefaultDurationMonths,
			MaxDurationMonths:     cfg.Subscription.MaxDurationMonths,
		},
		a.logger,
	)
	subSvc := subscription.NewService(subStore, usageStore, a.logger)

	userSvc := user.NewService(user.NewRepository(db))
	authSvc := auth.NewService(
		auth.NewRepository(db),
		a.jwt,
		userSvc,
		auth.NewRedisRevocationStore(a.redis.Client),
		a.logger,
		auth.WithSignupHook(func(ctx context.Context, userID string) error {
			_, err := subStore.CreateFreeSubscription(ctx, userID)
			return err
		}),
	)

	companySvc := company.NewService(company.NewRepository(db))
	activitySvc := activity.NewService(activity.NewRepository(db))
	jobSvc := job.NewService(job.NewRepository(db), subSvc, companySvc, activitySvc, a.logger)
	eventSvc := event.NewService(event.NewRepository(db), jobSvc)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: a.db},
		health.Dependency{Name: "redis", Checker: a.redis},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		MetricsConfig: cfg.Metrics,
		HealthHandler: healthHandler,
		Logger:        a.logger,
	})

	limiter := middleware.NewRateLimiter(a.redis.Client, a.logger)
	router := srv.Router()
	router.Use(
		middleware.RequestID,
		middleware.Logger(a.logger),
		limiter.Limit(middleware.Policy{
			Name:  "api",
			Limit: middleware.Every(cfg.RateLimit.Window, cfg.RateLimit.Requests, cfg.RateLimit.Burst),
		}),
		middleware.SecurityHeaders(cfg.IsProduction()),
		middleware.CORS(cfg.CORS),
	)

	healthHandler.RegisterRoutes(router)
	router.Get("/.well-known/jwks.json", a.jwt.GetJWKSHandler())

	authenticator := middleware.Authenticator(authSvc)
	adminOnly := middleware.RequireAdmin
	credentialLimit := limiter.Limit(middleware.Policy{
		Name:  "credentials",
		Limit: middleware.Every(cfg.RateLimit.AuthWindow, cfg.RateLimit.AuthRequests, 0),
	})

	activityHandler := activity.NewHandler(activitySvc)
	userHandler := user.NewHandler(userSvc)

	router.Route("/api", func(r chi.Router) {
		pricing.NewHandler().RegisterRoutes(r)
		auth.NewHandler(authSvc).RegisterRoutes(r, authenticator, credentialLimit)

		userHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		admin.NewHandler(admin.HandlerConfig{
			Database:      a.db,
			Redis:         a.redis,
			Subscriptions: subStore,
			Activity:      usageStore,
		}).RegisterRoutes(r, authenticator, adminOnly)
		subscription.NewHandler(subSvc).RegisterRoutes(r, authenticator, adminOnly)

		company.NewHandler(companySvc).RegisterRoutes(r, authenticator)
		job.NewHandler(jobSvc).RegisterRoutes(r, authenticator,
			subscription.RequireFeature(subSvc, pricing.FeatureExportData),
			activityHandler.JobRoutes)
		activityHandler.RegisterRoutes(r, authenticator)
		event.NewHandler(eventSvc).RegisterRoutes(r, authenticator,
			subscription.RequireFeature(subSvc, pricing.FeatureCalendarAccess))
	})

	return srv
}
