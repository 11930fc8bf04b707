package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/thelistcl/marketplace-api/internal/booking"
	"github.com/thelistcl/marketplace-api/internal/config"
	"github.com/thelistcl/marketplace-api/internal/database"
	"github.com/thelistcl/marketplace-api/internal/handler"
	"github.com/thelistcl/marketplace-api/internal/middleware"
	"github.com/thelistcl/marketplace-api/internal/onboarding"
	"github.com/thelistcl/marketplace-api/internal/queue"
	"github.com/thelistcl/marketplace-api/internal/repository"
	"github.com/thelistcl/marketplace-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter and the response cache.  Both
	// degrade to no-ops when the client is nil, so a missing Redis
	// never blocks startup.
	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()
	rateCfg := config.LoadRateLimitConfig()

	// Repositories.
	plans := repository.NewPlanRepo(db)
	hosts := repository.NewHostRepo(db)
	reservations := repository.NewReservationRepo(db, plans)
	apps := repository.NewApplicationRepo(db, plans, hosts)
	publicApps := repository.NewPublicApplicationRepo(db, plans, hosts)
	invites := repository.NewInviteRepo(db, hosts)
	messages := repository.NewMessageRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Domain services.
	bookingSvc := booking.NewService(reservations)
	inviteSvc := onboarding.NewService(invites, cfg.InviteTTLDays)

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	catalogH := handler.NewCatalogHandler(plans, hosts, bookingSvc)
	checkoutH := handler.NewCheckoutHandler(bookingSvc, reservations)
	applicationH := handler.NewApplicationHandler(apps, publicApps)
	hostH := handler.NewHostHandler(hosts, plans, apps, reservations, messages, bookingSvc)
	adminH := handler.NewAdminHandler(apps, publicApps, plans, invites, messages, inviteSvc)
	onboardingH := handler.NewOnboardingHandler(inviteSvc, invites, cfg.BcryptCost)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORS())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, catalogH, checkoutH, applicationH, onboardingH,
		middleware.NewTokenBucket(rateCfg, rdb), middleware.NewRedisCache(cacheCfg, rdb))
	router.RegisterHost(e, hostH, applicationH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	// The consumer appends confirmation lines for every reservation
	// event; it retries its broker connection internally.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer: %v", err)
		}
	}()

	// Abandoned pending reservations hold capacity until cancelled.
	// The sweep is off unless RESERVATION_PENDING_TTL is set.
	if cfg.PendingTTL > 0 {
		go func() {
			t := time.NewTicker(time.Minute)
			defer t.Stop()
			for range t.C {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				n, err := reservations.CancelStalePending(ctx, cfg.PendingTTL)
				cancel()
				if err != nil {
					log.Printf("pending sweep: %v", err)
				} else if n > 0 {
					log.Printf("pending sweep: cancelled %d stale reservations", n)
				}
			}
		}()
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
