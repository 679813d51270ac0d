package main // Entry point package

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-seat-booking/internal/booking"
	"github.com/iliyamo/movie-seat-booking/internal/clock"
	"github.com/iliyamo/movie-seat-booking/internal/config"
	"github.com/iliyamo/movie-seat-booking/internal/database"
	"github.com/iliyamo/movie-seat-booking/internal/handler"
	"github.com/iliyamo/movie-seat-booking/internal/lock"
	"github.com/iliyamo/movie-seat-booking/internal/middleware"
	"github.com/iliyamo/movie-seat-booking/internal/notify"
	"github.com/iliyamo/movie-seat-booking/internal/reclaimer"
	"github.com/iliyamo/movie-seat-booking/internal/repository"
	"github.com/iliyamo/movie-seat-booking/internal/router"
	"github.com/iliyamo/movie-seat-booking/internal/seed"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	seatRepo := repository.NewSeatRepo(db)
	showRepo := repository.NewShowRepo(db)

	if cfg.SeedDemo {
		if err := seed.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("schema: %v", err)
		}
		if err := seed.SeedDemo(ctx, showRepo, seatRepo); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	// Redis is optional.  Without it the service falls back to the
	// in-process lock service, disables idempotency caching and skips
	// the reactive reclaim path; the periodic sweep still guarantees
	// eventual reclamation.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; using in-process locks")
	}

	var locks lock.Service = lock.NewMemory()
	opts := []booking.Option{
		booking.WithHoldTTL(cfg.HoldTTL),
		booking.WithLockTTL(cfg.LockTTL),
	}
	if cfg.LockBackend == "redis" && rdb != nil {
		redisLocks := lock.NewRedis(rdb)
		locks = redisLocks
		opts = append(opts, booking.WithHoldTracker(redisLocks))
	}

	publisher := notify.NewPublisher(notify.BrokerURL())
	defer publisher.Close()

	svc := booking.NewService(seatRepo, locks, publisher, clock.NewSystem(), opts...)

	go reclaimer.New(svc, cfg.ReclaimInterval).Run(ctx)
	if cfg.LockBackend == "redis" && rdb != nil {
		go reclaimer.RunExpirySubscriber(ctx, rdb, svc)
	}
	go func() {
		if err := notify.StartSeatEventConsumer(notify.BrokerURL()); err != nil {
			log.Printf("seat-consumer: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	idempotency := middleware.NewIdempotency(config.LoadIdempotencyConfig(), rdb)
	router.RegisterRoutes(e,
		handler.NewShowHandler(showRepo, seatRepo),
		handler.NewSeatHandler(svc, seatRepo, showRepo),
		idempotency,
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
