package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/quickreserve/config"
	"github.com/Domenick1991/quickreserve/internal/bootstrap"
	"github.com/Domenick1991/quickreserve/internal/cache"
	"github.com/Domenick1991/quickreserve/internal/kafka"
	"github.com/Domenick1991/quickreserve/internal/logger"
	"github.com/Domenick1991/quickreserve/internal/migrate"
	"github.com/Domenick1991/quickreserve/internal/repository"
	"github.com/Domenick1991/quickreserve/internal/service/reservation"
	"github.com/Domenick1991/quickreserve/internal/telephony"
	"github.com/Domenick1991/quickreserve/internal/voice"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg := logger.New(cfg.Log.Level)
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		lg.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := migrate.Up(ctx, pool); err != nil {
		lg.Fatal("apply migrations", zap.Error(err))
	}

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Reservation.StatusCacheTTL())
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, lg)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		lg.Warn("kafka unavailable, events will be dropped after the publish timeout until it recovers", zap.Error(err))
	}

	calls := telephony.NewTwilioClient(cfg.Telephony.AccountSID, cfg.Telephony.AuthToken, cfg.Telephony.FromNumber)
	menus := voice.NewBuilder(cfg.HTTP.PublicBaseURL, cfg.Telephony.Voice, cfg.Telephony.Language, cfg.Telephony.GatherTimeoutSecs)

	svc := reservation.NewReservationService(
		repository.NewReservationRepository(pool),
		repository.NewStoreRepository(pool),
		calls,
		redisCache,
		producer,
		menus,
		cfg.HTTP.PublicBaseURL,
		lg,
		reservation.WithReservationTopic(cfg.Kafka.ReservationTopic),
		reservation.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		reservation.WithDialing(cfg.Telephony.CountryCode, cfg.Telephony.TrunkPrefix),
		reservation.WithRingTimeout(time.Duration(cfg.Telephony.RingTimeoutSeconds)*time.Second),
		reservation.WithLifetime(cfg.Reservation.Expiry()),
	)

	err = bootstrap.Run(ctx, cfg, bootstrap.Services{
		Reservations: svc,
		Voice:        svc,
		Health: map[string]bootstrap.Pinger{
			"postgres": pool,
			"redis":    redisCache,
		},
	}, lg)
	if err != nil {
		lg.Fatal("server error", zap.Error(err))
	}
}
