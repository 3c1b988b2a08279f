package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/quickreserve/config"
	"github.com/Domenick1991/quickreserve/internal/kafka"
	"github.com/Domenick1991/quickreserve/internal/logger"
	"github.com/Domenick1991/quickreserve/internal/notify"
	kafkaGo "github.com/segmentio/kafka-go"
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

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	notifier := notify.NewNotifier(lg)

	lg.Info("worker started", zap.String("topic", cfg.Kafka.NotificationsTopic))
	err = consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
		event, err := kafka.DecodeReservationEvent(msg)
		if err != nil {
			lg.Warn("skip malformed event", zap.Error(err))
			return nil
		}
		return notifier.Send(ctx, event)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		lg.Fatal("consumer stopped", zap.Error(err))
	}
	lg.Info("worker stopped")
}
