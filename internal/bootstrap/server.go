package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/quickreserve/api"
	"github.com/Domenick1991/quickreserve/config"
	"github.com/Domenick1991/quickreserve/internal/service/reservation"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Reservations reservation.ReservationUseCase
	Voice        reservation.VoiceUseCase
	Health       map[string]Pinger
}

// Run serves HTTP until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, svc Services, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewRouter(cfg, svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTP.Address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(cfg *config.Config, svc Services, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(api.Recovery(logger), api.RequestLogger(logger))

	router.GET("/health", healthHandler(svc.Health))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	reservations := router.Group("/reservations", api.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger))
	api.NewReservationHandler(svc.Reservations).Register(reservations)

	voice := router.Group("/voice")
	if cfg.Telephony.ValidateSignatures {
		voice.Use(api.TwilioSignature(cfg.Telephony.AuthToken, cfg.HTTP.PublicBaseURL, logger))
	}
	api.NewVoiceHandler(svc.Voice, logger).Register(voice)

	return router
}

func healthHandler(checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := gin.H{}
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				result[name] = err.Error()
				continue
			}
			result[name] = "ok"
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": result})
	}
}
