package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/devxankit/indistylo-sub000/internal/availability"
	"github.com/devxankit/indistylo-sub000/internal/gateway"
	"github.com/devxankit/indistylo-sub000/internal/repository"
	"github.com/devxankit/indistylo-sub000/internal/service"
	transport "github.com/devxankit/indistylo-sub000/internal/transport/http"
	"github.com/devxankit/indistylo-sub000/pkg/config"
	"github.com/devxankit/indistylo-sub000/pkg/db"
	"github.com/devxankit/indistylo-sub000/pkg/mq"
	"github.com/devxankit/indistylo-sub000/pkg/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTELEnabled {
		shutdown, err := obs.InitTracer(ctx, cfg.ServiceName)
		if err != nil {
			logger.Fatal("otel init", zap.Error(err))
		}
		defer shutdown(context.Background())
	}

	gdb := db.Open(cfg.PGDSN)
	if err := repository.Migrate(gdb); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	store := repository.New(gdb)

	var pub service.EventPublisher
	if cfg.RabbitURL != "" {
		p, err := mq.NewPublisher(cfg.RabbitURL, cfg.OrderExchange)
		if err != nil {
			logger.Fatal("rabbitmq", zap.Error(err))
		}
		defer p.Close()
		pub = p
	}

	gw := gateway.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpaySecret)
	checker := availability.NewScheduleChecker()

	orders := service.NewOrderService(store, checker, gw, pub, logger)
	settlements := service.NewSettlementService(store, gw, pub, logger)

	h := transport.NewHandler(orders, settlements, logger)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: transport.NewRouter(h, cfg.JWTSecret, logger),
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info("stopped")
}
