package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/devxankit/indistylo-sub000/internal/events"
	"github.com/devxankit/indistylo-sub000/internal/notifier"
	"github.com/devxankit/indistylo-sub000/internal/worker"
	"github.com/devxankit/indistylo-sub000/pkg/mq"
)

type Cfg struct {
	RabbitURL     string `envconfig:"RABBIT_URL" required:"true"`
	OrderExchange string `envconfig:"ORDER_EXCHANGE" default:"order.exchange"`
	NotifyQueue   string `envconfig:"NOTIFY_QUEUE" default:"notify.order.q"`
}

func main() {
	_ = godotenv.Load()
	var cfg Cfg
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("config: %v", err)
	}

	cons, err := mq.NewConsumer(cfg.RabbitURL, cfg.OrderExchange, cfg.NotifyQueue,
		[]string{events.RKOrderCreated, events.RKOrderConfirmed})
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer cons.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := worker.New(cons, notifier.NewConsole())
	go func() {
		if err := w.Run(ctx); err != nil {
			log.Fatalf("worker: %v", err)
		}
	}()
	log.Println("[notify] consuming order events")

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	cancel()
	log.Println("[notify] stopped")
}
