package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	PGDSN    string `envconfig:"PG_BOOKING_DSN" required:"true"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// Razorpay credentials; the key id is also handed to the checkout client.
	RazorpayKeyID  string `envconfig:"RAZORPAY_KEY_ID" required:"true"`
	RazorpaySecret string `envconfig:"RAZORPAY_KEY_SECRET" required:"true"`

	// RabbitMQ for order events; empty URL disables publishing.
	RabbitURL     string `envconfig:"RABBIT_URL"`
	OrderExchange string `envconfig:"ORDER_EXCHANGE" default:"order.exchange"`
	NotifyQueue   string `envconfig:"NOTIFY_QUEUE" default:"notify.order.q"`

	OTELEnabled bool   `envconfig:"OTEL_ENABLED" default:"false"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"booking-core"`
}

func Load() (App, error) {
	_ = godotenv.Load()
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
