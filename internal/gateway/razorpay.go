package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"

	razorpay "github.com/razorpay/razorpay-go"
)

// PaymentIntent is the remote order the customer completes on the client.
type PaymentIntent struct {
	GatewayOrderID string
	KeyID          string
}

// Gateway creates remote payment orders and proves that a client-reported
// payment completion is authentic.
type Gateway interface {
	Name() string
	CreatePaymentIntent(ctx context.Context, amount float64, receipt string) (*PaymentIntent, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
}

type Razorpay struct {
	client *razorpay.Client
	keyID  string
	secret string
}

func NewRazorpay(keyID, secret string) *Razorpay {
	c := razorpay.NewClient(keyID, secret)
	return &Razorpay{client: c, keyID: keyID, secret: secret}
}

func (r *Razorpay) Name() string { return "razorpay" }

// CreatePaymentIntent creates a Razorpay order for the amount, keyed to our
// order id via the receipt field. Amount is rupees; Razorpay wants paise.
func (r *Razorpay) CreatePaymentIntent(ctx context.Context, amount float64, receipt string) (*PaymentIntent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := map[string]interface{}{
		"amount":   int64(math.Round(amount * 100)),
		"currency": "INR",
		"receipt":  receipt,
	}
	body, err := r.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay create order: response missing id")
	}
	return &PaymentIntent{GatewayOrderID: id, KeyID: r.keyID}, nil
}

// VerifySignature checks the HMAC-SHA256 Razorpay computes over
// "<order_id>|<payment_id>" with the key secret. Constant-time compare.
func (r *Razorpay) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(r.secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
