package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"strconv"

	razorpay "github.com/razorpay/razorpay-go"

	"rentshop-backend/internal/apperrors"
	"rentshop-backend/internal/billing"
	"rentshop-backend/internal/models"
)

// RazorpayService lets customers pay an order's outstanding amount online.
// Captured payments land in the ledger as online_payment rows with actor
// "system".
type RazorpayService struct {
	orders   OrderStore
	ledger   LedgerStore
	deposits *DepositService

	keyID         string
	keySecret     string
	webhookSecret string
}

func NewRazorpayService(keyID, keySecret, webhookSecret string,
	orders OrderStore, ledger LedgerStore, deposits *DepositService) *RazorpayService {
	return &RazorpayService{
		orders:   orders,
		ledger:   ledger,
		deposits: deposits,

		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
	}
}

func (s *RazorpayService) Enabled() bool {
	return s.keyID != "" && s.keySecret != ""
}

type CreatePaymentOrderResponse struct {
	RazorpayOrderID string  `json:"razorpay_order_id"`
	AmountPaise     int     `json:"amount_paise"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	KeyID           string  `json:"key_id"`
	InvoiceNumber   string  `json:"invoice_number"`
}

// CreatePaymentOrder opens a gateway order for (part of) the order's
// outstanding amount. A zero requested amount means the full outstanding.
func (s *RazorpayService) CreatePaymentOrder(ctx context.Context, orderID int, amount float64) (*CreatePaymentOrderResponse, error) {
	if !s.Enabled() {
		return nil, apperrors.Validation("online payments are not configured")
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.StatusCancelled {
		return nil, apperrors.Validation("order %d is cancelled", orderID)
	}

	outstanding := billing.Outstanding(order)
	if outstanding <= 0 {
		return nil, apperrors.Validation("order %d has nothing outstanding", orderID)
	}
	if amount <= 0 {
		amount = outstanding
	}
	if amount > outstanding+billing.MoneyTolerance {
		return nil, apperrors.Validation("requested %.2f exceeds outstanding %.2f", amount, outstanding)
	}

	client := razorpay.NewClient(s.keyID, s.keySecret)
	amountPaise := int(billing.Round2(amount) * 100)

	gwOrder, err := client.Order.Create(map[string]interface{}{
		"amount":   amountPaise,
		"currency": "INR",
		"receipt":  order.InvoiceNumber,
		"notes": map[string]interface{}{
			"order_id":       order.ID,
			"invoice_number": order.InvoiceNumber,
		},
	}, nil)
	if err != nil {
		return nil, apperrors.Persistence("razorpay order creation failed", err)
	}

	gwOrderID, _ := gwOrder["id"].(string)
	log.Printf("[Razorpay] gateway order %s opened for order %d (%.2f)", gwOrderID, orderID, amount)
	return &CreatePaymentOrderResponse{
		RazorpayOrderID: gwOrderID,
		AmountPaise:     amountPaise,
		Amount:          billing.Round2(amount),
		Currency:        "INR",
		KeyID:           s.keyID,
		InvoiceNumber:   order.InvoiceNumber,
	}, nil
}

// VerifyCheckoutSignature checks the signature the frontend receives after a
// successful checkout: HMAC-SHA256 of "order_id|payment_id" with the key
// secret.
func (s *RazorpayService) VerifyCheckoutSignature(gwOrderID, paymentID, signature string) bool {
	return verifyHMAC(s.keySecret, []byte(gwOrderID+"|"+paymentID), signature)
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header over the raw
// webhook body. An unconfigured webhook secret rejects everything.
func (s *RazorpayService) VerifyWebhookSignature(body []byte, signature string) bool {
	if s.webhookSecret == "" {
		return false
	}
	return verifyHMAC(s.webhookSecret, body, signature)
}

func verifyHMAC(secret string, data []byte, signature string) bool {
	if secret == "" {
		return false
	}
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ProcessWebhook handles a verified webhook event. Only payment.captured
// moves money; everything else is logged and dropped.
func (s *RazorpayService) ProcessWebhook(ctx context.Context, event string, payload map[string]interface{}) error {
	if event != "payment.captured" {
		log.Printf("[Razorpay] ignoring webhook event %s", event)
		return nil
	}

	entity := paymentEntity(payload)
	paymentID, _ := entity["id"].(string)
	if paymentID == "" {
		return apperrors.Validation("webhook payment entity has no id")
	}

	orderID, err := orderIDFromNotes(entity)
	if err != nil {
		return err
	}

	// Webhooks retry; a payment id already in the ledger means this capture
	// was recorded before.
	txns, err := s.ledger.ListByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	for _, t := range txns {
		if t.Type == models.TransactionTypeOnlinePayment && t.Reference == paymentID {
			log.Printf("[Razorpay] payment %s already recorded on order %d", paymentID, orderID)
			return nil
		}
	}

	amountPaise, ok := entity["amount"].(float64)
	if !ok || amountPaise <= 0 {
		return apperrors.Validation("webhook payment %s has no amount", paymentID)
	}

	method, _ := entity["method"].(string)
	if method == "" {
		method = "razorpay"
	}

	_, err = s.deposits.RecordOnlinePayment(ctx, orderID, &CollectRequest{
		Amount:    billing.Round2(amountPaise / 100),
		Method:    method,
		Reference: paymentID,
		Notes:     "captured via razorpay webhook",
	}, "system")
	if err != nil {
		return err
	}
	log.Printf("[Razorpay] payment %s captured for order %d (%.2f)", paymentID, orderID, amountPaise/100)
	return nil
}

func paymentEntity(payload map[string]interface{}) map[string]interface{} {
	if p, ok := payload["payment"].(map[string]interface{}); ok {
		if e, ok := p["entity"].(map[string]interface{}); ok {
			return e
		}
		return p
	}
	return payload
}

func orderIDFromNotes(entity map[string]interface{}) (int, error) {
	notes, ok := entity["notes"].(map[string]interface{})
	if !ok {
		return 0, apperrors.Validation("webhook payment has no notes")
	}
	switch v := notes["order_id"].(type) {
	case float64:
		return int(v), nil
	case string:
		id, err := strconv.Atoi(v)
		if err != nil {
			return 0, apperrors.Validation("webhook order_id %q is not numeric", v)
		}
		return id, nil
	}
	return 0, apperrors.Validation("webhook notes missing order_id")
}
