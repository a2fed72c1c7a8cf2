package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentshop-backend/internal/models"
)

func newRazorpayFixture(t *testing.T) (*RazorpayService, *fakeOrderStore, *fakeLedger) {
	t.Helper()
	orders := newFakeOrderStore(&models.Order{
		ID: 1, CustomerID: 10, Status: models.StatusFlagged,
		InvoiceNumber:            "MN-20260301-0042",
		Subtotal:                 2000,
		SecurityDepositAmount:    500,
		SecurityDepositCollected: true,
		DepositBalance:           500,
	})
	ledger := newFakeLedger()
	require.NoError(t, ledger.Append(context.Background(), &models.PaymentTransaction{
		OrderID: 1, Type: models.TransactionTypeDepositCollection, Amount: 500, ActorID: "5",
	}))
	deposits := NewDepositService(orders, ledger, &fakeTx{})
	svc := NewRazorpayService("key", "secret", "whsecret", orders, ledger, deposits)
	return svc, orders, ledger
}

func sign(secret string, data []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	svc, _, _ := newRazorpayFixture(t)
	body := []byte(`{"event":"payment.captured"}`)

	assert.True(t, svc.VerifyWebhookSignature(body, sign("whsecret", body)))
	assert.False(t, svc.VerifyWebhookSignature(body, sign("wrong", body)))
	assert.False(t, svc.VerifyWebhookSignature(body, ""))
}

func TestVerifyCheckoutSignature(t *testing.T) {
	svc, _, _ := newRazorpayFixture(t)

	sig := sign("secret", []byte("order_abc|pay_xyz"))
	assert.True(t, svc.VerifyCheckoutSignature("order_abc", "pay_xyz", sig))
	assert.False(t, svc.VerifyCheckoutSignature("order_abc", "pay_other", sig))
}

func capturedPayload(paymentID string, amountPaise float64, orderID interface{}) map[string]interface{} {
	return map[string]interface{}{
		"payment": map[string]interface{}{
			"entity": map[string]interface{}{
				"id":     paymentID,
				"amount": amountPaise,
				"method": "upi",
				"notes":  map[string]interface{}{"order_id": orderID},
			},
		},
	}
}

func TestProcessWebhookRecordsCapture(t *testing.T) {
	svc, orders, ledger := newRazorpayFixture(t)

	// 800 rupees against outstanding of 2000 - 500 = 1500
	err := svc.ProcessWebhook(context.Background(), "payment.captured",
		capturedPayload("pay_123", 80000, float64(1)))
	require.NoError(t, err)

	stored, _ := orders.Get(context.Background(), 1)
	assert.InDelta(t, 800.0, stored.AdditionalAmountCollected, 0.001)

	txns, _ := ledger.ListByOrder(context.Background(), 1)
	require.Len(t, txns, 2) // seeded deposit collection + the capture
	assert.Equal(t, models.TransactionTypeOnlinePayment, txns[1].Type)
	assert.Equal(t, "pay_123", txns[1].Reference)
	assert.Equal(t, "system", txns[1].ActorID)
}

func TestProcessWebhookIsIdempotent(t *testing.T) {
	svc, orders, ledger := newRazorpayFixture(t)

	payload := capturedPayload("pay_123", 80000, float64(1))
	require.NoError(t, svc.ProcessWebhook(context.Background(), "payment.captured", payload))
	require.NoError(t, svc.ProcessWebhook(context.Background(), "payment.captured", payload))

	txns, _ := ledger.ListByOrder(context.Background(), 1)
	assert.Len(t, txns, 2) // the duplicate delivery adds nothing

	stored, _ := orders.Get(context.Background(), 1)
	assert.InDelta(t, 800.0, stored.AdditionalAmountCollected, 0.001)
}

func TestProcessWebhookIgnoresOtherEvents(t *testing.T) {
	svc, _, ledger := newRazorpayFixture(t)

	require.NoError(t, svc.ProcessWebhook(context.Background(), "payment.failed",
		capturedPayload("pay_123", 80000, float64(1))))

	txns, _ := ledger.ListByOrder(context.Background(), 1)
	assert.Len(t, txns, 1) // only the seeded deposit collection
}

func TestProcessWebhookStringOrderID(t *testing.T) {
	svc, orders, _ := newRazorpayFixture(t)

	err := svc.ProcessWebhook(context.Background(), "payment.captured",
		capturedPayload("pay_456", 50000, "1"))
	require.NoError(t, err)

	stored, _ := orders.Get(context.Background(), 1)
	assert.InDelta(t, 500.0, stored.AdditionalAmountCollected, 0.001)
}
