package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"rentshop-backend/internal/services"
)

// PaymentHandler exposes the online payment flow: opening a gateway order
// for an order's outstanding amount and receiving capture webhooks.
type PaymentHandler struct {
	Razorpay *services.RazorpayService
}

func NewPaymentHandler(razorpay *services.RazorpayService) *PaymentHandler {
	return &PaymentHandler{Razorpay: razorpay}
}

func (h *PaymentHandler) CreatePaymentOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.Razorpay.CreatePaymentOrder(r.Context(), id, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Webhook receives Razorpay events. The signature covers the raw body, so
// the body is read before decoding.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if !h.Razorpay.VerifyWebhookSignature(body, signature) {
		log.Printf("[Razorpay] webhook signature rejected")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var event struct {
		Event   string                 `json:"event"`
		Payload map[string]interface{} `json:"payload"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "Invalid webhook payload", http.StatusBadRequest)
		return
	}

	if err := h.Razorpay.ProcessWebhook(r.Context(), event.Event, event.Payload); err != nil {
		// Webhook deliveries retry on non-2xx; real failures should retry,
		// malformed payloads should not.
		log.Printf("[Razorpay] webhook processing failed: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
