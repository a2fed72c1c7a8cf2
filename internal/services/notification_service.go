package services

import (
	"context"
	"fmt"
	"log"

	"rentshop-backend/internal/models"
	"rentshop-backend/internal/sms"
	"rentshop-backend/internal/timeutil"
)

// NotificationService sends SMS receipts to customers. Delivery is
// fire-and-forget: a failed send is logged, never returned to the caller.
type NotificationService struct {
	provider  sms.Provider
	customers CustomerStore
}

func NewNotificationService(provider sms.Provider, customers CustomerStore) *NotificationService {
	return &NotificationService{provider: provider, customers: customers}
}

func (s *NotificationService) OrderBooked(ctx context.Context, order *models.Order) {
	s.send(ctx, order.CustomerID, fmt.Sprintf(
		"Your rental order %s is booked for %s to %s. Total Rs. %.2f.",
		order.InvoiceNumber,
		timeutil.FormatIST(order.StartDate, timeutil.DateLayout),
		timeutil.FormatIST(order.EndDate, timeutil.DateLayout),
		order.TotalAmount,
	))
}

func (s *NotificationService) ReturnProcessed(ctx context.Context, order *models.Order) {
	s.send(ctx, order.CustomerID, fmt.Sprintf(
		"Return recorded for order %s. Status: %s. Total Rs. %.2f.",
		order.InvoiceNumber, order.Status, order.TotalAmount,
	))
}

func (s *NotificationService) DepositRefunded(ctx context.Context, order *models.Order, amount float64) {
	s.send(ctx, order.CustomerID, fmt.Sprintf(
		"Security deposit refund of Rs. %.2f recorded for order %s.",
		amount, order.InvoiceNumber,
	))
}

func (s *NotificationService) PaymentReceived(ctx context.Context, order *models.Order, amount float64) {
	s.send(ctx, order.CustomerID, fmt.Sprintf(
		"Payment of Rs. %.2f received for order %s. Thank you.",
		amount, order.InvoiceNumber,
	))
}

func (s *NotificationService) send(ctx context.Context, customerID int, message string) {
	if s.provider == nil {
		return
	}
	customer, err := s.customers.Get(ctx, customerID)
	if err != nil || customer.Phone == "" {
		return
	}
	if err := s.provider.SendSMS(customer.Phone, message); err != nil {
		log.Printf("[SMS] send to customer %d failed: %v", customerID, err)
	}
}
