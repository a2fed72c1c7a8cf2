package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rentshop-backend/internal/handlers"
	"rentshop-backend/internal/middleware"
	"rentshop-backend/internal/models"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	customerHandler *handlers.CustomerHandler,
	branchHandler *handlers.BranchHandler,
	orderHandler *handlers.OrderHandler,
	paymentHandler *handlers.PaymentHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	adminOnly := authMiddleware.RequireRole(models.RoleSuperAdmin, models.RoleBranchAdmin)

	// Public API routes - Authentication
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/verify-2fa", authHandler.Verify2FA).Methods("POST")

	// Public API routes - Payment gateway webhooks (signature-verified, no JWT)
	r.HandleFunc("/api/payments/webhook", paymentHandler.Webhook).Methods("POST")

	// Protected API routes - Account
	accountAPI := r.PathPrefix("/api/auth").Subrouter()
	accountAPI.Use(authMiddleware.Authenticate)
	accountAPI.HandleFunc("/me", authHandler.Me).Methods("GET")
	accountAPI.HandleFunc("/invoice-settings", authHandler.UpdateInvoiceSettings).Methods("PUT")
	accountAPI.HandleFunc("/totp/setup", authHandler.TOTPSetup).Methods("POST")
	accountAPI.HandleFunc("/totp/enable", authHandler.TOTPEnable).Methods("POST")
	accountAPI.HandleFunc("/totp/disable", authHandler.TOTPDisable).Methods("POST")

	// Protected API routes - Users (admin only for activation)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", userHandler.List).Methods("GET")
	usersAPI.HandleFunc("", adminOnly(http.HandlerFunc(authHandler.Signup)).ServeHTTP).Methods("POST")
	usersAPI.HandleFunc("/{id}", userHandler.Get).Methods("GET")
	usersAPI.HandleFunc("/{id}/active", adminOnly(http.HandlerFunc(userHandler.SetActive)).ServeHTTP).Methods("PATCH")

	// Protected API routes - Branches (admin only for writes)
	branchesAPI := r.PathPrefix("/api/branches").Subrouter()
	branchesAPI.Use(authMiddleware.Authenticate)
	branchesAPI.HandleFunc("", branchHandler.List).Methods("GET")
	branchesAPI.HandleFunc("", adminOnly(http.HandlerFunc(branchHandler.Create)).ServeHTTP).Methods("POST")
	branchesAPI.HandleFunc("/{id}", branchHandler.Get).Methods("GET")
	branchesAPI.HandleFunc("/{id}", adminOnly(http.HandlerFunc(branchHandler.Update)).ServeHTTP).Methods("PUT")

	// Protected API routes - Customers
	customersAPI := r.PathPrefix("/api/customers").Subrouter()
	customersAPI.Use(authMiddleware.Authenticate)
	customersAPI.HandleFunc("", customerHandler.List).Methods("GET")
	customersAPI.HandleFunc("", customerHandler.Create).Methods("POST")
	customersAPI.HandleFunc("/search", customerHandler.Search).Methods("GET")
	customersAPI.HandleFunc("/{id}", customerHandler.Get).Methods("GET")
	customersAPI.HandleFunc("/{id}", customerHandler.Update).Methods("PUT")
	customersAPI.HandleFunc("/{id}/due-amount", customerHandler.DueAmount).Methods("GET")

	// Protected API routes - Orders (the money paths)
	ordersAPI := r.PathPrefix("/api/orders").Subrouter()
	ordersAPI.Use(authMiddleware.Authenticate)
	ordersAPI.HandleFunc("", orderHandler.List).Methods("GET")
	ordersAPI.HandleFunc("", orderHandler.Create).Methods("POST")
	ordersAPI.HandleFunc("/{id}", orderHandler.Get).Methods("GET")
	ordersAPI.HandleFunc("/{id}/cancel", orderHandler.Cancel).Methods("POST")
	ordersAPI.HandleFunc("/{id}/return", orderHandler.ProcessReturn).Methods("POST")
	ordersAPI.HandleFunc("/{id}/deposit/collect", orderHandler.CollectDeposit).Methods("POST")
	ordersAPI.HandleFunc("/{id}/deposit/refund", orderHandler.RefundDeposit).Methods("POST")
	ordersAPI.HandleFunc("/{id}/collect", orderHandler.CollectOutstanding).Methods("POST")
	ordersAPI.HandleFunc("/{id}/transactions", orderHandler.Transactions).Methods("GET")
	ordersAPI.HandleFunc("/{id}/invoice.pdf", orderHandler.InvoicePDF).Methods("GET")
	ordersAPI.HandleFunc("/{id}/payment-order", paymentHandler.CreatePaymentOrder).Methods("POST")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
