package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"rentshop-backend/internal/auth"
	"rentshop-backend/internal/cache"
	"rentshop-backend/internal/config"
	"rentshop-backend/internal/database"
	"rentshop-backend/internal/db"
	"rentshop-backend/internal/handlers"
	"rentshop-backend/internal/health"
	apphttp "rentshop-backend/internal/http"
	"rentshop-backend/internal/middleware"
	"rentshop-backend/internal/monitoring"
	"rentshop-backend/internal/repositories"
	"rentshop-backend/internal/services"
	"rentshop-backend/internal/sms"
	"rentshop-backend/internal/storage"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	monitoringPort := flag.Int("monitoring-port", 9090, "Monitoring dashboard port")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis is optional; every cached path degrades to a miss without it.
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (login will use bcrypt only)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.NewMigrator(pool, "migrations").Run(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	healthChecker := health.NewHealthChecker(pool)

	// Ops dashboard runs on its own port so it can be firewalled separately.
	go monitoring.NewServer(pool, *monitoringPort).Start()

	jwtManager := auth.NewJWTManager(cfg)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	branchRepo := repositories.NewBranchRepository(pool)
	orderRepo := repositories.NewOrderRepository(pool)
	itemRepo := repositories.NewOrderItemRepository(pool)
	ledgerRepo := repositories.NewPaymentTransactionRepository(pool)
	txManager := repositories.NewTxManager(pool)

	// SMS notifications: Fast2SMS in production, mock when no API key is set.
	var smsProvider sms.Provider
	if cfg.SMS.Fast2SMSKey != "" {
		log.Println("[SMS] Using Fast2SMS for customer notifications")
		smsProvider = sms.NewFast2SMSProvider(cfg.SMS.Fast2SMSKey)
	} else {
		log.Println("[SMS] FAST2SMS_API_KEY not set, notifications will only print to logs")
		smsProvider = sms.NewMockProvider()
	}

	// Invoice PDFs are archived to R2 when credentials are configured.
	archive := storage.NewR2Archive(cfg)
	if archive == nil {
		log.Println("[R2] Invoice archive disabled (credentials not configured)")
	}

	// Services
	userService := services.NewUserService(userRepo, jwtManager)
	totpService := services.NewTOTPService(userRepo, cfg.JWT.Issuer)
	branchService := services.NewBranchService(branchRepo)
	customerService := services.NewCustomerService(customerRepo, orderRepo)
	orderService := services.NewOrderService(orderRepo, itemRepo, ledgerRepo,
		customerRepo, branchRepo, userRepo, txManager, cfg.Invoice.DefaultPrefix)
	returnService := services.NewReturnService(orderRepo, itemRepo, userRepo, txManager)
	depositService := services.NewDepositService(orderRepo, ledgerRepo, txManager)
	invoiceService := services.NewInvoicePDFService(archive)
	notificationService := services.NewNotificationService(smsProvider, customerRepo)
	razorpayService := services.NewRazorpayService(
		cfg.Razorpay.KeyID,
		cfg.Razorpay.KeySecret,
		cfg.Razorpay.WebhookSecret,
		orderRepo,
		ledgerRepo,
		depositService,
	)
	if razorpayService.Enabled() {
		log.Println("[Razorpay] Online payments enabled")
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, totpService)
	userHandler := handlers.NewUserHandler(userService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	branchHandler := handlers.NewBranchHandler(branchService)
	orderHandler := handlers.NewOrderHandler(orderService, returnService,
		depositService, invoiceService, notificationService)
	paymentHandler := handlers.NewPaymentHandler(razorpayService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	router := apphttp.NewRouter(authHandler, userHandler, customerHandler,
		branchHandler, orderHandler, paymentHandler, healthHandler, authMiddleware)

	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	// Move overdue active orders to pending_return once an hour.
	go sweepOverdueOrders(orderService)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func sweepOverdueOrders(orders *services.OrderService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		moved, err := orders.SweepPendingReturns(ctx)
		cancel()
		if err != nil {
			log.Printf("[Sweep] overdue order sweep failed: %v", err)
			continue
		}
		if moved > 0 {
			log.Printf("[Sweep] moved %d overdue order(s) to pending_return", moved)
		}
	}
}
