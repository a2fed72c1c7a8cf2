package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"rentshop-backend/internal/middleware"
	"rentshop-backend/internal/models"
	"rentshop-backend/internal/repositories"
	"rentshop-backend/internal/services"
)

type OrderHandler struct {
	Orders        *services.OrderService
	Returns       *services.ReturnService
	Deposits      *services.DepositService
	Invoices      *services.InvoicePDFService
	Notifications *services.NotificationService
}

func NewOrderHandler(orders *services.OrderService, returns *services.ReturnService,
	deposits *services.DepositService, invoices *services.InvoicePDFService,
	notifications *services.NotificationService) *OrderHandler {
	return &OrderHandler{
		Orders:        orders,
		Returns:       returns,
		Deposits:      deposits,
		Invoices:      invoices,
		Notifications: notifications,
	}
}

// actorID is the staff user behind the request, as a ledger actor string.
func actorID(r *http.Request) string {
	if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		return strconv.Itoa(userID)
	}
	return "unknown"
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	snap, err := h.Orders.Create(r.Context(), &req, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.Notifications.OrderBooked(r.Context(), snap.Order)
	writeJSON(w, http.StatusCreated, snap)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	snap, err := h.Orders.Snapshot(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.OrderFilter{
		Status: models.OrderStatus(q.Get("status")),
	}
	filter.BranchID, _ = strconv.Atoi(q.Get("branch_id"))
	filter.CustomerID, _ = strconv.Atoi(q.Get("customer_id"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	orders, err := h.Orders.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	order, err := h.Orders.Cancel(r.Context(), id, actorID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) ProcessReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	var req services.ProcessReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	snap, err := h.Returns.ProcessReturn(r.Context(), id, &req, actorID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	h.Notifications.ReturnProcessed(r.Context(), snap.Order)
	writeJSON(w, http.StatusOK, snap)
}

func (h *OrderHandler) CollectDeposit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	var req struct {
		Method string `json:"method"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.Deposits.CollectSecurityDeposit(r.Context(), id, req.Method, req.Notes, actorID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) RefundDeposit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	var req services.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.Deposits.RefundSecurityDeposit(r.Context(), id, &req, actorID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	h.Notifications.DepositRefunded(r.Context(), order, req.Amount)
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) CollectOutstanding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	var req services.CollectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.Deposits.CollectOutstandingAmount(r.Context(), id, &req, actorID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	h.Notifications.PaymentReceived(r.Context(), order, req.Amount)
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	txns, err := h.Deposits.Transactions(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

func (h *OrderHandler) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	snap, err := h.Orders.Snapshot(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	pdf, err := h.Invoices.Generate(r.Context(), snap)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`inline; filename="%s.pdf"`, snap.Order.InvoiceNumber))
	w.Write(pdf)
}
