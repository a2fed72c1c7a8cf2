package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Server is the ops dashboard backend. It runs on its own port, separate
// from the API server, and pushes alerts to connected WebSocket clients
// when the database degrades or orders pile up in bad states.
type Server struct {
	db   *pgxpool.Pool
	port int

	alerts    []Alert
	alertsMux sync.RWMutex

	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan Alert

	lastFlagged int64
}

type Alert struct {
	ID        int       `json:"id"`
	Severity  string    `json:"severity"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Resolved  bool      `json:"resolved"`
}

type Stats struct {
	DatabaseStatus    string  `json:"database_status"`
	ActiveConnections int     `json:"active_connections"`
	ResponseTime      int64   `json:"response_time_ms"`
	ActiveAlerts      int     `json:"active_alerts"`
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryPercent     float64 `json:"memory_percent"`
	DiskPercent       float64 `json:"disk_percent"`
	MemoryUsed        string  `json:"memory_used"`
	MemoryTotal       string  `json:"memory_total"`
	DiskUsed          string  `json:"disk_used"`
	DiskTotal         string  `json:"disk_total"`

	ActiveOrders  int64 `json:"active_orders"`
	OverdueOrders int64 `json:"overdue_orders"`
	FlaggedOrders int64 `json:"flagged_orders"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewServer(db *pgxpool.Pool, port int) *Server {
	return &Server{
		db:        db,
		port:      port,
		alerts:    make([]Alert, 0),
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Alert),
	}
}

func (s *Server) Start() {
	r := mux.NewRouter()

	r.HandleFunc("/api/stats", s.getStats).Methods("GET")
	r.HandleFunc("/api/alerts", s.getAlerts).Methods("GET")
	r.HandleFunc("/ws", s.handleWebSocket)

	go s.handleBroadcast()
	go s.watch()

	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("[Monitoring] dashboard API running on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.collectStats())
}

func (s *Server) getAlerts(w http.ResponseWriter, r *http.Request) {
	s.alertsMux.RLock()
	defer s.alertsMux.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.alerts)
}

func (s *Server) collectStats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := s.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	dbStatus := "healthy"
	if err != nil {
		dbStatus = "unhealthy"
	}

	var activeConns int
	s.db.QueryRow(ctx, "SELECT count(*) FROM pg_stat_activity").Scan(&activeConns)

	var active, overdue, flagged int64
	s.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'pending_return'),
			COUNT(*) FILTER (WHERE status = 'flagged')
		FROM orders
	`).Scan(&active, &overdue, &flagged)

	cpuPercent := 0.0
	if percents, err := cpu.Percent(time.Second, false); err == nil && len(percents) > 0 {
		cpuPercent = percents[0]
	}

	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")

	s.alertsMux.RLock()
	activeAlerts := 0
	for _, a := range s.alerts {
		if !a.Resolved {
			activeAlerts++
		}
	}
	s.alertsMux.RUnlock()

	st := Stats{
		DatabaseStatus:    dbStatus,
		ActiveConnections: activeConns,
		ResponseTime:      responseTime,
		ActiveAlerts:      activeAlerts,
		ActiveOrders:      active,
		OverdueOrders:     overdue,
		FlaggedOrders:     flagged,
	}
	if memStats != nil {
		st.MemoryPercent = memStats.UsedPercent
		st.MemoryUsed = formatBytes(memStats.Used)
		st.MemoryTotal = formatBytes(memStats.Total)
	}
	if diskStats != nil {
		st.DiskPercent = diskStats.UsedPercent
		st.DiskUsed = formatBytes(diskStats.Used)
		st.DiskTotal = formatBytes(diskStats.Total)
	}
	st.CPUPercent = cpuPercent
	return st
}

func formatBytes(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb < 1 {
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
	return fmt.Sprintf("%.1f GB", gb)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[Monitoring] WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	s.clientsMux.Lock()
	s.clients[conn] = true
	s.clientsMux.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.clientsMux.Lock()
			delete(s.clients, conn)
			s.clientsMux.Unlock()
			break
		}
	}
}

func (s *Server) handleBroadcast() {
	for alert := range s.broadcast {
		s.clientsMux.Lock()
		for client := range s.clients {
			if err := client.WriteJSON(alert); err != nil {
				client.Close()
				delete(s.clients, client)
			}
		}
		s.clientsMux.Unlock()
	}
}

func (s *Server) raise(severity, alertType, message string) {
	alert := Alert{
		Severity:  severity,
		Type:      alertType,
		Message:   message,
		Timestamp: time.Now(),
	}

	s.alertsMux.Lock()
	alert.ID = len(s.alerts) + 1
	s.alerts = append(s.alerts, alert)
	s.alertsMux.Unlock()

	s.broadcast <- alert
}

// watch polls health and order states every 30 seconds and raises alerts
// on degradation. Flagged-order alerts fire only when the count rises, so
// a stable backlog does not spam connected clients.
func (s *Server) watch() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		stats := s.collectStats()

		if stats.DatabaseStatus == "unhealthy" {
			s.raise("critical", "database_down", "Database is unreachable")
		}
		if stats.ResponseTime > 1000 {
			s.raise("warning", "high_latency",
				fmt.Sprintf("Database response time: %dms", stats.ResponseTime))
		}
		if stats.FlaggedOrders > s.lastFlagged {
			s.raise("warning", "orders_flagged",
				fmt.Sprintf("%d order(s) flagged for damage or missing items", stats.FlaggedOrders-s.lastFlagged))
		}
		s.lastFlagged = stats.FlaggedOrders
	}
}
