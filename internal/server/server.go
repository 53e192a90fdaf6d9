package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-netstate/internal/core/connectivity"
	"github.com/dep2p/go-netstate/pkg/interfaces"
)

// DefaultAddr 默认监听地址
const DefaultAddr = "127.0.0.1:7070"

// ============================================================================
//                              配置
// ============================================================================

// Config 服务配置
type Config struct {
	// Addr 监听地址，默认 "127.0.0.1:7070"
	Addr string

	// Monitor 连通性监控器（必需）
	Monitor interfaces.ConnectivityMonitor

	// Polling 生效的轮询配置，仅用于展示
	Polling connectivity.PollingConfig

	// Gatherer 为 nil 时不提供 /metrics
	Gatherer prometheus.Gatherer

	// CustomHandlers 自定义处理器
	CustomHandlers map[string]http.HandlerFunc
}

// ============================================================================
//                              Server
// ============================================================================

// Server 状态 HTTP 服务
type Server struct {
	config Config

	server   *http.Server
	listener net.Listener

	// done 在 Stop 时关闭，用于结束 WebSocket 连接
	done chan struct{}
	wg   sync.WaitGroup

	running   bool
	startTime time.Time

	mu sync.Mutex
}

// New 创建服务
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return &Server{config: cfg}
}

// Handler 返回路由，便于测试或嵌入其它服务
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", s.handleHealth)

	if s.config.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}

	for path, handler := range s.config.CustomHandlers {
		mux.HandleFunc(path, handler)
	}
	return mux
}

// Start 启动服务
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.config.Monitor == nil {
		return errors.New("server: monitor is required")
	}

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.done = make(chan struct{})

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("状态服务异常退出", "error", err)
		}
	}()

	s.running = true
	s.startTime = time.Now()
	logger.Info("状态服务已启动", "addr", listener.Addr().String())
	return nil
}

// Stop 停止服务，关闭所有 WebSocket 连接
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	server := s.server
	done := s.done
	s.mu.Unlock()

	close(done)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := server.Shutdown(ctx)
	s.wg.Wait()

	if err != nil {
		logger.Error("关闭状态服务失败", "error", err)
		return err
	}
	logger.Info("状态服务已停止")
	return nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// ============================================================================
//                              响应结构
// ============================================================================

// StatusResponse 状态响应
type StatusResponse struct {
	Online    bool          `json:"online"`
	Polling   PollingStatus `json:"polling"`
	Timestamp time.Time     `json:"timestamp"`
}

// PollingStatus 轮询配置
type PollingStatus struct {
	Enabled  bool   `json:"enabled"`
	URL      string `json:"url"`
	Timeout  string `json:"timeout"`
	Interval string `json:"interval"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime,omitempty"`
}

// ============================================================================
//                              HTTP 处理器
// ============================================================================

// handleStatus 处理状态请求
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p := s.config.Polling
	s.writeJSON(w, StatusResponse{
		Online: s.config.Monitor.Query().Online,
		Polling: PollingStatus{
			Enabled:  p.Enabled,
			URL:      p.URL,
			Timeout:  p.Timeout.String(),
			Interval: p.Interval.String(),
		},
		Timestamp: time.Now(),
	})
}

// handleHealth 处理健康检查请求
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	}
	s.mu.Lock()
	if s.running {
		health.Uptime = time.Since(s.startTime).String()
	}
	s.mu.Unlock()

	s.writeJSON(w, health)
}

// writeJSON 写入 JSON 响应
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		logger.Error("JSON 编码失败", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
