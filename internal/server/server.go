package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/fachebot/chat-insight/internal/logger"
	"github.com/fachebot/chat-insight/internal/svc"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/netutil"
)

// Server 管线前面的薄 HTTP 适配层
type Server struct {
	svcCtx     *svc.ServiceContext
	httpServer *http.Server
}

func NewServer(svcCtx *svc.ServiceContext) *Server {
	s := &Server{svcCtx: svcCtx}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(svcCtx.Config.Server.AllowedOrigins))

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", s.handleHealth)
		api.Post("/parse/text", s.handleParseText)
		api.Post("/parse/file", s.handleParseFile)
		api.Post("/analyze/text", s.handleAnalyzeText)
		api.Post("/analyze/file", s.handleAnalyzeFile)
	})

	s.httpServer = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler 返回路由处理器（测试用）
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start 监听并服务 HTTP 请求，直到 Shutdown 被调用
func (s *Server) Start() error {
	cfg := &s.svcCtx.Config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", addr, err)
	}
	if cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConns)
	}

	logger.Infof("[Server] HTTP 服务监听 %s", addr)
	err = s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown 优雅关闭，等待进行中的请求完成
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware 按配置的来源处理跨域请求，未配置时不输出 CORS 头
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
