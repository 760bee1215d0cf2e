package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server 对外 HTTP 服务
//
// Listen 与 Serve 分开：端口绑定失败在启动阶段同步暴露，
// Serve 再放到后台 goroutine。
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	logger     *zap.Logger
}

func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			ErrorLog:          zap.NewStdLog(logger.Named("http")),
		},
		logger: logger,
	}
}

// Listen 绑定监听地址
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.listener = ln
	return nil
}

// Addr 实际监听地址（":0" 时为系统分配的端口）
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.httpServer.Addr
	}
	return s.listener.Addr().String()
}

// Serve 阻塞处理请求；Stop 引起的退出返回 nil
func (s *Server) Serve() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	s.logger.Info("HTTP server listening", zap.String("addr", s.Addr()))
	err := s.httpServer.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop 等待进行中的请求结束；ctx 超时后强制关闭剩余连接
func (s *Server) Stop(ctx context.Context) error {
	start := time.Now()
	err := s.httpServer.Shutdown(ctx)
	// 只 Listen 未 Serve 时监听器不归 http.Server 管理
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.Warn("HTTP drain timed out, closing connections", zap.Duration("waited", time.Since(start)))
		if cerr := s.httpServer.Close(); cerr != nil {
			return errors.Join(err, cerr)
		}
		return err
	}
	if err != nil {
		return err
	}
	s.logger.Info("HTTP server stopped", zap.Duration("drain", time.Since(start)))
	return nil
}
