package server

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type Server struct {
	logger *logrus.Logger
	srv    *http.Server
}

// NewServer is a constructor
func NewServer(logger *logrus.Logger, handler http.Handler, port string) *Server {
	return &Server{
		logger: logger,
		srv: &http.Server{
			Addr:         ":" + port,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// Start serves in the background; errors other than a clean shutdown are fatal.
func (s *Server) Start() {
	s.logger.Infof("server listening on %s", s.srv.Addr)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal(err)
		}
	}()
}

// Close drains in-flight requests before shutting down.
func (s *Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error(err)
	}
	s.logger.Info("server stopped")
}
