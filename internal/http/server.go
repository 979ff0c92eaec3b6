package http

import (
	"github.com/gin-gonic/gin"

	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
)

// Server binds the ranking API router to one listen address.
type Server struct {
	Engine *gin.Engine

	log  *logger.Logger
	addr string
}

func NewServer(log *logger.Logger, addr string, cfg RouterConfig) *Server {
	return &Server{
		Engine: NewRouter(cfg),
		log:    log.With("component", "HTTPServer"),
		addr:   addr,
	}
}

func (s *Server) Run() error {
	s.log.Info("Starting HTTP server", "addr", s.addr)
	return s.Engine.Run(s.addr)
}
