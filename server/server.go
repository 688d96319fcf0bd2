// Package server exposes form generation and template conversion over HTTP.
//
// Endpoints:
//
//	POST /api/generate          JSON config or brief -> PDF attachment
//	POST /api/convert-template  base64 template -> PDF attachment (+ X-Field-Count)
//	GET  /healthz               liveness check
//
// Responses carry permissive CORS headers so browser frontends can call the
// API directly.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lvillar/brandform/template"
	"github.com/lvillar/brandform/vision"
)

// Enhancer designs a form configuration from brand materials and a brief.
type Enhancer interface {
	EnhanceBrand(ctx context.Context, images [][]byte, brief, company, title string) (*vision.Enhancement, error)
}

// Server carries the HTTP routes and their collaborators.
type Server struct {
	router    *gin.Engine
	enhancer  Enhancer
	converter *template.Converter
	log       *logrus.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithEnhancer enables the AI design path on /api/generate.
func WithEnhancer(e Enhancer) Option {
	return func(s *Server) { s.enhancer = e }
}

// WithDetector enables field detection for image templates on
// /api/convert-template.
func WithDetector(d template.Detector) Option {
	return func(s *Server) { s.converter = template.NewConverter(d, s.log) }
}

// WithLogger sets the request and build logger.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New assembles the router. Without options the server still generates
// default-config forms and converts templates without detected widgets.
func New(opts ...Option) *Server {
	s := &Server{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	if s.converter == nil {
		s.converter = template.NewConverter(nil, s.log)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), cors())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api := r.Group("/api")
	api.POST("/generate", s.handleGenerate)
	api.POST("/convert-template", s.handleConvertTemplate)

	s.router = r
	return s
}

// Handler returns the http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.WithField("addr", addr).Info("http server listening")
	return s.router.Run(addr)
}

// cors sends the permissive headers every response needs and short-circuits
// preflight requests.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Expose-Headers", "X-Field-Count")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func jsonError(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{"error": err.Error()})
}
