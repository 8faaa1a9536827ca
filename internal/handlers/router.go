package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouterOptions configures the middleware stack.
type RouterOptions struct {
	CORSOrigin     string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter builds the gin engine: recovery, request id, logging, CORS,
// rate limiting, /health and the items API.
func NewRouter(cfg HandlerConfig, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID())
	if cfg.Logger != nil {
		r.Use(Logger(cfg.Logger))
	}
	if opts.CORSOrigin != "" {
		r.Use(CORS(opts.CORSOrigin))
	}
	r.Use(RateLimit(opts.RateLimitRPS, opts.RateLimitBurst))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	RegisterItemsRoutes(r, cfg)
	return r
}
