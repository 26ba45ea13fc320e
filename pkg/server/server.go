// Package server exposes the derivative engine over HTTP.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/wildfunctions/derivada/pkg/deriv"
	"github.com/wildfunctions/derivada/pkg/engine"
	"github.com/wildfunctions/derivada/pkg/parse"
)

// ServiceVersion is reported by the health endpoint.
const ServiceVersion = "0.1.0"

// MaxBatchSize caps the number of requests in one batch call.
const MaxBatchSize = 256

// MaxBodyBytes caps the size of a request body.
const MaxBodyBytes = 1 << 20

// DeriveRequest is the body of POST /v1/derive.
type DeriveRequest struct {
	Expression string `json:"expression" binding:"required"`
	Variable   string `json:"variable"`
}

// DeriveResponse is returned for a successful derivation.
type DeriveResponse struct {
	ID       string `json:"id"`
	Input    string `json:"input"`
	Variable string `json:"variable"`
	Result   string `json:"result"`
	LaTeX    string `json:"latex"`
	Nodes    int    `json:"nodes"`
}

// ErrorResponse is returned for any failed request.
type ErrorResponse struct {
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
	Shape string `json:"shape,omitempty"`
}

// BatchRequest is the body of POST /v1/derive/batch.
type BatchRequest struct {
	Items []DeriveRequest `json:"items" binding:"required"`
}

// RuleInfo describes one rewrite rule.
type RuleInfo struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Result  string `json:"result"`
}

// HealthResponse is returned by GET /v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Handlers contains the HTTP handlers.
type Handlers struct {
	eng    *engine.Engine
	logger *slog.Logger
}

// NewHandlers creates handlers backed by eng.
func NewHandlers(eng *engine.Engine, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{eng: eng, logger: logger}
}

// RegisterRoutes mounts the API under rg.
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.POST("/derive", h.HandleDerive)
	rg.POST("/derive/batch", h.HandleBatch)
	rg.GET("/rules", h.HandleRules)
	rg.GET("/health", h.HandleHealth)
}

// NewRouter builds the full router: the API under /v1 plus /metrics. The API
// is rate limited when the engine config sets rate_limit.
func NewRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware("derivada"), requestID())
	api := router.Group("/v1")
	api.Use(limitBody(MaxBodyBytes))
	if limit := h.eng.Config().RateLimit; limit > 0 {
		api.Use(rateLimit(rate.NewLimiter(rate.Limit(limit), max(1, int(limit)))))
	}
	RegisterRoutes(api, h)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

const requestIDHeader = "X-Request-ID"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// bindError answers a request whose body could not be decoded.
func bindError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func rateLimit(l *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// HandleDerive handles POST /v1/derive.
//
// Responds 200 with DeriveResponse, 400 for malformed bodies or expressions,
// 413 for oversized bodies or expressions nested past max_depth, and 422
// when no rewrite rule covers the expression.
func (h *Handlers) HandleDerive(c *gin.Context) {
	var req DeriveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res := h.eng.Derive(c.Request.Context(), engine.Request{Input: req.Expression, Variable: req.Variable})
	if !res.OK() {
		h.logger.Info("derivation failed",
			slog.String("request_id", c.GetString(requestIDHeader)),
			slog.String("input", req.Expression),
			slog.String("error", res.Error))
		c.JSON(statusFor(res.Err), ErrorResponse{ID: res.ID, Error: res.Error, Shape: res.Shape})
		return
	}
	c.JSON(http.StatusOK, toResponse(res))
}

// HandleBatch handles POST /v1/derive/batch. The response always has status
// 200 and carries per-item results.
func (h *Handlers) HandleBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if len(req.Items) > MaxBatchSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "too many items"})
		return
	}

	reqs := make([]engine.Request, len(req.Items))
	for i, item := range req.Items {
		reqs[i] = engine.Request{Input: item.Expression, Variable: item.Variable}
	}
	c.JSON(http.StatusOK, engine.Summarize(h.eng.DeriveBatch(c.Request.Context(), reqs)))
}

// HandleRules handles GET /v1/rules.
func (h *Handlers) HandleRules(c *gin.Context) {
	rules := deriv.Rules()
	out := make([]RuleInfo, len(rules))
	for i, r := range rules {
		out[i] = RuleInfo{Name: r.String(), Pattern: r.Pattern(), Result: r.Result()}
	}
	c.JSON(http.StatusOK, out)
}

// HandleHealth handles GET /v1/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Version: ServiceVersion})
}

func toResponse(res engine.Result) DeriveResponse {
	return DeriveResponse{
		ID:       res.ID,
		Input:    res.Input,
		Variable: res.Variable,
		Result:   res.Output,
		LaTeX:    res.LaTeX,
		Nodes:    res.Nodes,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, deriv.ErrNoRuleMatched):
		return http.StatusUnprocessableEntity
	case errors.Is(err, parse.ErrSyntax), errors.Is(err, engine.ErrEmptyVariable):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrTooDeep):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
