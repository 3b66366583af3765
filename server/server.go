// Package server exposes the chat endpoint over HTTP. It is thin
// plumbing: decode the turn request, run it, encode the result.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/forno-labs/pizzabot/agent/contract"
)

type Config struct {
	Host        string `envconfig:"HOST" split_words:"true" default:"0.0.0.0"`
	Port        int    `envconfig:"PORT" split_words:"true" default:"8000"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" split_words:"true" default:"http://localhost:5173,http://localhost:3000"`
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) corsOriginList() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// TurnRunner is the orchestrator surface the router needs.
type TurnRunner interface {
	RunTurn(ctx context.Context, req contractx.TurnRequest) (contractx.TurnResult, error)
}

// Pinger reports backing-store connectivity for the health probe.
// It is nil when the server runs from the embedded catalog.
type Pinger interface {
	Ping(ctx context.Context) error
}

type chatRequest struct {
	Message             string                  `json:"message"`
	ConversationHistory []contractx.ChatMessage `json:"conversation_history"`
	CartItems           []contractx.CartItem    `json:"cart_items"`
	// Total is advisory only; the response total is always recomputed.
	Total float64 `json:"total"`
}

type chatResponse struct {
	Response  string               `json:"response"`
	CartItems []contractx.CartItem `json:"cart_items"`
	Total     float64              `json:"total"`
}

func NewRouter(runner TurnRunner, db Pinger, cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog())

	if origins := cfg.corsOriginList(); len(origins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = origins
		r.Use(cors.New(corsCfg))
	}

	r.GET("/health", func(c *gin.Context) {
		status := "healthy"
		dbStatus := "not_configured"
		if db != nil {
			dbStatus = "healthy"
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				log.Warn().Err(err).Msg("database health check failed")
				dbStatus = "unhealthy"
				status = "degraded"
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   status,
			"database": dbStatus,
			"service":  "pizza-delivery-chatbot",
		})
	})

	r.POST("/chat", func(c *gin.Context) {
		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
			return
		}

		result, err := runner.RunTurn(c.Request.Context(), contractx.TurnRequest{
			Message:   req.Message,
			History:   req.ConversationHistory,
			CartItems: req.CartItems,
		})
		if err != nil {
			log.Error().Err(err).Msg("turn failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process chat message"})
			return
		}

		c.JSON(http.StatusOK, chatResponse{
			Response:  result.Reply,
			CartItems: result.CartItems,
			Total:     result.Total,
		})
	})

	return r
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
