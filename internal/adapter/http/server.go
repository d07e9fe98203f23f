package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hktikhin/personal-budget/internal/usecase/envelope"
	"github.com/hktikhin/personal-budget/internal/usecase/ledger"
	"github.com/hktikhin/personal-budget/internal/usecase/summary"
)

// Pinger reports whether the store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server implements the REST API
type Server struct {
	envelopeService *envelope.Service
	ledgerService   *ledger.Service
	summaryService  *summary.Service
	pinger          Pinger
	logger          *zap.Logger
}

// NewServer creates a new REST server
func NewServer(
	envelopeService *envelope.Service,
	ledgerService *ledger.Service,
	summaryService *summary.Service,
	pinger Pinger,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		envelopeService: envelopeService,
		ledgerService:   ledgerService,
		summaryService:  summaryService,
		pinger:          pinger,
		logger:          logger,
	}
}

// Handler builds the gin engine with every route registered
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(RequestID(), AccessLog(s.logger), Recovery(s.logger))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders:   []string{requestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/healthz", s.healthz)
	r.GET("/readyz", s.readyz)

	envelopes := r.Group("/envelopes")
	{
		envelopes.GET("", s.listEnvelopes)
		envelopes.POST("", s.createEnvelope)
		envelopes.GET("/:id", s.getEnvelope)
		envelopes.PUT("/:id", s.replaceEnvelope)
		envelopes.DELETE("/:id", s.deleteEnvelope)
		envelopes.GET("/:id/transactions", s.listEnvelopeTransactions)
		envelopes.POST("/extract/:id", s.extract)
		envelopes.POST("/transfer/:from/:to", s.transfer)
	}

	transactions := r.Group("/transactions")
	{
		transactions.GET("", s.listTransactions)
		transactions.POST("", s.createTransaction)
		transactions.GET("/:id", s.getTransaction)
		transactions.PUT("/:id", s.updateTransaction)
		transactions.DELETE("/:id", s.deleteTransaction)
	}

	r.GET("/summary", s.getSummary)

	return r
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.pinger.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) getSummary(c *gin.Context) {
	result, err := s.summaryService.Get(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSummaryResponse(result))
}
