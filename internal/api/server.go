// Package api exposes the configuration boundary: desk and trader CRUD,
// desk limit management and FX rate management, plus health and metrics.
// The hot processing path never goes through this server.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/LeonAdeoye/notional-limit-service/internal/fx"
	"github.com/LeonAdeoye/notional-limit-service/internal/store"
	"github.com/LeonAdeoye/notional-limit-service/pkg/models"
)

// Persister writes configuration changes through to durable storage.
type Persister interface {
	SaveDesk(ctx context.Context, desk *models.Desk) error
	DeleteDesk(ctx context.Context, id uuid.UUID) error
	SaveTrader(ctx context.Context, trader *models.Trader) error
	DeleteTrader(ctx context.Context, id uuid.UUID) error
	SaveRate(ctx context.Context, currency string, rate decimal.Decimal) error
}

// Server is the configuration API server.
type Server struct {
	router    *gin.Engine
	logger    *zap.Logger
	store     *store.Store
	converter *fx.Converter
	repo      Persister
}

// NewServer creates the API server and registers its routes.
func NewServer(logger *zap.Logger, riskStore *store.Store, converter *fx.Converter, repo Persister) *Server {
	server := &Server{
		logger:    logger,
		store:     riskStore,
		converter: converter,
		repo:      repo,
	}

	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	server.router = router
	server.registerRoutes()
	return server
}

// Start runs the server on addr, blocking until it stops.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting configuration API", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Router returns the internal Gin engine for testing purposes.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) registerRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/health", s.healthCheck)
		v1.GET("/metrics", gin.WrapH(promhttp.Handler()))

		desks := v1.Group("/desks")
		{
			desks.POST("", s.createDesk)
			desks.GET("", s.listDesks)
			desks.GET("/:id", s.getDesk)
			desks.DELETE("/:id", s.deleteDesk)
			desks.PUT("/:id/limits", s.updateDeskLimits)
			desks.GET("/:id/traders", s.listDeskTraders)
		}

		traders := v1.Group("/traders")
		{
			traders.POST("", s.createTrader)
			traders.GET("", s.listTraders)
			traders.GET("/:id", s.getTrader)
			traders.DELETE("/:id", s.deleteTrader)
		}

		currencies := v1.Group("/currencies")
		{
			currencies.GET("/rates", s.listRates)
			currencies.GET("/rates/:currency", s.getRate)
			currencies.PUT("/rates/:currency", s.updateRate)
		}
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createDeskRequest struct {
	ID                 *uuid.UUID `json:"id"`
	Name               string     `json:"name" binding:"required"`
	BuyNotionalLimit   float64    `json:"buyNotionalLimit" binding:"required,gt=0"`
	SellNotionalLimit  float64    `json:"sellNotionalLimit" binding:"required,gt=0"`
	GrossNotionalLimit float64    `json:"grossNotionalLimit" binding:"required,gt=0"`
}

func (s *Server) createDesk(c *gin.Context) {
	var req createDeskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := uuid.New()
	if req.ID != nil {
		id = *req.ID
	}
	desk := models.Desk{
		ID:                 id,
		Name:               req.Name,
		BuyNotionalLimit:   decimal.NewFromFloat(req.BuyNotionalLimit),
		SellNotionalLimit:  decimal.NewFromFloat(req.SellNotionalLimit),
		GrossNotionalLimit: decimal.NewFromFloat(req.GrossNotionalLimit),
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	if err := s.store.CreateDesk(desk); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.repo.SaveDesk(c.Request.Context(), &desk); err != nil {
		s.logger.Error("Failed to persist desk", zap.String("desk_id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist desk"})
		return
	}

	s.logger.Info("Created desk", zap.String("desk_id", id.String()), zap.String("name", desk.Name))
	c.JSON(http.StatusCreated, desk)
}

func (s *Server) listDesks(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Desks())
}

func (s *Server) getDesk(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid desk id"})
		return
	}
	desk, ok := s.store.Desk(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "desk not found"})
		return
	}
	c.JSON(http.StatusOK, desk)
}

func (s *Server) deleteDesk(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid desk id"})
		return
	}

	if err := s.store.DeleteDesk(id); err != nil {
		switch {
		case errors.Is(err, store.ErrDeskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, store.ErrDeskHasTraders):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	if err := s.repo.DeleteDesk(c.Request.Context(), id); err != nil {
		s.logger.Error("Failed to delete persisted desk", zap.String("desk_id", id.String()), zap.Error(err))
	}

	s.logger.Info("Deleted desk", zap.String("desk_id", id.String()))
	c.Status(http.StatusOK)
}

type updateLimitsRequest struct {
	BuyNotionalLimit   float64 `json:"buyNotionalLimit" binding:"required,gt=0"`
	SellNotionalLimit  float64 `json:"sellNotionalLimit" binding:"required,gt=0"`
	GrossNotionalLimit float64 `json:"grossNotionalLimit" binding:"required,gt=0"`
}

func (s *Server) updateDeskLimits(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid desk id"})
		return
	}
	var req updateLimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = s.store.UpdateDeskLimits(id,
		decimal.NewFromFloat(req.BuyNotionalLimit),
		decimal.NewFromFloat(req.SellNotionalLimit),
		decimal.NewFromFloat(req.GrossNotionalLimit))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	desk, _ := s.store.Desk(id)
	if err := s.repo.SaveDesk(c.Request.Context(), &desk); err != nil {
		s.logger.Error("Failed to persist desk limits", zap.String("desk_id", id.String()), zap.Error(err))
	}

	s.logger.Info("Updated desk limits", zap.String("desk_id", id.String()))
	c.JSON(http.StatusOK, desk)
}

func (s *Server) listDeskTraders(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid desk id"})
		return
	}
	if _, ok := s.store.Desk(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "desk not found"})
		return
	}
	c.JSON(http.StatusOK, s.store.TradersForDesk(id))
}

type createTraderRequest struct {
	ID     *uuid.UUID `json:"id"`
	Name   string     `json:"name" binding:"required"`
	DeskID uuid.UUID  `json:"deskId" binding:"required"`
}

func (s *Server) createTrader(c *gin.Context) {
	var req createTraderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := uuid.New()
	if req.ID != nil {
		id = *req.ID
	}
	trader := models.Trader{
		ID:        id,
		Name:      req.Name,
		DeskID:    req.DeskID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.store.CreateTrader(trader); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, store.ErrDeskNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if err := s.repo.SaveTrader(c.Request.Context(), &trader); err != nil {
		s.logger.Error("Failed to persist trader", zap.String("trader_id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist trader"})
		return
	}

	s.logger.Info("Created trader", zap.String("trader_id", id.String()), zap.String("name", trader.Name))
	c.JSON(http.StatusCreated, trader)
}

func (s *Server) listTraders(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Traders())
}

func (s *Server) getTrader(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trader id"})
		return
	}
	trader, ok := s.store.Trader(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "trader not found"})
		return
	}
	c.JSON(http.StatusOK, trader)
}

func (s *Server) deleteTrader(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trader id"})
		return
	}

	if err := s.store.DeleteTrader(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err := s.repo.DeleteTrader(c.Request.Context(), id); err != nil {
		s.logger.Error("Failed to delete persisted trader", zap.String("trader_id", id.String()), zap.Error(err))
	}

	s.logger.Info("Deleted trader", zap.String("trader_id", id.String()))
	c.Status(http.StatusOK)
}

func (s *Server) listRates(c *gin.Context) {
	c.JSON(http.StatusOK, s.converter.Rates())
}

func (s *Server) getRate(c *gin.Context) {
	currency := c.Param("currency")
	rate, ok := s.converter.Rate(currency)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no rate for currency"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"currency": currency, "rate": rate})
}

type updateRateRequest struct {
	Rate float64 `json:"rate" binding:"required,gt=0"`
}

func (s *Server) updateRate(c *gin.Context) {
	currency := c.Param("currency")
	var req updateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rate := decimal.NewFromFloat(req.Rate)
	if err := s.converter.UpdateRate(currency, rate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.repo.SaveRate(c.Request.Context(), currency, rate); err != nil {
		s.logger.Error("Failed to persist fx rate", zap.String("currency", currency), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"currency": currency, "rate": rate})
}
