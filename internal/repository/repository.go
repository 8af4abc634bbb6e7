// Package repository persists desk, trader and FX rate configuration in
// PostgreSQL. Exposure counters are runtime state and never touch the
// database; the in-memory store is rebuilt from here at startup.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/LeonAdeoye/notional-limit-service/pkg/models"
)

// GormRepository implements persistence for the configuration boundary.
type GormRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormRepository creates the repository and migrates its tables.
func NewGormRepository(db *gorm.DB, logger *zap.Logger) (*GormRepository, error) {
	if err := db.AutoMigrate(&models.Desk{}, &models.Trader{}, &models.FxRate{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &GormRepository{db: db, logger: logger}, nil
}

// SaveDesk inserts or updates a desk record.
func (r *GormRepository) SaveDesk(ctx context.Context, desk *models.Desk) error {
	if err := r.db.WithContext(ctx).Save(desk).Error; err != nil {
		r.logger.Error("Failed to save desk", zap.String("desk_id", desk.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to save desk: %w", err)
	}
	return nil
}

// DeleteDesk removes a desk record.
func (r *GormRepository) DeleteDesk(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.Desk{}, "id = ?", id).Error; err != nil {
		r.logger.Error("Failed to delete desk", zap.String("desk_id", id.String()), zap.Error(err))
		return fmt.Errorf("failed to delete desk: %w", err)
	}
	return nil
}

// SaveTrader inserts or updates a trader record.
func (r *GormRepository) SaveTrader(ctx context.Context, trader *models.Trader) error {
	if err := r.db.WithContext(ctx).Save(trader).Error; err != nil {
		r.logger.Error("Failed to save trader", zap.String("trader_id", trader.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to save trader: %w", err)
	}
	return nil
}

// DeleteTrader removes a trader record.
func (r *GormRepository) DeleteTrader(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.Trader{}, "id = ?", id).Error; err != nil {
		r.logger.Error("Failed to delete trader", zap.String("trader_id", id.String()), zap.Error(err))
		return fmt.Errorf("failed to delete trader: %w", err)
	}
	return nil
}

// Desks loads all desk records.
func (r *GormRepository) Desks(ctx context.Context) ([]models.Desk, error) {
	var desks []models.Desk
	if err := r.db.WithContext(ctx).Find(&desks).Error; err != nil {
		return nil, fmt.Errorf("failed to load desks: %w", err)
	}
	return desks, nil
}

// Traders loads all trader records.
func (r *GormRepository) Traders(ctx context.Context) ([]models.Trader, error) {
	var traders []models.Trader
	if err := r.db.WithContext(ctx).Find(&traders).Error; err != nil {
		return nil, fmt.Errorf("failed to load traders: %w", err)
	}
	return traders, nil
}

// Rates loads all persisted FX rates.
func (r *GormRepository) Rates(ctx context.Context) ([]models.FxRate, error) {
	var rates []models.FxRate
	if err := r.db.WithContext(ctx).Find(&rates).Error; err != nil {
		return nil, fmt.Errorf("failed to load fx rates: %w", err)
	}
	return rates, nil
}

// SaveRate inserts or updates an FX rate.
func (r *GormRepository) SaveRate(ctx context.Context, currency string, rate decimal.Decimal) error {
	record := &models.FxRate{Currency: currency, Rate: rate, UpdatedAt: time.Now()}
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		r.logger.Error("Failed to save fx rate", zap.String("currency", currency), zap.Error(err))
		return fmt.Errorf("failed to save fx rate: %w", err)
	}
	return nil
}
