// Package store holds the in-memory risk state: desk and trader records,
// their exposure counters, and the desk -> traders index.
//
// Counter mutation happens only on the processor's consumer goroutine, so
// no write ever contends with another write. The mutex exists because
// configuration reads from API goroutines can race with that single writer.
package store

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/LeonAdeoye/notional-limit-service/pkg/models"
)

var (
	ErrDeskNotFound   = errors.New("desk not found")
	ErrTraderNotFound = errors.New("trader not found")
	ErrDeskExists     = errors.New("desk already exists")
	ErrTraderExists   = errors.New("trader already exists")
	ErrDeskHasTraders = errors.New("desk has associated traders")
)

// Store is the sole source of truth for exposure counters.
type Store struct {
	mu          sync.RWMutex
	desks       map[uuid.UUID]*models.Desk
	traders     map[uuid.UUID]*models.Trader
	deskTraders map[uuid.UUID][]uuid.UUID
	logger      *zap.Logger
}

// NewStore creates an empty store.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		desks:       make(map[uuid.UUID]*models.Desk),
		traders:     make(map[uuid.UUID]*models.Trader),
		deskTraders: make(map[uuid.UUID][]uuid.UUID),
		logger:      logger,
	}
}

// Load populates the store from persisted configuration. Traders referencing
// an unknown desk are skipped and logged; they cannot take part in limit
// accounting.
func (s *Store) Load(desks []models.Desk, traders []models.Trader) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range desks {
		desk := desks[i]
		s.desks[desk.ID] = &desk
	}
	for i := range traders {
		trader := traders[i]
		if _, ok := s.desks[trader.DeskID]; !ok {
			s.logger.Warn("Skipping trader with unknown desk",
				zap.String("trader_id", trader.ID.String()),
				zap.String("desk_id", trader.DeskID.String()))
			continue
		}
		s.traders[trader.ID] = &trader
		s.deskTraders[trader.DeskID] = append(s.deskTraders[trader.DeskID], trader.ID)
	}

	s.logger.Info("Loaded risk state",
		zap.Int("desks", len(s.desks)),
		zap.Int("traders", len(s.traders)))
}

// CreateDesk adds a new desk.
func (s *Store) CreateDesk(desk models.Desk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.desks[desk.ID]; ok {
		return ErrDeskExists
	}
	s.desks[desk.ID] = &desk
	return nil
}

// Desk returns a copy of the desk with the given id.
func (s *Store) Desk(id uuid.UUID) (models.Desk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	desk, ok := s.desks[id]
	if !ok {
		return models.Desk{}, false
	}
	return *desk, true
}

// Desks returns copies of all desks.
func (s *Store) Desks() []models.Desk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Desk, 0, len(s.desks))
	for _, desk := range s.desks {
		out = append(out, *desk)
	}
	return out
}

// UpdateDeskLimits replaces a desk's configured limits.
func (s *Store) UpdateDeskLimits(id uuid.UUID, buy, sell, gross decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	desk, ok := s.desks[id]
	if !ok {
		return ErrDeskNotFound
	}
	desk.BuyNotionalLimit = buy
	desk.SellNotionalLimit = sell
	desk.GrossNotionalLimit = gross
	return nil
}

// DeleteDesk removes a desk. A desk with associated traders cannot be deleted.
func (s *Store) DeleteDesk(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.desks[id]; !ok {
		return ErrDeskNotFound
	}
	if len(s.deskTraders[id]) > 0 {
		return ErrDeskHasTraders
	}
	delete(s.desks, id)
	delete(s.deskTraders, id)
	return nil
}

// CreateTrader adds a new trader to an existing desk.
func (s *Store) CreateTrader(trader models.Trader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.traders[trader.ID]; ok {
		return ErrTraderExists
	}
	if _, ok := s.desks[trader.DeskID]; !ok {
		return ErrDeskNotFound
	}
	s.traders[trader.ID] = &trader
	s.deskTraders[trader.DeskID] = append(s.deskTraders[trader.DeskID], trader.ID)
	return nil
}

// Trader returns a copy of the trader with the given id.
func (s *Store) Trader(id uuid.UUID) (models.Trader, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trader, ok := s.traders[id]
	if !ok {
		return models.Trader{}, false
	}
	return *trader, true
}

// Traders returns copies of all traders.
func (s *Store) Traders() []models.Trader {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Trader, 0, len(s.traders))
	for _, trader := range s.traders {
		out = append(out, *trader)
	}
	return out
}

// TradersForDesk returns copies of the traders associated with a desk.
func (s *Store) TradersForDesk(deskID uuid.UUID) []models.Trader {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.deskTraders[deskID]
	out := make([]models.Trader, 0, len(ids))
	for _, id := range ids {
		if trader, ok := s.traders[id]; ok {
			out = append(out, *trader)
		}
	}
	return out
}

// DeleteTrader removes a trader and its desk association.
func (s *Store) DeleteTrader(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trader, ok := s.traders[id]
	if !ok {
		return ErrTraderNotFound
	}
	ids := s.deskTraders[trader.DeskID]
	for i, tid := range ids {
		if tid == id {
			s.deskTraders[trader.DeskID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	delete(s.traders, id)
	return nil
}

// ResolveOrder looks up the trader and its owning desk for an order,
// returning copies safe to read without further locking.
func (s *Store) ResolveOrder(traderID uuid.UUID) (models.Trader, models.Desk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trader, ok := s.traders[traderID]
	if !ok {
		return models.Trader{}, models.Desk{}, ErrTraderNotFound
	}
	desk, ok := s.desks[trader.DeskID]
	if !ok {
		return models.Trader{}, models.Desk{}, ErrDeskNotFound
	}
	return *trader, *desk, nil
}

// ApplyFill adds an accepted order's USD notional to the side counters of
// both the trader and its desk in one critical section, so a reader can
// never observe one updated without the other. It returns post-update
// copies for event construction.
func (s *Store) ApplyFill(traderID uuid.UUID, side models.Side, notionalUSD decimal.Decimal) (models.Trader, models.Desk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trader, ok := s.traders[traderID]
	if !ok {
		return models.Trader{}, models.Desk{}, ErrTraderNotFound
	}
	desk, ok := s.desks[trader.DeskID]
	if !ok {
		return models.Trader{}, models.Desk{}, ErrDeskNotFound
	}

	if side == models.SideBuy {
		desk.CurrentBuyNotional = desk.CurrentBuyNotional.Add(notionalUSD)
		trader.CurrentBuyNotional = trader.CurrentBuyNotional.Add(notionalUSD)
	} else {
		desk.CurrentSellNotional = desk.CurrentSellNotional.Add(notionalUSD)
		trader.CurrentSellNotional = trader.CurrentSellNotional.Add(notionalUSD)
	}
	return *trader, *desk, nil
}
