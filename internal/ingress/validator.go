package ingress

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/LeonAdeoye/notional-limit-service/pkg/models"
)

// Validator parses and validates raw order payloads from the feed.
type Validator struct {
	validate *validator.Validate
	logger   *zap.Logger
}

// NewValidator creates a payload validator.
func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{
		validate: validator.New(),
		logger:   logger,
	}
}

// Validate deserializes a raw payload into an Order and checks the required
// fields. The returned error aggregates every failed check so the journal
// entry names all of them at once.
func (v *Validator) Validate(raw []byte) (*models.Order, error) {
	var order models.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	var problems []string
	if order.Price.LessThanOrEqual(decimal.Zero) {
		problems = append(problems, "price must be positive")
	}
	if err := v.validate.Struct(&order); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				problems = append(problems, fieldMessage(fe))
			}
		} else {
			return nil, fmt.Errorf("failed to validate message: %w", err)
		}
	}

	if len(problems) > 0 {
		return nil, errors.New(strings.Join(problems, ". "))
	}
	return &order, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Quantity":
		return "quantity must be positive"
	case "Symbol":
		return "symbol is required"
	case "TraderID":
		return "trader id is required"
	case "Side":
		return "side must be BUY or SELL"
	case "Currency":
		return "currency must be a 3-letter code"
	case "TradeTimestamp":
		return "trade timestamp is required"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
