// internal/generation/cost-estimator/estimator.go
package costestimator

import (
	"errors"
	"fmt"
	"math"

	"article-pipeline/internal/common/config"
	"article-pipeline/internal/models"
)

var (
	ErrUnknownTier   = errors.New("UNKNOWN_MODEL_TIER")
	ErrInvalidTable  = errors.New("INVALID_PRICE_TABLE")
	ErrNegativeUsage = errors.New("NEGATIVE_TOKEN_COUNT")
)

const precision = 1e6

// Price is expressed in USD per million tokens.
type Price struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// PriceTable is immutable once built.
type PriceTable struct {
	tiers      map[models.ModelTier]Price
	requestFee float64
}

func DefaultPriceTable() PriceTable {
	return PriceTable{
		tiers: map[models.ModelTier]Price{
			models.ModelTierBase:     {InputPerMillion: 0.2, OutputPerMillion: 0.2},
			models.ModelTierStandard: {InputPerMillion: 1, OutputPerMillion: 1},
			models.ModelTierPro:      {InputPerMillion: 3, OutputPerMillion: 15},
		},
		requestFee: config.DefaultRequestFee,
	}
}

// NewPriceTable validates and copies prices. Every tier must be priced.
func NewPriceTable(prices map[models.ModelTier]Price, requestFee float64) (PriceTable, error) {
	if requestFee < 0 {
		return PriceTable{}, fmt.Errorf("%w: negative request fee", ErrInvalidTable)
	}
	tiers := make(map[models.ModelTier]Price, len(prices))
	for _, tier := range models.ModelTiers {
		p, ok := prices[tier]
		if !ok {
			return PriceTable{}, fmt.Errorf("%w: tier %s not priced", ErrInvalidTable, tier)
		}
		if p.InputPerMillion < 0 || p.OutputPerMillion < 0 {
			return PriceTable{}, fmt.Errorf("%w: tier %s has a negative price", ErrInvalidTable, tier)
		}
		tiers[tier] = p
	}
	return PriceTable{tiers: tiers, requestFee: requestFee}, nil
}

// PriceTableFromConfig builds the table from the pricing section. Unknown
// tier names in the configuration are rejected.
func PriceTableFromConfig(cfg config.PricingConfig) (PriceTable, error) {
	prices := make(map[models.ModelTier]Price, len(cfg.Tiers))
	for name, p := range cfg.Tiers {
		tier := models.ModelTier(name)
		if !tier.Valid() {
			return PriceTable{}, fmt.Errorf("%w: unknown tier %q", ErrInvalidTable, name)
		}
		prices[tier] = Price{InputPerMillion: p.InputPerMillion, OutputPerMillion: p.OutputPerMillion}
	}
	return NewPriceTable(prices, cfg.RequestFee)
}

func (t PriceTable) Price(tier models.ModelTier) (Price, bool) {
	p, ok := t.tiers[tier]
	return p, ok
}

func (t PriceTable) RequestFee() float64 {
	return t.requestFee
}

type Estimator struct {
	table PriceTable
}

func New(table PriceTable) *Estimator {
	return &Estimator{table: table}
}

// Estimate returns the usage report for one completion, rounded to six
// decimal places.
func (e *Estimator) Estimate(inputTokens, outputTokens int, tier models.ModelTier) (models.UsageReport, error) {
	if inputTokens < 0 || outputTokens < 0 {
		return models.UsageReport{}, fmt.Errorf("%w: in=%d out=%d", ErrNegativeUsage, inputTokens, outputTokens)
	}
	price, ok := e.table.Price(tier)
	if !ok {
		return models.UsageReport{}, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}

	cost := float64(inputTokens)/1e6*price.InputPerMillion +
		float64(outputTokens)/1e6*price.OutputPerMillion +
		e.table.requestFee

	return models.UsageReport{
		InputTokens:   inputTokens,
		OutputTokens:  outputTokens,
		EstimatedCost: Round(cost),
	}, nil
}

func Round(v float64) float64 {
	return math.Round(v*precision) / precision
}
