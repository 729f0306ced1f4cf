package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hellbot-id/hellbot/internal/config"
	"github.com/hellbot-id/hellbot/internal/domain"
)

type PriceTier struct {
	Days   int
	Amount decimal.Decimal
}

// PriceTable maps rental durations to prices and, in reverse, paid amounts
// back to durations when a webhook arrives without metadata. The reverse
// lookup is a best-effort heuristic for promotional prices: nearest tier by
// absolute distance, ties going to the cheaper tier.
type PriceTable struct {
	tiers []PriceTier
}

func NewPriceTable(tiers []PriceTier) *PriceTable {
	return &PriceTable{tiers: tiers}
}

func DefaultPriceTable() *PriceTable {
	return NewPriceTable([]PriceTier{
		{Days: 7, Amount: decimal.NewFromInt(config.RentPrice7Days)},
		{Days: 30, Amount: decimal.NewFromInt(config.RentPrice30Days)},
		{Days: 90, Amount: decimal.NewFromInt(config.RentPrice90Days)},
	})
}

func (t *PriceTable) Tiers() []PriceTier {
	return t.tiers
}

func (t *PriceTable) AmountFor(days int) (decimal.Decimal, bool) {
	for _, tier := range t.tiers {
		if tier.Days == days {
			return tier.Amount, true
		}
	}
	return decimal.Zero, false
}

// DurationForAmount resolves a paid amount to a duration. Exact matches win;
// otherwise the nearest tier is chosen.
func (t *PriceTable) DurationForAmount(amount decimal.Decimal) (int, bool) {
	if len(t.tiers) == 0 {
		return 0, false
	}

	best := t.tiers[0]
	bestDist := amount.Sub(best.Amount).Abs()
	for _, tier := range t.tiers[1:] {
		if tier.Amount.Equal(amount) {
			return tier.Days, true
		}
		dist := amount.Sub(tier.Amount).Abs()
		if dist.LessThan(bestDist) {
			best = tier
			bestDist = dist
		}
	}
	return best.Days, true
}

const rentOrderPrefix = "RENT"

// BuildRentOrderID produces the order id convention the webhook fallback can
// parse back: RENT_<groupFragment>_<unixts>. The fragment is the group JID
// without its server suffix, which never contains an underscore.
func BuildRentOrderID(groupID string, at time.Time) string {
	fragment := strings.TrimSuffix(groupID, "@g.us")
	return fmt.Sprintf("%s_%s_%d", rentOrderPrefix, fragment, at.Unix())
}

// ParseRentOrderID recovers the group id from an order id following the
// naming convention. Returns the full group JID.
func ParseRentOrderID(orderID string) (string, error) {
	parts := strings.Split(orderID, "_")
	if len(parts) < 3 || parts[0] != rentOrderPrefix {
		return "", fmt.Errorf("order id %q: %w", orderID, domain.ErrGroupUnresolved)
	}
	fragment := strings.Join(parts[1:len(parts)-1], "_")
	if fragment == "" {
		return "", fmt.Errorf("order id %q: %w", orderID, domain.ErrGroupUnresolved)
	}
	if !strings.Contains(fragment, "@") {
		fragment += "@g.us"
	}
	return fragment, nil
}
