package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is one append-only row of exchange_rates, unique per
// (base_currency, quote_currency, effective_from).
type ExchangeRate struct {
	ExchangeRateID string          `db:"exchange_rate_id"`
	BaseCurrency   string          `db:"base_currency"`  // FK -> currencies
	QuoteCurrency  string          `db:"quote_currency"` // FK -> currencies
	Rate           decimal.Decimal `db:"rate"`
	EffectiveFrom  time.Time       `db:"effective_from"` // DATE
	Source         string          `db:"source"`
	Verified       bool            `db:"verified"`
	AuditFields
}
