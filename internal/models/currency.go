package models

// Currency represents a supported currency.
type Currency struct {
	CurrencyCode  string `db:"currency_code"` // Primary Key (e.g., "NZD")
	Symbol        string `db:"symbol"`        // e.g., "$"
	Name          string `db:"name"`          // e.g., "New Zealand Dollar"
	DecimalPlaces int    `db:"decimal_places"`
	IsActive      bool   `db:"is_active"`
	AuditFields
}
