package domain

import "time"

// AuditFields holds standard audit information for domain entities.
// Note: UserID type might be string (UUID) or int depending on final design.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// AuditAction enumerates the write-path mutations reported to the audit log.
type AuditAction string

const (
	AuditCurrencySaved         AuditAction = "currency.saved"
	AuditExchangeRateCreated   AuditAction = "exchange_rate.created"
	AuditRateCardItemSaved     AuditAction = "rate_card_item.saved"
	AuditRateCardItemDisabled  AuditAction = "rate_card_item.deactivated"
	AuditRateCardActiveChanged AuditAction = "rate_card.active_changed"
)

// AuditEntry describes one mutation. Notes is free-form annotation only and
// never drives control flow.
type AuditEntry struct {
	Action     AuditAction       `json:"action"`
	EntityID   string            `json:"entityID"`
	ActorID    string            `json:"actorID"`
	OccurredAt time.Time         `json:"occurredAt"`
	Notes      map[string]string `json:"notes,omitempty"`
}
