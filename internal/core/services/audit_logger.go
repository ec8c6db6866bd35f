package services

import (
	"context"
	"log/slog"
	"sort"

	"github.com/SscSPs/pricing_engine/internal/core/domain"
	portssvc "github.com/SscSPs/pricing_engine/internal/core/ports/services"
)

// slogAuditLogger writes audit entries as structured log records on the
// request logger, under the "audit" group.
type slogAuditLogger struct {
	BaseService
}

// NewSlogAuditLogger creates an audit logger backed by slog.
func NewSlogAuditLogger() portssvc.AuditLoggerSvc {
	return &slogAuditLogger{}
}

func (a *slogAuditLogger) Record(ctx context.Context, entry domain.AuditEntry) {
	keys := make([]string, 0, len(entry.Notes))
	for k := range entry.Notes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	notes := make([]any, 0, len(keys))
	for _, k := range keys {
		notes = append(notes, slog.String(k, entry.Notes[k]))
	}

	a.GetLogger(ctx).Info("Audit",
		slog.Group("audit",
			slog.String("action", string(entry.Action)),
			slog.String("entity_id", entry.EntityID),
			slog.String("actor_id", entry.ActorID),
			slog.Time("occurred_at", entry.OccurredAt),
			slog.Group("notes", notes...),
		))
}
