package services

import (
	"context"
	"fmt"

	"contas/internal/storage"
)

// AuditService reads the trail the audit worker writes. The configured
// limit caps how many entries one call may return.
type AuditService struct {
	store storage.Store
	limit int
}

func NewAuditService(store storage.Store, limit int) *AuditService {
	return &AuditService{store: store, limit: limit}
}

// Recent returns the newest entries, at most limit. A non-positive or
// oversized limit falls back to the configured cap.
func (s *AuditService) Recent(ctx context.Context, limit int) ([]storage.AuditEntry, error) {
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}
	entries, err := s.store.ListAuditEntries(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}
