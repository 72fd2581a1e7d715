package repository

import (
	"context"

	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
)

// TraceabilityEventRepository define el puerto del registro de auditoría
// append-only. No hay Update ni Delete: los eventos solo se agregan.
type TraceabilityEventRepository interface {
	Append(ctx context.Context, event *entity.TraceabilityEvent) error
	ListByBatch(ctx context.Context, batchID string, limit, offset int) ([]*entity.TraceabilityEvent, error)
}
