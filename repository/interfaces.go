// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/snipper-app/snipper/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// DateRange bounds click retrieval by event time. Both ends are inclusive;
// callers normalize End to the last instant of its calendar day before filtering.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ShortLinkRepository defines operations for short links
type ShortLinkRepository interface {
	Repository[models.ShortLink, models.ShortLinkFilter]
	ByCode(ctx context.Context, code string) (*models.ShortLink, error)
	ByUUID(ctx context.Context, uuid string) (*models.ShortLink, error)
}

// ClickEventRepository defines operations for click events
// Click events are append-only; there are no update or delete operations
type ClickEventRepository interface {
	Repository[models.ClickEvent, models.ClickEventFilter]
	ByShortLinkID(ctx context.Context, shortLinkID uint, dateRange *DateRange) ([]*models.ClickEvent, error)
	CountByShortLinkID(ctx context.Context, shortLinkID uint, dateRange *DateRange) (int64, error)
}
