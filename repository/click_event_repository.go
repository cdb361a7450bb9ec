package repository

import (
	"context"
	"errors"

	"github.com/snipper-app/snipper/models"
	"gorm.io/gorm"
)

// ClickEventRepositoryImpl implements ClickEventRepository
type ClickEventRepositoryImpl struct {
	*BaseRepository[models.ClickEvent, models.ClickEventFilter]
}

func NewClickEventRepository(db *gorm.DB) ClickEventRepository {
	return &ClickEventRepositoryImpl{BaseRepository: NewBaseRepository[models.ClickEvent, models.ClickEventFilter](db)}
}

func (r *ClickEventRepositoryImpl) ByID(ctx context.Context, id uint) (*models.ClickEvent, error) {
	db := r.getDB(ctx)
	var row models.ClickEvent
	if err := db.Last(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *ClickEventRepositoryImpl) applyFilter(db *gorm.DB, f models.ClickEventFilter) *gorm.DB {
	if f.ShortLinkID != nil {
		db = db.Where("short_link_id = ?", *f.ShortLinkID)
	}
	if f.From != nil {
		db = db.Where("clicked_at >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("clicked_at <= ?", *f.To)
	}
	if f.Country != nil {
		db = db.Where("country = ?", *f.Country)
	}
	if f.Device != nil {
		db = db.Where("device = ?", *f.Device)
	}
	return db
}

func (r *ClickEventRepositoryImpl) ByFilter(ctx context.Context, filter models.ClickEventFilter, orderBy string, limit, offset int) ([]*models.ClickEvent, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ClickEvent{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.ClickEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ClickEventRepositoryImpl) Count(ctx context.Context, filter models.ClickEventFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ClickEvent{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ClickEventRepositoryImpl) Exists(ctx context.Context, filter models.ClickEventFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func rangeFilter(shortLinkID uint, dateRange *DateRange) models.ClickEventFilter {
	filter := models.ClickEventFilter{ShortLinkID: &shortLinkID}
	if dateRange != nil {
		start := dateRange.Start
		end := dateRange.End
		filter.From = &start
		filter.To = &end
	}
	return filter
}

func (r *ClickEventRepositoryImpl) ByShortLinkID(ctx context.Context, shortLinkID uint, dateRange *DateRange) ([]*models.ClickEvent, error) {
	return r.ByFilter(ctx, rangeFilter(shortLinkID, dateRange), "clicked_at ASC, id ASC", 0, 0)
}

func (r *ClickEventRepositoryImpl) CountByShortLinkID(ctx context.Context, shortLinkID uint, dateRange *DateRange) (int64, error) {
	return r.Count(ctx, rangeFilter(shortLinkID, dateRange))
}
