package repricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
)

// EventRepository manages persistence for repricing events.
type EventRepository interface {
	WithTx(tx *gorm.DB) EventRepository
	CreateBatch(ctx context.Context, events []models.RepricingEvent) error
	ListByRule(ctx context.Context, orgID, ruleID uuid.UUID, limit int) ([]models.RepricingEvent, error)
	ListByProduct(ctx context.Context, orgID, productID uuid.UUID, limit int) ([]models.RepricingEvent, error)
	ListByMarketplace(ctx context.Context, orgID uuid.UUID, marketplace enums.Marketplace, limit int) ([]models.RepricingEvent, error)
	ListRecent(ctx context.Context, orgID uuid.UUID, limit int) ([]models.RepricingEvent, error)
	ListByDateRange(ctx context.Context, orgID uuid.UUID, start, end time.Time, limit int) ([]models.RepricingEvent, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository returns an event repository bound to the provided database.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) WithTx(tx *gorm.DB) EventRepository {
	if tx == nil {
		return r
	}
	return &eventRepository{db: tx}
}

func (r *eventRepository) CreateBatch(ctx context.Context, events []models.RepricingEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&events).Error
}

func (r *eventRepository) newestFirst(ctx context.Context, limit int) *gorm.DB {
	return r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
}

func (r *eventRepository) ListByRule(ctx context.Context, orgID, ruleID uuid.UUID, limit int) ([]models.RepricingEvent, error) {
	var events []models.RepricingEvent
	if err := r.newestFirst(ctx, limit).
		Where("org_id = ? AND rule_id = ?", orgID, ruleID).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) ListByProduct(ctx context.Context, orgID, productID uuid.UUID, limit int) ([]models.RepricingEvent, error) {
	var events []models.RepricingEvent
	if err := r.newestFirst(ctx, limit).
		Where("org_id = ? AND product_id = ?", orgID, productID).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) ListByMarketplace(ctx context.Context, orgID uuid.UUID, marketplace enums.Marketplace, limit int) ([]models.RepricingEvent, error) {
	var events []models.RepricingEvent
	if err := r.newestFirst(ctx, limit).
		Where("org_id = ? AND marketplace = ?", orgID, marketplace).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) ListRecent(ctx context.Context, orgID uuid.UUID, limit int) ([]models.RepricingEvent, error) {
	var events []models.RepricingEvent
	if err := r.newestFirst(ctx, limit).
		Where("org_id = ?", orgID).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) ListByDateRange(ctx context.Context, orgID uuid.UUID, start, end time.Time, limit int) ([]models.RepricingEvent, error) {
	var events []models.RepricingEvent
	if err := r.newestFirst(ctx, limit).
		Where("org_id = ? AND created_at >= ? AND created_at <= ?", orgID, start, end).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
