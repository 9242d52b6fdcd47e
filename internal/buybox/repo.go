package buybox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
)

// Repository manages persistence for buy box histories.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, history *models.BuyBoxHistory) error
	Update(ctx context.Context, history *models.BuyBoxHistory) error
	GetByProductAndMarketplace(ctx context.Context, productID uuid.UUID, marketplace enums.Marketplace) (*models.BuyBoxHistory, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.BuyBoxHistory, error)
	ListDueForCheck(ctx context.Context, now time.Time, limit int) ([]models.BuyBoxHistory, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a buy box history repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, history *models.BuyBoxHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

func (r *repository) Update(ctx context.Context, history *models.BuyBoxHistory) error {
	return r.db.WithContext(ctx).Save(history).Error
}

// GetByProductAndMarketplace returns nil without an error when no history
// exists; callers decide whether that is a problem.
func (r *repository) GetByProductAndMarketplace(ctx context.Context, productID uuid.UUID, marketplace enums.Marketplace) (*models.BuyBoxHistory, error) {
	var history models.BuyBoxHistory
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND marketplace = ?", productID, marketplace).
		First(&history).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &history, nil
}

func (r *repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.BuyBoxHistory, error) {
	var histories []models.BuyBoxHistory
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("updated_at DESC").
		Find(&histories).Error; err != nil {
		return nil, err
	}
	return histories, nil
}

func (r *repository) ListDueForCheck(ctx context.Context, now time.Time, limit int) ([]models.BuyBoxHistory, error) {
	var histories []models.BuyBoxHistory
	if err := r.db.WithContext(ctx).
		Where("is_monitoring = ?", true).
		Where("next_check_at IS NULL OR next_check_at <= ?", now).
		Order("next_check_at ASC").
		Limit(limit).
		Find(&histories).Error; err != nil {
		return nil, err
	}
	return histories, nil
}
