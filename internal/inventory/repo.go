package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
)

// Repository manages persistence for inventory items and their listings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	GetBySKU(ctx context.Context, orgID uuid.UUID, sku string) (*models.InventoryItem, error)
	ListActiveByOrg(ctx context.Context, orgID uuid.UUID) ([]models.InventoryItem, error)
	ListActiveForMarketplace(ctx context.Context, orgID uuid.UUID, marketplace enums.Marketplace) ([]models.InventoryItem, error)
	Create(ctx context.Context, item *models.InventoryItem) error
	Update(ctx context.Context, item *models.InventoryItem) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Listings").
		Where("id = ?", id).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) GetBySKU(ctx context.Context, orgID uuid.UUID, sku string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Listings").
		Where("org_id = ? AND sku = ?", orgID, sku).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListActiveByOrg(ctx context.Context, orgID uuid.UUID) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := r.db.WithContext(ctx).
		Preload("Listings").
		Where("org_id = ? AND is_active = ?", orgID, true).
		Order("sku ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListActiveForMarketplace(ctx context.Context, orgID uuid.UUID, marketplace enums.Marketplace) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := r.db.WithContext(ctx).
		Preload("Listings").
		Joins("JOIN marketplace_listings ON marketplace_listings.product_id = inventory_items.id").
		Where("inventory_items.org_id = ? AND inventory_items.is_active = ?", orgID, true).
		Where("marketplace_listings.marketplace = ? AND marketplace_listings.is_active = ?", marketplace, true).
		Order("inventory_items.sku ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) Update(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}
