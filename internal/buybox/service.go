package buybox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/inventory"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/errors"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/logger"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/types"
)

const defaultCheckFrequencyMinutes = 60

// Service coordinates buy box monitoring and history bookkeeping.
type Service interface {
	InitializeMonitoring(ctx context.Context, input InitializeMonitoringInput) (*models.BuyBoxHistory, error)
	AddSnapshot(ctx context.Context, productID uuid.UUID, marketplace enums.Marketplace, snapshot types.BuyBoxSnapshot) (*models.BuyBoxHistory, error)
	StopMonitoring(ctx context.Context, orgID, productID uuid.UUID, marketplace enums.Marketplace) error
	GetHistory(ctx context.Context, orgID, productID uuid.UUID, marketplace enums.Marketplace) (*models.BuyBoxHistory, error)
	ListHistories(ctx context.Context, orgID uuid.UUID) ([]models.BuyBoxHistory, error)
	ListDueForCheck(ctx context.Context, now time.Time, limit int) ([]models.BuyBoxHistory, error)
	CheckProduct(ctx context.Context, history *models.BuyBoxHistory) (*models.BuyBoxHistory, error)
}

// InitializeMonitoringInput starts monitoring one product on one marketplace.
type InitializeMonitoringInput struct {
	OrgID                 uuid.UUID
	ProductID             uuid.UUID
	Marketplace           enums.Marketplace
	CheckFrequencyMinutes int
}

// Params wires the dependencies for the buy box service.
type Params struct {
	Repo      Repository
	Inventory inventory.Repository
	Monitors  *MonitorSet
	Logger    *logger.Logger
}

type service struct {
	repo      Repository
	inventory inventory.Repository
	monitors  *MonitorSet
	logg      *logger.Logger
}

// NewService validates the wiring and returns a buy box service.
func NewService(params Params) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("buybox repository required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if params.Monitors == nil {
		return nil, fmt.Errorf("monitor set required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      params.Repo,
		inventory: params.Inventory,
		monitors:  params.Monitors,
		logg:      params.Logger,
	}, nil
}

// InitializeMonitoring requires an active listing, performs one immediate
// check, and persists the history seeded with that snapshot. Re-initializing
// an existing pair re-enables monitoring instead of failing.
func (s *service) InitializeMonitoring(ctx context.Context, input InitializeMonitoringInput) (*models.BuyBoxHistory, error) {
	if input.OrgID == uuid.Nil || input.ProductID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "org id and product id are required")
	}
	if !input.Marketplace.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("invalid marketplace %q", input.Marketplace))
	}
	frequency := input.CheckFrequencyMinutes
	if frequency <= 0 {
		frequency = defaultCheckFrequencyMinutes
	}

	product, err := s.inventory.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.OrgID != input.OrgID {
		return nil, errors.New(errors.CodeNotFound, "product not found")
	}
	listing := product.ListingFor(input.Marketplace)
	if listing == nil || !listing.IsActive {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("product %s has no active %s listing", product.SKU, input.Marketplace))
	}

	monitor, err := s.monitors.Monitor(input.Marketplace)
	if err != nil {
		return nil, err
	}
	snapshot := monitor.CheckBuyBoxStatus(ctx, *product, listing.MarketplaceProductID)

	now := snapshot.CapturedAt
	nextCheck := now.Add(time.Duration(frequency) * time.Minute)

	existing, err := s.repo.GetByProductAndMarketplace(ctx, input.ProductID, input.Marketplace)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.IsMonitoring = true
		existing.CheckFrequencyMinutes = frequency
		applySnapshot(existing, snapshot)
		existing.LastCheckedAt = &now
		existing.NextCheckAt = &nextCheck
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	history := &models.BuyBoxHistory{
		OrgID:                 input.OrgID,
		ProductID:             input.ProductID,
		SKU:                   product.SKU,
		Marketplace:           input.Marketplace,
		MarketplaceProductID:  listing.MarketplaceProductID,
		IsMonitoring:          true,
		CheckFrequencyMinutes: frequency,
		LastCheckedAt:         &now,
		NextCheckAt:           &nextCheck,
	}
	applySnapshot(history, snapshot)
	if err := s.repo.Create(ctx, history); err != nil {
		return nil, err
	}
	return history, nil
}

// AddSnapshot appends to an existing history. A missing history is logged
// and reported as (nil, nil); callers must initialize monitoring first.
func (s *service) AddSnapshot(ctx context.Context, productID uuid.UUID, marketplace enums.Marketplace, snapshot types.BuyBoxSnapshot) (*models.BuyBoxHistory, error) {
	history, err := s.repo.GetByProductAndMarketplace(ctx, productID, marketplace)
	if err != nil {
		return nil, err
	}
	if history == nil {
		ctx = s.logg.WithMarketplace(ctx, string(marketplace))
		s.logg.Warn(ctx, fmt.Sprintf("no buy box history for product %s; snapshot dropped", productID))
		return nil, nil
	}

	if !applySnapshot(history, snapshot) {
		ctx = s.logg.WithMarketplace(ctx, string(marketplace))
		s.logg.Warn(ctx, fmt.Sprintf("out-of-order snapshot for product %s dropped", productID))
		return history, nil
	}
	capturedAt := snapshot.CapturedAt
	nextCheck := capturedAt.Add(time.Duration(history.CheckFrequencyMinutes) * time.Minute)
	history.LastCheckedAt = &capturedAt
	history.NextCheckAt = &nextCheck

	if err := s.repo.Update(ctx, history); err != nil {
		return nil, err
	}
	return history, nil
}

// StopMonitoring flips the flag off; the record stays for audit.
func (s *service) StopMonitoring(ctx context.Context, orgID, productID uuid.UUID, marketplace enums.Marketplace) error {
	history, err := s.repo.GetByProductAndMarketplace(ctx, productID, marketplace)
	if err != nil {
		return err
	}
	if history == nil || history.OrgID != orgID {
		return errors.New(errors.CodeNotFound, "buy box history not found")
	}
	history.IsMonitoring = false
	history.NextCheckAt = nil
	return s.repo.Update(ctx, history)
}

func (s *service) GetHistory(ctx context.Context, orgID, productID uuid.UUID, marketplace enums.Marketplace) (*models.BuyBoxHistory, error) {
	history, err := s.repo.GetByProductAndMarketplace(ctx, productID, marketplace)
	if err != nil {
		return nil, err
	}
	if history == nil || history.OrgID != orgID {
		return nil, errors.New(errors.CodeNotFound, "buy box history not found")
	}
	return history, nil
}

func (s *service) ListHistories(ctx context.Context, orgID uuid.UUID) ([]models.BuyBoxHistory, error) {
	if orgID == uuid.Nil {
		return nil, fmt.Errorf("org id is required")
	}
	return s.repo.ListByOrg(ctx, orgID)
}

func (s *service) ListDueForCheck(ctx context.Context, now time.Time, limit int) ([]models.BuyBoxHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListDueForCheck(ctx, now, limit)
}

// CheckProduct runs one poll cycle for a monitored history: fetch the
// product, capture a fresh snapshot, and append it.
func (s *service) CheckProduct(ctx context.Context, history *models.BuyBoxHistory) (*models.BuyBoxHistory, error) {
	if history == nil {
		return nil, fmt.Errorf("history is required")
	}

	product, err := s.inventory.GetByID(ctx, history.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("product %s not found", history.ProductID))
	}

	monitor, err := s.monitors.Monitor(history.Marketplace)
	if err != nil {
		return nil, err
	}
	snapshot := monitor.CheckBuyBoxStatus(ctx, *product, history.MarketplaceProductID)
	return s.AddSnapshot(ctx, history.ProductID, history.Marketplace, snapshot)
}
