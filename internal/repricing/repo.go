package repricing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
)

// RuleRepository manages persistence for repricing rules.
type RuleRepository interface {
	WithTx(tx *gorm.DB) RuleRepository
	Create(ctx context.Context, rule *models.RepricingRule) error
	Update(ctx context.Context, rule *models.RepricingRule) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RepricingRule, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.RepricingRule, error)
	ListDue(ctx context.Context, now time.Time) ([]models.RepricingRule, error)
	UpdateRunTimes(ctx context.Context, id uuid.UUID, lastRunAt, nextRunAt time.Time) error
}

type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository returns a rule repository bound to the provided database.
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) WithTx(tx *gorm.DB) RuleRepository {
	if tx == nil {
		return r
	}
	return &ruleRepository{db: tx}
}

func (r *ruleRepository) Create(ctx context.Context, rule *models.RepricingRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *ruleRepository) Update(ctx context.Context, rule *models.RepricingRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *ruleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.RepricingRule{}, "id = ?", id).Error
}

// GetByID returns nil without an error when no rule exists.
func (r *ruleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RepricingRule, error) {
	var rule models.RepricingRule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.RepricingRule, error) {
	var rules []models.RepricingRule
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("priority DESC, created_at ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepository) ListDue(ctx context.Context, now time.Time) ([]models.RepricingRule, error) {
	var rules []models.RepricingRule
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("next_run_at IS NULL OR next_run_at <= ?", now).
		Order("priority DESC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepository) UpdateRunTimes(ctx context.Context, id uuid.UUID, lastRunAt, nextRunAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.RepricingRule{}).
		Where("id = ?", id).
		Updates(map[string]any{"last_run_at": lastRunAt, "next_run_at": nextRunAt}).Error
}
