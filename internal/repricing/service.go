package repricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/errors"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/pagination"
)

const defaultUpdateFrequencyMinutes = 60

// Service exposes rule management, manual execution, and event queries.
type Service interface {
	CreateRule(ctx context.Context, orgID uuid.UUID, input CreateRuleInput) (*models.RepricingRule, error)
	UpdateRule(ctx context.Context, orgID, ruleID uuid.UUID, input UpdateRuleInput) (*models.RepricingRule, error)
	DeleteRule(ctx context.Context, orgID, ruleID uuid.UUID) error
	GetRule(ctx context.Context, orgID, ruleID uuid.UUID) (*models.RepricingRule, error)
	ListRules(ctx context.Context, orgID uuid.UUID) ([]models.RepricingRule, error)
	ExecuteRuleManually(ctx context.Context, orgID, ruleID uuid.UUID) (*ExecutionSummary, error)
	ListEventsByRule(ctx context.Context, orgID, ruleID uuid.UUID, limit int) ([]models.RepricingEvent, error)
	ListEventsByProduct(ctx context.Context, orgID, productID uuid.UUID, limit int) ([]models.RepricingEvent, error)
	ListEventsByMarketplace(ctx context.Context, orgID uuid.UUID, marketplace enums.Marketplace, limit int) ([]models.RepricingEvent, error)
	ListRecentEvents(ctx context.Context, orgID uuid.UUID, limit int) ([]models.RepricingEvent, error)
	ListEventsByDateRange(ctx context.Context, orgID uuid.UUID, start, end time.Time, limit int) ([]models.RepricingEvent, error)
}

// ServiceParams wire the dependencies for the repricing service.
type ServiceParams struct {
	Rules     RuleRepository
	Events    EventRepository
	Scheduler *Scheduler
}

type service struct {
	rules     RuleRepository
	events    EventRepository
	scheduler *Scheduler
}

// NewService validates the wiring and returns a repricing service.
func NewService(params ServiceParams) (Service, error) {
	if params.Rules == nil {
		return nil, fmt.Errorf("rule repository required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event repository required")
	}
	if params.Scheduler == nil {
		return nil, fmt.Errorf("scheduler required")
	}
	return &service{
		rules:     params.Rules,
		events:    params.Events,
		scheduler: params.Scheduler,
	}, nil
}

func (s *service) CreateRule(ctx context.Context, orgID uuid.UUID, input CreateRuleInput) (*models.RepricingRule, error) {
	if orgID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "org id is required")
	}
	strategy, err := enums.ParseRepricingStrategy(input.Strategy)
	if err != nil {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("invalid strategy %q", input.Strategy))
	}
	marketplaceNames, err := validateMarketplaces(input.Marketplaces)
	if err != nil {
		return nil, err
	}
	if err := validateStrategyParams(strategy, input.TargetMargin); err != nil {
		return nil, err
	}
	if err := validatePriceBounds(input.MinPrice, input.MaxPrice); err != nil {
		return nil, err
	}

	frequency := input.UpdateFrequencyMinutes
	if frequency <= 0 {
		frequency = defaultUpdateFrequencyMinutes
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	now := time.Now().UTC()
	rule := &models.RepricingRule{
		OrgID:                  orgID,
		Name:                   input.Name,
		IsActive:               isActive,
		Strategy:               strategy,
		MinPrice:               input.MinPrice,
		MaxPrice:               input.MaxPrice,
		PriceDifferenceAmount:  input.PriceDifferenceAmount,
		PriceDifferencePercent: input.PriceDifferencePercent,
		TargetMargin:           input.TargetMargin,
		OnlyUndercutIfNotOwned: input.OnlyUndercutIfNotOwned,
		SKUs:                   toStringArray(input.SKUs),
		ExcludedSKUs:           toStringArray(input.ExcludedSKUs),
		Categories:             toStringArray(input.Categories),
		PriceRangeMin:          input.PriceRangeMin,
		PriceRangeMax:          input.PriceRangeMax,
		Marketplaces:           marketplaceNames,
		UpdateFrequencyMinutes: frequency,
		Priority:               input.Priority,
		NextRunAt:              &now,
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *service) UpdateRule(ctx context.Context, orgID, ruleID uuid.UUID, input UpdateRuleInput) (*models.RepricingRule, error) {
	rule, err := s.getOwnedRule(ctx, orgID, ruleID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		rule.Name = *input.Name
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}
	if input.MinPrice != nil {
		rule.MinPrice = input.MinPrice
	}
	if input.MaxPrice != nil {
		rule.MaxPrice = input.MaxPrice
	}
	if input.PriceDifferenceAmount != nil {
		rule.PriceDifferenceAmount = input.PriceDifferenceAmount
	}
	if input.PriceDifferencePercent != nil {
		rule.PriceDifferencePercent = input.PriceDifferencePercent
	}
	if input.TargetMargin != nil {
		rule.TargetMargin = input.TargetMargin
	}
	if input.OnlyUndercutIfNotOwned != nil {
		rule.OnlyUndercutIfNotOwned = *input.OnlyUndercutIfNotOwned
	}
	if input.SKUs != nil {
		rule.SKUs = toStringArray(input.SKUs)
	}
	if input.ExcludedSKUs != nil {
		rule.ExcludedSKUs = toStringArray(input.ExcludedSKUs)
	}
	if input.Categories != nil {
		rule.Categories = toStringArray(input.Categories)
	}
	if input.PriceRangeMin != nil {
		rule.PriceRangeMin = input.PriceRangeMin
	}
	if input.PriceRangeMax != nil {
		rule.PriceRangeMax = input.PriceRangeMax
	}
	if input.Marketplaces != nil {
		marketplaceNames, err := validateMarketplaces(input.Marketplaces)
		if err != nil {
			return nil, err
		}
		rule.Marketplaces = marketplaceNames
	}
	if input.UpdateFrequencyMinutes != nil {
		rule.UpdateFrequencyMinutes = *input.UpdateFrequencyMinutes
	}
	if input.Priority != nil {
		rule.Priority = *input.Priority
	}

	if err := validateStrategyParams(rule.Strategy, rule.TargetMargin); err != nil {
		return nil, err
	}
	if err := validatePriceBounds(rule.MinPrice, rule.MaxPrice); err != nil {
		return nil, err
	}

	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *service) DeleteRule(ctx context.Context, orgID, ruleID uuid.UUID) error {
	if _, err := s.getOwnedRule(ctx, orgID, ruleID); err != nil {
		return err
	}
	return s.rules.Delete(ctx, ruleID)
}

func (s *service) GetRule(ctx context.Context, orgID, ruleID uuid.UUID) (*models.RepricingRule, error) {
	return s.getOwnedRule(ctx, orgID, ruleID)
}

func (s *service) ListRules(ctx context.Context, orgID uuid.UUID) ([]models.RepricingRule, error) {
	if orgID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "org id is required")
	}
	return s.rules.ListByOrg(ctx, orgID)
}

func (s *service) ExecuteRuleManually(ctx context.Context, orgID, ruleID uuid.UUID) (*ExecutionSummary, error) {
	rule, err := s.getOwnedRule(ctx, orgID, ruleID)
	if err != nil {
		return nil, err
	}
	return s.scheduler.ExecuteRule(ctx, *rule)
}

func (s *service) ListEventsByRule(ctx context.Context, orgID, ruleID uuid.UUID, limit int) ([]models.RepricingEvent, error) {
	if _, err := s.getOwnedRule(ctx, orgID, ruleID); err != nil {
		return nil, err
	}
	return s.events.ListByRule(ctx, orgID, ruleID, pagination.NormalizeLimit(limit))
}

func (s *service) ListEventsByProduct(ctx context.Context, orgID, productID uuid.UUID, limit int) ([]models.RepricingEvent, error) {
	return s.events.ListByProduct(ctx, orgID, productID, pagination.NormalizeLimit(limit))
}

func (s *service) ListEventsByMarketplace(ctx context.Context, orgID uuid.UUID, marketplace enums.Marketplace, limit int) ([]models.RepricingEvent, error) {
	if !marketplace.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("invalid marketplace %q", marketplace))
	}
	return s.events.ListByMarketplace(ctx, orgID, marketplace, pagination.NormalizeLimit(limit))
}

func (s *service) ListRecentEvents(ctx context.Context, orgID uuid.UUID, limit int) ([]models.RepricingEvent, error) {
	return s.events.ListRecent(ctx, orgID, pagination.NormalizeLimit(limit))
}

func (s *service) ListEventsByDateRange(ctx context.Context, orgID uuid.UUID, start, end time.Time, limit int) ([]models.RepricingEvent, error) {
	if end.Before(start) {
		return nil, errors.New(errors.CodeValidation, "end must not be before start")
	}
	return s.events.ListByDateRange(ctx, orgID, start, end, pagination.NormalizeLimit(limit))
}

func (s *service) getOwnedRule(ctx context.Context, orgID, ruleID uuid.UUID) (*models.RepricingRule, error) {
	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil || rule.OrgID != orgID {
		return nil, errors.New(errors.CodeNotFound, "repricing rule not found")
	}
	return rule, nil
}

func validateMarketplaces(names []string) (pq.StringArray, error) {
	if len(names) == 0 {
		return nil, errors.New(errors.CodeValidation, "at least one marketplace is required")
	}
	out := make(pq.StringArray, 0, len(names))
	for _, name := range names {
		marketplace, err := enums.ParseMarketplace(name)
		if err != nil {
			return nil, errors.New(errors.CodeValidation, fmt.Sprintf("invalid marketplace %q", name))
		}
		out = append(out, string(marketplace))
	}
	return out, nil
}

func validateStrategyParams(strategy enums.RepricingStrategy, targetMargin *decimal.Decimal) error {
	needsMargin := strategy == enums.RepricingStrategyFixedPercentage || strategy == enums.RepricingStrategyMaintainMargin
	if needsMargin {
		if targetMargin == nil {
			return errors.New(errors.CodeValidation, fmt.Sprintf("strategy %s requires a target margin", strategy))
		}
		if !targetMargin.IsPositive() || targetMargin.GreaterThanOrEqual(hundred) {
			return errors.New(errors.CodeValidation, "target margin must be between 0 and 100")
		}
	}
	return nil
}

func validatePriceBounds(minPrice, maxPrice *decimal.Decimal) error {
	if minPrice != nil && minPrice.IsNegative() {
		return errors.New(errors.CodeValidation, "min price must not be negative")
	}
	if minPrice != nil && maxPrice != nil && maxPrice.LessThan(*minPrice) {
		return errors.New(errors.CodeValidation, "max price must not be below min price")
	}
	return nil
}

func toStringArray(values []string) pq.StringArray {
	if values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(values)
}
