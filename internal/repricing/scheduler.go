package repricing

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/buybox"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/credits"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/inventory"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/marketplaces"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/logger"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/metrics"
)

// Scheduler orchestrates rule execution across organizations. One tick at a
// time; a tick fired while another is running is a no-op.
type Scheduler struct {
	rules       RuleRepository
	events      EventRepository
	histories   buybox.Repository
	inventory   inventory.Repository
	credits     credits.Service
	registry    *marketplaces.Registry
	monitors    *buybox.MonitorSet
	logg        *logger.Logger
	metrics     *metrics.RepricingMetrics
	costPerItem int
	isExecuting atomic.Bool
}

// SchedulerParams wire the dependencies for the scheduler.
type SchedulerParams struct {
	Rules              RuleRepository
	Events             EventRepository
	Histories          buybox.Repository
	Inventory          inventory.Repository
	Credits            credits.Service
	Registry           *marketplaces.Registry
	Monitors           *buybox.MonitorSet
	Logger             *logger.Logger
	Metrics            *metrics.RepricingMetrics
	CostPerPriceUpdate int
}

// ExecutionSummary reports the outcome of running one rule.
type ExecutionSummary struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Updates int    `json:"updates"`
}

type dedupKey struct {
	productID   uuid.UUID
	marketplace enums.Marketplace
}

type candidate struct {
	history models.BuyBoxHistory
	product models.InventoryItem
}

// NewScheduler validates the wiring and returns a scheduler.
func NewScheduler(params SchedulerParams) (*Scheduler, error) {
	if params.Rules == nil {
		return nil, fmt.Errorf("rule repository required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event repository required")
	}
	if params.Histories == nil {
		return nil, fmt.Errorf("buybox repository required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if params.Credits == nil {
		return nil, fmt.Errorf("credits service required")
	}
	if params.Registry == nil {
		return nil, fmt.Errorf("marketplace registry required")
	}
	if params.Monitors == nil {
		return nil, fmt.Errorf("monitor set required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Scheduler{
		rules:       params.Rules,
		events:      params.Events,
		histories:   params.Histories,
		inventory:   params.Inventory,
		credits:     params.Credits,
		registry:    params.Registry,
		monitors:    params.Monitors,
		logg:        params.Logger,
		metrics:     params.Metrics,
		costPerItem: params.CostPerPriceUpdate,
	}, nil
}

// RunTick executes every due rule, grouped and credit-gated per
// organization. Failures are contained to their unit; the tick continues.
func (s *Scheduler) RunTick(ctx context.Context) error {
	if !s.isExecuting.CompareAndSwap(false, true) {
		s.logg.Info(ctx, "repricing tick already running; skipping")
		return nil
	}
	defer s.isExecuting.Store(false)

	now := time.Now().UTC()
	due, err := s.rules.ListDue(ctx, now)
	if err != nil {
		return fmt.Errorf("list due rules: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	byOrg := make(map[uuid.UUID][]models.RepricingRule)
	for _, rule := range due {
		byOrg[rule.OrgID] = append(byOrg[rule.OrgID], rule)
	}
	orgIDs := make([]uuid.UUID, 0, len(byOrg))
	for orgID := range byOrg {
		orgIDs = append(orgIDs, orgID)
	}
	sort.Slice(orgIDs, func(i, j int) bool { return orgIDs[i].String() < orgIDs[j].String() })

	repriced := make(map[dedupKey]struct{})
	var errs error
	for _, orgID := range orgIDs {
		if err := s.runOrg(ctx, orgID, byOrg[orgID], repriced, now); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("org %s: %w", orgID, err))
		}
	}
	return errs
}

func (s *Scheduler) runOrg(ctx context.Context, orgID uuid.UUID, rules []models.RepricingRule, repriced map[dedupKey]struct{}, now time.Time) error {
	ctx = s.logg.WithOrgID(ctx, orgID.String())

	histories, err := s.histories.ListByOrg(ctx, orgID)
	if err != nil {
		return fmt.Errorf("load histories: %w", err)
	}
	if len(histories) == 0 {
		return nil
	}

	// Worst case: every monitored product gets repriced this tick. Skip
	// the whole organization when that cannot be funded, with no partial
	// spend and no lastRunAt advance.
	worstCase := len(histories) * s.costPerItem
	if worstCase > 0 {
		ok, err := s.credits.HasAvailableCredits(ctx, orgID, worstCase)
		if err != nil {
			return fmt.Errorf("credit availability: %w", err)
		}
		if !ok {
			s.logg.Warn(ctx, fmt.Sprintf("insufficient credits for worst-case cost %d; skipping organization this tick", worstCase))
			if s.metrics != nil {
				s.metrics.IncCreditSkip(orgID.String())
			}
			return nil
		}
	}

	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority > rules[j].Priority })

	var errs error
	for i := range rules {
		rule := rules[i]
		ruleCtx := s.logg.WithRuleID(ctx, rule.ID.String())
		if _, err := s.executeRule(ruleCtx, rule, histories, repriced); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("rule %s: %w", rule.ID, err))
			continue
		}
		nextRun := now.Add(time.Duration(rule.UpdateFrequencyMinutes) * time.Minute)
		if err := s.rules.UpdateRunTimes(ruleCtx, rule.ID, now, nextRun); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("advance rule %s: %w", rule.ID, err))
		}
	}
	return errs
}

// ExecuteRule runs one rule immediately, outside the tick cadence. No
// organization-level credit gate; per-batch deduction still applies.
func (s *Scheduler) ExecuteRule(ctx context.Context, rule models.RepricingRule) (*ExecutionSummary, error) {
	histories, err := s.histories.ListByOrg(ctx, rule.OrgID)
	if err != nil {
		return nil, fmt.Errorf("load histories: %w", err)
	}
	return s.executeRule(ctx, rule, histories, make(map[dedupKey]struct{}))
}

func (s *Scheduler) executeRule(ctx context.Context, rule models.RepricingRule, histories []models.BuyBoxHistory, repriced map[dedupKey]struct{}) (*ExecutionSummary, error) {
	groups := make(map[enums.Marketplace][]candidate)
	for i := range histories {
		history := histories[i]
		if !history.IsMonitoring {
			continue
		}
		if !rule.AppliesToMarketplace(history.Marketplace) {
			continue
		}
		if _, done := repriced[dedupKey{history.ProductID, history.Marketplace}]; done {
			continue
		}

		product, err := s.inventory.GetByID(ctx, history.ProductID)
		if err != nil {
			s.logg.Error(ctx, fmt.Sprintf("load product %s", history.ProductID), err)
			continue
		}
		if product == nil || !product.IsActive {
			continue
		}
		if !ruleMatchesProduct(rule, *product, history.LastSnapshot.OwnPrice) {
			continue
		}
		groups[history.Marketplace] = append(groups[history.Marketplace], candidate{history: history, product: *product})
	}

	totalUpdates := 0
	totalAttempted := 0
	markets := make([]enums.Marketplace, 0, len(groups))
	for marketplace := range groups {
		markets = append(markets, marketplace)
	}
	sort.Slice(markets, func(i, j int) bool { return markets[i] < markets[j] })

	for _, marketplace := range markets {
		updates, attempted := s.runMarketplaceBatch(ctx, rule, marketplace, groups[marketplace], repriced)
		totalUpdates += updates
		totalAttempted += attempted
	}

	message := fmt.Sprintf("%d of %d price updates applied", totalUpdates, totalAttempted)
	if totalAttempted == 0 {
		message = "no products required a price change"
	}
	return &ExecutionSummary{Success: true, Message: message, Updates: totalUpdates}, nil
}

// runMarketplaceBatch evaluates candidates, deducts credits for the actual
// batch, submits it, and persists one event per attempted update. Returns
// (successes, attempted).
func (s *Scheduler) runMarketplaceBatch(ctx context.Context, rule models.RepricingRule, marketplace enums.Marketplace, candidates []candidate, repriced map[dedupKey]struct{}) (int, int) {
	ctx = s.logg.WithMarketplace(ctx, string(marketplace))

	var pricer SuggestedPricer
	if monitor, err := s.monitors.Monitor(marketplace); err == nil {
		pricer = monitor
	}

	var batch []marketplaces.PriceUpdate
	var pending []models.RepricingEvent
	var keys []dedupKey
	for _, cand := range candidates {
		snapshot := cand.history.LastSnapshot
		evaluation := EvaluateRule(rule, cand.product, snapshot, pricer)
		if s.metrics != nil {
			outcome := "no_change"
			if evaluation.ShouldUpdate {
				outcome = "update"
			}
			s.metrics.IncEvaluation(string(rule.Strategy), outcome)
		}
		if !evaluation.ShouldUpdate {
			continue
		}

		currentPrice := snapshot.OwnPrice
		if currentPrice.IsZero() {
			currentPrice = cand.product.BasePrice
		}
		batch = append(batch, marketplaces.PriceUpdate{
			SKU:                  cand.product.SKU,
			MarketplaceProductID: cand.history.MarketplaceProductID,
			NewPrice:             evaluation.NewPrice,
		})
		pending = append(pending, models.RepricingEvent{
			RuleID:             rule.ID,
			OrgID:              rule.OrgID,
			ProductID:          cand.product.ID,
			SKU:                cand.product.SKU,
			Marketplace:        marketplace,
			PreviousPrice:      currentPrice,
			NewPrice:           evaluation.NewPrice,
			Reason:             evaluation.Reason,
			BuyBoxStatusBefore: snapshot.Status,
			Success:            true,
		})
		keys = append(keys, dedupKey{cand.product.ID, marketplace})
	}
	if len(batch) == 0 {
		return 0, 0
	}

	adapter, err := s.registry.Adapter(marketplace)
	if err != nil {
		s.logg.Error(ctx, "resolve marketplace adapter", err)
		return 0, 0
	}

	// Deduct for the actual batch size before submitting. A failed
	// deduction aborts this marketplace group only.
	cost := len(batch) * s.costPerItem
	if cost > 0 {
		ruleID := rule.ID
		err := s.credits.UseCredits(ctx, credits.UseCreditsInput{
			OrgID:       rule.OrgID,
			Amount:      cost,
			Reason:      enums.CreditReasonPriceUpdate,
			Description: fmt.Sprintf("%d price updates via rule %s", len(batch), rule.Name),
			ReferenceID: &ruleID,
		})
		if err != nil {
			s.logg.Error(ctx, "credit deduction failed; skipping marketplace batch", err)
			return 0, 0
		}
	}

	results, err := adapter.UpdatePrices(ctx, batch)
	if err != nil {
		s.logg.Error(ctx, "price update submission failed", err)
		message := err.Error()
		for i := range pending {
			pending[i].Success = false
			pending[i].ErrorMessage = &message
		}
	} else {
		resultsBySKU := make(map[string]marketplaces.UpdateResult, len(results))
		for _, result := range results {
			resultsBySKU[result.SKU] = result
		}
		for i := range pending {
			if result, ok := resultsBySKU[pending[i].SKU]; ok && !result.Success {
				pending[i].Success = false
				if result.Error != "" {
					message := result.Error
					pending[i].ErrorMessage = &message
				}
			}
		}
	}

	if err := s.events.CreateBatch(ctx, pending); err != nil {
		s.logg.Error(ctx, "persist repricing events", err)
	}

	successes := 0
	for i := range pending {
		result := "failure"
		if pending[i].Success {
			successes++
			result = "success"
		}
		if s.metrics != nil {
			s.metrics.IncPriceUpdate(string(marketplace), result)
		}
	}
	for _, key := range keys {
		repriced[key] = struct{}{}
	}
	return successes, len(pending)
}

// ruleMatchesProduct applies the rule's SKU, category, and price range
// filters. Empty filters match everything.
func ruleMatchesProduct(rule models.RepricingRule, product models.InventoryItem, currentPrice decimal.Decimal) bool {
	if len(rule.SKUs) > 0 && !containsString(rule.SKUs, product.SKU) {
		return false
	}
	if containsString(rule.ExcludedSKUs, product.SKU) {
		return false
	}
	if len(rule.Categories) > 0 {
		if product.Category == nil || !containsString(rule.Categories, *product.Category) {
			return false
		}
	}
	price := currentPrice
	if price.IsZero() {
		price = product.BasePrice
	}
	if rule.PriceRangeMin != nil && price.LessThan(*rule.PriceRangeMin) {
		return false
	}
	if rule.PriceRangeMax != nil && price.GreaterThan(*rule.PriceRangeMax) {
		return false
	}
	return true
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
