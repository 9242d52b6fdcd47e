package repricing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/buybox"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/credits"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/inventory"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/marketplaces"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/logger"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/types"
)

type fakeRuleRepo struct {
	rules    map[uuid.UUID]*models.RepricingRule
	runTimes map[uuid.UUID]time.Time
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{
		rules:    map[uuid.UUID]*models.RepricingRule{},
		runTimes: map[uuid.UUID]time.Time{},
	}
}

func (f *fakeRuleRepo) WithTx(tx *gorm.DB) RuleRepository { return f }

func (f *fakeRuleRepo) Create(ctx context.Context, rule *models.RepricingRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	f.rules[rule.ID] = rule
	return nil
}

func (f *fakeRuleRepo) Update(ctx context.Context, rule *models.RepricingRule) error {
	f.rules[rule.ID] = rule
	return nil
}

func (f *fakeRuleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.rules, id)
	return nil
}

func (f *fakeRuleRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.RepricingRule, error) {
	return f.rules[id], nil
}

func (f *fakeRuleRepo) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.RepricingRule, error) {
	var out []models.RepricingRule
	for _, rule := range f.rules {
		if rule.OrgID == orgID {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (f *fakeRuleRepo) ListDue(ctx context.Context, now time.Time) ([]models.RepricingRule, error) {
	var out []models.RepricingRule
	for _, rule := range f.rules {
		if !rule.IsActive {
			continue
		}
		if rule.NextRunAt == nil || !rule.NextRunAt.After(now) {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (f *fakeRuleRepo) UpdateRunTimes(ctx context.Context, id uuid.UUID, lastRunAt, nextRunAt time.Time) error {
	f.runTimes[id] = lastRunAt
	if rule, ok := f.rules[id]; ok {
		rule.LastRunAt = &lastRunAt
		rule.NextRunAt = &nextRunAt
	}
	return nil
}

type fakeEventRepo struct {
	events []models.RepricingEvent
}

func (f *fakeEventRepo) WithTx(tx *gorm.DB) EventRepository { return f }

func (f *fakeEventRepo) CreateBatch(ctx context.Context, events []models.RepricingEvent) error {
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeEventRepo) ListByRule(ctx context.Context, orgID, ruleID uuid.UUID, limit int) ([]models.RepricingEvent, error) {
	var out []models.RepricingEvent
	for _, event := range f.events {
		if event.OrgID == orgID && event.RuleID == ruleID {
			out = append(out, event)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListByProduct(ctx context.Context, orgID, productID uuid.UUID, limit int) ([]models.RepricingEvent, error) {
	return f.events, nil
}

func (f *fakeEventRepo) ListByMarketplace(ctx context.Context, orgID uuid.UUID, marketplace enums.Marketplace, limit int) ([]models.RepricingEvent, error) {
	return f.events, nil
}

func (f *fakeEventRepo) ListRecent(ctx context.Context, orgID uuid.UUID, limit int) ([]models.RepricingEvent, error) {
	return f.events, nil
}

func (f *fakeEventRepo) ListByDateRange(ctx context.Context, orgID uuid.UUID, start, end time.Time, limit int) ([]models.RepricingEvent, error) {
	return f.events, nil
}

type fakeHistoryRepo struct {
	histories []models.BuyBoxHistory
}

func (f *fakeHistoryRepo) WithTx(tx *gorm.DB) buybox.Repository { return f }

func (f *fakeHistoryRepo) Create(ctx context.Context, history *models.BuyBoxHistory) error {
	f.histories = append(f.histories, *history)
	return nil
}

func (f *fakeHistoryRepo) Update(ctx context.Context, history *models.BuyBoxHistory) error {
	return nil
}

func (f *fakeHistoryRepo) GetByProductAndMarketplace(ctx context.Context, productID uuid.UUID, marketplace enums.Marketplace) (*models.BuyBoxHistory, error) {
	for i := range f.histories {
		if f.histories[i].ProductID == productID && f.histories[i].Marketplace == marketplace {
			return &f.histories[i], nil
		}
	}
	return nil, nil
}

func (f *fakeHistoryRepo) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.BuyBoxHistory, error) {
	var out []models.BuyBoxHistory
	for _, history := range f.histories {
		if history.OrgID == orgID {
			out = append(out, history)
		}
	}
	return out, nil
}

func (f *fakeHistoryRepo) ListDueForCheck(ctx context.Context, now time.Time, limit int) ([]models.BuyBoxHistory, error) {
	return nil, nil
}

type fakeInventoryRepo struct {
	items map[uuid.UUID]*models.InventoryItem
}

func (f *fakeInventoryRepo) WithTx(tx *gorm.DB) inventory.Repository { return f }

func (f *fakeInventoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	return f.items[id], nil
}

func (f *fakeInventoryRepo) GetBySKU(ctx context.Context, orgID uuid.UUID, sku string) (*models.InventoryItem, error) {
	return nil, nil
}

func (f *fakeInventoryRepo) ListActiveByOrg(ctx context.Context, orgID uuid.UUID) ([]models.InventoryItem, error) {
	return nil, nil
}

func (f *fakeInventoryRepo) ListActiveForMarketplace(ctx context.Context, orgID uuid.UUID, marketplace enums.Marketplace) ([]models.InventoryItem, error) {
	return nil, nil
}

func (f *fakeInventoryRepo) Create(ctx context.Context, item *models.InventoryItem) error { return nil }
func (f *fakeInventoryRepo) Update(ctx context.Context, item *models.InventoryItem) error { return nil }

type fakeCreditService struct {
	balances map[uuid.UUID]int
	used     []credits.UseCreditsInput
}

func (f *fakeCreditService) Balance(ctx context.Context, orgID uuid.UUID) (int, error) {
	return f.balances[orgID], nil
}

func (f *fakeCreditService) HasAvailableCredits(ctx context.Context, orgID uuid.UUID, amount int) (bool, error) {
	return f.balances[orgID] >= amount, nil
}

func (f *fakeCreditService) UseCredits(ctx context.Context, input credits.UseCreditsInput) error {
	f.balances[input.OrgID] -= input.Amount
	f.used = append(f.used, input)
	return nil
}

func (f *fakeCreditService) AddCredits(ctx context.Context, input credits.AddCreditsInput) error {
	return nil
}

func (f *fakeCreditService) ListTransactions(ctx context.Context, orgID uuid.UUID, limit int) ([]models.CreditTransaction, error) {
	return nil, nil
}

type recordingAdapter struct {
	marketplace enums.Marketplace
	updates     [][]marketplaces.PriceUpdate
	failSKUs    map[string]string
}

func (r *recordingAdapter) Marketplace() enums.Marketplace { return r.marketplace }

func (r *recordingAdapter) GetProduct(ctx context.Context, marketplaceProductID string) (*marketplaces.Product, error) {
	return nil, nil
}

func (r *recordingAdapter) GetOffers(ctx context.Context, marketplaceProductID string) ([]marketplaces.Offer, error) {
	return nil, nil
}

func (r *recordingAdapter) UpdatePrices(ctx context.Context, updates []marketplaces.PriceUpdate) ([]marketplaces.UpdateResult, error) {
	r.updates = append(r.updates, updates)
	results := make([]marketplaces.UpdateResult, 0, len(updates))
	for _, update := range updates {
		if message, failed := r.failSKUs[update.SKU]; failed {
			results = append(results, marketplaces.UpdateResult{SKU: update.SKU, Success: false, Error: message})
			continue
		}
		results = append(results, marketplaces.UpdateResult{SKU: update.SKU, Success: true})
	}
	return results, nil
}

type noopMonitor struct {
	marketplace enums.Marketplace
}

func (n noopMonitor) Marketplace() enums.Marketplace { return n.marketplace }

func (n noopMonitor) CheckBuyBoxStatus(ctx context.Context, product models.InventoryItem, marketplaceProductID string) types.BuyBoxSnapshot {
	return types.BuyBoxSnapshot{}
}

func (n noopMonitor) GetCompetitors(ctx context.Context, marketplaceProductID string) []types.Competitor {
	return nil
}

func (n noopMonitor) CalculateSuggestedPrice(product models.InventoryItem, snapshot types.BuyBoxSnapshot) (decimal.Decimal, string) {
	return product.BasePrice, "base price"
}

func (n noopMonitor) UpdatePrice(ctx context.Context, sku, marketplaceProductID string, newPrice decimal.Decimal) buybox.PriceUpdateOutcome {
	return buybox.PriceUpdateOutcome{Success: true}
}

type schedulerFixture struct {
	scheduler *Scheduler
	rules     *fakeRuleRepo
	events    *fakeEventRepo
	histories *fakeHistoryRepo
	inventory *fakeInventoryRepo
	credits   *fakeCreditService
	adapter   *recordingAdapter
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()

	adapter := &recordingAdapter{marketplace: enums.MarketplaceAmazon, failSKUs: map[string]string{}}
	registry, err := marketplaces.NewRegistry(adapter)
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}
	monitors, err := buybox.NewMonitorSet(noopMonitor{marketplace: enums.MarketplaceAmazon})
	if err != nil {
		t.Fatalf("NewMonitorSet returned error: %v", err)
	}

	fixture := &schedulerFixture{
		rules:     newFakeRuleRepo(),
		events:    &fakeEventRepo{},
		histories: &fakeHistoryRepo{},
		inventory: &fakeInventoryRepo{items: map[uuid.UUID]*models.InventoryItem{}},
		credits:   &fakeCreditService{balances: map[uuid.UUID]int{}},
		adapter:   adapter,
	}
	scheduler, err := NewScheduler(SchedulerParams{
		Rules:              fixture.rules,
		Events:             fixture.events,
		Histories:          fixture.histories,
		Inventory:          fixture.inventory,
		Credits:            fixture.credits,
		Registry:           registry,
		Monitors:           monitors,
		Logger:             logger.New(logger.Options{ServiceName: "repricing-test"}),
		CostPerPriceUpdate: 1,
	})
	if err != nil {
		t.Fatalf("NewScheduler returned error: %v", err)
	}
	fixture.scheduler = scheduler
	return fixture
}

func (f *schedulerFixture) addProductWithHistory(orgID uuid.UUID, sku, ownPrice, buyBoxPrice string) uuid.UUID {
	productID := uuid.New()
	f.inventory.items[productID] = &models.InventoryItem{
		ID:        productID,
		OrgID:     orgID,
		SKU:       sku,
		BasePrice: decimal.RequireFromString(ownPrice),
		CostPrice: decimal.RequireFromString("5.00"),
		IsActive:  true,
	}
	buyBox := decimal.RequireFromString(buyBoxPrice)
	f.histories.histories = append(f.histories.histories, models.BuyBoxHistory{
		OrgID:                orgID,
		ProductID:            productID,
		SKU:                  sku,
		Marketplace:          enums.MarketplaceAmazon,
		MarketplaceProductID: "MP-" + sku,
		IsMonitoring:         true,
		LastSnapshot: types.BuyBoxSnapshot{
			Status:      enums.BuyBoxStatusNotOwned,
			OwnPrice:    decimal.RequireFromString(ownPrice),
			BuyBoxPrice: &buyBox,
			CapturedAt:  time.Now().UTC(),
		},
	})
	return productID
}

func (f *schedulerFixture) addDueRule(orgID uuid.UUID, name string, priority int) *models.RepricingRule {
	rule := &models.RepricingRule{
		ID:                     uuid.New(),
		OrgID:                  orgID,
		Name:                   name,
		IsActive:               true,
		Strategy:               enums.RepricingStrategyMatchBuyBox,
		Marketplaces:           pq.StringArray{string(enums.MarketplaceAmazon)},
		UpdateFrequencyMinutes: 60,
		Priority:               priority,
		MinPrice:               decPtr("1.00"),
		MaxPrice:               decPtr("1000.00"),
	}
	f.rules.rules[rule.ID] = rule
	return rule
}

func TestRunTickAppliesRuleAndRecordsEvent(t *testing.T) {
	fixture := newSchedulerFixture(t)
	orgID := uuid.New()
	fixture.credits.balances[orgID] = 10
	productID := fixture.addProductWithHistory(orgID, "SKU-1", "20.00", "18.00")
	rule := fixture.addDueRule(orgID, "match", 10)

	if err := fixture.scheduler.RunTick(context.Background()); err != nil {
		t.Fatalf("RunTick returned error: %v", err)
	}

	if len(fixture.adapter.updates) != 1 || len(fixture.adapter.updates[0]) != 1 {
		t.Fatalf("expected one submitted update, got %+v", fixture.adapter.updates)
	}
	if !fixture.adapter.updates[0][0].NewPrice.Equal(decimal.RequireFromString("18.00")) {
		t.Fatalf("expected price 18.00, got %s", fixture.adapter.updates[0][0].NewPrice)
	}

	if len(fixture.events.events) != 1 {
		t.Fatalf("expected one event, got %d", len(fixture.events.events))
	}
	event := fixture.events.events[0]
	if event.RuleID != rule.ID || event.ProductID != productID || !event.Success {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Reason == "" {
		t.Fatal("event must carry a reason")
	}

	if _, advanced := fixture.rules.runTimes[rule.ID]; !advanced {
		t.Fatal("rule lastRunAt must advance after processing")
	}
	if fixture.credits.balances[orgID] != 9 {
		t.Fatalf("expected one credit deducted, got balance %d", fixture.credits.balances[orgID])
	}
}

func TestRunTickPriorityDeduplication(t *testing.T) {
	fixture := newSchedulerFixture(t)
	orgID := uuid.New()
	fixture.credits.balances[orgID] = 10
	fixture.addProductWithHistory(orgID, "SKU-1", "20.00", "18.00")
	high := fixture.addDueRule(orgID, "high", 10)
	low := fixture.addDueRule(orgID, "low", 5)

	if err := fixture.scheduler.RunTick(context.Background()); err != nil {
		t.Fatalf("RunTick returned error: %v", err)
	}

	if len(fixture.events.events) != 1 {
		t.Fatalf("expected exactly one event, got %d", len(fixture.events.events))
	}
	if fixture.events.events[0].RuleID != high.ID {
		t.Fatal("the high priority rule must win the product")
	}
	if _, advanced := fixture.rules.runTimes[low.ID]; !advanced {
		t.Fatal("the low priority rule still ran and must advance")
	}
}

func TestRunTickCreditGateSkipsOrganization(t *testing.T) {
	fixture := newSchedulerFixture(t)
	orgID := uuid.New()
	fixture.credits.balances[orgID] = 0
	fixture.addProductWithHistory(orgID, "SKU-1", "20.00", "18.00")
	rule := fixture.addDueRule(orgID, "match", 10)

	if err := fixture.scheduler.RunTick(context.Background()); err != nil {
		t.Fatalf("RunTick returned error: %v", err)
	}

	if len(fixture.adapter.updates) != 0 {
		t.Fatal("no price update calls may happen for an unfunded organization")
	}
	if len(fixture.events.events) != 0 {
		t.Fatal("no events may be recorded for an unfunded organization")
	}
	if _, advanced := fixture.rules.runTimes[rule.ID]; advanced {
		t.Fatal("lastRunAt must not advance when the organization is skipped")
	}
	if len(fixture.credits.used) != 0 {
		t.Fatal("no partial spend allowed")
	}
}

func TestRunTickRecordsPerSKUFailures(t *testing.T) {
	fixture := newSchedulerFixture(t)
	orgID := uuid.New()
	fixture.credits.balances[orgID] = 10
	fixture.addProductWithHistory(orgID, "SKU-1", "20.00", "18.00")
	fixture.addProductWithHistory(orgID, "SKU-2", "25.00", "22.00")
	fixture.adapter.failSKUs["SKU-2"] = "listing locked"
	fixture.addDueRule(orgID, "match", 10)

	if err := fixture.scheduler.RunTick(context.Background()); err != nil {
		t.Fatalf("RunTick returned error: %v", err)
	}

	if len(fixture.events.events) != 2 {
		t.Fatalf("expected two events, got %d", len(fixture.events.events))
	}
	bySKU := map[string]models.RepricingEvent{}
	for _, event := range fixture.events.events {
		bySKU[event.SKU] = event
	}
	if !bySKU["SKU-1"].Success {
		t.Fatal("SKU-1 must succeed")
	}
	failed := bySKU["SKU-2"]
	if failed.Success {
		t.Fatal("SKU-2 must be recorded as failed")
	}
	if failed.ErrorMessage == nil || *failed.ErrorMessage != "listing locked" {
		t.Fatalf("expected failure message, got %v", failed.ErrorMessage)
	}
}

func TestExecuteRuleManuallySkipsOrgGate(t *testing.T) {
	fixture := newSchedulerFixture(t)
	orgID := uuid.New()
	// Balance covers the single update but not a worst-case pre-check
	// across many histories; manual execution has no such gate.
	fixture.credits.balances[orgID] = 1
	fixture.addProductWithHistory(orgID, "SKU-1", "20.00", "18.00")
	fixture.addProductWithHistory(orgID, "SKU-2", "20.00", "19.95")
	rule := fixture.addDueRule(orgID, "match", 10)

	summary, err := fixture.scheduler.ExecuteRule(context.Background(), *rule)
	if err != nil {
		t.Fatalf("ExecuteRule returned error: %v", err)
	}
	if !summary.Success {
		t.Fatalf("expected success, got %+v", summary)
	}
	if summary.Updates != 1 {
		t.Fatalf("expected one update (second product within no-op threshold), got %d", summary.Updates)
	}
}
