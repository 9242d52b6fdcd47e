package buybox

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/credits"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/types"
)

type fakeCredits struct {
	balances map[uuid.UUID]int
	used     []credits.UseCreditsInput
}

func (f *fakeCredits) Balance(ctx context.Context, orgID uuid.UUID) (int, error) {
	return f.balances[orgID], nil
}

func (f *fakeCredits) HasAvailableCredits(ctx context.Context, orgID uuid.UUID, amount int) (bool, error) {
	return f.balances[orgID] >= amount, nil
}

func (f *fakeCredits) UseCredits(ctx context.Context, input credits.UseCreditsInput) error {
	f.balances[input.OrgID] -= input.Amount
	f.used = append(f.used, input)
	return nil
}

func (f *fakeCredits) AddCredits(ctx context.Context, input credits.AddCreditsInput) error {
	f.balances[input.OrgID] += input.Amount
	return nil
}

func (f *fakeCredits) ListTransactions(ctx context.Context, orgID uuid.UUID, limit int) ([]models.CreditTransaction, error) {
	return nil, nil
}

func TestPollJobChecksDueHistoriesAndDeductsCredits(t *testing.T) {
	repo := newFakeHistoryRepo()
	inv := newFakeInventoryRepo()
	orgID := uuid.New()
	product := monitoredProduct(orgID, enums.MarketplaceAmazon)
	inv.items[product.ID] = product

	monitor := &stubMonitor{
		marketplace: enums.MarketplaceAmazon,
		snapshot: types.BuyBoxSnapshot{
			Status:     enums.BuyBoxStatusOwned,
			OwnPrice:   decimal.RequireFromString("20.00"),
			CapturedAt: time.Now().UTC().Add(-time.Hour),
		},
	}
	svc := newBuyBoxTestService(t, repo, inv, monitor)
	if _, err := svc.InitializeMonitoring(context.Background(), InitializeMonitoringInput{
		OrgID:       orgID,
		ProductID:   product.ID,
		Marketplace: enums.MarketplaceAmazon,
	}); err != nil {
		t.Fatalf("InitializeMonitoring returned error: %v", err)
	}

	creditStore := &fakeCredits{balances: map[uuid.UUID]int{orgID: 5}}
	job, err := NewPollJob(PollJobParams{
		Service:      svc,
		Credits:      creditStore,
		Logger:       testLogger(),
		CostPerCheck: 1,
	})
	if err != nil {
		t.Fatalf("NewPollJob returned error: %v", err)
	}

	monitor.snapshot.CapturedAt = time.Now().UTC()
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if monitor.checks != 2 {
		t.Fatalf("expected init check plus one poll, got %d", monitor.checks)
	}
	if creditStore.balances[orgID] != 4 {
		t.Fatalf("expected one credit deducted, got balance %d", creditStore.balances[orgID])
	}
	if len(creditStore.used) != 1 || creditStore.used[0].Reason != enums.CreditReasonBuyBoxCheck {
		t.Fatalf("unexpected credit usage: %+v", creditStore.used)
	}
}

func TestPollJobSkipsOrgWithoutCredits(t *testing.T) {
	repo := newFakeHistoryRepo()
	inv := newFakeInventoryRepo()
	orgID := uuid.New()
	product := monitoredProduct(orgID, enums.MarketplaceAmazon)
	inv.items[product.ID] = product

	monitor := &stubMonitor{
		marketplace: enums.MarketplaceAmazon,
		snapshot: types.BuyBoxSnapshot{
			Status:     enums.BuyBoxStatusOwned,
			OwnPrice:   decimal.RequireFromString("20.00"),
			CapturedAt: time.Now().UTC().Add(-time.Hour),
		},
	}
	svc := newBuyBoxTestService(t, repo, inv, monitor)
	if _, err := svc.InitializeMonitoring(context.Background(), InitializeMonitoringInput{
		OrgID:       orgID,
		ProductID:   product.ID,
		Marketplace: enums.MarketplaceAmazon,
	}); err != nil {
		t.Fatalf("InitializeMonitoring returned error: %v", err)
	}
	checksAfterInit := monitor.checks

	creditStore := &fakeCredits{balances: map[uuid.UUID]int{orgID: 0}}
	job, err := NewPollJob(PollJobParams{
		Service:      svc,
		Credits:      creditStore,
		Logger:       testLogger(),
		CostPerCheck: 1,
	})
	if err != nil {
		t.Fatalf("NewPollJob returned error: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if monitor.checks != checksAfterInit {
		t.Fatal("no marketplace calls expected when credits are exhausted")
	}
	if len(creditStore.used) != 0 {
		t.Fatalf("no credits may be deducted, got %+v", creditStore.used)
	}
}
