package credits

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/errors"
)

type fakeCreditsRepo struct {
	balances     map[uuid.UUID]int
	transactions []models.CreditTransaction
	deductCalls  int
}

func newFakeCreditsRepo() *fakeCreditsRepo {
	return &fakeCreditsRepo{balances: map[uuid.UUID]int{}}
}

func (f *fakeCreditsRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeCreditsRepo) GetBalance(ctx context.Context, orgID uuid.UUID) (*models.CreditBalance, error) {
	return &models.CreditBalance{OrgID: orgID, Balance: f.balances[orgID]}, nil
}

func (f *fakeCreditsRepo) DeductBalance(ctx context.Context, orgID uuid.UUID, amount int) (bool, error) {
	f.deductCalls++
	if f.balances[orgID] < amount {
		return false, nil
	}
	f.balances[orgID] -= amount
	return true, nil
}

func (f *fakeCreditsRepo) AddBalance(ctx context.Context, orgID uuid.UUID, amount int) error {
	f.balances[orgID] += amount
	return nil
}

func (f *fakeCreditsRepo) CreateTransaction(ctx context.Context, txn *models.CreditTransaction) error {
	f.transactions = append(f.transactions, *txn)
	return nil
}

func (f *fakeCreditsRepo) ListTransactions(ctx context.Context, orgID uuid.UUID, limit int) ([]models.CreditTransaction, error) {
	return f.transactions, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo *fakeCreditsRepo) Service {
	t.Helper()

	svc, err := NewService(Params{Repo: repo, TxRunner: fakeTxRunner{}})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestUseCreditsDeductsAndRecordsTransaction(t *testing.T) {
	repo := newFakeCreditsRepo()
	orgID := uuid.New()
	repo.balances[orgID] = 10

	svc := newTestService(t, repo)
	err := svc.UseCredits(context.Background(), UseCreditsInput{
		OrgID:       orgID,
		Amount:      3,
		Reason:      enums.CreditReasonPriceUpdate,
		Description: "3 price updates",
	})
	if err != nil {
		t.Fatalf("UseCredits returned error: %v", err)
	}

	if repo.balances[orgID] != 7 {
		t.Fatalf("expected balance 7, got %d", repo.balances[orgID])
	}
	if len(repo.transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(repo.transactions))
	}
	if repo.transactions[0].Amount != -3 {
		t.Fatalf("expected debit of -3, got %d", repo.transactions[0].Amount)
	}
}

func TestUseCreditsInsufficientBalance(t *testing.T) {
	repo := newFakeCreditsRepo()
	orgID := uuid.New()
	repo.balances[orgID] = 2

	svc := newTestService(t, repo)
	err := svc.UseCredits(context.Background(), UseCreditsInput{
		OrgID:  orgID,
		Amount: 5,
		Reason: enums.CreditReasonBuyBoxCheck,
	})
	if err == nil {
		t.Fatal("expected error for insufficient credits")
	}
	if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeStateConflict {
		t.Fatalf("expected state conflict code, got %v", err)
	}
	if repo.balances[orgID] != 2 {
		t.Fatalf("balance must be untouched, got %d", repo.balances[orgID])
	}
	if len(repo.transactions) != 0 {
		t.Fatalf("no transaction expected on failure, got %d", len(repo.transactions))
	}
}

func TestHasAvailableCredits(t *testing.T) {
	repo := newFakeCreditsRepo()
	orgID := uuid.New()
	repo.balances[orgID] = 4

	svc := newTestService(t, repo)

	ok, err := svc.HasAvailableCredits(context.Background(), orgID, 4)
	if err != nil || !ok {
		t.Fatalf("expected exact balance to pass, got ok=%v err=%v", ok, err)
	}

	ok, err = svc.HasAvailableCredits(context.Background(), orgID, 5)
	if err != nil || ok {
		t.Fatalf("expected shortfall to fail, got ok=%v err=%v", ok, err)
	}

	ok, err = svc.HasAvailableCredits(context.Background(), orgID, 0)
	if err != nil || !ok {
		t.Fatalf("expected zero cost to pass, got ok=%v err=%v", ok, err)
	}
}

func TestAddCreditsTopsUpBalance(t *testing.T) {
	repo := newFakeCreditsRepo()
	orgID := uuid.New()

	svc := newTestService(t, repo)
	err := svc.AddCredits(context.Background(), AddCreditsInput{
		OrgID:       orgID,
		Amount:      50,
		Reason:      enums.CreditReasonTopUp,
		Description: "monthly allocation",
	})
	if err != nil {
		t.Fatalf("AddCredits returned error: %v", err)
	}
	if repo.balances[orgID] != 50 {
		t.Fatalf("expected balance 50, got %d", repo.balances[orgID])
	}
	if len(repo.transactions) != 1 || repo.transactions[0].Amount != 50 {
		t.Fatalf("unexpected transactions: %+v", repo.transactions)
	}
}
