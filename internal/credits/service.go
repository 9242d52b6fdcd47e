package credits

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/errors"
)

// TxRunner executes fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service meters credit consumption for billable operations.
type Service interface {
	Balance(ctx context.Context, orgID uuid.UUID) (int, error)
	HasAvailableCredits(ctx context.Context, orgID uuid.UUID, amount int) (bool, error)
	UseCredits(ctx context.Context, input UseCreditsInput) error
	AddCredits(ctx context.Context, input AddCreditsInput) error
	ListTransactions(ctx context.Context, orgID uuid.UUID, limit int) ([]models.CreditTransaction, error)
}

// UseCreditsInput describes a debit against an organization's balance.
type UseCreditsInput struct {
	OrgID       uuid.UUID
	Amount      int
	Reason      enums.CreditReason
	Description string
	ReferenceID *uuid.UUID
}

// AddCreditsInput describes a top-up or manual adjustment.
type AddCreditsInput struct {
	OrgID       uuid.UUID
	Amount      int
	Reason      enums.CreditReason
	Description string
}

type service struct {
	repo Repository
	tx   TxRunner
}

// Params wires the dependencies for the credits service.
type Params struct {
	Repo     Repository
	TxRunner TxRunner
}

// NewService validates the wiring and returns a credits service.
func NewService(params Params) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("credits repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("credits tx runner required")
	}
	return &service{repo: params.Repo, tx: params.TxRunner}, nil
}

func (s *service) Balance(ctx context.Context, orgID uuid.UUID) (int, error) {
	if orgID == uuid.Nil {
		return 0, fmt.Errorf("org id is required")
	}
	balance, err := s.repo.GetBalance(ctx, orgID)
	if err != nil {
		return 0, err
	}
	return balance.Balance, nil
}

func (s *service) HasAvailableCredits(ctx context.Context, orgID uuid.UUID, amount int) (bool, error) {
	if amount <= 0 {
		return true, nil
	}
	balance, err := s.Balance(ctx, orgID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

// UseCredits deducts the balance and records the transaction atomically. The
// deduction fails without side effects when the balance is short.
func (s *service) UseCredits(ctx context.Context, input UseCreditsInput) error {
	if input.OrgID == uuid.Nil {
		return fmt.Errorf("org id is required")
	}
	if input.Amount <= 0 {
		return fmt.Errorf("credit amount must be positive")
	}
	if !input.Reason.IsValid() {
		return fmt.Errorf("invalid credit reason %q", input.Reason)
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		deducted, err := repo.DeductBalance(ctx, input.OrgID, input.Amount)
		if err != nil {
			return err
		}
		if !deducted {
			return errors.New(errors.CodeStateConflict, "insufficient credits")
		}
		return repo.CreateTransaction(ctx, &models.CreditTransaction{
			OrgID:       input.OrgID,
			Amount:      -input.Amount,
			Reason:      input.Reason,
			Description: input.Description,
			ReferenceID: input.ReferenceID,
		})
	})
}

func (s *service) AddCredits(ctx context.Context, input AddCreditsInput) error {
	if input.OrgID == uuid.Nil {
		return fmt.Errorf("org id is required")
	}
	if input.Amount <= 0 {
		return fmt.Errorf("credit amount must be positive")
	}
	if !input.Reason.IsValid() {
		return fmt.Errorf("invalid credit reason %q", input.Reason)
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.AddBalance(ctx, input.OrgID, input.Amount); err != nil {
			return err
		}
		return repo.CreateTransaction(ctx, &models.CreditTransaction{
			OrgID:       input.OrgID,
			Amount:      input.Amount,
			Reason:      input.Reason,
			Description: input.Description,
		})
	})
}

func (s *service) ListTransactions(ctx context.Context, orgID uuid.UUID, limit int) ([]models.CreditTransaction, error) {
	if orgID == uuid.Nil {
		return nil, fmt.Errorf("org id is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.repo.ListTransactions(ctx, orgID, limit)
}
