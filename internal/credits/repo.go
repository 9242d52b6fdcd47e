package credits

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
)

// Repository manages persistence for credit balances and transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetBalance(ctx context.Context, orgID uuid.UUID) (*models.CreditBalance, error)
	DeductBalance(ctx context.Context, orgID uuid.UUID, amount int) (bool, error)
	AddBalance(ctx context.Context, orgID uuid.UUID, amount int) error
	CreateTransaction(ctx context.Context, txn *models.CreditTransaction) error
	ListTransactions(ctx context.Context, orgID uuid.UUID, limit int) ([]models.CreditTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a credits repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetBalance(ctx context.Context, orgID uuid.UUID) (*models.CreditBalance, error) {
	var balance models.CreditBalance
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.CreditBalance{OrgID: orgID, Balance: 0}, nil
	}
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// DeductBalance decrements the balance only when enough credits remain. The
// conditional update keeps concurrent spenders from overdrawing the row.
func (r *repository) DeductBalance(ctx context.Context, orgID uuid.UUID, amount int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CreditBalance{}).
		Where("org_id = ? AND balance >= ?", orgID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) AddBalance(ctx context.Context, orgID uuid.UUID, amount int) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "org_id"}},
			DoUpdates: clause.Assignments(map[string]any{"balance": gorm.Expr("credit_balances.balance + ?", amount)}),
		}).
		Create(&models.CreditBalance{OrgID: orgID, Balance: amount}).Error
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.CreditTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListTransactions(ctx context.Context, orgID uuid.UUID, limit int) ([]models.CreditTransaction, error) {
	var txns []models.CreditTransaction
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
