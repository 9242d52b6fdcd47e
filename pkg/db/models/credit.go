package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
)

// CreditBalance holds the current metered-usage balance for an organization.
// Deductions happen via a conditional update so concurrent spenders cannot
// jointly overdraw the row.
type CreditBalance struct {
	OrgID     uuid.UUID `gorm:"column:org_id;type:uuid;primaryKey"`
	Balance   int       `gorm:"column:balance;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CreditTransaction records an immutable credit debit or top-up.
type CreditTransaction struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID       uuid.UUID          `gorm:"column:org_id;type:uuid;not null;index"`
	Amount      int                `gorm:"column:amount;not null"`
	Reason      enums.CreditReason `gorm:"column:reason;type:credit_reason;not null"`
	Description string             `gorm:"column:description;not null"`
	ReferenceID *uuid.UUID         `gorm:"column:reference_id;type:uuid"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
}
