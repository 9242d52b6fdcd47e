package buybox

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/credits"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/logger"
)

const defaultPollBatchSize = 50

// PollJob captures fresh snapshots for monitored products whose next check
// is due. Runs inside the worker loop.
type PollJob struct {
	service      Service
	credits      credits.Service
	logg         *logger.Logger
	costPerCheck int
	batchSize    int
}

// PollJobParams wire the dependencies for the poll job.
type PollJobParams struct {
	Service      Service
	Credits      credits.Service
	Logger       *logger.Logger
	CostPerCheck int
	BatchSize    int
}

// NewPollJob validates the wiring and returns the job.
func NewPollJob(params PollJobParams) (*PollJob, error) {
	if params.Service == nil {
		return nil, fmt.Errorf("buybox service required")
	}
	if params.Credits == nil {
		return nil, fmt.Errorf("credits service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultPollBatchSize
	}
	return &PollJob{
		service:      params.Service,
		credits:      params.Credits,
		logg:         params.Logger,
		costPerCheck: params.CostPerCheck,
		batchSize:    batchSize,
	}, nil
}

func (j *PollJob) Name() string { return "buybox-poll" }

// Run polls every due history. Failures for individual products are
// aggregated rather than aborting the batch.
func (j *PollJob) Run(ctx context.Context) error {
	histories, err := j.service.ListDueForCheck(ctx, time.Now().UTC(), j.batchSize)
	if err != nil {
		return fmt.Errorf("list due histories: %w", err)
	}
	if len(histories) == 0 {
		return nil
	}

	var errs error
	for i := range histories {
		history := &histories[i]
		checkCtx := j.logg.WithOrgID(ctx, history.OrgID.String())
		checkCtx = j.logg.WithMarketplace(checkCtx, string(history.Marketplace))

		if j.costPerCheck > 0 {
			ok, err := j.credits.HasAvailableCredits(checkCtx, history.OrgID, j.costPerCheck)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("credit check for org %s: %w", history.OrgID, err))
				continue
			}
			if !ok {
				j.logg.Warn(checkCtx, "insufficient credits; skipping buy box check")
				continue
			}
		}

		if _, err := j.service.CheckProduct(checkCtx, history); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("check product %s: %w", history.ProductID, err))
			continue
		}

		if j.costPerCheck > 0 {
			productID := history.ProductID
			err := j.credits.UseCredits(checkCtx, credits.UseCreditsInput{
				OrgID:       history.OrgID,
				Amount:      j.costPerCheck,
				Reason:      enums.CreditReasonBuyBoxCheck,
				Description: fmt.Sprintf("buy box check for %s on %s", history.SKU, history.Marketplace),
				ReferenceID: &productID,
			})
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("deduct credits for org %s: %w", history.OrgID, err))
			}
		}
	}
	return errs
}
