package tracking

import (
	"context"
	"fmt"
	"strings"

	domainlot "github.com/thiagodalladea/bebida-segura/internal/domain/lot"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
)

type RegisterReportInput struct {
	LotID       uint64
	MethanolPPM int64
	Approved    bool
	ReportHash  string
	Caller      string
}

// RegisterLabReport writes the single analysis record of a lot and moves the
// lot to its analysis outcome. A measurement above the methanol limit blocks
// the lot regardless of the laboratory verdict. Returns the resulting state.
func (s *Service) RegisterLabReport(ctx context.Context, input RegisterReportInput) (domainlot.State, error) {
	if err := requireContext(ctx); err != nil {
		return "", err
	}

	caller, err := requireIdentity("caller", input.Caller)
	if err != nil {
		return "", err
	}
	if err := domainlot.ValidateMeasurement(input.MethanolPPM); err != nil {
		return "", err
	}
	reportHash := strings.TrimSpace(input.ReportHash)
	if reportHash == "" {
		return "", fmt.Errorf("%w: report hash is required", domainlot.ErrInvalidInput)
	}

	if err := s.requireRole(ctx, caller, domainlot.RoleLaboratory); err != nil {
		return "", err
	}

	current, err := s.repo.GetLot(ctx, input.LotID)
	if err != nil {
		return "", err
	}
	state, err := domainlot.ParseState(current.State)
	if err != nil {
		return "", err
	}

	existing, err := s.repo.GetLabReport(ctx, input.LotID)
	if err != nil {
		return "", err
	}
	if existing.Performed {
		return "", fmt.Errorf("%w: lot %d", domainlot.ErrAlreadyAnalyzed, input.LotID)
	}
	if !domainlot.CanRegisterReport(state) {
		return "", fmt.Errorf("%w: lot %d is %s", domainlot.ErrInvalidState, input.LotID, state)
	}

	outcome, blockReason := domainlot.AnalysisOutcome(input.MethanolPPM, s.limitPPM, input.Approved)

	now := nowUTCString()
	var event ports.LotEvent
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateLabReport(txCtx, ports.LabReport{
			LotID:       input.LotID,
			Performed:   true,
			Approved:    input.Approved,
			MethanolPPM: input.MethanolPPM,
			ReportHash:  reportHash,
			Laboratory:  caller,
			AnalyzedAt:  now,
		}); err != nil {
			return err
		}

		if outcome == domainlot.StateBlocked {
			if err := s.repo.MarkLotBlocked(txCtx, input.LotID, blockReason, now); err != nil {
				return err
			}
		} else {
			if err := s.repo.SetLotState(txCtx, input.LotID, outcome.String(), now); err != nil {
				return err
			}
		}

		var err error
		event, err = s.appendEvent(txCtx, input.LotID, EventReportRegistered, ReportRegisteredPayload{
			LotID:          input.LotID,
			Approved:       input.Approved,
			MethanolPPM:    input.MethanolPPM,
			ResultingState: outcome.String(),
		})
		return err
	}); err != nil {
		return "", err
	}

	s.setCacheBestEffort(ctx, cacheLotStateKey(input.LotID), outcome.String())
	s.publishBestEffort(ctx, event)
	return outcome, nil
}
