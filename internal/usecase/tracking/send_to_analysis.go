package tracking

import (
	"context"
	"fmt"

	domainlot "github.com/thiagodalladea/bebida-segura/internal/domain/lot"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
)

type SendToAnalysisInput struct {
	LotID  uint64
	Caller string
}

// SendToAnalysis records that the laboratory took the lot in: CREATED moves
// to UNDER_ANALYSIS. Registering a report is allowed from either state, so
// this step is optional but keeps the paper trail complete.
func (s *Service) SendToAnalysis(ctx context.Context, input SendToAnalysisInput) error {
	if err := requireContext(ctx); err != nil {
		return err
	}

	caller, err := requireIdentity("caller", input.Caller)
	if err != nil {
		return err
	}
	if err := s.requireRole(ctx, caller, domainlot.RoleLaboratory); err != nil {
		return err
	}

	current, err := s.repo.GetLot(ctx, input.LotID)
	if err != nil {
		return err
	}
	state, err := domainlot.ParseState(current.State)
	if err != nil {
		return err
	}
	if !domainlot.CanStartAnalysis(state) {
		return fmt.Errorf("%w: lot %d is %s, want CREATED", domainlot.ErrInvalidState, input.LotID, state)
	}

	var event ports.LotEvent
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.SetLotState(txCtx, input.LotID, domainlot.StateUnderAnalysis.String(), nowUTCString()); err != nil {
			return err
		}
		var err error
		event, err = s.appendEvent(txCtx, input.LotID, EventAnalysisStarted, AnalysisStartedPayload{
			LotID: input.LotID,
		})
		return err
	}); err != nil {
		return err
	}

	s.setCacheBestEffort(ctx, cacheLotStateKey(input.LotID), domainlot.StateUnderAnalysis.String())
	s.publishBestEffort(ctx, event)
	return nil
}
