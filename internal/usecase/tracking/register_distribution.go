package tracking

import (
	"context"
	"fmt"
	"strings"

	domainlot "github.com/thiagodalladea/bebida-segura/internal/domain/lot"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
)

type RegisterDistributionInput struct {
	LotID       uint64
	Destination string
	Caller      string
}

// RegisterDistribution ships an APPROVED lot: records the destination and
// moves the lot to DISTRIBUTED, its final state.
func (s *Service) RegisterDistribution(ctx context.Context, input RegisterDistributionInput) error {
	if err := requireContext(ctx); err != nil {
		return err
	}

	caller, err := requireIdentity("caller", input.Caller)
	if err != nil {
		return err
	}
	destination := strings.TrimSpace(input.Destination)
	if destination == "" {
		return fmt.Errorf("%w: destination is required", domainlot.ErrInvalidInput)
	}

	if err := s.requireRole(ctx, caller, domainlot.RoleDistributor); err != nil {
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
	if !domainlot.CanDistribute(state) {
		return fmt.Errorf("%w: lot %d is %s, want APPROVED", domainlot.ErrInvalidState, input.LotID, state)
	}

	var event ports.LotEvent
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.MarkLotDistributed(txCtx, input.LotID, destination, nowUTCString()); err != nil {
			return err
		}
		var err error
		event, err = s.appendEvent(txCtx, input.LotID, EventDistributionRegistered, DistributionRegisteredPayload{
			LotID:       input.LotID,
			Destination: destination,
		})
		return err
	}); err != nil {
		return err
	}

	s.setCacheBestEffort(ctx, cacheLotStateKey(input.LotID), domainlot.StateDistributed.String())
	s.publishBestEffort(ctx, event)
	return nil
}
