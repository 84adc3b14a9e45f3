package tracking

import (
	"context"
	"fmt"
	"strings"

	domainlot "github.com/thiagodalladea/bebida-segura/internal/domain/lot"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
)

type BlockLotInput struct {
	LotID  uint64
	Reason string
	Caller string
}

// BlockLot lets an Inspector pull a lot out of circulation from any
// non-terminal state. Blocking an already blocked lot fails with
// ErrAlreadyBlocked so callers can treat the retry as settled.
func (s *Service) BlockLot(ctx context.Context, input BlockLotInput) error {
	if err := requireContext(ctx); err != nil {
		return err
	}

	caller, err := requireIdentity("caller", input.Caller)
	if err != nil {
		return err
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return fmt.Errorf("%w: block reason is required", domainlot.ErrInvalidInput)
	}

	if err := s.requireRole(ctx, caller, domainlot.RoleInspector); err != nil {
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
	if err := domainlot.CheckBlockable(state); err != nil {
		return err
	}

	var event ports.LotEvent
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.MarkLotBlocked(txCtx, input.LotID, reason, nowUTCString()); err != nil {
			return err
		}
		var err error
		event, err = s.appendEvent(txCtx, input.LotID, EventLotBlocked, LotBlockedPayload{
			LotID:  input.LotID,
			Reason: reason,
		})
		return err
	}); err != nil {
		return err
	}

	s.setCacheBestEffort(ctx, cacheLotStateKey(input.LotID), domainlot.StateBlocked.String())
	s.publishBestEffort(ctx, event)
	return nil
}
