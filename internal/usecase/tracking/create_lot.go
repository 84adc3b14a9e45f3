package tracking

import (
	"context"
	"fmt"
	"strings"

	domainlot "github.com/thiagodalladea/bebida-segura/internal/domain/lot"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
)

type CreateLotInput struct {
	ExternalCode string
	Description  string
	ProducedAt   string
	Caller       string
}

// CreateLot registers a new lot for a Manufacturer-role caller and returns
// the assigned identifier synchronously; the lot.created event remains for
// asynchronous observers.
func (s *Service) CreateLot(ctx context.Context, input CreateLotInput) (ports.Lot, error) {
	if err := requireContext(ctx); err != nil {
		return ports.Lot{}, err
	}

	caller, err := requireIdentity("caller", input.Caller)
	if err != nil {
		return ports.Lot{}, err
	}
	externalCode := strings.TrimSpace(input.ExternalCode)
	if externalCode == "" {
		return ports.Lot{}, fmt.Errorf("%w: external code is required", domainlot.ErrInvalidInput)
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return ports.Lot{}, fmt.Errorf("%w: description is required", domainlot.ErrInvalidInput)
	}
	producedAt := strings.TrimSpace(input.ProducedAt)
	if producedAt == "" {
		producedAt = nowUTCString()
	}

	if err := s.requireRole(ctx, caller, domainlot.RoleManufacturer); err != nil {
		return ports.Lot{}, err
	}

	now := nowUTCString()
	var created ports.Lot
	var event ports.LotEvent
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.repo.CreateLot(txCtx, ports.Lot{
			ExternalCode: externalCode,
			Description:  description,
			Manufacturer: caller,
			ProducedAt:   producedAt,
			State:        domainlot.StateCreated.String(),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}
		event, err = s.appendEvent(txCtx, created.LotID, EventLotCreated, LotCreatedPayload{
			LotID:        created.LotID,
			ExternalCode: created.ExternalCode,
		})
		return err
	}); err != nil {
		return ports.Lot{}, err
	}

	s.setCacheBestEffort(ctx, cacheLotStateKey(created.LotID), created.State)
	s.publishBestEffort(ctx, event)
	return created, nil
}
