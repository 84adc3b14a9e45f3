package tracking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	domainlot "github.com/thiagodalladea/bebida-segura/internal/domain/lot"
	"github.com/thiagodalladea/bebida-segura/internal/errs"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
)

func formatLotID(lotID uint64) string {
	return strconv.FormatUint(lotID, 10)
}

func requireContext(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	return nil
}

func requireIdentity(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %s is required", domainlot.ErrInvalidInput, field)
	}
	return trimmed, nil
}

// requireRole gates a mutation on the caller holding the given role.
func (s *Service) requireRole(ctx context.Context, caller string, role domainlot.Role) error {
	ok, err := s.repo.HasRole(ctx, caller, role.String())
	if err != nil {
		return errs.Wrap(err, "check role membership")
	}
	if !ok {
		return fmt.Errorf("%w: %s requires role %s", domainlot.ErrUnauthorized, caller, role)
	}
	return nil
}

// requireOwner gates registry management on the single owner identity.
func (s *Service) requireOwner(ctx context.Context, caller string) error {
	owner, found, err := s.repo.GetRegistryValue(ctx, ports.RegistryKeyOwner)
	if err != nil {
		return errs.Wrap(err, "read owner")
	}
	if !found {
		return errors.New("registry is not initialized")
	}
	if owner != caller {
		return fmt.Errorf("%w: %s is not the owner", domainlot.ErrUnauthorized, caller)
	}
	return nil
}
