package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/thiagodalladea/bebida-segura/internal/bootstrap/logging"
	domainlot "github.com/thiagodalladea/bebida-segura/internal/domain/lot"
	"github.com/thiagodalladea/bebida-segura/internal/errs"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
)

type InitializeInput struct {
	Owner string
}

// Initialize seeds the registry: fixes the owner identity and records the
// configured methanol limit. Running it again with the same owner is a no-op;
// with a different owner or a drifted limit it fails.
func (s *Service) Initialize(ctx context.Context, input InitializeInput) error {
	if err := requireContext(ctx); err != nil {
		return err
	}

	owner, err := requireIdentity("owner", input.Owner)
	if err != nil {
		return err
	}

	existingOwner, found, err := s.repo.GetRegistryValue(ctx, ports.RegistryKeyOwner)
	if err != nil {
		return errs.Wrap(err, "read owner")
	}
	if found && existingOwner != owner {
		return fmt.Errorf("registry already initialized with owner %s", existingOwner)
	}

	storedLimit, limitFound, err := s.repo.GetRegistryValue(ctx, ports.RegistryKeyMethanolLimit)
	if err != nil {
		return errs.Wrap(err, "read methanol limit")
	}
	if limitFound && storedLimit != strconv.FormatInt(s.limitPPM, 10) {
		return fmt.Errorf("configured methanol limit %d ppm disagrees with recorded %s ppm", s.limitPPM, storedLimit)
	}

	now := nowUTCString()
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.SetRegistryValue(txCtx, ports.RegistryKeyOwner, owner, now); err != nil {
			return err
		}
		if err := s.repo.SetRegistryValue(txCtx, ports.RegistryKeyMethanolLimit, strconv.FormatInt(s.limitPPM, 10), now); err != nil {
			return err
		}
		return s.repo.SetRegistryValue(txCtx, ports.RegistryKeySchemaSeededAt, now, now)
	}); err != nil {
		return err
	}

	logging.Info(ctx, "registry initialized",
		slog.String("owner", owner),
		slog.Int64("methanol_limit_ppm", s.limitPPM),
	)
	return nil
}

type RoleChangeInput struct {
	Role     string
	Identity string
	Caller   string
}

// GrantRole adds identity to a role set; owner only. Granting an already
// held role is a no-op.
func (s *Service) GrantRole(ctx context.Context, input RoleChangeInput) error {
	role, identity, caller, err := s.checkRoleChange(ctx, input)
	if err != nil {
		return err
	}

	if err := s.repo.AddRoleMember(ctx, role.String(), identity); err != nil {
		return err
	}
	logging.Info(ctx, "role granted",
		slog.String("role", role.String()),
		slog.String("identity", identity),
		slog.String("caller", caller),
	)
	return nil
}

// RevokeRole removes identity from a role set; owner only. Symmetric to
// GrantRole, removing an absent membership is a no-op.
func (s *Service) RevokeRole(ctx context.Context, input RoleChangeInput) error {
	role, identity, caller, err := s.checkRoleChange(ctx, input)
	if err != nil {
		return err
	}

	if err := s.repo.RemoveRoleMember(ctx, role.String(), identity); err != nil {
		return err
	}
	logging.Info(ctx, "role revoked",
		slog.String("role", role.String()),
		slog.String("identity", identity),
		slog.String("caller", caller),
	)
	return nil
}

func (s *Service) checkRoleChange(ctx context.Context, input RoleChangeInput) (domainlot.Role, string, string, error) {
	if err := requireContext(ctx); err != nil {
		return "", "", "", err
	}

	role, err := domainlot.ParseRole(input.Role)
	if err != nil {
		return "", "", "", err
	}
	identity, err := requireIdentity("identity", input.Identity)
	if err != nil {
		return "", "", "", err
	}
	caller, err := requireIdentity("caller", input.Caller)
	if err != nil {
		return "", "", "", err
	}
	if err := s.requireOwner(ctx, caller); err != nil {
		return "", "", "", err
	}
	return role, identity, caller, nil
}

// HasRole is a pure membership query.
func (s *Service) HasRole(ctx context.Context, identity string, role string) (bool, error) {
	if err := requireContext(ctx); err != nil {
		return false, err
	}
	parsed, err := domainlot.ParseRole(role)
	if err != nil {
		return false, err
	}
	return s.repo.HasRole(ctx, identity, parsed.String())
}

func (s *Service) ListIdentityRoles(ctx context.Context, identity string) ([]string, error) {
	if err := requireContext(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListIdentityRoles(ctx, identity)
}

func (s *Service) ListRoleMembers(ctx context.Context, role string) ([]string, error) {
	if err := requireContext(ctx); err != nil {
		return nil, err
	}
	parsed, err := domainlot.ParseRole(role)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRoleMembers(ctx, parsed.String())
}

// Owner returns the registry owner identity.
func (s *Service) Owner(ctx context.Context) (string, error) {
	if err := requireContext(ctx); err != nil {
		return "", err
	}
	owner, found, err := s.repo.GetRegistryValue(ctx, ports.RegistryKeyOwner)
	if err != nil {
		return "", errs.Wrap(err, "read owner")
	}
	if !found {
		return "", fmt.Errorf("registry is not initialized")
	}
	return owner, nil
}
