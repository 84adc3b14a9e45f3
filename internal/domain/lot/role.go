package lot

import (
	"fmt"
	"strings"
)

// Role is an authorization capability. Roles are independent flags on an
// identity: one identity may hold any combination of them.
type Role string

const (
	RoleManufacturer Role = "manufacturer"
	RoleLaboratory   Role = "laboratory"
	RoleDistributor  Role = "distributor"
	RoleInspector    Role = "inspector"
)

func AllRoles() []Role {
	return []Role{RoleManufacturer, RoleLaboratory, RoleDistributor, RoleInspector}
}

func ParseRole(raw string) (Role, error) {
	candidate := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch candidate {
	case RoleManufacturer, RoleLaboratory, RoleDistributor, RoleInspector:
		return candidate, nil
	case "":
		return "", fmt.Errorf("%w: empty role", ErrInvalidInput)
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
	}
}

func (r Role) String() string {
	return string(r)
}
