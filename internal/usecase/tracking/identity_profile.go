package tracking

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// IdentityProfile maps human-friendly names (fabricante, laboratorio, ...)
// to ledger identities, so commands can say --as laboratorio instead of
// repeating raw identity strings.
type IdentityProfile struct {
	Identities map[string]string `toml:"identities"`
}

func LoadIdentityProfile(path string) (IdentityProfile, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return IdentityProfile{}, errors.New("identity profile path is required")
	}

	raw, err := os.ReadFile(trimmed)
	if err != nil {
		return IdentityProfile{}, err
	}

	var profile IdentityProfile
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return IdentityProfile{}, fmt.Errorf("parse identity profile: %w", err)
	}
	if len(profile.Identities) == 0 {
		return IdentityProfile{}, errors.New("identity profile has no identities")
	}
	for name, identity := range profile.Identities {
		if strings.TrimSpace(identity) == "" {
			return IdentityProfile{}, fmt.Errorf("identity %q is empty", name)
		}
	}
	return profile, nil
}

// Resolve returns the identity registered under name.
func (p IdentityProfile) Resolve(name string) (string, error) {
	identity, ok := p.Identities[strings.TrimSpace(name)]
	if !ok {
		return "", fmt.Errorf("unknown identity name %q", name)
	}
	return identity, nil
}
