// Package access provides the static role-selection gate and session store.
package access

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"zencontrol/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrForbidden          = errors.New("operation not allowed for this role")
)

const (
	adminDisplayName     = "Administrador"
	receptionDisplayName = "Recepção"
)

// ProviderLookup resolves a masseur picked at login.
type ProviderLookup interface {
	Get(id string) (models.Provider, bool)
}

// Gate turns a role choice into a session. Only the admin role is protected,
// by a shared passphrase stored either in clear or as a bcrypt hash.
type Gate struct {
	passphrase string
	hash       []byte
	providers  ProviderLookup
	logger     zerolog.Logger
}

func NewGate(passphrase, hash string, providers ProviderLookup, logger zerolog.Logger) *Gate {
	g := &Gate{
		passphrase: passphrase,
		providers:  providers,
		logger:     logger.With().Str("component", "access").Logger(),
	}
	if hash != "" {
		g.hash = []byte(hash)
	}
	return g
}

// Login validates the role selection and returns the session context.
func (g *Gate) Login(role models.Role, passphrase, providerID string) (models.Session, error) {
	switch role {
	case models.RoleAdmin:
		if !g.checkPassphrase(passphrase) {
			g.logger.Warn().Msg("admin login rejected")
			return models.Session{}, ErrInvalidCredentials
		}
		return models.Session{Role: role, Name: adminDisplayName}, nil

	case models.RoleReceptionist:
		return models.Session{Role: role, Name: receptionDisplayName}, nil

	case models.RoleMasseur:
		p, ok := g.providers.Get(providerID)
		if !ok {
			return models.Session{}, fmt.Errorf("%w: unknown provider '%s'", ErrInvalidCredentials, providerID)
		}
		return models.Session{Role: role, Name: p.Name, ProviderID: p.ID}, nil
	}

	return models.Session{}, fmt.Errorf("%w: unknown role '%s'", ErrInvalidCredentials, role)
}

func (g *Gate) checkPassphrase(given string) bool {
	if g.hash != nil {
		return bcrypt.CompareHashAndPassword(g.hash, []byte(given)) == nil
	}
	if g.passphrase == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(g.passphrase), []byte(given)) == 1
}
