package access

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"zencontrol/internal/models"
)

type providerMap map[string]models.Provider

func (m providerMap) Get(id string) (models.Provider, bool) {
	p, ok := m[id]
	return p, ok
}

var providers = providerMap{"p1": {ID: "p1", Name: "Carla"}}

func TestGate_Login(t *testing.T) {
	gate := NewGate("Vilage#2027", "", providers, zerolog.Nop())

	tests := []struct {
		name       string
		role       models.Role
		passphrase string
		providerID string
		want       models.Session
		wantErr    error
	}{
		{"admin ok", models.RoleAdmin, "Vilage#2027", "", models.Session{Role: models.RoleAdmin, Name: "Administrador"}, nil},
		{"admin wrong passphrase", models.RoleAdmin, "guess", "", models.Session{}, ErrInvalidCredentials},
		{"reception needs nothing", models.RoleReceptionist, "", "", models.Session{Role: models.RoleReceptionist, Name: "Recepção"}, nil},
		{"masseur picks self", models.RoleMasseur, "", "p1", models.Session{Role: models.RoleMasseur, Name: "Carla", ProviderID: "p1"}, nil},
		{"masseur unknown", models.RoleMasseur, "", "ghost", models.Session{}, ErrInvalidCredentials},
		{"unknown role", models.Role("guest"), "", "", models.Session{}, ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gate.Login(tt.role, tt.passphrase, tt.providerID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGate_BcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	gate := NewGate("", string(hash), providers, zerolog.Nop())

	_, err = gate.Login(models.RoleAdmin, "s3cret", "")
	assert.NoError(t, err)
	_, err = gate.Login(models.RoleAdmin, "other", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGate_NoPassphraseConfigured(t *testing.T) {
	gate := NewGate("", "", providers, zerolog.Nop())
	_, err := gate.Login(models.RoleAdmin, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessionStore(t *testing.T) {
	now := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	store := NewSessionStore(time.Hour)
	store.now = func() time.Time { return now }

	token := store.Create(models.Session{Role: models.RoleReceptionist, Name: "Recepção"})
	assert.NotEmpty(t, token)

	s, err := store.Get(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleReceptionist, s.Role)

	now = now.Add(50 * time.Minute)
	_, err = store.Get(token)
	require.NoError(t, err, "access refreshes the timeout")

	now = now.Add(61 * time.Minute)
	_, err = store.Get(token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	other := store.Create(models.Session{Role: models.RoleAdmin})
	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, store.Cleanup())

	store.Delete(other)
	_, err = store.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
