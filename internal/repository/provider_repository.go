package repository

import (
	"context"

	"zencontrol/internal/models"
)

// ProviderRepository is the provider collection.
type ProviderRepository struct {
	c *collection[models.Provider]
}

func NewProviderRepository(ctx context.Context, store Store) (*ProviderRepository, error) {
	c := newCollection(store, KeyProviders, func(p *models.Provider) string { return p.ID })
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return &ProviderRepository{c: c}, nil
}

func (r *ProviderRepository) List() []models.Provider {
	return r.c.list()
}

func (r *ProviderRepository) Get(id string) (models.Provider, bool) {
	return r.c.get(id)
}

func (r *ProviderRepository) Upsert(ctx context.Context, p models.Provider) (bool, error) {
	return r.c.upsert(ctx, p)
}

// Remove deletes a provider. Bookings referencing it are left untouched.
func (r *ProviderRepository) Remove(ctx context.Context, id string) (bool, error) {
	return r.c.remove(ctx, id)
}

func (r *ProviderRepository) ReplaceAll(ctx context.Context, providers []models.Provider) error {
	return r.c.replaceAll(ctx, providers)
}
