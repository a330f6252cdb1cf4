package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

type ClientRepository struct {
	handle
}

func (r *ClientRepository) Create(ctx context.Context, c *model.Client) error {
	return r.write(ctx, func(t *tables) error {
		for _, existing := range t.clients {
			if existing.CIN == c.CIN {
				return &repository.DuplicateError{Field: "cin"}
			}
		}
		now := r.now()
		c.ID = uuid.New()
		c.CreatedAt = now
		c.UpdatedAt = now
		t.clients[c.ID] = *c
		return nil
	})
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	return r.find(ctx, func(c model.Client) bool { return c.ID == id })
}

func (r *ClientRepository) GetByCIN(ctx context.Context, cin string) (*model.Client, error) {
	return r.find(ctx, func(c model.Client) bool { return c.CIN == cin })
}

// GetByCINForUpdate needs no row lock here; WithinTx already runs one
// transaction at a time.
func (r *ClientRepository) GetByCINForUpdate(ctx context.Context, cin string) (*model.Client, error) {
	return r.GetByCIN(ctx, cin)
}

func (r *ClientRepository) find(ctx context.Context, match func(model.Client) bool) (*model.Client, error) {
	var out *model.Client
	err := r.read(ctx, func(t *tables) error {
		for _, c := range t.clients {
			if match(c) {
				found := c
				out = &found
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *ClientRepository) List(ctx context.Context, filter repository.ClientFilter) ([]model.Client, error) {
	var rows []model.Client
	err := r.read(ctx, func(t *tables) error {
		for _, c := range t.clients {
			if filter.Blacklisted != nil && c.Blacklisted != *filter.Blacklisted {
				continue
			}
			if filter.Search != "" && !containsFold(c.Name, filter.Search) &&
				!containsFold(c.CIN, filter.Search) && !containsFold(c.Phone, filter.Search) {
				continue
			}
			rows = append(rows, c)
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, err
}

func (r *ClientRepository) Update(ctx context.Context, c *model.Client) error {
	return r.mutate(ctx, c.ID, func(existing *model.Client) {
		existing.Name = c.Name
		existing.Phone = c.Phone
		existing.City = c.City
	})
}

func (r *ClientRepository) UpdateFidelity(ctx context.Context, id uuid.UUID, rentalCount int, tier model.FidelityTier) error {
	return r.mutate(ctx, id, func(c *model.Client) {
		c.RentalCount = rentalCount
		c.FidelityTier = tier
	})
}

func (r *ClientRepository) SetBlacklist(ctx context.Context, id uuid.UUID, blacklisted bool, reason *string) error {
	return r.mutate(ctx, id, func(c *model.Client) {
		c.Blacklisted = blacklisted
		c.BlacklistReason = reason
	})
}

func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.write(ctx, func(t *tables) error {
		if _, ok := t.clients[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.clients, id)
		return nil
	})
}

func (r *ClientRepository) mutate(ctx context.Context, id uuid.UUID, apply func(c *model.Client)) error {
	return r.write(ctx, func(t *tables) error {
		c, ok := t.clients[id]
		if !ok {
			return repository.ErrNotFound
		}
		apply(&c)
		c.UpdatedAt = r.now()
		t.clients[id] = c
		return nil
	})
}
