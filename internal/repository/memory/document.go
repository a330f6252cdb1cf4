package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

type DocumentRepository struct {
	handle
}

func (r *DocumentRepository) Create(ctx context.Context, d *model.ContractDocument) error {
	return r.write(ctx, func(t *tables) error {
		if _, ok := t.locations[d.LocationID]; !ok {
			return repository.ErrNotFound
		}
		d.ID = uuid.New()
		d.CreatedAt = r.now()
		t.documents[d.ID] = *d
		return nil
	})
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ContractDocument, error) {
	var out model.ContractDocument
	err := r.read(ctx, func(t *tables) error {
		d, ok := t.documents[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *DocumentRepository) ListByLocation(ctx context.Context, locationID uuid.UUID) ([]model.ContractDocument, error) {
	var rows []model.ContractDocument
	err := r.read(ctx, func(t *tables) error {
		for _, d := range t.documents {
			if d.LocationID == locationID {
				rows = append(rows, d)
			}
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, err
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.write(ctx, func(t *tables) error {
		if _, ok := t.documents[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.documents, id)
		return nil
	})
}
