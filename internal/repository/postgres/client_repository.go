package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

const clientColumns = `
	id,
	cin,
	name,
	phone,
	city,
	rental_count,
	fidelity_tier,
	blacklisted,
	blacklist_reason,
	created_at,
	updated_at
`

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, c *model.Client) error {
	var saved model.Client
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO clients (
			cin,
			name,
			phone,
			city,
			rental_count,
			fidelity_tier,
			blacklisted,
			blacklist_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING`+clientColumns,
		c.CIN,
		c.Name,
		c.Phone,
		c.City,
		c.RentalCount,
		c.FidelityTier,
		c.Blacklisted,
		c.BlacklistReason,
	).Scan(&saved).Error
	if err != nil {
		return translateError(err)
	}
	*c = saved
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	return r.getOne(ctx, "id = ?", id, "")
}

func (r *ClientRepository) GetByCIN(ctx context.Context, cin string) (*model.Client, error) {
	return r.getOne(ctx, "cin = ?", cin, "")
}

// GetByCINForUpdate holds the client row until the surrounding transaction ends.
func (r *ClientRepository) GetByCINForUpdate(ctx context.Context, cin string) (*model.Client, error) {
	return r.getOne(ctx, "cin = ?", cin, " FOR UPDATE")
}

func (r *ClientRepository) getOne(ctx context.Context, where string, arg interface{}, lock string) (*model.Client, error) {
	var c model.Client
	if err := r.db.WithContext(ctx).Raw(`
		SELECT`+clientColumns+`
		FROM clients
		WHERE `+where+`
		LIMIT 1`+lock, arg).Scan(&c).Error; err != nil {
		return nil, translateError(err)
	}
	if c.ID == uuid.Nil {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *ClientRepository) List(ctx context.Context, filter repository.ClientFilter) ([]model.Client, error) {
	query := `SELECT` + clientColumns + `FROM clients WHERE 1 = 1`
	var args []interface{}
	if filter.Blacklisted != nil {
		query += " AND blacklisted = ?"
		args = append(args, *filter.Blacklisted)
	}
	if filter.Search != "" {
		query += " AND (name ILIKE ? OR cin ILIKE ? OR phone ILIKE ?)"
		pattern := likePattern(filter.Search)
		args = append(args, pattern, pattern, pattern)
	}
	query += " ORDER BY name ASC"

	var rows []model.Client
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return rows, nil
}

func (r *ClientRepository) Update(ctx context.Context, c *model.Client) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE clients
		SET name = ?, phone = ?, city = ?, updated_at = NOW()
		WHERE id = ?
	`, c.Name, c.Phone, c.City, c.ID)
	return expectRows(result, repository.ErrNotFound)
}

func (r *ClientRepository) UpdateFidelity(ctx context.Context, id uuid.UUID, rentalCount int, tier model.FidelityTier) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE clients
		SET rental_count = ?, fidelity_tier = ?, updated_at = NOW()
		WHERE id = ?
	`, rentalCount, tier, id)
	return expectRows(result, repository.ErrNotFound)
}

func (r *ClientRepository) SetBlacklist(ctx context.Context, id uuid.UUID, blacklisted bool, reason *string) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE clients
		SET blacklisted = ?, blacklist_reason = ?, updated_at = NOW()
		WHERE id = ?
	`, blacklisted, reason, id)
	return expectRows(result, repository.ErrNotFound)
}

func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM clients WHERE id = ?`, id)
	return expectRows(result, repository.ErrNotFound)
}
