package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, d *model.ContractDocument) error {
	var saved model.ContractDocument
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO contract_documents (location_id, file_name, url, storage_key, uploaded_by)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, location_id, file_name, url, storage_key, uploaded_by, created_at
	`, d.LocationID, d.FileName, d.URL, d.StorageKey, d.UploadedBy).Scan(&saved).Error
	if err != nil {
		return translateError(err)
	}
	*d = saved
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ContractDocument, error) {
	var d model.ContractDocument
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, location_id, file_name, url, storage_key, uploaded_by, created_at
		FROM contract_documents
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&d).Error; err != nil {
		return nil, translateError(err)
	}
	if d.ID == uuid.Nil {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *DocumentRepository) ListByLocation(ctx context.Context, locationID uuid.UUID) ([]model.ContractDocument, error) {
	var rows []model.ContractDocument
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, location_id, file_name, url, storage_key, uploaded_by, created_at
		FROM contract_documents
		WHERE location_id = ?
		ORDER BY created_at DESC
	`, locationID).Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return rows, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM contract_documents WHERE id = ?`, id)
	return expectRows(result, repository.ErrNotFound)
}
