package service

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

// RegisterDocumentInput references a file already uploaded to object storage.
type RegisterDocumentInput struct {
	FileName   string `json:"fileName" validate:"required,max=255"`
	URL        string `json:"url" validate:"required,url"`
	StorageKey string `json:"storageKey" validate:"required,max=255"`
}

type DocumentService struct {
	repos repository.Repositories
}

func NewDocumentService(repos repository.Repositories) *DocumentService {
	return &DocumentService{repos: repos}
}

func (s *DocumentService) Register(ctx context.Context, principal model.Principal, locationID uuid.UUID, input RegisterDocumentInput) (*model.ContractDocument, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if _, err := s.repos.Locations.GetByID(ctx, locationID); err != nil {
		return nil, storeError(err, "location")
	}

	doc := model.ContractDocument{
		LocationID: locationID,
		FileName:   sanitizeFileName(input.FileName),
		URL:        input.URL,
		StorageKey: input.StorageKey,
		UploadedBy: principal.UserID,
	}
	if doc.FileName == "" {
		return nil, newValidationError("fileName", "has no usable characters")
	}
	if err := s.repos.Documents.Create(ctx, &doc); err != nil {
		return nil, storeError(err, "location")
	}
	return &doc, nil
}

func (s *DocumentService) ListByLocation(ctx context.Context, locationID uuid.UUID) ([]model.ContractDocument, error) {
	if _, err := s.repos.Locations.GetByID(ctx, locationID); err != nil {
		return nil, storeError(err, "location")
	}
	return s.repos.Documents.ListByLocation(ctx, locationID)
}

func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	return storeError(s.repos.Documents.Delete(ctx, id), "document")
}

// sanitizeFileName keeps letters, digits, dash and underscore in the base
// name and preserves the extension.
func sanitizeFileName(input string) string {
	input = path.Base(strings.ReplaceAll(strings.TrimSpace(input), "\\", "/"))
	ext := strings.ToLower(path.Ext(input))
	base := strings.TrimSuffix(input, path.Ext(input))

	result := make([]rune, 0, len(base))
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	name := strings.Trim(string(result), "-")
	if name == "" {
		return ""
	}
	return name + sanitizeExt(ext)
}

func sanitizeExt(ext string) string {
	for _, r := range strings.TrimPrefix(ext, ".") {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}
