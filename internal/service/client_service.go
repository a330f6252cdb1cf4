package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

type CreateClientInput struct {
	CIN   string `json:"cin" validate:"required,len=8,numeric"`
	Name  string `json:"name" validate:"required,max=255"`
	Phone string `json:"phone" validate:"max=32"`
	City  string `json:"city" validate:"max=128"`
}

type UpdateClientInput struct {
	Name  string `json:"name" validate:"required,max=255"`
	Phone string `json:"phone" validate:"max=32"`
	City  string `json:"city" validate:"max=128"`
}

type BlacklistInput struct {
	Blacklisted bool    `json:"blacklisted"`
	Reason      *string `json:"reason" validate:"omitempty,max=500"`
}

type ClientService struct {
	repos repository.Repositories
}

func NewClientService(repos repository.Repositories) *ClientService {
	return &ClientService{repos: repos}
}

func (s *ClientService) Create(ctx context.Context, input CreateClientInput) (*model.Client, error) {
	input.CIN = strings.TrimSpace(input.CIN)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	client := model.Client{
		CIN:          input.CIN,
		Name:         strings.TrimSpace(input.Name),
		Phone:        strings.TrimSpace(input.Phone),
		City:         strings.TrimSpace(input.City),
		FidelityTier: model.FidelityTierNone,
	}
	if err := s.repos.Clients.Create(ctx, &client); err != nil {
		return nil, storeError(err, "client")
	}
	return &client, nil
}

func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	client, err := s.repos.Clients.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "client")
	}
	return client, nil
}

func (s *ClientService) GetByCIN(ctx context.Context, cin string) (*model.Client, error) {
	client, err := s.repos.Clients.GetByCIN(ctx, strings.TrimSpace(cin))
	if err != nil {
		return nil, storeError(err, "client")
	}
	return client, nil
}

func (s *ClientService) List(ctx context.Context, filter repository.ClientFilter) ([]model.Client, error) {
	return s.repos.Clients.List(ctx, filter)
}

func (s *ClientService) Update(ctx context.Context, id uuid.UUID, input UpdateClientInput) (*model.Client, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	client.Name = strings.TrimSpace(input.Name)
	client.Phone = strings.TrimSpace(input.Phone)
	client.City = strings.TrimSpace(input.City)
	if err := s.repos.Clients.Update(ctx, client); err != nil {
		return nil, storeError(err, "client")
	}
	return client, nil
}

func (s *ClientService) SetBlacklist(ctx context.Context, id uuid.UUID, input BlacklistInput) (*model.Client, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	reason := input.Reason
	if !input.Blacklisted {
		reason = nil
	}
	if err := s.repos.Clients.SetBlacklist(ctx, id, input.Blacklisted, reason); err != nil {
		return nil, storeError(err, "client")
	}
	return s.Get(ctx, id)
}

func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	history, err := s.repos.Locations.List(ctx, repository.LocationFilter{ClientID: &id})
	if err != nil {
		return err
	}
	if len(history) > 0 {
		return newValidationError("id", "client has rental history")
	}
	return storeError(s.repos.Clients.Delete(ctx, id), "client")
}
