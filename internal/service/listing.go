package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"servicen_platform/internal/domain"
	"servicen_platform/internal/repository"
	apperrors "servicen_platform/pkg/errors"
	"servicen_platform/pkg/logger"
)

type ListingService interface {
	Create(ctx context.Context, providerID uuid.UUID, input ListingInput) (*domain.ServiceListing, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceListing, error)
	List(ctx context.Context, filter domain.ListingFilter) ([]*domain.ServiceListing, error)
	ListMine(ctx context.Context, providerID uuid.UUID) ([]*domain.ServiceListing, error)
	Update(ctx context.Context, id, providerID uuid.UUID, input ListingInput) (*domain.ServiceListing, error)
	Deactivate(ctx context.Context, id, providerID uuid.UUID) error
}

type ListingInput struct {
	Title       string
	Description string
	Category    string
	Price       float64
	Location    string
	Available   *bool
}

type listingService struct {
	listingRepo repository.ListingRepository
	log         logger.Logger
}

func NewListingService(listingRepo repository.ListingRepository, log logger.Logger) ListingService {
	return &listingService{listingRepo: listingRepo, log: log}
}

func (s *listingService) Create(ctx context.Context, providerID uuid.UUID, input ListingInput) (*domain.ServiceListing, error) {
	if err := validateListingInput(&input); err != nil {
		return nil, err
	}

	listing := &domain.ServiceListing{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		ProviderID:  providerID,
		Location:    input.Location,
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	s.log.Info("Listing created", "listing_id", listing.ID, "provider_id", providerID)
	return listing, nil
}

func (s *listingService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceListing, error) {
	return s.listingRepo.GetByID(ctx, id)
}

func (s *listingService) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.ServiceListing, error) {
	return s.listingRepo.List(ctx, filter)
}

func (s *listingService) ListMine(ctx context.Context, providerID uuid.UUID) ([]*domain.ServiceListing, error) {
	return s.listingRepo.ListByProvider(ctx, providerID)
}

func (s *listingService) Update(ctx context.Context, id, providerID uuid.UUID, input ListingInput) (*domain.ServiceListing, error) {
	existing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.ProviderID != providerID {
		// Чужое объявление не раскрываем как существующее
		return nil, apperrors.ErrListingNotFound
	}

	if err := validateListingInput(&input); err != nil {
		return nil, err
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.Category = input.Category
	existing.Price = input.Price
	existing.Location = input.Location
	if input.Available != nil {
		existing.Available = *input.Available
	}

	if err := s.listingRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

func (s *listingService) Deactivate(ctx context.Context, id, providerID uuid.UUID) error {
	return s.listingRepo.Deactivate(ctx, id, providerID)
}

func validateListingInput(input *ListingInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)

	if input.Title == "" {
		return apperrors.NewValidationError("title is required")
	}
	if len(input.Title) > domain.MaxListingTitleLength {
		return apperrors.NewValidationError("title exceeds %d characters", domain.MaxListingTitleLength)
	}
	if input.Description == "" {
		return apperrors.NewValidationError("description is required")
	}
	if len(input.Description) > domain.MaxListingDescLength {
		return apperrors.NewValidationError("description exceeds %d characters", domain.MaxListingDescLength)
	}
	if !domain.IsValidCategory(input.Category) {
		return apperrors.NewValidationError("unknown category %q", input.Category)
	}
	if input.Price < 0 {
		return apperrors.NewValidationError("price cannot be negative")
	}
	if input.Location == "" {
		input.Location = domain.DefaultListingLocation
	}

	return nil
}
