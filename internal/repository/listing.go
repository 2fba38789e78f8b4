package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"servicen_platform/internal/domain"
	apperrors "servicen_platform/pkg/errors"
	"servicen_platform/pkg/logger"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *domain.ServiceListing) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceListing, error)
	List(ctx context.Context, filter domain.ListingFilter) ([]*domain.ServiceListing, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*domain.ServiceListing, error)
	Update(ctx context.Context, listing *domain.ServiceListing) error
	Deactivate(ctx context.Context, id, providerID uuid.UUID) error
}

type listingRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewListingRepository(db *pgxpool.Pool, log logger.Logger) ListingRepository {
	return &listingRepository{db: db, log: log}
}

const listingColumns = `
	l.id, l.title, l.description, l.category, l.price, l.provider_id, l.location,
	l.available, l.avg_rating, l.review_count, l.created_at, l.updated_at,
	p.first_name, p.last_name, p.email, p.phone
`

func (r *listingRepository) Create(ctx context.Context, listing *domain.ServiceListing) error {
	query := `
		INSERT INTO service_listings (id, title, description, category, price, provider_id, location, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true, now(), now())
		RETURNING available, avg_rating, review_count, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		listing.ID, listing.Title, listing.Description, listing.Category,
		listing.Price, listing.ProviderID, listing.Location,
	).Scan(&listing.Available, &listing.AvgRating, &listing.ReviewCount, &listing.CreatedAt, &listing.UpdatedAt)

	if err != nil {
		r.log.Error("Failed to create listing", "error", err, "provider_id", listing.ProviderID)
		return apperrors.NewInfrastructureError("create listing", err)
	}

	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceListing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM service_listings l
		JOIN users p ON p.id = l.provider_id
		WHERE l.id = $1
	`

	listing, err := r.scanListing(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrListingNotFound
		}
		r.log.Error("Failed to get listing", "error", err, "listing_id", id)
		return nil, apperrors.NewInfrastructureError("get listing", err)
	}

	return listing, nil
}

// List собирает WHERE динамически по заданным фильтрам;
// показываются только доступные объявления
func (r *listingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.ServiceListing, error) {
	conditions := []string{"l.available = true"}
	args := []interface{}{}

	addArg := func(value interface{}) string {
		args = append(args, value)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Category != nil {
		conditions = append(conditions, "l.category = "+addArg(*filter.Category))
	}
	if filter.Location != nil {
		conditions = append(conditions, "l.location ILIKE "+addArg("%"+*filter.Location+"%"))
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "l.price >= "+addArg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "l.price <= "+addArg(*filter.MaxPrice))
	}
	if filter.Search != nil {
		pattern := addArg("%" + *filter.Search + "%")
		conditions = append(conditions, fmt.Sprintf("(l.title ILIKE %s OR l.description ILIKE %s)", pattern, pattern))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + listingColumns + `
		FROM service_listings l
		JOIN users p ON p.id = l.provider_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY l.created_at DESC
		LIMIT ` + addArg(limit) + ` OFFSET ` + addArg(offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list listings", "error", err)
		return nil, apperrors.NewInfrastructureError("list listings", err)
	}
	defer rows.Close()

	return r.scanListings(rows)
}

func (r *listingRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*domain.ServiceListing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM service_listings l
		JOIN users p ON p.id = l.provider_id
		WHERE l.provider_id = $1
		ORDER BY l.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, providerID)
	if err != nil {
		r.log.Error("Failed to list provider listings", "error", err, "provider_id", providerID)
		return nil, apperrors.NewInfrastructureError("list provider listings", err)
	}
	defer rows.Close()

	return r.scanListings(rows)
}

func (r *listingRepository) Update(ctx context.Context, listing *domain.ServiceListing) error {
	// provider_id в WHERE: обновлять может только владелец
	query := `
		UPDATE service_listings
		SET title = $3, description = $4, category = $5, price = $6, location = $7, available = $8, updated_at = $9
		WHERE id = $1 AND provider_id = $2
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		listing.ID, listing.ProviderID, listing.Title, listing.Description,
		listing.Category, listing.Price, listing.Location, listing.Available, time.Now(),
	).Scan(&listing.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrListingNotFound
		}
		r.log.Error("Failed to update listing", "error", err, "listing_id", listing.ID)
		return apperrors.NewInfrastructureError("update listing", err)
	}

	return nil
}

// Deactivate - мягкое удаление, запись остается для истории
func (r *listingRepository) Deactivate(ctx context.Context, id, providerID uuid.UUID) error {
	query := `
		UPDATE service_listings
		SET available = false, updated_at = now()
		WHERE id = $1 AND provider_id = $2
	`

	tag, err := r.db.Exec(ctx, query, id, providerID)
	if err != nil {
		r.log.Error("Failed to deactivate listing", "error", err, "listing_id", id)
		return apperrors.NewInfrastructureError("deactivate listing", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrListingNotFound
	}

	return nil
}

func (r *listingRepository) scanListing(row pgx.Row) (*domain.ServiceListing, error) {
	listing := &domain.ServiceListing{}
	provider := &domain.UserSummary{}
	var phone *string

	err := row.Scan(
		&listing.ID, &listing.Title, &listing.Description, &listing.Category,
		&listing.Price, &listing.ProviderID, &listing.Location,
		&listing.Available, &listing.AvgRating, &listing.ReviewCount,
		&listing.CreatedAt, &listing.UpdatedAt,
		&provider.FirstName, &provider.LastName, &provider.Email, &phone,
	)
	if err != nil {
		return nil, err
	}

	provider.ID = listing.ProviderID
	listing.Provider = provider
	return listing, nil
}

func (r *listingRepository) scanListings(rows pgx.Rows) ([]*domain.ServiceListing, error) {
	var listings []*domain.ServiceListing
	for rows.Next() {
		listing, err := r.scanListing(rows)
		if err != nil {
			r.log.Error("Failed to scan listing", "error", err)
			return nil, apperrors.NewInfrastructureError("scan listing", err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInfrastructureError("read listing rows", err)
	}

	return listings, nil
}
