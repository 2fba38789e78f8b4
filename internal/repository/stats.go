package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "servicen_platform/pkg/errors"
	"servicen_platform/pkg/logger"
)

type StatsRepository interface {
	CountActiveListings(ctx context.Context, providerID uuid.UUID) (int, error)
	CountConversations(ctx context.Context, userID uuid.UUID) (int, error)
	AvgListingRating(ctx context.Context, providerID uuid.UUID) (float64, error)
}

type statsRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewStatsRepository(db *pgxpool.Pool, log logger.Logger) StatsRepository {
	return &statsRepository{db: db, log: log}
}

func (r *statsRepository) CountActiveListings(ctx context.Context, providerID uuid.UUID) (int, error) {
	query := `SELECT count(*) FROM service_listings WHERE provider_id = $1 AND available = true`

	var count int
	if err := r.db.QueryRow(ctx, query, providerID).Scan(&count); err != nil {
		r.log.Error("Failed to count active listings", "error", err, "provider_id", providerID)
		return 0, apperrors.NewInfrastructureError("count active listings", err)
	}

	return count, nil
}

func (r *statsRepository) CountConversations(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT count(DISTINCT conversation_id)
		FROM messages
		WHERE sender_id = $1 OR recipient_id = $1
	`

	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.log.Error("Failed to count conversations", "error", err, "user_id", userID)
		return 0, apperrors.NewInfrastructureError("count conversations", err)
	}

	return count, nil
}

func (r *statsRepository) AvgListingRating(ctx context.Context, providerID uuid.UUID) (float64, error) {
	// Объявления без отзывов не учитываются в среднем
	query := `
		SELECT coalesce(avg(avg_rating), 0)
		FROM service_listings
		WHERE provider_id = $1 AND review_count > 0
	`

	var avg float64
	if err := r.db.QueryRow(ctx, query, providerID).Scan(&avg); err != nil {
		r.log.Error("Failed to compute average rating", "error", err, "provider_id", providerID)
		return 0, apperrors.NewInfrastructureError("average rating", err)
	}

	return avg, nil
}
