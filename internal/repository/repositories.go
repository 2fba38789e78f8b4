package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"servicen_platform/pkg/logger"
)

type Repositories struct {
	User      UserRepository
	Message   MessageRepository
	Listing   ListingRepository
	Stats     StatsRepository
	RateLimit RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, redis *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		User:      NewUserRepository(db, log),
		Message:   NewMessageRepository(db, log),
		Listing:   NewListingRepository(db, log),
		Stats:     NewStatsRepository(db, log),
		RateLimit: NewRateLimitRepository(redis, log),
	}
}
