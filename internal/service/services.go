package service

import (
	"servicen_platform/internal/config"
	"servicen_platform/internal/repository"
	"servicen_platform/pkg/logger"
)

type Services struct {
	Auth      AuthService
	User      UserService
	Messaging MessagingService
	Listing   ListingService
	Dashboard DashboardService
	RateLimit RateLimitService
	Events    *EventHub
}

func NewServices(repos *repository.Repositories, cfg *config.Config, log logger.Logger) *Services {
	events := NewEventHub(log)

	return &Services{
		Auth:      NewAuthService(repos.User, cfg.JWT, log),
		User:      NewUserService(repos.User, log),
		Messaging: NewMessagingService(repos.Message, repos.User, events, cfg.Messaging, log),
		Listing:   NewListingService(repos.Listing, log),
		Dashboard: NewDashboardService(repos.Stats, repos.Message, log),
		RateLimit: NewRateLimitService(repos.RateLimit, log),
		Events:    events,
	}
}
