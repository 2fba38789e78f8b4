package handler

import (
	"servicen_platform/internal/config"
	"servicen_platform/internal/service"
	"servicen_platform/pkg/logger"
)

type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	User      *UserHandler
	Messaging *MessagingHandler
	Listing   *ListingHandler
	Dashboard *DashboardHandler
	WebSocket *WebSocketHandler
}

func NewHandlers(services *service.Services, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(cfg),
		Auth:      NewAuthHandler(services.Auth, log),
		User:      NewUserHandler(services.User, log),
		Messaging: NewMessagingHandler(services.Messaging, log),
		Listing:   NewListingHandler(services.Listing, log),
		Dashboard: NewDashboardHandler(services.Dashboard, services.User, log),
		WebSocket: NewWebSocketHandler(services.Auth, services.Events, log),
	}
}
