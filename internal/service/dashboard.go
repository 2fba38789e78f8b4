package service

import (
	"context"

	"github.com/google/uuid"

	"servicen_platform/internal/domain"
	"servicen_platform/internal/repository"
	"servicen_platform/pkg/logger"
)

type DashboardService interface {
	GetStats(ctx context.Context, userID uuid.UUID, role string) (*domain.DashboardStats, error)
}

type dashboardService struct {
	statsRepo   repository.StatsRepository
	messageRepo repository.MessageRepository
	log         logger.Logger
}

func NewDashboardService(statsRepo repository.StatsRepository, messageRepo repository.MessageRepository, log logger.Logger) DashboardService {
	return &dashboardService{
		statsRepo:   statsRepo,
		messageRepo: messageRepo,
		log:         log,
	}
}

func (s *dashboardService) GetStats(ctx context.Context, userID uuid.UUID, role string) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{}

	conversations, err := s.statsRepo.CountConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.Conversations = conversations

	unread, err := s.messageRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.UnreadMessages = unread

	// Показатели объявлений есть только у престатеров
	if role == domain.RolePrestataire {
		listings, err := s.statsRepo.CountActiveListings(ctx, userID)
		if err != nil {
			return nil, err
		}
		stats.ActiveListings = listings

		rating, err := s.statsRepo.AvgListingRating(ctx, userID)
		if err != nil {
			return nil, err
		}
		stats.AvgRating = rating
	}

	return stats, nil
}
