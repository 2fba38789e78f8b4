package service

import (
	"context"

	"github.com/google/uuid"

	"servicen_platform/internal/domain"
	"servicen_platform/internal/repository"
	"servicen_platform/pkg/logger"
)

// maxUserListSize ограничивает выборку адресатов для нового сообщения
const maxUserListSize = 50

type UserService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	ListOthers(ctx context.Context, userID uuid.UUID) ([]domain.UserSummary, error)
}

type userService struct {
	userRepo repository.UserRepository
	log      logger.Logger
}

func NewUserService(userRepo repository.UserRepository, log logger.Logger) UserService {
	return &userService{userRepo: userRepo, log: log}
}

func (s *userService) GetMe(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) ListOthers(ctx context.Context, userID uuid.UUID) ([]domain.UserSummary, error) {
	users, err := s.userRepo.ListOthers(ctx, userID, maxUserListSize)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.UserSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, user.Summary())
	}

	return summaries, nil
}
