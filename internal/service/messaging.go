package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"servicen_platform/internal/config"
	"servicen_platform/internal/domain"
	"servicen_platform/internal/repository"
	apperrors "servicen_platform/pkg/errors"
	"servicen_platform/pkg/logger"
)

type MessagingService interface {
	SendMessage(ctx context.Context, senderID, recipientID uuid.UUID, subject, body string) (*domain.Message, error)
	ListConversations(ctx context.Context, viewerID uuid.UUID) ([]*domain.ConversationSummary, error)
	GetConversation(ctx context.Context, viewerID, counterpartID uuid.UUID) (*domain.ConversationThread, error)
	MarkConversationRead(ctx context.Context, viewerID, counterpartID uuid.UUID) (int64, error)
	DeleteConversation(ctx context.Context, viewerID, counterpartID uuid.UUID) error
}

type messagingService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	events      *EventHub
	cfg         config.MessagingConfig
	log         logger.Logger
}

func NewMessagingService(messageRepo repository.MessageRepository, userRepo repository.UserRepository, events *EventHub, cfg config.MessagingConfig, log logger.Logger) MessagingService {
	return &messagingService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		events:      events,
		cfg:         cfg,
		log:         log,
	}
}

func (s *messagingService) SendMessage(ctx context.Context, senderID, recipientID uuid.UUID, subject, body string) (*domain.Message, error) {
	subject = strings.TrimSpace(subject)
	body = strings.TrimSpace(body)

	if recipientID == uuid.Nil {
		return nil, apperrors.NewValidationError("recipient is required")
	}
	if body == "" {
		return nil, apperrors.NewValidationError("message body is required")
	}
	if len(body) > s.cfg.MaxBodyLength {
		return nil, apperrors.NewValidationError("message body exceeds %d characters", s.cfg.MaxBodyLength)
	}
	if len(subject) > s.cfg.MaxSubjectLength {
		return nil, apperrors.NewValidationError("subject exceeds %d characters", s.cfg.MaxSubjectLength)
	}
	// Сообщение самому себе запрещено: в диалоге всегда два участника
	if senderID == recipientID {
		return nil, apperrors.NewValidationError("cannot send a message to yourself")
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	recipient, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("recipient not found")
		}
		return nil, err
	}

	message := &domain.Message{
		ID:             uuid.New(),
		ConversationID: domain.ConversationID(senderID, recipientID),
		SenderID:       senderID,
		RecipientID:    recipientID,
		Subject:        subject,
		Body:           body,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	// Имена участников прикладываются сразу, чтобы клиент мог отрисовать
	// сообщение без дополнительного запроса
	senderSummary := sender.Summary()
	recipientSummary := recipient.Summary()
	message.Sender = &senderSummary
	message.Recipient = &recipientSummary

	s.log.Info("Message sent", "message_id", message.ID, "conversation_id", message.ConversationID)
	s.events.Publish(recipientID, Event{
		Type:           EventMessageNew,
		ConversationID: message.ConversationID,
		Message:        message,
	})

	return message, nil
}

// ListConversations восстанавливает диалоги одним сканом сообщений
// пользователя: записи идут по убыванию created_at, поэтому первая
// встреченная запись группы и есть ее последнее сообщение
func (s *messagingService) ListConversations(ctx context.Context, viewerID uuid.UUID) ([]*domain.ConversationSummary, error) {
	messages, err := s.messageRepo.ListByParticipant(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	byConversation := make(map[string]*domain.ConversationSummary)
	var ordered []*domain.ConversationSummary

	for _, msg := range messages {
		summary, seen := byConversation[msg.ConversationID]
		if !seen {
			summary = &domain.ConversationSummary{
				ID:          msg.ConversationID,
				Counterpart: counterpartOf(msg, viewerID),
				LastMessage: msg,
			}
			byConversation[msg.ConversationID] = summary
			ordered = append(ordered, summary)
		}

		if msg.RecipientID == viewerID && !msg.Read {
			summary.HasUnread = true
		}
	}

	// Скан уже отсортирован по убыванию, порядок first-seen совпадает
	// с порядком последних сообщений - отдельная сортировка не нужна
	return ordered, nil
}

func (s *messagingService) GetConversation(ctx context.Context, viewerID, counterpartID uuid.UUID) (*domain.ConversationThread, error) {
	counterpart, err := s.userRepo.GetByID(ctx, counterpartID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("counterpart not found")
		}
		return nil, err
	}

	conversationID := domain.ConversationID(viewerID, counterpartID)

	messages, err := s.messageRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	// Просмотр диалога помечает входящие как прочитанные одним
	// атомарным UPDATE. Отправленные во время чтения сообщения в
	// проход не попадают - их пометит следующий просмотр
	updated, err := s.messageRepo.MarkConversationRead(ctx, conversationID, viewerID)
	if err != nil {
		return nil, err
	}

	if updated > 0 {
		for _, msg := range messages {
			if msg.RecipientID == viewerID {
				msg.Read = true
			}
		}
		s.events.Publish(counterpartID, Event{
			Type:           EventConversationRead,
			ConversationID: conversationID,
		})
	}

	return &domain.ConversationThread{
		ID:          conversationID,
		Counterpart: counterpart.Summary(),
		Messages:    messages,
	}, nil
}

func (s *messagingService) MarkConversationRead(ctx context.Context, viewerID, counterpartID uuid.UUID) (int64, error) {
	conversationID := domain.ConversationID(viewerID, counterpartID)

	// Идемпотентно: отсутствие непрочитанных сообщений не ошибка
	updated, err := s.messageRepo.MarkConversationRead(ctx, conversationID, viewerID)
	if err != nil {
		return 0, err
	}

	if updated > 0 {
		s.events.Publish(counterpartID, Event{
			Type:           EventConversationRead,
			ConversationID: conversationID,
		})
	}

	return updated, nil
}

func (s *messagingService) DeleteConversation(ctx context.Context, viewerID, counterpartID uuid.UUID) error {
	conversationID := domain.ConversationID(viewerID, counterpartID)

	deleted, err := s.messageRepo.DeleteConversation(ctx, conversationID)
	if err != nil {
		return err
	}

	s.log.Info("Conversation deleted", "conversation_id", conversationID, "messages", deleted)
	return nil
}

func counterpartOf(msg *domain.Message, viewerID uuid.UUID) domain.UserSummary {
	if msg.SenderID == viewerID {
		if msg.Recipient != nil {
			return *msg.Recipient
		}
		return domain.UserSummary{ID: msg.RecipientID}
	}
	if msg.Sender != nil {
		return *msg.Sender
	}
	return domain.UserSummary{ID: msg.SenderID}
}
