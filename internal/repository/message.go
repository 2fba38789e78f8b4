package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"servicen_platform/internal/domain"
	apperrors "servicen_platform/pkg/errors"
	"servicen_platform/pkg/logger"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.Message, error)
	ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error)
	MarkConversationRead(ctx context.Context, conversationID string, recipientID uuid.UUID) (int64, error)
	DeleteConversation(ctx context.Context, conversationID string) (int64, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error)
}

type messageRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMessageRepository(db *pgxpool.Pool, log logger.Logger) MessageRepository {
	return &messageRepository{db: db, log: log}
}

// messageColumns - сообщение вместе с именами участников (join на users,
// чтобы не делать отдельный запрос на каждое сообщение)
const messageColumns = `
	m.id, m.conversation_id, m.sender_id, m.recipient_id, m.subject, m.body, m.read, m.created_at,
	s.first_name, s.last_name, r.first_name, r.last_name
`

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	// created_at назначает БД: один источник часов на все записи диалога,
	// порядок внутри conversation_id не зависит от часов приложения
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, recipient_id, subject, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, now())
		RETURNING read, created_at
	`

	err := r.db.QueryRow(ctx, query,
		message.ID, message.ConversationID, message.SenderID, message.RecipientID,
		message.Subject, message.Body,
	).Scan(&message.Read, &message.CreatedAt)

	if err != nil {
		r.log.Error("Failed to create message", "error", err, "conversation_id", message.ConversationID)
		return apperrors.NewInfrastructureError("create message", err)
	}

	return nil
}

func (r *messageRepository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.Message, error) {
	// Новые сверху; при равных created_at порядок фиксируется по id
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users s ON s.id = m.sender_id
		JOIN users r ON r.id = m.recipient_id
		WHERE m.sender_id = $1 OR m.recipient_id = $1
		ORDER BY m.created_at DESC, m.id DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list messages by participant", "error", err, "user_id", userID)
		return nil, apperrors.NewInfrastructureError("list messages", err)
	}
	defer rows.Close()

	return r.scanMessages(rows)
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	// Хронологический порядок для отображения переписки
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users s ON s.id = m.sender_id
		JOIN users r ON r.id = m.recipient_id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`

	rows, err := r.db.Query(ctx, query, conversationID)
	if err != nil {
		r.log.Error("Failed to list conversation messages", "error", err, "conversation_id", conversationID)
		return nil, apperrors.NewInfrastructureError("list conversation", err)
	}
	defer rows.Close()

	return r.scanMessages(rows)
}

// MarkConversationRead выполняет один условный UPDATE: две вкладки,
// открывшие диалог одновременно, сходятся к "все прочитано" без гонок
func (r *messageRepository) MarkConversationRead(ctx context.Context, conversationID string, recipientID uuid.UUID) (int64, error) {
	query := `
		UPDATE messages
		SET read = true
		WHERE conversation_id = $1 AND recipient_id = $2 AND read = false
	`

	tag, err := r.db.Exec(ctx, query, conversationID, recipientID)
	if err != nil {
		r.log.Error("Failed to mark conversation read", "error", err, "conversation_id", conversationID)
		return 0, apperrors.NewInfrastructureError("mark conversation read", err)
	}

	return tag.RowsAffected(), nil
}

func (r *messageRepository) DeleteConversation(ctx context.Context, conversationID string) (int64, error) {
	query := `DELETE FROM messages WHERE conversation_id = $1`

	tag, err := r.db.Exec(ctx, query, conversationID)
	if err != nil {
		r.log.Error("Failed to delete conversation", "error", err, "conversation_id", conversationID)
		return 0, apperrors.NewInfrastructureError("delete conversation", err)
	}

	return tag.RowsAffected(), nil
}

func (r *messageRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	query := `SELECT count(*) FROM messages WHERE recipient_id = $1 AND read = false`

	var count int
	if err := r.db.QueryRow(ctx, query, recipientID).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		r.log.Error("Failed to count unread messages", "error", err, "recipient_id", recipientID)
		return 0, apperrors.NewInfrastructureError("count unread", err)
	}

	return count, nil
}

func (r *messageRepository) scanMessages(rows pgx.Rows) ([]*domain.Message, error) {
	var messages []*domain.Message
	for rows.Next() {
		message := &domain.Message{}
		sender := &domain.UserSummary{}
		recipient := &domain.UserSummary{}

		err := rows.Scan(
			&message.ID, &message.ConversationID, &message.SenderID, &message.RecipientID,
			&message.Subject, &message.Body, &message.Read, &message.CreatedAt,
			&sender.FirstName, &sender.LastName, &recipient.FirstName, &recipient.LastName,
		)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, apperrors.NewInfrastructureError("scan message", err)
		}

		sender.ID = message.SenderID
		recipient.ID = message.RecipientID
		message.Sender = sender
		message.Recipient = recipient
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Failed to read message rows", "error", err)
		return nil, apperrors.NewInfrastructureError("read message rows", err)
	}

	return messages, nil
}
