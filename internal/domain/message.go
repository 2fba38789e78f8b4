package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConversationIDSeparator не встречается в каноническом представлении UUID,
// поэтому разные пары участников всегда дают разные идентификаторы
const ConversationIDSeparator = "_"

// ConversationID возвращает детерминированный идентификатор диалога
// для неупорядоченной пары участников: derive(a,b) == derive(b,a)
func ConversationID(a, b uuid.UUID) string {
	first, second := a.String(), b.String()
	if first > second {
		first, second = second, first
	}
	return first + ConversationIDSeparator + second
}

// ParseConversationID разбирает идентификатор диалога обратно в пару участников
func ParseConversationID(conversationID string) (uuid.UUID, uuid.UUID, bool) {
	parts := strings.Split(conversationID, ConversationIDSeparator)
	if len(parts) != 2 {
		return uuid.Nil, uuid.Nil, false
	}
	first, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	second, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	return first, second, true
}

type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	RecipientID    uuid.UUID `json:"recipient_id"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`

	// Денормализованные имена участников, заполняются join-ом при чтении
	Sender    *UserSummary `json:"sender,omitempty"`
	Recipient *UserSummary `json:"recipient,omitempty"`
}

// ConversationSummary - производное представление диалога глазами одного
// пользователя; не хранится, пересчитывается на каждый листинг
type ConversationSummary struct {
	ID          string      `json:"id"`
	Counterpart UserSummary `json:"counterpart"`
	LastMessage *Message    `json:"last_message"`
	HasUnread   bool        `json:"has_unread"`
}

// ConversationThread - полная переписка с одним собеседником,
// сообщения в хронологическом порядке (старые сверху)
type ConversationThread struct {
	ID          string      `json:"id"`
	Counterpart UserSummary `json:"counterpart"`
	Messages    []*Message  `json:"messages"`
}
