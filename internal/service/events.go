package service

import (
	"sync"

	"github.com/google/uuid"

	"servicen_platform/internal/domain"
	"servicen_platform/pkg/logger"
)

const (
	EventMessageNew       = "message.new"
	EventConversationRead = "conversation.read"
)

type Event struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversation_id"`
	Message        *domain.Message `json:"message,omitempty"`
}

// EventHub раздает события сообщений по открытым WebSocket-подключениям
// пользователя. Несколько вкладок - несколько подписчиков с одним userID.
// Доставка best-effort: REST-листинг остается источником истины
type EventHub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID][]chan Event
	log         logger.Logger
}

func NewEventHub(log logger.Logger) *EventHub {
	return &EventHub{
		subscribers: make(map[uuid.UUID][]chan Event),
		log:         log,
	}
}

// Subscribe регистрирует подписчика и возвращает канал событий
// вместе с функцией отписки
func (h *EventHub) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	h.subscribers[userID] = append(h.subscribers[userID], ch)
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		subs := h.subscribers[userID]
		for i, sub := range subs {
			if sub == ch {
				h.subscribers[userID] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
		if len(h.subscribers[userID]) == 0 {
			delete(h.subscribers, userID)
		}
	}

	return ch, unsubscribe
}

// Publish отправляет событие всем подключениям пользователя;
// переполненный буфер подписчика не блокирует отправителя
func (h *EventHub) Publish(userID uuid.UUID, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers[userID] {
		select {
		case ch <- event:
		default:
			h.log.Warn("Event dropped, subscriber buffer full", "user_id", userID, "type", event.Type)
		}
	}
}
