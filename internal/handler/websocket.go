package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"servicen_platform/internal/service"
	"servicen_platform/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене нужно проверять origin
	},
}

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

type WebSocketHandler struct {
	authService service.AuthService
	events      *service.EventHub
	log         logger.Logger
}

func NewWebSocketHandler(authService service.AuthService, events *service.EventHub, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		authService: authService,
		events:      events,
		log:         log,
	}
}

// HandleEvents подписывает соединение на события сообщений пользователя.
// Токен приходит в query: браузерный WebSocket не умеет заголовки
func (h *WebSocketHandler) HandleEvents(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}

	user, err := h.authService.ValidateToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := h.events.Subscribe(user.ID)
	defer unsubscribe()

	h.log.Info("WebSocket subscriber connected", "user_id", user.ID)

	// Читатель нужен только чтобы заметить закрытие со стороны клиента
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				h.log.Warn("Failed to write event", "error", err, "user_id", user.ID)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
