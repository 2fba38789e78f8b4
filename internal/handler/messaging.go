package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"servicen_platform/internal/middleware"
	"servicen_platform/internal/service"
	apperrors "servicen_platform/pkg/errors"
	"servicen_platform/pkg/logger"
)

type MessagingHandler struct {
	messagingService service.MessagingService
	log              logger.Logger
}

func NewMessagingHandler(messagingService service.MessagingService, log logger.Logger) *MessagingHandler {
	return &MessagingHandler{
		messagingService: messagingService,
		log:              log,
	}
}

type SendMessageRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" binding:"required"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body" binding:"required"`
}

func (h *MessagingHandler) SendMessage(c *gin.Context) {
	viewerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	message, err := h.messagingService.SendMessage(c.Request.Context(), viewerID, req.RecipientID, req.Subject, req.Body)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *MessagingHandler) ListConversations(c *gin.Context) {
	viewerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	conversations, err := h.messagingService.ListConversations(c.Request.Context(), viewerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// GetConversation отдает переписку и попутно помечает входящие прочитанными
func (h *MessagingHandler) GetConversation(c *gin.Context) {
	viewerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	counterpartID, err := uuid.Parse(c.Param("counterpartId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid counterpart ID"})
		return
	}

	thread, err := h.messagingService.GetConversation(c.Request.Context(), viewerID, counterpartID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, thread)
}

func (h *MessagingHandler) MarkConversationRead(c *gin.Context) {
	viewerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	counterpartID, err := uuid.Parse(c.Param("counterpartId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid counterpart ID"})
		return
	}

	updated, err := h.messagingService.MarkConversationRead(c.Request.Context(), viewerID, counterpartID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *MessagingHandler) DeleteConversation(c *gin.Context) {
	viewerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	counterpartID, err := uuid.Parse(c.Param("counterpartId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid counterpart ID"})
		return
	}

	if err := h.messagingService.DeleteConversation(c.Request.Context(), viewerID, counterpartID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "conversation deleted"})
}

func (h *MessagingHandler) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatusFromError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("Messaging operation failed", "error", err)
		message = "internal server error"
	}
	c.JSON(status, gin.H{"error": message})
}
