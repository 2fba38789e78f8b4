package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servicen_platform/internal/middleware"
	"servicen_platform/internal/service"
	apperrors "servicen_platform/pkg/errors"
	"servicen_platform/pkg/logger"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	userService      service.UserService
	log              logger.Logger
}

func NewDashboardHandler(dashboardService service.DashboardService, userService service.UserService, log logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		userService:      userService,
		log:              log,
	}
}

func (h *DashboardHandler) Home(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	user, err := h.userService.GetMe(c.Request.Context(), userID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	role := c.GetString("user_role")

	stats, err := h.dashboardService.GetStats(c.Request.Context(), userID, role)
	if err != nil {
		h.log.Error("Failed to compute dashboard stats", "error", err, "user_id", userID)
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
