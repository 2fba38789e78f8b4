package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"servicen_platform/internal/domain"
	"servicen_platform/internal/middleware"
	"servicen_platform/internal/service"
	apperrors "servicen_platform/pkg/errors"
	"servicen_platform/pkg/logger"
)

type ListingHandler struct {
	listingService service.ListingService
	log            logger.Logger
}

func NewListingHandler(listingService service.ListingService, log logger.Logger) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		log:            log,
	}
}

type ListingRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Price       float64 `json:"price"`
	Location    string  `json:"location"`
	Available   *bool   `json:"available"`
}

// List - публичный каталог с фильтрами из query-строки
func (h *ListingHandler) List(c *gin.Context) {
	filter := domain.ListingFilter{}

	if v := c.Query("categorie"); v != "" {
		filter.Category = &v
	}
	if v := c.Query("localisation"); v != "" {
		filter.Location = &v
	}
	if v := c.Query("minPrix"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &price
		}
	}
	if v := c.Query("maxPrix"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &price
		}
	}
	if v := c.Query("search"); v != "" {
		filter.Search = &v
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	listings, err := h.listingService.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": listings})
}

func (h *ListingHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service ID"})
		return
	}

	listing, err := h.listingService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) Create(c *gin.Context) {
	providerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	listing, err := h.listingService.Create(c.Request.Context(), providerID, service.ListingInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Location:    req.Location,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

func (h *ListingHandler) Update(c *gin.Context) {
	providerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service ID"})
		return
	}

	var req ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	listing, err := h.listingService.Update(c.Request.Context(), id, providerID, service.ListingInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Location:    req.Location,
		Available:   req.Available,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) Delete(c *gin.Context) {
	providerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service ID"})
		return
	}

	if err := h.listingService.Deactivate(c.Request.Context(), id, providerID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "service deactivated"})
}

func (h *ListingHandler) ListMine(c *gin.Context) {
	providerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	listings, err := h.listingService.ListMine(c.Request.Context(), providerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": listings})
}

func (h *ListingHandler) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatusFromError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("Listing operation failed", "error", err)
		message = "internal server error"
	}
	c.JSON(status, gin.H{"error": message})
}
