package domain

import (
	"time"

	"github.com/google/uuid"
)

type ServiceListing struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	ProviderID  uuid.UUID `json:"provider_id"`
	Location    string    `json:"location"`
	Available   bool      `json:"available"`
	AvgRating   float64   `json:"avg_rating"`
	ReviewCount int       `json:"review_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Provider *UserSummary `json:"provider,omitempty"`
}

const (
	CategoryPlomberie    = "Plomberie"
	CategoryElectricite  = "Électricité"
	CategoryMenuiserie   = "Menuiserie"
	CategoryCoiffure     = "Coiffure"
	CategoryCours        = "Cours"
	CategoryInformatique = "Informatique"
	CategoryNettoyage    = "Nettoyage"
	CategoryAutre        = "Autre"
)

var ListingCategories = []string{
	CategoryPlomberie,
	CategoryElectricite,
	CategoryMenuiserie,
	CategoryCoiffure,
	CategoryCours,
	CategoryInformatique,
	CategoryNettoyage,
	CategoryAutre,
}

func IsValidCategory(category string) bool {
	for _, c := range ListingCategories {
		if c == category {
			return true
		}
	}
	return false
}

const (
	DefaultListingLocation = "Dakar"
	MaxListingTitleLength  = 100
	MaxListingDescLength   = 500
)

// ListingFilter - параметры фильтрации публичного каталога
type ListingFilter struct {
	Category *string
	Location *string
	MinPrice *float64
	MaxPrice *float64
	Search   *string
	Limit    int
	Offset   int
}
