package domain

// DashboardStats - агрегаты для личного кабинета, считаются запросами
// по текущему состоянию хранилищ (ничего не кэшируется)
type DashboardStats struct {
	ActiveListings int     `json:"active_listings"`
	Conversations  int     `json:"conversations"`
	UnreadMessages int     `json:"unread_messages"`
	AvgRating      float64 `json:"avg_rating"`
}
