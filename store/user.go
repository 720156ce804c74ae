package store

// User represents one user's persisted preferences.
type User struct {
	ID                       int32    `json:"-"`
	Username                 string   `json:"username"`
	Course                   string   `json:"course"`
	Cafeteria                string   `json:"cafeteria"`
	City                     string   `json:"city"`
	PreferredTransportMedium string   `json:"preferred_transport_medium"`
	Stocks                   []string `json:"stocks"`
	News                     []string `json:"news"`
}

// UpdateUser specifies a partial preference update. Nil scalar fields are
// left untouched; the list fields add or remove watched stocks and news
// topics.
type UpdateUser struct {
	Course                   *string  `json:"course"`
	Cafeteria                *string  `json:"cafeteria"`
	City                     *string  `json:"city"`
	PreferredTransportMedium *string  `json:"preferred_transport_medium"`
	AddStocks                []string `json:"add_stocks"`
	DeleteStocks             []string `json:"delete_stocks"`
	AddNews                  []string `json:"add_news"`
	DeleteNews               []string `json:"delete_news"`
}
