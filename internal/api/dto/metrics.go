package dto

type DailyTotalResponse struct {
	Day      string `json:"day"`
	Quantity int    `json:"quantity"`
}

type ClientCountResponse struct {
	Name       string `json:"name"`
	Deliveries int    `json:"deliveries"`
}

type MetricsResponse struct {
	TotalClients    int                   `json:"total_clients"`
	TotalDeliveries int                   `json:"total_deliveries"`
	CompletedToday  int                   `json:"completed_today"`
	QuantityByDay   []DailyTotalResponse  `json:"quantity_by_day"`
	TopClients      []ClientCountResponse `json:"top_clients"`
}
