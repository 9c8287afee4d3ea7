package domain

// DailyTotal aggregates delivered quantity for one scheduled date.
type DailyTotal struct {
	Day      string
	Quantity int
}

// ClientCount ranks a client by number of deliveries.
type ClientCount struct {
	Name       string
	Deliveries int
}

// MetricsSummary is the read-only dashboard aggregate.
type MetricsSummary struct {
	TotalClients    int
	TotalDeliveries int
	CompletedToday  int
	QuantityByDay   []DailyTotal
	TopClients      []ClientCount
}
