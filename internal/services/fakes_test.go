package services

import (
	"context"
	"sort"
	"time"

	"delivery-tracking-service/internal/domain"
	"delivery-tracking-service/internal/ports"
)

// In-memory repository fakes. They honor the same contracts the SQLite
// adapters do (ErrNotFound, compare-and-set acknowledgment, newest-first
// listings) so services can be exercised without a database.

type fakeStopEventRepo struct {
	nextID int
	events map[int]domain.StopEvent

	ackFails bool
}

func newFakeStopEventRepo() *fakeStopEventRepo {
	return &fakeStopEventRepo{nextID: 1, events: make(map[int]domain.StopEvent)}
}

func (f *fakeStopEventRepo) InsertStopEvent(_ context.Context, candidate domain.StopCandidate) (domain.StopEvent, error) {
	event := domain.StopEvent{
		ID:          f.nextID,
		PositionID:  candidate.PositionID,
		ClientID:    candidate.ClientID,
		DistanceKm:  candidate.DistanceKm,
		TriggeredAt: candidate.TriggeredAt,
	}
	f.events[f.nextID] = event
	f.nextID++
	return event, nil
}

func (f *fakeStopEventRepo) GetStopEvent(_ context.Context, id int) (domain.StopEvent, error) {
	event, ok := f.events[id]
	if !ok {
		return domain.StopEvent{}, domain.ErrNotFound
	}
	return event, nil
}

func (f *fakeStopEventRepo) FindUnacknowledged(_ context.Context, clientID int, since time.Time) (domain.StopEvent, error) {
	best := domain.StopEvent{}
	found := false
	for _, event := range f.events {
		if event.ClientID != clientID || event.Acknowledged() || event.TriggeredAt.Before(since) {
			continue
		}
		if !found || event.TriggeredAt.After(best.TriggeredAt) {
			best = event
			found = true
		}
	}
	if !found {
		return domain.StopEvent{}, domain.ErrNotFound
	}
	return best, nil
}

func (f *fakeStopEventRepo) AcknowledgeStopEvent(_ context.Context, id int, at time.Time, delivered bool, quantity *int, notes *string) (bool, error) {
	if f.ackFails {
		return false, nil
	}
	event, ok := f.events[id]
	if !ok || event.Acknowledged() {
		return false, nil
	}
	event.AcknowledgedAt = &at
	event.Delivered = delivered
	event.Quantity = quantity
	event.Notes = notes
	f.events[id] = event
	return true, nil
}

func (f *fakeStopEventRepo) ListStopEvents(_ context.Context, status string, since *time.Time) ([]domain.StopEvent, error) {
	events := make([]domain.StopEvent, 0, len(f.events))
	for _, event := range f.events {
		switch status {
		case ports.StatusPending:
			if event.Acknowledged() {
				continue
			}
		case ports.StatusAcknowledged:
			if !event.Acknowledged() {
				continue
			}
		}
		if since != nil && event.TriggeredAt.Before(*since) {
			continue
		}
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].TriggeredAt.After(events[j].TriggeredAt)
	})
	return events, nil
}

type fakePositionRepo struct {
	nextID  int
	samples []domain.TrajectorySample
}

func newFakePositionRepo() *fakePositionRepo {
	return &fakePositionRepo{nextID: 1}
}

func (f *fakePositionRepo) RecordPosition(_ context.Context, coord domain.Coordinate, ts time.Time) (domain.TrajectorySample, error) {
	sample := domain.TrajectorySample{PositionID: f.nextID, Timestamp: ts, Coord: coord}
	f.samples = append(f.samples, sample)
	f.nextID++
	return sample, nil
}

func (f *fakePositionRepo) LatestPosition(_ context.Context) (domain.TrajectorySample, error) {
	if len(f.samples) == 0 {
		return domain.TrajectorySample{}, domain.ErrNotFound
	}
	return f.samples[len(f.samples)-1], nil
}

func (f *fakePositionRepo) PositionBefore(_ context.Context, positionID int) (domain.TrajectorySample, error) {
	best := domain.TrajectorySample{}
	found := false
	for _, s := range f.samples {
		if s.PositionID >= positionID {
			continue
		}
		if !found || s.PositionID > best.PositionID {
			best = s
			found = true
		}
	}
	if !found {
		return domain.TrajectorySample{}, domain.ErrNotFound
	}
	return best, nil
}

func (f *fakePositionRepo) TrajectorySince(_ context.Context, since time.Time) ([]domain.TrajectorySample, error) {
	out := make([]domain.TrajectorySample, 0, len(f.samples))
	for _, s := range f.samples {
		if s.Timestamp.Before(since) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakePositionRepo) RecentPositions(_ context.Context, limit int) ([]domain.TrajectorySample, error) {
	if limit <= 0 {
		limit = 20
	}
	out := make([]domain.TrajectorySample, len(f.samples))
	copy(out, f.samples)
	sort.Slice(out, func(i, j int) bool { return out[i].PositionID > out[j].PositionID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeDeliveryRepo struct {
	nextID     int
	deliveries map[int]domain.Delivery
	targets    []domain.VisitTarget
	candidates []domain.Waypoint

	completed      []int
	createdToday   []domain.Delivery
	arrivedSeconds map[int]int
}

func newFakeDeliveryRepo() *fakeDeliveryRepo {
	return &fakeDeliveryRepo{
		nextID:         1,
		deliveries:     make(map[int]domain.Delivery),
		arrivedSeconds: make(map[int]int),
	}
}

func (f *fakeDeliveryRepo) add(d domain.Delivery) domain.Delivery {
	d.ID = f.nextID
	f.deliveries[d.ID] = d
	f.nextID++
	return d
}

func (f *fakeDeliveryRepo) ListDeliveries(_ context.Context, date string) ([]domain.Delivery, error) {
	out := make([]domain.Delivery, 0, len(f.deliveries))
	for _, d := range f.deliveries {
		if date != "" && d.ScheduledDate != date {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDeliveryRepo) GetDelivery(_ context.Context, id int) (domain.Delivery, error) {
	d, ok := f.deliveries[id]
	if !ok {
		return domain.Delivery{}, domain.ErrNotFound
	}
	return d, nil
}

func (f *fakeDeliveryRepo) CreateDelivery(_ context.Context, nd ports.NewDelivery) (domain.Delivery, error) {
	return f.add(domain.Delivery{
		ClientID:      nd.ClientID,
		ScheduledDate: nd.ScheduledDate,
		Status:        domain.DeliveryPending,
		Quantity:      nd.Quantity,
		Notes:         nd.Notes,
	}), nil
}

func (f *fakeDeliveryRepo) CompleteDelivery(_ context.Context, id int, quantity *int, notes *string) (domain.Delivery, error) {
	d, ok := f.deliveries[id]
	if !ok {
		return domain.Delivery{}, domain.ErrNotFound
	}
	d.Status = domain.DeliveryCompleted
	if quantity != nil {
		d.Quantity = quantity
	}
	if notes != nil {
		d.Notes = notes
	}
	f.deliveries[id] = d
	f.completed = append(f.completed, id)
	return d, nil
}

func (f *fakeDeliveryRepo) FindOpenDelivery(_ context.Context, clientID int, date string) (domain.Delivery, error) {
	best := domain.Delivery{}
	found := false
	for _, d := range f.deliveries {
		if d.ClientID != clientID || d.ScheduledDate != date || d.Status == domain.DeliveryCompleted {
			continue
		}
		if !found || d.ID < best.ID {
			best = d
			found = true
		}
	}
	if !found {
		return domain.Delivery{}, domain.ErrNotFound
	}
	return best, nil
}

func (f *fakeDeliveryRepo) CreateCompleted(_ context.Context, clientID int, date string, quantity *int, notes *string) (domain.Delivery, error) {
	created := f.add(domain.Delivery{
		ClientID:      clientID,
		ScheduledDate: date,
		Status:        domain.DeliveryCompleted,
		Quantity:      quantity,
		Notes:         notes,
	})
	f.createdToday = append(f.createdToday, created)
	return created, nil
}

func (f *fakeDeliveryRepo) MarkArrived(_ context.Context, id int, arrivedAt time.Time, staySeconds int) error {
	d, ok := f.deliveries[id]
	if !ok {
		return domain.ErrNotFound
	}
	if d.Status != domain.DeliveryPending {
		return nil
	}
	d.Status = domain.DeliveryArrived
	d.ArrivedAt = &arrivedAt
	d.StaySeconds = &staySeconds
	f.deliveries[id] = d
	f.arrivedSeconds[id] = staySeconds
	return nil
}

func (f *fakeDeliveryRepo) ListRouteCandidates(_ context.Context, _ string, _ []int) ([]domain.Waypoint, error) {
	return f.candidates, nil
}

func (f *fakeDeliveryRepo) ListVisitTargets(_ context.Context, _ string) ([]domain.VisitTarget, error) {
	return f.targets, nil
}

type fakeClientRepo struct {
	clients []domain.Client
}

func (f *fakeClientRepo) ListClients(_ context.Context) ([]domain.Client, error) {
	return f.clients, nil
}

func (f *fakeClientRepo) GetClient(_ context.Context, id int) (domain.Client, error) {
	for _, c := range f.clients {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Client{}, domain.ErrNotFound
}

func (f *fakeClientRepo) CreateClient(_ context.Context, c ports.NewClient) (domain.Client, error) {
	created := domain.Client{
		ID:        len(f.clients) + 1,
		Name:      c.Name,
		Phone:     c.Phone,
		Address:   c.Address,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Notes:     c.Notes,
	}
	f.clients = append(f.clients, created)
	return created, nil
}

func (f *fakeClientRepo) UpdateClient(_ context.Context, id int, c ports.NewClient) (domain.Client, error) {
	for i := range f.clients {
		if f.clients[i].ID == id {
			f.clients[i].Name = c.Name
			f.clients[i].Phone = c.Phone
			f.clients[i].Address = c.Address
			f.clients[i].Latitude = c.Latitude
			f.clients[i].Longitude = c.Longitude
			f.clients[i].Notes = c.Notes
			return f.clients[i], nil
		}
	}
	return domain.Client{}, domain.ErrNotFound
}

func (f *fakeClientRepo) DeleteClient(_ context.Context, id int) error {
	for i := range f.clients {
		if f.clients[i].ID == id {
			f.clients = append(f.clients[:i], f.clients[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func ptrFloat(v float64) *float64 { return &v }

func ptrInt(v int) *int { return &v }

func ptrString(v string) *string { return &v }
