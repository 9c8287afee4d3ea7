package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"delivery-tracking-service/internal/domain"
	"delivery-tracking-service/internal/ports"
	"delivery-tracking-service/internal/services"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// Minimal stubs for the repository ports. Only the methods the routed
// handlers reach in these tests carry behavior.

type stubClients struct {
	clients []domain.Client
}

func (s *stubClients) ListClients(context.Context) ([]domain.Client, error) {
	return s.clients, nil
}

func (s *stubClients) GetClient(_ context.Context, id int) (domain.Client, error) {
	for _, c := range s.clients {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Client{}, domain.ErrNotFound
}

func (s *stubClients) CreateClient(_ context.Context, c ports.NewClient) (domain.Client, error) {
	created := domain.Client{ID: len(s.clients) + 1, Name: c.Name, Address: c.Address}
	s.clients = append(s.clients, created)
	return created, nil
}

func (s *stubClients) UpdateClient(context.Context, int, ports.NewClient) (domain.Client, error) {
	return domain.Client{}, domain.ErrNotFound
}

func (s *stubClients) DeleteClient(context.Context, int) error {
	return domain.ErrNotFound
}

type stubDeliveries struct{}

func (stubDeliveries) ListDeliveries(context.Context, string) ([]domain.Delivery, error) {
	return nil, nil
}
func (stubDeliveries) GetDelivery(context.Context, int) (domain.Delivery, error) {
	return domain.Delivery{}, domain.ErrNotFound
}
func (stubDeliveries) CreateDelivery(context.Context, ports.NewDelivery) (domain.Delivery, error) {
	return domain.Delivery{}, nil
}
func (stubDeliveries) CompleteDelivery(context.Context, int, *int, *string) (domain.Delivery, error) {
	return domain.Delivery{}, domain.ErrNotFound
}
func (stubDeliveries) FindOpenDelivery(context.Context, int, string) (domain.Delivery, error) {
	return domain.Delivery{}, domain.ErrNotFound
}
func (stubDeliveries) CreateCompleted(context.Context, int, string, *int, *string) (domain.Delivery, error) {
	return domain.Delivery{Status: domain.DeliveryCompleted}, nil
}
func (stubDeliveries) MarkArrived(context.Context, int, time.Time, int) error { return nil }
func (stubDeliveries) ListRouteCandidates(context.Context, string, []int) ([]domain.Waypoint, error) {
	return nil, nil
}
func (stubDeliveries) ListVisitTargets(context.Context, string) ([]domain.VisitTarget, error) {
	return nil, nil
}

type stubPositions struct {
	nextID  int
	samples []domain.TrajectorySample
}

func (s *stubPositions) RecordPosition(_ context.Context, coord domain.Coordinate, ts time.Time) (domain.TrajectorySample, error) {
	s.nextID++
	sample := domain.TrajectorySample{PositionID: s.nextID, Timestamp: ts, Coord: coord}
	s.samples = append(s.samples, sample)
	return sample, nil
}

func (s *stubPositions) LatestPosition(context.Context) (domain.TrajectorySample, error) {
	if len(s.samples) == 0 {
		return domain.TrajectorySample{}, domain.ErrNotFound
	}
	return s.samples[len(s.samples)-1], nil
}

func (s *stubPositions) PositionBefore(context.Context, int) (domain.TrajectorySample, error) {
	return domain.TrajectorySample{}, domain.ErrNotFound
}

func (s *stubPositions) TrajectorySince(context.Context, time.Time) ([]domain.TrajectorySample, error) {
	return s.samples, nil
}

func (s *stubPositions) RecentPositions(context.Context, int) ([]domain.TrajectorySample, error) {
	return s.samples, nil
}

type stubStopEvents struct {
	events map[int]domain.StopEvent
}

func (s *stubStopEvents) InsertStopEvent(_ context.Context, c domain.StopCandidate) (domain.StopEvent, error) {
	event := domain.StopEvent{ID: len(s.events) + 1, ClientID: c.ClientID, TriggeredAt: c.TriggeredAt}
	s.events[event.ID] = event
	return event, nil
}

func (s *stubStopEvents) GetStopEvent(_ context.Context, id int) (domain.StopEvent, error) {
	event, ok := s.events[id]
	if !ok {
		return domain.StopEvent{}, domain.ErrNotFound
	}
	return event, nil
}

func (s *stubStopEvents) FindUnacknowledged(context.Context, int, time.Time) (domain.StopEvent, error) {
	return domain.StopEvent{}, domain.ErrNotFound
}

func (s *stubStopEvents) AcknowledgeStopEvent(_ context.Context, id int, at time.Time, delivered bool, quantity *int, notes *string) (bool, error) {
	event, ok := s.events[id]
	if !ok || event.Acknowledged() {
		return false, nil
	}
	event.AcknowledgedAt = &at
	event.Delivered = delivered
	s.events[id] = event
	return true, nil
}

func (s *stubStopEvents) ListStopEvents(context.Context, string, *time.Time) ([]domain.StopEvent, error) {
	out := make([]domain.StopEvent, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	return out, nil
}

type stubMetrics struct{}

func (stubMetrics) Summary(context.Context) (domain.MetricsSummary, error) {
	return domain.MetricsSummary{TotalClients: 5}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *stubStopEvents) {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	stopEvents := &stubStopEvents{events: make(map[int]domain.StopEvent)}
	positions := &stubPositions{}
	clients := &stubClients{clients: []domain.Client{{ID: 1, Name: "Centro"}}}

	ledger := &services.StopEventLedger{
		Events:     stopEvents,
		Positions:  positions,
		Deliveries: stubDeliveries{},
		Log:        log,
	}

	router := NewRouter(Deps{
		Clients:    clients,
		Deliveries: stubDeliveries{},
		Positions:  positions,
		Metrics:    stubMetrics{},
		Tracker: &services.Tracker{
			Positions: positions,
			Clients:   clients,
			Ledger:    ledger,
		},
		Ledger:     ledger,
		Orderer:    services.RouteOrderer{Log: log},
		Reconciler: &services.ArrivalReconciler{Positions: positions, Deliveries: stubDeliveries{}, Log: log},
		Log:        log,
	})

	return router, stopEvents
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouterCreateClientValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	for name, body := range map[string]string{
		"missing name":      `{"address": "somewhere"}`,
		"blank name":        `{"name": "   "}`,
		"orphan latitude":   `{"name": "x", "latitude": -23.5}`,
		"unknown field":     `{"name": "x", "bogus": 1}`,
		"trailing object":   `{"name": "x"}{"name": "y"}`,
		"not a json object": `[1, 2]`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := doRequest(router, http.MethodPost, "/clients", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRouterCreateClient(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodPost, "/clients", `{"name": "Ideal Norte"}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "Ideal Norte", created.Name)
	require.NotZero(t, created.ID)
}

func TestRouterGetClientNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/clients/99", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterRecordPositionValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	for name, body := range map[string]string{
		"empty body":         ``,
		"missing longitude":  `{"latitude": -23.5}`,
		"latitude overflow":  `{"latitude": 91, "longitude": 0}`,
		"longitude overflow": `{"latitude": 0, "longitude": -181}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := doRequest(router, http.MethodPost, "/positions", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRouterRecordPosition(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodPost, "/positions", `{"latitude": -23.55, "longitude": -46.63}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var res struct {
		Position struct {
			ID int `json:"id"`
		} `json:"position"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, 1, res.Position.ID)
}

func TestRouterAcknowledgeStopEventNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodPost, "/stop-events/42/acknowledge", `{"delivered": false}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterAcknowledgeStopEventConflict(t *testing.T) {
	router, stopEvents := newTestRouter(t)

	acked := time.Now()
	stopEvents.events[7] = domain.StopEvent{ID: 7, ClientID: 1, AcknowledgedAt: &acked}

	rec := doRequest(router, http.MethodPost, "/stop-events/7/acknowledge", `{"delivered": true}`)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouterAcknowledgeStopEvent(t *testing.T) {
	router, stopEvents := newTestRouter(t)

	stopEvents.events[3] = domain.StopEvent{ID: 3, ClientID: 1, TriggeredAt: time.Now()}

	rec := doRequest(router, http.MethodPost, "/stop-events/3/acknowledge", `{"delivered": false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		AcknowledgedAt *time.Time `json:"acknowledged_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.AcknowledgedAt)
}

func TestRouterPlanRouteUsesDefaultStart(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodPost, "/routes/plan", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		StartLat float64 `json:"start_lat"`
		StartLon float64 `json:"start_lon"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.InDelta(t, -23.55052, res.StartLat, 1e-9)
	require.InDelta(t, -46.633308, res.StartLon, 1e-9)
}

func TestRouterMetricsSummary(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/metrics/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		TotalClients int `json:"total_clients"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, 5, res.TotalClients)
}
