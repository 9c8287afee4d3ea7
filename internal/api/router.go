package api

import (
	"net/http"

	"delivery-tracking-service/internal/api/handlers"
	"delivery-tracking-service/internal/ports"
	"delivery-tracking-service/internal/services"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Deps carries everything the HTTP surface needs. Handlers stay unaware of
// concrete adapters; the composition root in cmd/server fills this in.
type Deps struct {
	Clients    ports.ClientRepository
	Deliveries ports.DeliveryRepository
	Positions  ports.PositionRepository
	Metrics    ports.MetricsRepository

	Tracker    *services.Tracker
	Ledger     *services.StopEventLedger
	Orderer    services.RouteOrderer
	Reconciler *services.ArrivalReconciler

	Log *logrus.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root.
func NewRouter(deps Deps) http.Handler {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware, loggingMiddleware(deps.Log))

	clientHandler := &handlers.ClientHandler{Repo: deps.Clients, Log: deps.Log}
	deliveryHandler := &handlers.DeliveryHandler{
		Repo:       deps.Deliveries,
		Reconciler: deps.Reconciler,
		Log:        deps.Log,
	}
	positionHandler := &handlers.PositionHandler{
		Repo:    deps.Positions,
		Tracker: deps.Tracker,
		Log:     deps.Log,
	}
	routeHandler := &handlers.RouteHandler{
		Repo:    deps.Deliveries,
		Orderer: deps.Orderer,
		Log:     deps.Log,
	}
	stopEventHandler := &handlers.StopEventHandler{Ledger: deps.Ledger, Log: deps.Log}
	metricsHandler := &handlers.MetricsHandler{Repo: deps.Metrics, Log: deps.Log}

	router.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	router.HandleFunc("/clients", clientHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/clients", clientHandler.Create).Methods(http.MethodPost)
	router.HandleFunc("/clients/{id}", clientHandler.Get).Methods(http.MethodGet)
	router.HandleFunc("/clients/{id}", clientHandler.Update).Methods(http.MethodPut)
	router.HandleFunc("/clients/{id}", clientHandler.Delete).Methods(http.MethodDelete)

	router.HandleFunc("/deliveries", deliveryHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/deliveries", deliveryHandler.Create).Methods(http.MethodPost)
	router.HandleFunc("/deliveries/reconcile", deliveryHandler.Reconcile).Methods(http.MethodPost)
	router.HandleFunc("/deliveries/{id}", deliveryHandler.Get).Methods(http.MethodGet)
	router.HandleFunc("/deliveries/{id}/complete", deliveryHandler.Complete).Methods(http.MethodPost)

	router.HandleFunc("/positions", positionHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/positions", positionHandler.Record).Methods(http.MethodPost)

	router.HandleFunc("/routes/plan", routeHandler.Plan).Methods(http.MethodPost)

	router.HandleFunc("/stop-events", stopEventHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/stop-events/{id}/acknowledge", stopEventHandler.Acknowledge).Methods(http.MethodPost)

	router.HandleFunc("/metrics/summary", metricsHandler.Summary).Methods(http.MethodGet)

	return router
}
