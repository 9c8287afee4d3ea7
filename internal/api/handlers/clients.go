package handlers

import (
	"errors"
	"net/http"
	"strings"

	"delivery-tracking-service/internal/api/dto"
	"delivery-tracking-service/internal/domain"
	"delivery-tracking-service/internal/ports"

	"github.com/sirupsen/logrus"
)

// ClientHandler exposes CRUD endpoints for delivery destinations.
type ClientHandler struct {
	Repo ports.ClientRepository
	Log  *logrus.Logger
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Repo.ListClients(r.Context())
	if err != nil {
		h.Log.WithError(err).Error("list clients failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListClientsResponse{Clients: make([]dto.ClientResponse, 0, len(clients))}
	for _, c := range clients {
		res.Clients = append(res.Clients, clientResponse(c))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid client id")
		return
	}

	c, err := h.Repo.GetClient(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "client not found")
		return
	}
	if err != nil {
		h.Log.WithError(err).Error("get client failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, clientResponse(c))
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeClient(w, r)
	if !ok {
		return
	}

	c, err := h.Repo.CreateClient(r.Context(), req)
	if err != nil {
		h.Log.WithError(err).Error("create client failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusCreated, clientResponse(c))
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid client id")
		return
	}

	req, ok := h.decodeClient(w, r)
	if !ok {
		return
	}

	c, err := h.Repo.UpdateClient(r.Context(), id, req)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "client not found")
		return
	}
	if err != nil {
		h.Log.WithError(err).Error("update client failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, clientResponse(c))
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid client id")
		return
	}

	err := h.Repo.DeleteClient(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "client not found")
		return
	}
	if err != nil {
		h.Log.WithError(err).Error("delete client failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ClientHandler) decodeClient(w http.ResponseWriter, r *http.Request) (ports.NewClient, bool) {
	var req dto.ClientRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return ports.NewClient{}, false
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return ports.NewClient{}, false
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		writeError(w, r, http.StatusBadRequest, "latitude and longitude must be provided together")
		return ports.NewClient{}, false
	}

	return ports.NewClient{
		Name:      name,
		Phone:     req.Phone,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Notes:     req.Notes,
	}, true
}

func clientResponse(c domain.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Address:   c.Address,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
	}
}
