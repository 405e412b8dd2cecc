package handler

import (
	"context"
	"net/http"

	"github.com/mbuddy-api/internal/domain"
)

// DeliveryReader is the minimal read interface the diagnostics endpoint needs.
type DeliveryReader interface {
	ListByEmail(ctx context.Context, email string) ([]domain.Delivery, error)
}

// DeliveryHandler exposes the notification delivery log for diagnostics.
type DeliveryHandler struct {
	repo DeliveryReader
}

func NewDeliveryHandler(repo DeliveryReader) *DeliveryHandler {
	return &DeliveryHandler{repo: repo}
}

func (h *DeliveryHandler) ListByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}
	deliveries, err := h.repo.ListByEmail(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not read delivery log")
		return
	}
	if deliveries == nil {
		deliveries = []domain.Delivery{}
	}
	writeJSON(w, http.StatusOK, DeliveriesEnvelope{Data: deliveries})
}
