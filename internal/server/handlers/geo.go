package handlers

import (
	"net/http"
	"strconv"

	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/geocode"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/server/respond"
)

// GeoHandler prefills the registration location field from coordinates.
type GeoHandler struct {
	client *geocode.Client
}

func NewGeoHandler(client *geocode.Client) *GeoHandler {
	return &GeoHandler{client: client}
}

// Register wires the handler into a ServeMux.
func (h *GeoHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/geo/reverse", h.handleReverse)
}

func (h *GeoHandler) handleReverse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "lat must be a number")
		return
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "lng must be a number")
		return
	}
	// Reverse never fails; it falls back to "lat, lng".
	location := h.client.Reverse(r.Context(), lat, lng)
	respond.JSON(w, http.StatusOK, "ok", map[string]string{"location": location})
}
