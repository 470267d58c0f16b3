package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/bookhaven/backend/store"
)

type SettingsHandler struct {
	DB *store.DB
}

// Get returns the site settings, creating the singleton row with defaults
// on first read. Public: the frontend checks it before login.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.DB.GetOrCreateSiteSettings(r.Context())
	if err != nil {
		http.Error(w, `{"error":"failed to load settings"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(settings)
}

type UpdateSettingsRequest struct {
	UnderConstruction        bool   `json:"underConstruction"`
	UnderConstructionMessage string `json:"underConstructionMessage"`
}

// Update overwrites the site settings (admin only).
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	settings, err := h.DB.UpdateSiteSettings(r.Context(), req.UnderConstruction, req.UnderConstructionMessage)
	if err != nil {
		http.Error(w, `{"error":"failed to update settings"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(settings)
}
