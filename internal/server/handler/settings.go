package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/oddsync/arbscan/internal/domain"
)

// KeyValidator checks an Odds API key against the upstream API.
type KeyValidator interface {
	ValidateKey(ctx context.Context, apiKey string) error
}

// allowedSettings are the keys operators may read and write through the API.
var allowedSettings = map[string]bool{
	domain.SettingOddsAPIKey: true,
	domain.SettingMinNetPct:  true,
	domain.SettingMinEVPct:   true,
	domain.SettingSports:     true,
}

// SettingsHandler serves the settings endpoints.
type SettingsHandler struct {
	settings  domain.SettingsStore
	validator KeyValidator
	logger    *slog.Logger
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(settings domain.SettingsStore, validator KeyValidator, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings:  settings,
		validator: validator,
		logger:    logHandler(logger, "settings"),
	}
}

// GetSettings returns all stored settings, with the API key masked.
// GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.settings.All(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "load settings", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	if key, ok := all[domain.SettingOddsAPIKey]; ok {
		all[domain.SettingOddsAPIKey] = maskKey(key)
	}
	writeJSON(w, http.StatusOK, all)
}

// UpdateSettings upserts the posted settings.
// PUT /api/settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	for key := range body {
		if !allowedSettings[key] {
			writeError(w, http.StatusBadRequest, "unknown setting: "+key)
			return
		}
	}

	for key, value := range body {
		if err := h.settings.Set(r.Context(), key, strings.TrimSpace(value)); err != nil {
			h.logger.ErrorContext(r.Context(), "save setting",
				slog.String("key", key), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// ValidateKey checks a candidate Odds API key against the sports list
// endpoint without storing it.
// POST /api/settings/validate-key
func (h *SettingsHandler) ValidateKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.APIKey) == "" {
		writeError(w, http.StatusBadRequest, "api_key is required")
		return
	}

	if err := h.validator.ValidateKey(r.Context(), strings.TrimSpace(body.APIKey)); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidKey):
			writeJSON(w, http.StatusOK, map[string]any{"valid": false, "reason": "invalid or expired key"})
		case errors.Is(err, domain.ErrQuotaExceeded):
			writeJSON(w, http.StatusOK, map[string]any{"valid": false, "reason": "usage limit reached"})
		default:
			h.logger.ErrorContext(r.Context(), "validate key", slog.String("error", err.Error()))
			writeError(w, http.StatusBadGateway, "could not reach the odds api")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}

// maskKey hides all but the last four characters of a stored key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
