package handlers

import (
	"net/http"
	"strings"
)

// sensitiveSettings are masked on read.
var sensitiveSettings = map[string]bool{
	settingKeyAPIKey: true,
}

// SettingsList returns all settings with credentials masked.
func (a *App) SettingsList(w http.ResponseWriter, r *http.Request) {
	settings, err := a.Settings.All(r.Context())
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load settings")
		return
	}
	for key, value := range settings {
		if sensitiveSettings[key] {
			settings[key] = maskKey(value)
		}
	}
	a.json(w, http.StatusOK, map[string]any{"settings": settings})
}

// SettingsUpdate upserts the submitted key-value pairs.
func (a *App) SettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if !a.decode(w, r, &req) {
		return
	}
	if len(req) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "no settings provided")
		return
	}
	for key, value := range req {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if err := a.Settings.Set(r.Context(), key, value); err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to save setting "+key)
			return
		}
	}
	a.json(w, http.StatusOK, map[string]bool{"saved": true})
}
