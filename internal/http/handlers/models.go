package handlers

import (
	"net/http"

	"studio/internal/kie"
)

// ModelsList returns the video models the dashboard can submit to.
func (a *App) ModelsList(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": kie.AllModels})
}
