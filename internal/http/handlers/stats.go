package handlers

import (
	"net/http"

	"studio/internal/middleware"
)

// Stats summarises task counts, per-account quota usage and the caller's
// resolved locale and country.
func (a *App) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := a.Tasks.CountByStatus(ctx)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to count tasks")
		return
	}

	accounts, err := a.Accounts.List(ctx)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list accounts")
		return
	}
	usage := make([]map[string]any, 0, len(accounts))
	for i := range accounts {
		view := accountResponse(&accounts[i])
		usage = append(usage, map[string]any{
			"id":             view.ID,
			"name":           view.Name,
			"usedToday":      view.UsedToday,
			"dailyQuota":     view.DailyQuota,
			"quotaRemaining": view.QuotaRemaining,
		})
	}

	a.json(w, http.StatusOK, map[string]any{
		"tasks":    counts,
		"accounts": usage,
		"visitor": map[string]string{
			"locale":  middleware.LocaleFromContext(ctx),
			"country": middleware.CountryFromContext(ctx),
		},
	})
}
