package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studio/internal/domain"
)

type accountRequest struct {
	Name       string `json:"name"`
	APIKey     string `json:"apiKey"`
	IsPrimary  bool   `json:"isPrimary"`
	DailyQuota int    `json:"dailyQuota"`
	Notes      string `json:"notes"`
}

type accountView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	APIKeyMasked   string `json:"apiKey"`
	IsPrimary      bool   `json:"isPrimary"`
	DailyQuota     int    `json:"dailyQuota"`
	UsedToday      int    `json:"usedToday"`
	QuotaRemaining int    `json:"quotaRemaining"`
	Notes          string `json:"notes,omitempty"`
}

// AccountsList returns all accounts with masked keys and current quota.
func (a *App) AccountsList(w http.ResponseWriter, r *http.Request) {
	accounts, err := a.Accounts.List(r.Context())
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list accounts")
		return
	}
	items := make([]accountView, 0, len(accounts))
	for i := range accounts {
		items = append(items, accountResponse(&accounts[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// AccountsCreate registers a new gateway API-key account.
func (a *App) AccountsCreate(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if !a.decode(w, r, &req) {
		return
	}
	req.APIKey = strings.TrimSpace(req.APIKey)
	if req.Name == "" || req.APIKey == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "name and apiKey are required")
		return
	}
	if req.DailyQuota <= 0 {
		req.DailyQuota = 50
	}

	account := &domain.Account{
		ID:         uuid.NewString(),
		Name:       req.Name,
		APIKey:     req.APIKey,
		IsPrimary:  req.IsPrimary,
		DailyQuota: req.DailyQuota,
	}
	if req.Notes != "" {
		account.Notes = &req.Notes
	}
	if err := a.Accounts.Create(r.Context(), account); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to save account")
		return
	}
	a.json(w, http.StatusCreated, accountResponse(account))
}

// AccountsUpdate edits an existing account. An empty apiKey keeps the stored one.
func (a *App) AccountsUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	account, err := a.Accounts.GetByID(r.Context(), id)
	if err != nil {
		a.kieError(w, err)
		return
	}

	var req accountRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Name != "" {
		account.Name = req.Name
	}
	if key := strings.TrimSpace(req.APIKey); key != "" {
		account.APIKey = key
	}
	if req.DailyQuota > 0 {
		account.DailyQuota = req.DailyQuota
	}
	account.IsPrimary = req.IsPrimary
	if req.Notes != "" {
		account.Notes = &req.Notes
	}

	if err := a.Accounts.Update(r.Context(), account); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to update account")
		return
	}
	a.json(w, http.StatusOK, accountResponse(account))
}

// AccountsDelete removes an account.
func (a *App) AccountsDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Accounts.Delete(r.Context(), id); err != nil {
		a.kieError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]bool{"deleted": true})
}

func accountResponse(account *domain.Account) accountView {
	used := account.UsedToday
	if account.NeedsReset(today()) {
		used = 0
	}
	view := accountView{
		ID:             account.ID,
		Name:           account.Name,
		APIKeyMasked:   maskKey(account.APIKey),
		IsPrimary:      account.IsPrimary,
		DailyQuota:     account.DailyQuota,
		UsedToday:      used,
		QuotaRemaining: account.DailyQuota - used,
	}
	if account.Notes != nil {
		view.Notes = *account.Notes
	}
	return view
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
