package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/infra/geoip"
	"studio/internal/kie"
)

// settingKeyAPIKey is the settings-store fallback credential, used when no
// account is selected and no primary account exists.
const settingKeyAPIKey = "kie_api_key"

var errNoCredential = errors.New("no gateway api key configured")

// App bundles the dependencies every handler needs.
type App struct {
	Cfg    *infra.Config
	Logger infra.Logger
	KIE    *kie.Client

	Tasks    domain.TaskRepository
	Accounts domain.AccountRepository
	Prompts  domain.PromptRepository
	Settings domain.SettingsRepository

	Geo geoip.CountryResolver
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{"error": map[string]string{"code": code, "message": message}})
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

// kieConfigFor resolves the gateway config for a request. Key precedence:
// the explicitly selected account, then the primary account, then the
// settings store, then the environment. The account (when one is involved)
// is returned so callers can enforce and record quota.
func (a *App) kieConfigFor(ctx context.Context, accountID string) (kie.Config, *domain.Account, error) {
	base := kie.Config{
		BaseURL:   a.Cfg.KieAPIBase,
		Timeout:   a.Cfg.KieTimeout,
		ChatModel: a.Cfg.KieChatModel,
	}

	if accountID != "" {
		account, err := a.Accounts.GetByID(ctx, accountID)
		if err != nil {
			return kie.Config{}, nil, err
		}
		return base.WithAPIKey(account.APIKey), account, nil
	}

	if account, err := a.Accounts.GetPrimary(ctx); err == nil && account.APIKey != "" {
		return base.WithAPIKey(account.APIKey), account, nil
	}

	if key, err := a.Settings.Get(ctx, settingKeyAPIKey); err == nil && strings.TrimSpace(key) != "" {
		return base.WithAPIKey(key), nil, nil
	}

	if a.Cfg.KieAPIKey != "" {
		return base.WithAPIKey(a.Cfg.KieAPIKey), nil, nil
	}

	return kie.Config{}, nil, errNoCredential
}

// checkQuota rejects the request when the selected account has exhausted its
// daily allowance. A counter from a previous day counts as reset.
func checkQuota(account *domain.Account, today string) error {
	if account == nil {
		return nil
	}
	if account.NeedsReset(today) {
		return nil
	}
	if account.QuotaRemaining() == 0 {
		return domain.ErrQuotaExceeded
	}
	return nil
}

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

// kieError maps gateway client failures onto HTTP responses.
func (a *App) kieError(w http.ResponseWriter, err error) {
	var (
		timeout   *kie.TimeoutError
		upstream  *kie.UpstreamError
		malformed *kie.MalformedResponseError
		allFailed *kie.AllCandidatesFailedError
	)
	switch {
	case errors.Is(err, kie.ErrMissingAPIKey) || errors.Is(err, errNoCredential):
		a.error(w, http.StatusBadRequest, "missing_credential", "no gateway api key configured")
	case errors.Is(err, domain.ErrQuotaExceeded):
		a.error(w, http.StatusTooManyRequests, "quota_exceeded", "daily quota exhausted for this account")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.As(err, &timeout):
		a.error(w, http.StatusGatewayTimeout, "gateway_timeout", err.Error())
	case errors.As(err, &upstream):
		a.error(w, http.StatusBadGateway, "upstream_error", err.Error())
	case errors.As(err, &allFailed):
		a.error(w, http.StatusBadGateway, "all_candidates_failed", err.Error())
	case errors.As(err, &malformed):
		a.error(w, http.StatusBadGateway, "malformed_response", "gateway returned an unreadable response")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		a.error(w, http.StatusGatewayTimeout, "request_cancelled", "request cancelled or timed out")
	default:
		a.Logger.Error().Err(err).Msg("unhandled gateway error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
