package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAccountsCreateMasksKey(t *testing.T) {
	deps := newTestApp(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/accounts",
		jsonBody(`{"name":"main","apiKey":"sk-1234567890abcdef","dailyQuota":20}`))
	rec := httptest.NewRecorder()
	deps.app.AccountsCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp accountView
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.APIKeyMasked != "sk-1...cdef" {
		t.Fatalf("masked key = %q", resp.APIKeyMasked)
	}
	if resp.QuotaRemaining != 20 {
		t.Fatalf("quotaRemaining = %d, want 20", resp.QuotaRemaining)
	}
}

func TestAccountsCreateValidation(t *testing.T) {
	deps := newTestApp(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/accounts", jsonBody(`{"name":"main"}`))
	rec := httptest.NewRecorder()
	deps.app.AccountsCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSettingsUpdateAndMaskedList(t *testing.T) {
	deps := newTestApp(nil)

	req := httptest.NewRequest(http.MethodPut, "/api/settings",
		jsonBody(`{"kie_api_key":"sk-secretsecret99","theme":"dark"}`))
	rec := httptest.NewRecorder()
	deps.app.SettingsUpdate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	deps.app.SettingsList(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var resp struct {
		Settings map[string]string `json:"settings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Settings["theme"] != "dark" {
		t.Fatalf("theme = %q", resp.Settings["theme"])
	}
	if resp.Settings["kie_api_key"] == "sk-secretsecret99" {
		t.Fatalf("api key returned unmasked")
	}
}

func TestKieConfigPrecedence(t *testing.T) {
	deps := newTestApp(map[string]string{
		"/v1/chat/completions": `{"choices":[{"message":{"content":"ok"}}]}`,
	})
	// Settings key beats the environment key when no account is involved.
	deps.settings.Set(context.Background(), settingKeyAPIKey, "settings-key")

	req := httptest.NewRequest(http.MethodPost, "/api/prompts/polish",
		jsonBody(`{"prompt":"p","model":"veo3"}`))
	rec := httptest.NewRecorder()
	deps.app.PromptsPolish(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
