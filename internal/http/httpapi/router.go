package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"studio/internal/http/handlers"
	"studio/internal/middleware"
)

// NewRouter wires the API surface. Generation endpoints sit behind the rate
// limiter; read endpoints do not.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	var lookup middleware.CountryLookup
	if app.Geo != nil {
		lookup = app.Geo.CountryCode
	}

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Cfg.AllowedOrigins),
		middleware.I18N(app.Cfg.DefaultLocale, lookup),
	)

	r.Get("/healthz", app.Health)

	limited := middleware.RateLimit(app.Cfg.RateLimitPerMin, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Get("/models", app.ModelsList)

		r.Route("/videos", func(r chi.Router) {
			r.With(limited).Post("/generate", app.VideosGenerate)
			r.Get("/", app.VideosList)
			r.Get("/{id}/status", app.VideosStatus)
		})

		r.Post("/uploads", app.UploadsCreate)

		r.Route("/prompts", func(r chi.Router) {
			r.Get("/", app.PromptsList)
			r.Post("/", app.PromptsCreate)
			r.Delete("/{id}", app.PromptsDelete)
			r.With(limited).Post("/polish", app.PromptsPolish)
			r.With(limited).Post("/generate", app.PromptsGenerate)
		})

		r.With(limited).Post("/posters/generate", app.PostersGenerate)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", app.AccountsList)
			r.Post("/", app.AccountsCreate)
			r.Put("/{id}", app.AccountsUpdate)
			r.Delete("/{id}", app.AccountsDelete)
		})

		r.Get("/settings", app.SettingsList)
		r.Put("/settings", app.SettingsUpdate)

		r.Get("/stats", app.Stats)
	})

	return r
}
