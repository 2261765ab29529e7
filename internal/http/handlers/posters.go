package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"studio/internal/brand"
)

// posterWaitBudget bounds how long one poster render may poll before the
// request gives up.
const posterWaitBudget = 4 * time.Minute

// posterSizes maps the dashboard's named poster formats to gateway sizes.
var posterSizes = map[string]string{
	"square": "1024x1024",
	"story":  "720x1280",
	"wide":   "1280x720",
}

type posterResult struct {
	Format string   `json:"format"`
	Size   string   `json:"size"`
	URLs   []string `json:"urls"`
}

// PostersGenerate turns uploaded product shots into marketing posters. The
// reference images are pushed to the gateway's file host first, then one
// image task per requested format is submitted and awaited.
func (a *App) PostersGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4*maxUploadBytes)
	if err := r.ParseMultipartForm(4 * maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart body")
		return
	}
	theme := strings.TrimSpace(r.FormValue("theme"))
	if theme == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "theme is required")
		return
	}
	formats := r.Form["format"]
	if len(formats) == 0 {
		formats = []string{"square"}
	}

	ctx := r.Context()
	cfg, _, err := a.kieConfigFor(ctx, r.FormValue("accountId"))
	if err != nil {
		a.kieError(w, err)
		return
	}

	var imageURLs []string
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				a.error(w, http.StatusBadRequest, "bad_request", "failed to read image")
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				a.error(w, http.StatusBadRequest, "bad_request", "failed to read image")
				return
			}
			uploaded, err := a.KIE.UploadFile(ctx, cfg, data, header.Filename)
			if err != nil {
				a.kieError(w, err)
				return
			}
			imageURLs = append(imageURLs, uploaded)
		}
	}

	prompt := posterPrompt(theme)
	results := make([]posterResult, 0, len(formats))
	for _, format := range formats {
		size, known := posterSizes[format]
		if !known {
			a.error(w, http.StatusBadRequest, "bad_request", "unknown poster format "+format)
			return
		}
		body := map[string]any{
			"prompt": prompt,
			"size":   size,
		}
		if len(imageURLs) > 0 {
			body["image_urls"] = imageURLs
		}
		task, err := a.KIE.ImageGenerate(ctx, cfg, body)
		if err != nil {
			a.kieError(w, err)
			return
		}
		urls, err := a.KIE.WaitForImageResult(ctx, cfg, task.RecordBase, task.TaskID, posterWaitBudget)
		if err != nil {
			a.kieError(w, err)
			return
		}
		results = append(results, posterResult{Format: format, Size: size, URLs: urls})
	}

	a.json(w, http.StatusOK, map[string]any{"posters": results})
}

func posterPrompt(theme string) string {
	return fmt.Sprintf(
		"Premium product poster for a coffee brand. Theme: %s. Palette: %s primary %s, accent %s. %s. No people, no faces, no hands, no text overlays, no external logos.",
		theme, brand.Theme, brand.PrimaryColor, brand.AccentColor, brand.Style,
	)
}
