package handlers

import (
	"io"
	"net/http"
)

// maxUploadBytes caps a single reference-image upload.
const maxUploadBytes = 20 << 20

// UploadsCreate forwards a multipart file to the gateway's file host and
// returns the public URL.
func (a *App) UploadsCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read file")
		return
	}

	ctx := r.Context()
	cfg, _, err := a.kieConfigFor(ctx, r.FormValue("accountId"))
	if err != nil {
		a.kieError(w, err)
		return
	}

	fileURL, err := a.KIE.UploadFile(ctx, cfg, data, header.Filename)
	if err != nil {
		a.kieError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"url": fileURL})
}
