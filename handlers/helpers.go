package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"gocv.io/x/gocv"

	"github.com/visionattend/attendancebackend/media"
)

// maxUploadSize caps uploaded enrollment/recognition images.
const maxUploadSize = 20 << 20 // 20 MiB

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"error": detail})
}

// readImageUpload decodes the "image" part of a multipart form into a Mat.
// The caller owns the Mat and must Close it.
func readImageUpload(r *http.Request) (gocv.Mat, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return gocv.Mat{}, fmt.Errorf("invalid multipart form: %w", err)
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("missing image upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to read image upload: %w", err)
	}

	return media.DecodeImage(data)
}
