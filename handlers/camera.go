package handlers

import (
	"log"
	"net/http"

	"github.com/visionattend/attendancebackend/services"
	"github.com/visionattend/attendancebackend/workers"
)

// CameraHandler starts and stops the live recognition worker.
type CameraHandler struct {
	Worker *workers.CaptureWorker
}

// StartCamera handles POST /api/camera/start.
func (ch *CameraHandler) StartCamera(w http.ResponseWriter, r *http.Request) {
	if err := ch.Worker.Start(); err != nil {
		log.Printf("Error starting camera: %v", err)
		writeError(w, http.StatusServiceUnavailable, "failed to open camera device")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

// StopCamera handles POST /api/camera/stop. Stopping an idle camera is fine.
func (ch *CameraHandler) StopCamera(w http.ResponseWriter, r *http.Request) {
	ch.Worker.Stop()
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

// CameraStatus handles GET /api/camera, reporting whether live recognition
// is running and the outcome of the last sampled frame.
func (ch *CameraHandler) CameraStatus(w http.ResponseWriter, r *http.Request) {
	type statusResponse struct {
		Running    bool                        `json:"running"`
		LastResult *services.RecognitionResult `json:"last_result,omitempty"`
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Running:    ch.Worker.IsRunning(),
		LastResult: ch.Worker.LastResult(),
	})
}
