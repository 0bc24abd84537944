package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/facette/natsort"
	"github.com/go-chi/chi/v5"

	"github.com/visionattend/attendancebackend/config"
	"github.com/visionattend/attendancebackend/media"
	"github.com/visionattend/attendancebackend/services"
)

// FaceHandler exposes the enrollment and identity-management operations to
// the UI layer.
type FaceHandler struct {
	Service *services.RecognitionService
	Cfg     config.Config
}

// EnrollFace handles POST /api/faces: multipart form with "name" and "image".
func (fh *FaceHandler) EnrollFace(w http.ResponseWriter, r *http.Request) {
	img, err := readImageUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer img.Close()

	name := r.FormValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name must not be empty")
		return
	}

	created, err := fh.Service.Enroll(name, img)
	if err != nil {
		respondExtractionError(w, name, err)
		return
	}
	if !created {
		writeError(w, http.StatusConflict, "an identity with this name already exists")
		return
	}

	if fh.Cfg.SnapshotsPath != "" {
		if _, err := media.SaveSnapshot(img, fh.Cfg.SnapshotsPath); err != nil {
			log.Printf("Warning: failed to save enrollment snapshot for %q: %v", name, err)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]string{"name": name, "status": "enrolled"})
}

// ListFaces handles GET /api/faces. Names are natural-sorted for display;
// the store itself keeps insertion order.
func (fh *FaceHandler) ListFaces(w http.ResponseWriter, r *http.Request) {
	names, err := fh.Service.ListIdentities()
	if err != nil {
		log.Printf("Error listing identities: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list identities")
		return
	}

	natsort.Sort(names)
	writeJSON(w, http.StatusOK, map[string]interface{}{"names": names})
}

// UpdateFace handles PUT /api/faces/{name}: multipart form with a new "image".
func (fh *FaceHandler) UpdateFace(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	img, err := readImageUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer img.Close()

	updated, err := fh.Service.UpdateEmbedding(name, img)
	if err != nil {
		respondExtractionError(w, name, err)
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "no identity with this name")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "status": "updated"})
}

// RenameFace handles POST /api/faces/{name}/rename with {"new_name": ...}.
func (fh *FaceHandler) RenameFace(w http.ResponseWriter, r *http.Request) {
	oldName := chi.URLParam(r, "name")

	var req struct {
		NewName string `json:"new_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.NewName == "" {
		writeError(w, http.StatusBadRequest, "new_name must not be empty")
		return
	}

	renamed, err := fh.Service.Rename(oldName, req.NewName)
	if err != nil {
		log.Printf("Error renaming %q to %q: %v", oldName, req.NewName, err)
		writeError(w, http.StatusInternalServerError, "failed to rename identity")
		return
	}
	if !renamed {
		writeError(w, http.StatusConflict, "new name already taken or identity not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": req.NewName, "status": "renamed"})
}

// DeleteFace handles DELETE /api/faces/{name}.
func (fh *FaceHandler) DeleteFace(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	deleted, err := fh.Service.Delete(name)
	if err != nil {
		log.Printf("Error deleting identity %q: %v", name, err)
		writeError(w, http.StatusInternalServerError, "failed to delete identity")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "no identity with this name")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "status": "deleted"})
}

// Recognize handles POST /api/recognize: multipart form with "image". The
// response always carries a status; only extraction and storage failures are
// HTTP errors.
func (fh *FaceHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	img, err := readImageUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer img.Close()

	result, err := fh.Service.Recognize(img)
	if err != nil {
		log.Printf("Error recognizing uploaded image: %v", err)
		writeError(w, http.StatusInternalServerError, "recognition failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// respondExtractionError maps extractor sentinels to distinct UI messages.
func respondExtractionError(w http.ResponseWriter, name string, err error) {
	switch {
	case errors.Is(err, media.ErrNoFaceDetected):
		writeError(w, http.StatusUnprocessableEntity, "no face detected in the image")
	case errors.Is(err, media.ErrImageDecode):
		writeError(w, http.StatusBadRequest, "image could not be decoded")
	default:
		log.Printf("Error extracting embedding for %q: %v", name, err)
		writeError(w, http.StatusInternalServerError, "embedding extraction failed")
	}
}
