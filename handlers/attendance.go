package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/visionattend/attendancebackend/services"
)

// AttendanceHandler exposes the attendance log to the management UI.
type AttendanceHandler struct {
	Service *services.AttendanceService
}

// ListAttendance handles GET /api/attendance?name=...&date=YYYY-MM-DD.
// Both filters are optional and combine as a conjunction.
func (ah *AttendanceHandler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	date := r.URL.Query().Get("date")

	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			writeError(w, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
			return
		}
	}

	records, err := ah.Service.Query(name, date)
	if err != nil {
		log.Printf("Error querying attendance: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to query attendance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

// DeleteAttendance handles DELETE /api/attendance/{id}.
func (ah *AttendanceHandler) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid attendance record id")
		return
	}

	deleted, err := ah.Service.Delete(uint(id))
	if err != nil {
		log.Printf("Error deleting attendance record %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete attendance record")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "no attendance record with this id")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ExportAttendance handles GET /api/attendance/export with the same filters
// as the list endpoint, streaming the result as a CSV download.
func (ah *AttendanceHandler) ExportAttendance(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	date := r.URL.Query().Get("date")

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.csv"`)

	if err := ah.Service.ExportCSV(w, name, date); err != nil {
		// headers are already out; log and abort the stream
		log.Printf("Error exporting attendance CSV: %v", err)
	}
}
