package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/visionattend/attendancebackend/models"
	"github.com/visionattend/attendancebackend/repository"
)

// DefaultCooldown suppresses duplicate rapid re-matches of the same name.
const DefaultCooldown = 30 * time.Second

// AttendanceService records attendance events with a per-name cooldown. The
// cooldown map lives in memory only: restarting the process resets it.
type AttendanceService struct {
	repo     repository.AttendanceRepositoryInterface
	cooldown time.Duration
	now      func() time.Time

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// NewAttendanceService creates the recorder. A non-positive cooldown falls
// back to the default.
func NewAttendanceService(repo repository.AttendanceRepositoryInterface, cooldown time.Duration) *AttendanceService {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &AttendanceService{
		repo:     repo,
		cooldown: cooldown,
		now:      time.Now,
		lastSeen: make(map[string]time.Time),
	}
}

// Record appends an attendance event for name unless one was recorded within
// the cooldown window. It reports whether a row was actually written, so the
// caller can surface "already recorded recently" instead of "recorded".
// The lock spans check, insert and update: the upload handler and the live
// capture worker can both report the same name at once, and releasing between
// check and insert would let both through the cooldown.
func (s *AttendanceService) Record(name string) (bool, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.lastSeen[name]; ok && now.Sub(last) < s.cooldown {
		return false, nil
	}

	if _, err := s.repo.Insert(name, now.Format(models.TimestampLayout)); err != nil {
		return false, err
	}

	s.lastSeen[name] = now
	return true, nil
}

// Query lists attendance events most-recent-first, filtered by exact name
// and/or calendar date when supplied.
func (s *AttendanceService) Query(name, date string) ([]models.AttendanceRecord, error) {
	return s.repo.Query(name, date)
}

// Delete removes one event by id, reporting whether a row existed.
func (s *AttendanceService) Delete(id uint) (bool, error) {
	return s.repo.DeleteByID(id)
}

// ExportCSV writes the filtered attendance log as CSV with an ID, Name,
// Timestamp header, matching the management UI's export format.
func (s *AttendanceService) ExportCSV(w io.Writer, name, date string) error {
	records, err := s.repo.Query(name, date)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"ID", "Name", "Timestamp"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, record := range records {
		row := []string{strconv.FormatUint(uint64(record.ID), 10), record.Name, record.Timestamp}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
