package repository

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/visionattend/attendancebackend/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// AttendanceRepository handles database operations for the attendance log
type AttendanceRepository struct {
	DB *gorm.DB
}

// Ensure AttendanceRepository implements AttendanceRepositoryInterface
var _ AttendanceRepositoryInterface = (*AttendanceRepository)(nil)

// NewAttendanceRepository creates a new instance of AttendanceRepository
func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{DB: db}
}

// Insert appends a new attendance event. Rows are append-only; ordering is
// the autoincrement id plus the timestamp.
func (r *AttendanceRepository) Insert(name, timestamp string) (*models.AttendanceRecord, error) {
	record := models.AttendanceRecord{Name: name, Timestamp: timestamp}
	if err := r.DB.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to insert attendance record for %q: %w", name, err)
	}
	return &record, nil
}

// Query returns attendance events most-recent-first, optionally filtered by
// exact name and/or exact calendar date (conjunction of supplied filters).
func (r *AttendanceRepository) Query(name, date string) ([]models.AttendanceRecord, error) {
	queryBuilder := psql.Select("id", "name", "timestamp").
		From("attendance").
		OrderBy("timestamp DESC", "id DESC")

	if name != "" {
		queryBuilder = queryBuilder.Where(sq.Eq{"name": name})
	}
	if date != "" {
		queryBuilder = queryBuilder.Where(sq.Expr("date(timestamp) = ?", date))
	}

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance query: %w", err)
	}

	records := []models.AttendanceRecord{}
	if err := r.DB.Raw(sqlStr, args...).Scan(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}
	return records, nil
}

// DeleteByID removes a single attendance row, reporting whether one existed.
func (r *AttendanceRepository) DeleteByID(id uint) (bool, error) {
	result := r.DB.Delete(&models.AttendanceRecord{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete attendance record %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}
