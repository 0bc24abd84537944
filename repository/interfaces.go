package repository

import (
	"github.com/visionattend/attendancebackend/models"
)

// FaceRepositoryInterface defines the operations of the identity store.
// Mutations report their effect as a boolean instead of raising: a false
// result is a normal outcome (duplicate name, unknown name), not an error.
type FaceRepositoryInterface interface {
	Enroll(name string, embedding []float32) (bool, error)
	Delete(name string) (bool, error)
	UpdateEmbedding(name string, embedding []float32) (bool, error)
	Rename(oldName, newName string) (bool, error)
	ListNames() ([]string, error)
	GetByName(name string) (*models.Face, error)
	GetAll() ([]models.Face, error)
}

// AttendanceRepositoryInterface defines operations on the attendance log.
type AttendanceRepositoryInterface interface {
	Insert(name, timestamp string) (*models.AttendanceRecord, error)
	// Query filters by exact name and/or exact calendar date (YYYY-MM-DD);
	// empty strings mean "no filter". Results are most-recent-first.
	Query(name, date string) ([]models.AttendanceRecord, error)
	DeleteByID(id uint) (bool, error)
}

// UserRepositoryInterface defines operations on operator accounts.
type UserRepositoryInterface interface {
	Create(username, password, role string) error
	// GetRole returns the role for valid credentials, or false when the
	// username is unknown or the password does not match.
	GetRole(username, password string) (string, bool)
}
