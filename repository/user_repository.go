package repository

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/visionattend/attendancebackend/models"
)

// UserRepository handles database operations for operator accounts
type UserRepository struct {
	DB *gorm.DB
}

// Ensure UserRepository implements UserRepositoryInterface
var _ UserRepositoryInterface = (*UserRepository)(nil)

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// Create stores a new account with a bcrypt password hash. Cleartext is
// never persisted.
func (r *UserRepository) Create(username, password, role string) error {
	if username == "" || password == "" {
		return fmt.Errorf("username and password must not be empty")
	}

	user := models.User{Username: username, Role: role}
	if err := user.SetPassword(password); err != nil {
		return fmt.Errorf("failed to hash password for %q: %w", username, err)
	}

	if err := r.DB.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create user %q: %w", username, err)
	}
	return nil
}

// GetRole validates credentials and returns the account role. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (r *UserRepository) GetRole(username, password string) (string, bool) {
	var user models.User
	err := r.DB.Where("username = ?", username).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			// lookup failure is treated as a failed login; the caller
			// cannot do anything else with it
			log.Printf("user lookup failed for %q: %v", username, err)
		}
		return "", false
	}

	if !user.CheckPassword(password) {
		return "", false
	}
	return user.Role, true
}
