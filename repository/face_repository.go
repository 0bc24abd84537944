package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/visionattend/attendancebackend/models"
)

// FaceRepository handles database operations for enrolled identities
type FaceRepository struct {
	DB *gorm.DB
}

// Ensure FaceRepository implements FaceRepositoryInterface
var _ FaceRepositoryInterface = (*FaceRepository)(nil)

// NewFaceRepository creates a new instance of FaceRepository
func NewFaceRepository(db *gorm.DB) *FaceRepository {
	return &FaceRepository{DB: db}
}

// Enroll stores a new identity. It reports false without side effects when
// the name is already taken.
func (r *FaceRepository) Enroll(name string, embedding []float32) (bool, error) {
	if name == "" {
		return false, fmt.Errorf("identity name must not be empty")
	}

	exists, err := r.nameExists(name)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	face := models.Face{Name: name}
	face.SetEmbedding(embedding)
	if err := r.DB.Create(&face).Error; err != nil {
		return false, fmt.Errorf("failed to enroll identity %q: %w", name, err)
	}
	return true, nil
}

// Delete removes the identity with the given name. It reports false when no
// such identity exists.
func (r *FaceRepository) Delete(name string) (bool, error) {
	result := r.DB.Where("name = ?", name).Delete(&models.Face{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete identity %q: %w", name, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// UpdateEmbedding replaces the stored vector for an existing identity. The
// name is the sole key and never changes here. Reports false when absent.
func (r *FaceRepository) UpdateEmbedding(name string, embedding []float32) (bool, error) {
	face := models.Face{}
	face.SetEmbedding(embedding)

	result := r.DB.Model(&models.Face{}).Where("name = ?", name).Update("embedding", face.Embedding)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update embedding for %q: %w", name, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Rename changes an identity's name. It fails (false, nil) when the new name
// is already taken or the old name does not exist, leaving all records
// untouched.
func (r *FaceRepository) Rename(oldName, newName string) (bool, error) {
	if newName == "" {
		return false, fmt.Errorf("identity name must not be empty")
	}

	taken, err := r.nameExists(newName)
	if err != nil {
		return false, err
	}
	if taken {
		return false, nil
	}

	result := r.DB.Model(&models.Face{}).Where("name = ?", oldName).Update("name", newName)
	if result.Error != nil {
		return false, fmt.Errorf("failed to rename %q to %q: %w", oldName, newName, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListNames returns all enrolled names in storage (insertion) order.
func (r *FaceRepository) ListNames() ([]string, error) {
	names := []string{}
	err := r.DB.Model(&models.Face{}).Order("id").Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	return names, nil
}

// GetByName retrieves an identity by name
func (r *FaceRepository) GetByName(name string) (*models.Face, error) {
	var face models.Face
	err := r.DB.Where("name = ?", name).First(&face).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get identity %q: %w", name, err)
	}
	return &face, nil
}

// GetAll retrieves every enrolled identity with its embedding, in storage
// order. The matcher scans this set linearly.
func (r *FaceRepository) GetAll() ([]models.Face, error) {
	var faces []models.Face
	err := r.DB.Order("id").Find(&faces).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load enrolled identities: %w", err)
	}
	return faces, nil
}

func (r *FaceRepository) nameExists(name string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.Face{}).Where("name = ?", name).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check identity %q: %w", name, err)
	}
	return count > 0, nil
}
