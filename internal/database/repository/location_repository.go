package repository

import (
	"github.com/rigaku-tools/machine-fleet-backend/internal/models"

	"gorm.io/gorm"
)

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *LocationRepository) WithTx(tx *gorm.DB) *LocationRepository {
	return &LocationRepository{db: tx}
}

// Create creates a new location
func (r *LocationRepository) Create(location *models.Location) error {
	return r.db.Create(location).Error
}

// GetByCountryAndCity retrieves a location by its unique (country, city) pair.
// Returns gorm.ErrRecordNotFound when the pair is unknown.
func (r *LocationRepository) GetByCountryAndCity(country, city string) (*models.Location, error) {
	var location models.Location
	err := r.db.Where("country = ? AND city = ?", country, city).First(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// GetByID retrieves a location by ID
func (r *LocationRepository) GetByID(id uint) (*models.Location, error) {
	var location models.Location
	err := r.db.First(&location, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}
