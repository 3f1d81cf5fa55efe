package repository

import (
	"github.com/rigaku-tools/machine-fleet-backend/internal/models"

	"gorm.io/gorm"
)

type MachineRepository struct {
	db *gorm.DB
}

func NewMachineRepository(db *gorm.DB) *MachineRepository {
	return &MachineRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *MachineRepository) WithTx(tx *gorm.DB) *MachineRepository {
	return &MachineRepository{db: tx}
}

func (r *MachineRepository) preload() *gorm.DB {
	return r.db.Preload("Location").Preload("Tubes", func(db *gorm.DB) *gorm.DB {
		return db.Order("tubes.tube_index ASC")
	})
}

// Create creates a machine together with its nested tubes.
func (r *MachineRepository) Create(machine *models.Machine) error {
	return r.db.Create(machine).Error
}

// GetAll retrieves all machines with their locations and tubes
func (r *MachineRepository) GetAll() ([]models.Machine, error) {
	var machines []models.Machine
	err := r.preload().Order("machines.id asc").Find(&machines).Error
	return machines, err
}

// GetByID retrieves a machine by ID
func (r *MachineRepository) GetByID(id uint) (*models.Machine, error) {
	var machine models.Machine
	err := r.preload().First(&machine, "machines.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &machine, nil
}

// GetByName retrieves a machine by its unique name
func (r *MachineRepository) GetByName(name string) (*models.Machine, error) {
	var machine models.Machine
	err := r.preload().Where("machines.name = ?", name).First(&machine).Error
	if err != nil {
		return nil, err
	}
	return &machine, nil
}

// GetByStatus retrieves machines with the given status
func (r *MachineRepository) GetByStatus(status models.MachineStatus) ([]models.Machine, error) {
	var machines []models.Machine
	err := r.preload().Where("machines.status = ?", status).Order("machines.id asc").Find(&machines).Error
	return machines, err
}

// GetByLocation retrieves machines by country, optionally narrowed to a city.
func (r *MachineRepository) GetByLocation(country, city string) ([]models.Machine, error) {
	var machines []models.Machine
	query := r.preload().
		Joins("JOIN locations ON locations.id = machines.location_id").
		Where("locations.country = ?", country)
	if city != "" {
		query = query.Where("locations.city = ?", city)
	}
	err := query.Order("machines.id asc").Find(&machines).Error
	return machines, err
}

// Update saves machine fields. Tube replacement is handled separately so the
// old collection does not linger.
func (r *MachineRepository) Update(machine *models.Machine) error {
	return r.db.Save(machine).Error
}

// ReplaceTubes deletes the machine's tube collection and inserts the new one.
func (r *MachineRepository) ReplaceTubes(machineID uint, tubes []models.Tube) error {
	if err := r.db.Where("machine_id = ?", machineID).Delete(&models.Tube{}).Error; err != nil {
		return err
	}
	for i := range tubes {
		tubes[i].MachineID = machineID
	}
	if len(tubes) == 0 {
		return nil
	}
	return r.db.Create(&tubes).Error
}

// Delete removes a machine and, through the cascade constraint, its tubes.
// Tubes are also deleted explicitly so SQLite test databases without foreign
// key enforcement behave like postgres.
func (r *MachineRepository) Delete(id uint) error {
	if err := r.db.Where("machine_id = ?", id).Delete(&models.Tube{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Machine{}, id).Error
}

// ExistsByName checks whether a machine name is taken, optionally excluding
// one machine ID (for rename-to-own-name updates).
func (r *MachineRepository) ExistsByName(name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&models.Machine{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}
