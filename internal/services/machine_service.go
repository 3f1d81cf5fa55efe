package services

import (
	"errors"
	"fmt"

	"github.com/rigaku-tools/machine-fleet-backend/internal/database/repository"
	"github.com/rigaku-tools/machine-fleet-backend/internal/models"
	"github.com/rigaku-tools/machine-fleet-backend/internal/services/events"

	"gorm.io/gorm"
)

// Domain errors surfaced to handlers.
var (
	ErrMachineNotFound   = errors.New("machine not found")
	ErrMachineNameExists = errors.New("a machine with this name already exists")
	ErrTubeCountMismatch = errors.New("the number of tubes must match the tubesNumber value")
)

type MachineService struct {
	db           *gorm.DB
	machineRepo  *repository.MachineRepository
	locationRepo *repository.LocationRepository
	publisher    *events.Publisher
}

func NewMachineService(db *gorm.DB, publisher *events.Publisher) *MachineService {
	return &MachineService{
		db:           db,
		machineRepo:  repository.NewMachineRepository(db),
		locationRepo: repository.NewLocationRepository(db),
		publisher:    publisher,
	}
}

// GetAllMachines returns the whole fleet.
func (s *MachineService) GetAllMachines() ([]models.MachineDto, error) {
	machines, err := s.machineRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to get machines: %w", err)
	}
	return mapMachines(machines), nil
}

// GetMachineByID returns one machine or ErrMachineNotFound.
func (s *MachineService) GetMachineByID(id uint) (*models.MachineDto, error) {
	machine, err := s.machineRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, fmt.Errorf("failed to get machine: %w", err)
	}
	dto := mapMachine(machine)
	return &dto, nil
}

// GetMachineByName returns one machine by its unique name.
func (s *MachineService) GetMachineByName(name string) (*models.MachineDto, error) {
	machine, err := s.machineRepo.GetByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, fmt.Errorf("failed to get machine: %w", err)
	}
	dto := mapMachine(machine)
	return &dto, nil
}

// GetMachinesByStatus filters by status.
func (s *MachineService) GetMachinesByStatus(status models.MachineStatus) ([]models.MachineDto, error) {
	machines, err := s.machineRepo.GetByStatus(status)
	if err != nil {
		return nil, fmt.Errorf("failed to get machines by status: %w", err)
	}
	return mapMachines(machines), nil
}

// GetMachinesByLocation filters by country and, optionally, city.
func (s *MachineService) GetMachinesByLocation(country, city string) ([]models.MachineDto, error) {
	machines, err := s.machineRepo.GetByLocation(country, city)
	if err != nil {
		return nil, fmt.Errorf("failed to get machines by location: %w", err)
	}
	return mapMachines(machines), nil
}

// CreateMachine validates uniqueness and the tube-count invariant, resolves
// or creates the location, and persists the machine with its tubes in one
// transaction so a partial aggregate can never be observed.
func (s *MachineService) CreateMachine(req *models.CreateMachineRequest) (*models.MachineDto, error) {
	exists, err := s.machineRepo.ExistsByName(req.Name, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check machine name: %w", err)
	}
	if exists {
		return nil, ErrMachineNameExists
	}

	if len(req.Tubes) != req.TubesNumber {
		return nil, ErrTubeCountMismatch
	}

	var machineID uint
	err = s.db.Transaction(func(tx *gorm.DB) error {
		location, err := s.resolveLocation(tx, &req.Location)
		if err != nil {
			return err
		}

		machine := &models.Machine{
			Name:           req.Name,
			Model:          req.Model,
			Status:         req.Status,
			PlcVersion:     req.PlcVersion,
			AcsVersion:     req.AcsVersion,
			TubesNumber:    req.TubesNumber,
			Owner:          req.Owner,
			TeamviewerName: req.TeamviewerName,
			LocationID:     location.ID,
			Tubes:          tubesFromDtos(req.Tubes),
		}

		if err := s.machineRepo.WithTx(tx).Create(machine); err != nil {
			return fmt.Errorf("failed to create machine: %w", err)
		}
		machineID = machine.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.GetMachineByID(machineID)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(events.MachineEvent{
		Action:    "created",
		MachineID: created.ID,
		Name:      created.Name,
		Status:    string(created.Status),
	})
	return created, nil
}

// UpdateMachine applies the supplied fields. PUT and PATCH both route here:
// every field is optional, so the two verbs behave identically.
func (s *MachineService) UpdateMachine(id uint, req *models.UpdateMachineRequest) (*models.MachineDto, error) {
	machine, err := s.machineRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, fmt.Errorf("failed to get machine: %w", err)
	}

	if req.Name != nil && *req.Name != machine.Name {
		exists, err := s.machineRepo.ExistsByName(*req.Name, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check machine name: %w", err)
		}
		if exists {
			return nil, ErrMachineNameExists
		}
		machine.Name = *req.Name
	}

	if req.Model != nil {
		machine.Model = *req.Model
	}
	if req.Status != nil {
		machine.Status = *req.Status
	}
	if req.PlcVersion != nil {
		machine.PlcVersion = *req.PlcVersion
	}
	if req.AcsVersion != nil {
		machine.AcsVersion = *req.AcsVersion
	}
	if req.Owner != nil {
		machine.Owner = *req.Owner
	}
	if req.TeamviewerName != nil {
		machine.TeamviewerName = *req.TeamviewerName
	}
	if req.TubesNumber != nil {
		machine.TubesNumber = *req.TubesNumber
	}

	// Tube replacement validates against the effective tubesNumber, which may
	// itself have just changed.
	if req.Tubes != nil && len(*req.Tubes) != machine.TubesNumber {
		return nil, ErrTubeCountMismatch
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.Location != nil {
			location, err := s.resolveLocation(tx, req.Location)
			if err != nil {
				return err
			}
			machine.LocationID = location.ID
		}

		txRepo := s.machineRepo.WithTx(tx)
		if req.Tubes != nil {
			if err := txRepo.ReplaceTubes(machine.ID, tubesFromDtos(*req.Tubes)); err != nil {
				return fmt.Errorf("failed to replace tubes: %w", err)
			}
		}

		// Detach loaded associations so Save only touches machine columns.
		machine.Tubes = nil
		machine.Location = models.Location{}
		if err := txRepo.Update(machine); err != nil {
			return fmt.Errorf("failed to update machine: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.GetMachineByID(id)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(events.MachineEvent{
		Action:    "updated",
		MachineID: updated.ID,
		Name:      updated.Name,
		Status:    string(updated.Status),
	})
	return updated, nil
}

// DeleteMachine removes a machine and its tubes. The location row stays even
// when no other machine references it.
func (s *MachineService) DeleteMachine(id uint) error {
	machine, err := s.machineRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMachineNotFound
		}
		return fmt.Errorf("failed to get machine: %w", err)
	}

	if err := s.machineRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete machine: %w", err)
	}

	s.publisher.Publish(events.MachineEvent{
		Action:    "deleted",
		MachineID: machine.ID,
		Name:      machine.Name,
	})
	return nil
}

func (s *MachineService) resolveLocation(tx *gorm.DB, dto *models.LocationDto) (*models.Location, error) {
	repo := s.locationRepo.WithTx(tx)
	location, err := repo.GetByCountryAndCity(dto.Country, dto.City)
	if err == nil {
		return location, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up location: %w", err)
	}

	location = &models.Location{
		Country:   dto.Country,
		City:      dto.City,
		Latitude:  dto.Latitude,
		Longitude: dto.Longitude,
	}
	if err := repo.Create(location); err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}
	return location, nil
}

func tubesFromDtos(dtos []models.TubeDto) []models.Tube {
	tubes := make([]models.Tube, len(dtos))
	for i, t := range dtos {
		tubes[i] = models.Tube{
			TubeIndex:        t.TubeIndex,
			TubeType:         t.TubeType,
			PurgingConnected: t.PurgingConnected,
			ShutterExists:    t.ShutterExists,
		}
	}
	return tubes
}

func mapMachine(machine *models.Machine) models.MachineDto {
	tubes := make([]models.TubeDto, len(machine.Tubes))
	for i, t := range machine.Tubes {
		tubes[i] = models.TubeDto{
			TubeIndex:        t.TubeIndex,
			TubeType:         t.TubeType,
			PurgingConnected: t.PurgingConnected,
			ShutterExists:    t.ShutterExists,
		}
	}

	return models.MachineDto{
		ID:             machine.ID,
		Name:           machine.Name,
		Model:          machine.Model,
		Status:         machine.Status,
		PlcVersion:     machine.PlcVersion,
		AcsVersion:     machine.AcsVersion,
		TubesNumber:    machine.TubesNumber,
		Owner:          machine.Owner,
		TeamviewerName: machine.TeamviewerName,
		Location: models.LocationDto{
			Country:   machine.Location.Country,
			City:      machine.Location.City,
			Latitude:  machine.Location.Latitude,
			Longitude: machine.Location.Longitude,
		},
		Tubes:     tubes,
		CreatedAt: machine.CreatedAt,
		UpdatedAt: machine.UpdatedAt,
	}
}

func mapMachines(machines []models.Machine) []models.MachineDto {
	dtos := make([]models.MachineDto, len(machines))
	for i := range machines {
		dtos[i] = mapMachine(&machines[i])
	}
	return dtos
}
