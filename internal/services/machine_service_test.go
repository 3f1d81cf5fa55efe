package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rigaku-tools/machine-fleet-backend/internal/database"
	"github.com/rigaku-tools/machine-fleet-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newMachineService(t *testing.T) (*MachineService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewMachineService(db, nil), db
}

func sampleCreateRequest(name string) *models.CreateMachineRequest {
	return &models.CreateMachineRequest{
		Name:           name,
		Model:          models.ModelOnyx3000,
		Status:         models.StatusRunning,
		PlcVersion:     "2.4.1",
		AcsVersion:     "1.9.0",
		TubesNumber:    2,
		Owner:          "Rigaku Analytical",
		TeamviewerName: name + "-tv",
		Location: models.LocationDto{
			Country:   "Japan",
			City:      "Tokyo",
			Latitude:  35.6762,
			Longitude: 139.6503,
		},
		Tubes: []models.TubeDto{
			{TubeIndex: 2, TubeType: models.TubeMXR, PurgingConnected: false, ShutterExists: true},
			{TubeIndex: 1, TubeType: models.TubePetrick, PurgingConnected: true, ShutterExists: true},
		},
	}
}

func TestCreateMachine(t *testing.T) {
	svc, _ := newMachineService(t)

	created, err := svc.CreateMachine(sampleCreateRequest("XRD-001"))
	require.NoError(t, err)

	assert.Equal(t, "XRD-001", created.Name)
	assert.Equal(t, models.ModelOnyx3000, created.Model)
	assert.Equal(t, "Tokyo", created.Location.City)
	assert.Nil(t, created.UpdatedAt, "creation must not stamp updatedAt")

	// Tubes come back ordered by tubeIndex regardless of insertion order.
	require.Len(t, created.Tubes, 2)
	assert.Equal(t, 1, created.Tubes[0].TubeIndex)
	assert.Equal(t, 2, created.Tubes[1].TubeIndex)
}

func TestCreateMachineRejectsDuplicateName(t *testing.T) {
	svc, _ := newMachineService(t)

	_, err := svc.CreateMachine(sampleCreateRequest("XRD-001"))
	require.NoError(t, err)

	_, err = svc.CreateMachine(sampleCreateRequest("XRD-001"))
	assert.ErrorIs(t, err, ErrMachineNameExists)
}

func TestCreateMachineRejectsTubeCountMismatch(t *testing.T) {
	svc, _ := newMachineService(t)

	req := sampleCreateRequest("XRD-001")
	req.TubesNumber = 3
	_, err := svc.CreateMachine(req)
	assert.ErrorIs(t, err, ErrTubeCountMismatch)
}

func TestCreateMachineReusesLocation(t *testing.T) {
	svc, db := newMachineService(t)

	_, err := svc.CreateMachine(sampleCreateRequest("XRD-001"))
	require.NoError(t, err)
	_, err = svc.CreateMachine(sampleCreateRequest("XRD-002"))
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Location{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "same country+city must resolve to one location row")
}

func TestGetMachineByID(t *testing.T) {
	svc, _ := newMachineService(t)

	created, err := svc.CreateMachine(sampleCreateRequest("XRD-001"))
	require.NoError(t, err)

	got, err := svc.GetMachineByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)

	_, err = svc.GetMachineByID(9999)
	assert.ErrorIs(t, err, ErrMachineNotFound)
}

func TestGetMachineByName(t *testing.T) {
	svc, _ := newMachineService(t)

	_, err := svc.CreateMachine(sampleCreateRequest("XRD-001"))
	require.NoError(t, err)

	got, err := svc.GetMachineByName("XRD-001")
	require.NoError(t, err)
	assert.Equal(t, "XRD-001", got.Name)

	_, err = svc.GetMachineByName("missing")
	assert.ErrorIs(t, err, ErrMachineNotFound)
}

func TestGetMachinesByStatus(t *testing.T) {
	svc, _ := newMachineService(t)

	_, err := svc.CreateMachine(sampleCreateRequest("XRD-001"))
	require.NoError(t, err)

	req := sampleCreateRequest("XRD-002")
	req.Status = models.StatusError
	_, err = svc.CreateMachine(req)
	require.NoError(t, err)

	running, err := svc.GetMachinesByStatus(models.StatusRunning)
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, "XRD-001", running[0].Name)

	idle, err := svc.GetMachinesByStatus(models.StatusIdle)
	require.NoError(t, err)
	assert.Empty(t, idle)
}

func TestGetMachinesByLocation(t *testing.T) {
	svc, _ := newMachineService(t)

	_, err := svc.CreateMachine(sampleCreateRequest("XRD-001"))
	require.NoError(t, err)

	req := sampleCreateRequest("XRD-002")
	req.Location = models.LocationDto{Country: "Japan", City: "Osaka"}
	_, err = svc.CreateMachine(req)
	require.NoError(t, err)

	japan, err := svc.GetMachinesByLocation("Japan", "")
	require.NoError(t, err)
	assert.Len(t, japan, 2)

	osaka, err := svc.GetMachinesByLocation("Japan", "Osaka")
	require.NoError(t, err)
	require.Len(t, osaka, 1)
	assert.Equal(t, "XRD-002", osaka[0].Name)
}

func TestUpdateMachinePartialFields(t *testing.T) {
	svc, _ := newMachineService(t)

	created, err := svc.CreateMachine(sampleCreateRequest("XRD-001"))
	require.NoError(t, err)

	status := models.StatusMaintenance
	updated, err := svc.UpdateMachine(created.ID, &models.UpdateMachineRequest{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, models.StatusMaintenance, updated.Status)
	assert.Equal(t, created.Name, updated.Name, "untouched fields must survive")
	assert.Equal(t, created.Tubes, updated.Tubes)
	require.NotNil(t, updated.UpdatedAt, "modification must stamp updatedAt")
}

func TestUpdateMachineRenameConflict(t *testing.T) {
	svc, _ := newMachineService(t)

	created, err := svc.CreateMachine(sampleCreateRequest("XRD-001"))
	require.NoError(t, err)
	_, err = svc.CreateMachine(sampleCreateRequest("XRD-002"))
	require.NoError(t, err)

	taken := "XRD-002"
	_, err = svc.UpdateMachine(created.ID, &models.UpdateMachineRequest{Name: &taken})
	assert.ErrorIs(t, err, ErrMachineNameExists)

	// Renaming to its own current name is not a conflict.
	same := "XRD-001"
	_, err = svc.UpdateMachine(created.ID, &models.UpdateMachineRequest{Name: &same})
	assert.NoError(t, err)
}

func TestUpdateMachineReplacesTubes(t *testing.T) {
	svc, db := newMachineService(t)

	created, err := svc.CreateMachine(sampleCreateRequest("XRD-001"))
	require.NoError(t, err)

	tubesNumber := 1
	tubes := []models.TubeDto{
		{TubeIndex: 1, TubeType: models.TubeColorsTW, PurgingConnected: true, ShutterExists: false},
	}
	updated, err := svc.UpdateMachine(created.ID, &models.UpdateMachineRequest{
		TubesNumber: &tubesNumber,
		Tubes:       &tubes,
	})
	require.NoError(t, err)

	require.Len(t, updated.Tubes, 1)
	assert.Equal(t, models.TubeColorsTW, updated.Tubes[0].TubeType)

	// Old tube rows are gone, not orphaned.
	var count int64
	require.NoError(t, db.Model(&models.Tube{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateMachineTubeCountValidatesAgainstEffectiveNumber(t *testing.T) {
	svc, _ := newMachineService(t)

	created, err := svc.CreateMachine(sampleCreateRequest("XRD-001"))
	require.NoError(t, err)

	// tubesNumber stays 2; one tube is a mismatch.
	tubes := []models.TubeDto{
		{TubeIndex: 1, TubeType: models.TubePetrick},
	}
	_, err = svc.UpdateMachine(created.ID, &models.UpdateMachineRequest{Tubes: &tubes})
	assert.ErrorIs(t, err, ErrTubeCountMismatch)
}

func TestUpdateMachineMovesLocation(t *testing.T) {
	svc, db := newMachineService(t)

	created, err := svc.CreateMachine(sampleCreateRequest("XRD-001"))
	require.NoError(t, err)

	loc := models.LocationDto{Country: "Germany", City: "Berlin", Latitude: 52.52, Longitude: 13.405}
	updated, err := svc.UpdateMachine(created.ID, &models.UpdateMachineRequest{Location: &loc})
	require.NoError(t, err)

	assert.Equal(t, "Berlin", updated.Location.City)

	// The old location row stays for other machines to use.
	var count int64
	require.NoError(t, db.Model(&models.Location{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestUpdateMachineNotFound(t *testing.T) {
	svc, _ := newMachineService(t)

	name := "XRD-404"
	_, err := svc.UpdateMachine(9999, &models.UpdateMachineRequest{Name: &name})
	assert.ErrorIs(t, err, ErrMachineNotFound)
}

func TestDeleteMachineCascadesTubesKeepsLocation(t *testing.T) {
	svc, db := newMachineService(t)

	created, err := svc.CreateMachine(sampleCreateRequest("XRD-001"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMachine(created.ID))

	_, err = svc.GetMachineByID(created.ID)
	assert.ErrorIs(t, err, ErrMachineNotFound)

	var tubeCount, locationCount int64
	require.NoError(t, db.Model(&models.Tube{}).Count(&tubeCount).Error)
	require.NoError(t, db.Model(&models.Location{}).Count(&locationCount).Error)
	assert.EqualValues(t, 0, tubeCount, "tubes must be deleted with their machine")
	assert.EqualValues(t, 1, locationCount, "locations outlive their machines")

	assert.ErrorIs(t, svc.DeleteMachine(created.ID), ErrMachineNotFound)
}
