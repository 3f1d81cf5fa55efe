package excel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rigaku-tools/machine-fleet-backend/internal/models"
)

func TestExportMachines(t *testing.T) {
	svc := NewService()

	machines := []models.MachineDto{
		{
			ID:          1,
			Name:        "XRD-001",
			Model:       models.ModelOnyx3000,
			Status:      models.StatusRunning,
			PlcVersion:  "2.4.1",
			AcsVersion:  "1.9.0",
			TubesNumber: 2,
			Owner:       "Rigaku Analytical",
			Location:    models.LocationDto{Country: "Japan", City: "Tokyo"},
			Tubes: []models.TubeDto{
				{TubeIndex: 1, TubeType: models.TubePetrick},
				{TubeIndex: 2, TubeType: models.TubeMXR},
			},
			CreatedAt: time.Now(),
		},
		{
			ID:          2,
			Name:        "XRD-002",
			Model:       models.ModelOnyx3200,
			Status:      models.StatusIdle,
			TubesNumber: 1,
			Location:    models.LocationDto{Country: "Germany", City: "Berlin"},
			Tubes: []models.TubeDto{
				{TubeIndex: 1, TubeType: models.TubeColorsTW},
			},
			CreatedAt: time.Now(),
		},
	}

	buf, err := svc.ExportMachines(machines)
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Machines", "Tubes"}, f.GetSheetList())

	machineRows, err := f.GetRows("Machines")
	require.NoError(t, err)
	require.Len(t, machineRows, 3, "header plus one row per machine")
	assert.Equal(t, "Name", machineRows[0][1])
	assert.Equal(t, "XRD-001", machineRows[1][1])
	assert.Equal(t, "XRD-002", machineRows[2][1])

	tubeRows, err := f.GetRows("Tubes")
	require.NoError(t, err)
	require.Len(t, tubeRows, 4, "header plus one row per tube")
	assert.Equal(t, "XRD-001", tubeRows[1][0])
	assert.Equal(t, "Petrick", tubeRows[1][2])
	assert.Equal(t, "XRD-002", tubeRows[3][0])
}

func TestExportMachinesEmptyFleet(t *testing.T) {
	svc := NewService()

	buf, err := svc.ExportMachines(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Machines")
	require.NoError(t, err)
	assert.Len(t, rows, 1, "headers only")
}
