package excel

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/rigaku-tools/machine-fleet-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

// Service renders fleet snapshots as Excel workbooks.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

var machineHeaders = []string{
	"ID", "Name", "Model", "Status", "PLC Version", "ACS Version",
	"Tubes", "Owner", "TeamViewer", "Country", "City", "Latitude", "Longitude",
	"Created At", "Updated At",
}

var tubeHeaders = []string{
	"Machine", "Tube Index", "Tube Type", "Purging Connected", "Shutter Exists",
}

// ExportMachines writes one workbook with a Machines sheet and a Tubes sheet.
func (s *Service) ExportMachines(machines []models.MachineDto) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const machineSheet = "Machines"
	const tubeSheet = "Tubes"

	f.SetSheetName("Sheet1", machineSheet)
	if _, err := f.NewSheet(tubeSheet); err != nil {
		return nil, fmt.Errorf("failed to create tubes sheet: %w", err)
	}

	for col, header := range machineHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(machineSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	for col, header := range tubeHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(tubeSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	tubeRow := 2
	for i, m := range machines {
		updatedAt := ""
		if m.UpdatedAt != nil {
			updatedAt = m.UpdatedAt.Format("2006-01-02 15:04:05")
		}
		row := []interface{}{
			m.ID, m.Name, string(m.Model), string(m.Status), m.PlcVersion, m.AcsVersion,
			m.TubesNumber, m.Owner, m.TeamviewerName,
			m.Location.Country, m.Location.City, m.Location.Latitude, m.Location.Longitude,
			m.CreatedAt.Format("2006-01-02 15:04:05"), updatedAt,
		}
		if err := f.SetSheetRow(machineSheet, "A"+strconv.Itoa(i+2), &row); err != nil {
			return nil, fmt.Errorf("failed to write machine row: %w", err)
		}

		for _, t := range m.Tubes {
			row := []interface{}{m.Name, t.TubeIndex, string(t.TubeType), t.PurgingConnected, t.ShutterExists}
			if err := f.SetSheetRow(tubeSheet, "A"+strconv.Itoa(tubeRow), &row); err != nil {
				return nil, fmt.Errorf("failed to write tube row: %w", err)
			}
			tubeRow++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf, nil
}
