package models

import (
	"time"

	"gorm.io/gorm"
)

// Machine represents an X-ray machine in the fleet.
type Machine struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	Name           string        `json:"name" gorm:"type:varchar(100);not null;unique;index"`
	Model          ModelType     `json:"model" gorm:"type:varchar(50);not null"`
	Status         MachineStatus `json:"status" gorm:"type:varchar(50);not null;index"`
	PlcVersion     string        `json:"plcVersion" gorm:"type:varchar(100);not null"`
	AcsVersion     string        `json:"acsVersion" gorm:"type:varchar(100);not null"`
	TubesNumber    int           `json:"tubesNumber" gorm:"not null"`
	Owner          string        `json:"owner" gorm:"type:varchar(200);not null"`
	TeamviewerName string        `json:"teamviewerName" gorm:"type:varchar(200);not null"`
	LocationID     uint          `json:"locationId" gorm:"not null;index"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      *time.Time    `json:"updatedAt" gorm:"autoUpdateTime:false"`

	// Relationships
	Location Location `json:"location,omitempty" gorm:"foreignKey:LocationID;references:ID;constraint:OnDelete:RESTRICT"`
	Tubes    []Tube   `json:"tubes,omitempty" gorm:"foreignKey:MachineID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Machine model
func (Machine) TableName() string {
	return "machines"
}

// BeforeUpdate stamps UpdatedAt on every modification. Creation leaves it
// null, matching the audit semantics of the dashboard.
func (m *Machine) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now().UTC()
	m.UpdatedAt = &now
	return nil
}

// MachineDto is the machine shape at the API boundary.
type MachineDto struct {
	ID             uint          `json:"id"`
	Name           string        `json:"name"`
	Model          ModelType     `json:"model"`
	Status         MachineStatus `json:"status"`
	PlcVersion     string        `json:"plcVersion"`
	AcsVersion     string        `json:"acsVersion"`
	TubesNumber    int           `json:"tubesNumber"`
	Owner          string        `json:"owner"`
	TeamviewerName string        `json:"teamviewerName"`
	Location       LocationDto   `json:"location"`
	Tubes          []TubeDto     `json:"tubes"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      *time.Time    `json:"updatedAt,omitempty"`
}

// CreateMachineRequest is the request to create a machine with its tubes.
type CreateMachineRequest struct {
	Name           string        `json:"name" binding:"required,max=100"`
	Model          ModelType     `json:"model" binding:"required"`
	Status         MachineStatus `json:"status" binding:"required"`
	PlcVersion     string        `json:"plcVersion" binding:"required"`
	AcsVersion     string        `json:"acsVersion" binding:"required"`
	TubesNumber    int           `json:"tubesNumber" binding:"required,min=1"`
	Owner          string        `json:"owner" binding:"required"`
	TeamviewerName string        `json:"teamviewerName" binding:"required"`
	Location       LocationDto   `json:"location" binding:"required"`
	Tubes          []TubeDto     `json:"tubes" binding:"required"`
}

// UpdateMachineRequest is the request to update a machine. Every field is
// optional; only supplied fields change, so PUT and PATCH share it.
type UpdateMachineRequest struct {
	Name           *string        `json:"name,omitempty"`
	Model          *ModelType     `json:"model,omitempty"`
	Status         *MachineStatus `json:"status,omitempty"`
	PlcVersion     *string        `json:"plcVersion,omitempty"`
	AcsVersion     *string        `json:"acsVersion,omitempty"`
	TubesNumber    *int           `json:"tubesNumber,omitempty"`
	Owner          *string        `json:"owner,omitempty"`
	TeamviewerName *string        `json:"teamviewerName,omitempty"`
	Location       *LocationDto   `json:"location,omitempty"`
	Tubes          *[]TubeDto     `json:"tubes,omitempty"`
}
