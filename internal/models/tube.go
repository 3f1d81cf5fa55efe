package models

// Tube is a physical sub-unit of a machine. Tubes live and die with their
// machine (cascade delete).
type Tube struct {
	ID               uint     `json:"id" gorm:"primaryKey"`
	TubeIndex        int      `json:"tubeIndex" gorm:"not null;index:idx_tubes_machine_tube_index"`
	TubeType         TubeType `json:"tubeType" gorm:"type:varchar(50);not null"`
	PurgingConnected bool     `json:"purgingConnected"`
	ShutterExists    bool     `json:"shutterExists"`
	MachineID        uint     `json:"machineId" gorm:"not null;index:idx_tubes_machine_tube_index"`
}

// TableName specifies the table name for the Tube model
func (Tube) TableName() string {
	return "tubes"
}

// TubeDto is the tube shape at the API boundary.
type TubeDto struct {
	TubeIndex        int      `json:"tubeIndex"`
	TubeType         TubeType `json:"tubeType" binding:"required"`
	PurgingConnected bool     `json:"purgingConnected"`
	ShutterExists    bool     `json:"shutterExists"`
}
