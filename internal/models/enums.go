package models

import (
	"encoding/json"
	"fmt"
)

// MachineStatus is the operational state of a machine. Persisted as a string.
type MachineStatus string

const (
	StatusRunning     MachineStatus = "Running"
	StatusIdle        MachineStatus = "Idle"
	StatusMaintenance MachineStatus = "Maintenance"
	StatusError       MachineStatus = "Error"
)

// ParseMachineStatus converts a wire string into a MachineStatus. Unknown
// values are rejected rather than defaulted, so bad input never silently
// becomes Idle.
func ParseMachineStatus(s string) (MachineStatus, error) {
	switch MachineStatus(s) {
	case StatusRunning, StatusIdle, StatusMaintenance, StatusError:
		return MachineStatus(s), nil
	}
	return "", fmt.Errorf("unknown machine status %q", s)
}

func (s *MachineStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseMachineStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ModelType is the machine model line.
type ModelType string

const (
	ModelOnyx3000 ModelType = "Onyx3000"
	ModelOnyx3200 ModelType = "Onyx3200"
)

func ParseModelType(s string) (ModelType, error) {
	switch ModelType(s) {
	case ModelOnyx3000, ModelOnyx3200:
		return ModelType(s), nil
	}
	return "", fmt.Errorf("unknown machine model %q", s)
}

func (m *ModelType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseModelType(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// TubeType identifies the physical X-ray tube variant.
type TubeType string

const (
	TubePetrick    TubeType = "Petrick"
	TubeMXR        TubeType = "MXR"
	TubeColorsTW   TubeType = "ColorsTW"
	TubeColorsTCu  TubeType = "ColorsTCu"
	TubeColorsTAu  TubeType = "ColorsTAu"
	TubeColorsTMo  TubeType = "ColorsTMo"
	TubeColorsTWMa TubeType = "ColorsTWMa"
)

func ParseTubeType(s string) (TubeType, error) {
	switch TubeType(s) {
	case TubePetrick, TubeMXR, TubeColorsTW, TubeColorsTCu, TubeColorsTAu, TubeColorsTMo, TubeColorsTWMa:
		return TubeType(s), nil
	}
	return "", fmt.Errorf("unknown tube type %q", s)
}

func (t *TubeType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTubeType(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
