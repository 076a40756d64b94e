package enums

import "fmt"

// MachineStatus reflects whether a machine can accept orders.
type MachineStatus string

const (
	MachineStatusActive      MachineStatus = "active"
	MachineStatusMaintenance MachineStatus = "maintenance"
	MachineStatusInactive    MachineStatus = "inactive"
)

var validMachineStatuses = []MachineStatus{
	MachineStatusActive,
	MachineStatusMaintenance,
	MachineStatusInactive,
}

// String implements fmt.Stringer.
func (m MachineStatus) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MachineStatus.
func (m MachineStatus) IsValid() bool {
	for _, candidate := range validMachineStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMachineStatus converts raw input into a MachineStatus.
func ParseMachineStatus(value string) (MachineStatus, error) {
	for _, candidate := range validMachineStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid machine status %q", value)
}
