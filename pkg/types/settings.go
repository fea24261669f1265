package types

// DeviceSettings is a device's static configuration.
type DeviceSettings struct {
	Family        DeviceFamily `json:"family"`
	SerialNumber  int          `json:"serialNumber"`
	BoardRevision string       `json:"boardRevision"`

	// Charger is only set for charger families.
	Charger *ChargerCalibration `json:"charger,omitempty"`
}

// ChargerCalibration holds a charger's thresholds and calibration values.
type ChargerCalibration struct {
	OverTempThreshold      int     `json:"overTempThreshold"`
	CriticalTempThreshold  int     `json:"criticalTempThreshold"`
	VoltageGain            float64 `json:"voltageGain"`
	CurrentGain            float64 `json:"currentGain"`
	CalibrationTemperature float64 `json:"calibrationTemperature"`
	RCDEnabled             bool    `json:"rcdEnabled"`
	TempOffset             float64 `json:"tempOffset"`
}
