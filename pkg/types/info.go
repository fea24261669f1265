package types

// DeviceInfo is a snapshot of a device's live telemetry. Exactly one of
// Charger or Meter is set, matching Family.
type DeviceInfo struct {
	Family  DeviceFamily `json:"family"`
	Charger *ChargerInfo `json:"charger,omitempty"`
	Meter   *MeterInfo   `json:"meter,omitempty"`
}

// ChargerInfo is the live status of a charger.
type ChargerInfo struct {
	State ChargingState `json:"state"`

	SessionEnergy float64 `json:"sessionEnergy"` // kWh
	ChargingTime  int     `json:"chargingTime"`  // seconds
	InstantPower  float64 `json:"instantPower"`  // W

	CurrentL1 float64 `json:"currentL1"`
	CurrentL2 float64 `json:"currentL2"`
	CurrentL3 float64 `json:"currentL3"`
	VoltageL1 float64 `json:"voltageL1"`
	VoltageL2 float64 `json:"voltageL2"`
	VoltageL3 float64 `json:"voltageL3"`

	Temperature float64 `json:"temperature"`

	DynamicCurrent int `json:"dynamicCurrent"`
	InstallCurrent int `json:"installCurrent"`
	UserCurrent    int `json:"userCurrent"`

	// RelayMode is -1 when the firmware has no relay.
	RelayMode int `json:"relayMode"`

	FirmwareVersion    string  `json:"firmwareVersion"`
	RequireAuth        bool    `json:"requireAuth"`
	LEDMaxBrightness   int     `json:"ledMaxBrightness"`
	TotalChargedEnergy float64 `json:"totalChargedEnergy"` // kWh

	HasActiveErrors bool        `json:"hasActiveErrors"`
	Faults          FaultSet    `json:"faults"`
	LimitReason     LimitReason `json:"limitReason"`
}

// FaultSet holds the independent fault flags a charger can raise.
type FaultSet struct {
	StateEActivated  bool `json:"stateEActivated"`
	OverTemp         bool `json:"overTemp"`
	CriticalTemp     bool `json:"criticalTemp"`
	OverCurrent      bool `json:"overCurrent"`
	MeterFault       bool `json:"meterFault"`
	UnderVoltage     bool `json:"underVoltage"`
	OverVoltage      bool `json:"overVoltage"`
	RCDError         bool `json:"rcdError"`
	CPDiodeFailure   bool `json:"cpDiodeFailure"`
	ContactorFailure bool `json:"contactorFailure"`
}

// Any reports whether any fault flag is raised.
func (f FaultSet) Any() bool {
	return f != FaultSet{}
}

// MeterInfo is the live status of an energy meter.
type MeterInfo struct {
	CurrentL1 float64 `json:"currentL1"`
	CurrentL2 float64 `json:"currentL2"`
	CurrentL3 float64 `json:"currentL3"`

	VoltageL1 float64 `json:"voltageL1"`
	VoltageL2 float64 `json:"voltageL2"`
	VoltageL3 float64 `json:"voltageL3"`

	ActivePowerL1 float64 `json:"activePowerL1"`
	ActivePowerL2 float64 `json:"activePowerL2"`
	ActivePowerL3 float64 `json:"activePowerL3"`

	PowerFactorL1 float64 `json:"powerFactorL1"`
	PowerFactorL2 float64 `json:"powerFactorL2"`
	PowerFactorL3 float64 `json:"powerFactorL3"`

	BreakerCurrent  int               `json:"breakerCurrent"`
	LBMode          LoadBalancingMode `json:"lbMode"`
	FirmwareVersion string            `json:"firmwareVersion"`
}

// Counters are the lifetime counters a charger keeps.
type Counters struct {
	TotalChargedEnergy float64 `json:"totalChargedEnergy"` // kWh
}
