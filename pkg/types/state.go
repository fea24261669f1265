package types

import "fmt"

// ChargingStateKind enumerates the charging session states a charger reports.
type ChargingStateKind int

const (
	StateUnknown ChargingStateKind = iota
	StateAvailable
	StateConnected
	StateConnectedNeedAuth
	StateConnectedPaused
	StateCharging
	StateError
	StateUpdatingFirmware
)

var stateKindNames = map[ChargingStateKind]string{
	StateAvailable:         "Available",
	StateConnected:         "Connected",
	StateConnectedNeedAuth: "Connected,NeedAuth",
	StateConnectedPaused:   "Connected,Paused",
	StateCharging:          "Charging",
	StateError:             "Error",
	StateUpdatingFirmware:  "Updating firmware",
}

// stateCodes is the wire code table. C and D are both charging (D means
// ventilation was requested), E and F are both error states.
var stateCodes = map[string]ChargingStateKind{
	"A":       StateAvailable,
	"B":       StateConnected,
	"B_AUTH":  StateConnectedNeedAuth,
	"B_PAUSE": StateConnectedPaused,
	"C":       StateCharging,
	"D":       StateCharging,
	"E":       StateError,
	"F":       StateError,
	"OTA":     StateUpdatingFirmware,
}

// ChargingState is a decoded charger state. Raw always holds the code the
// device sent so unrecognized states are never lost.
type ChargingState struct {
	Kind ChargingStateKind
	Raw  string
}

// ParseChargingState decodes a raw state code. It never fails: unrecognized
// codes yield StateUnknown with Raw set.
func ParseChargingState(raw string) ChargingState {
	return ChargingState{
		Kind: stateCodes[raw],
		Raw:  raw,
	}
}

// Known reports whether the state code was recognized.
func (s ChargingState) Known() bool {
	return s.Kind != StateUnknown
}

// String returns a readable state name, or the raw code if it is unknown.
func (s ChargingState) String() string {
	if name, ok := stateKindNames[s.Kind]; ok {
		return name
	}
	return s.Raw
}

// MarshalText implements encoding.TextMarshaler. The raw code is written so
// C and D stay distinct; use String for a readable name.
func (s ChargingState) MarshalText() ([]byte, error) {
	return []byte(s.Raw), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ChargingState) UnmarshalText(b []byte) error {
	*s = ParseChargingState(string(b))
	return nil
}

// LimitReason explains which limit currently caps the charging current.
type LimitReason int

const (
	LimitReasonNoLimit LimitReason = iota
	LimitReasonInstallationCurrent
	LimitReasonUserLimit
	LimitReasonDynamicLimit
	LimitReasonSchedule
	LimitReasonEnergyMeterOffline
	LimitReasonEnergyMeter
	LimitReasonOCPP
)

// limitReasonLabels is indexed by the value the device reports; order matters.
var limitReasonLabels = []string{
	"No limit",
	"Installation current",
	"User limit",
	"Dynamic limit",
	"Schedule",
	"Em offline",
	"Em",
	"Ocpp",
}

// LimitReasonFromIndex decodes the reason index sent by the charger. An index
// outside the table is an error.
func LimitReasonFromIndex(i int) (LimitReason, error) {
	if i < 0 || i >= len(limitReasonLabels) {
		return 0, fmt.Errorf("current limit reason %d out of range [0,%d]", i, len(limitReasonLabels)-1)
	}
	return LimitReason(i), nil
}

func (r LimitReason) String() string {
	if r < 0 || int(r) >= len(limitReasonLabels) {
		return fmt.Sprintf("LimitReason(%d)", int(r))
	}
	return limitReasonLabels[r]
}

// MarshalText implements encoding.TextMarshaler.
func (r LimitReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *LimitReason) UnmarshalText(b []byte) error {
	for i, label := range limitReasonLabels {
		if label == string(b) {
			*r = LimitReason(i)
			return nil
		}
	}
	return fmt.Errorf("unknown current limit reason %q", b)
}

// LoadBalancingMode is the energy meter's load balancing strategy.
type LoadBalancingMode int

const (
	LoadBalancingOff LoadBalancingMode = iota
	LoadBalancingPower
	LoadBalancingHybrid
	LoadBalancingGreen
)

// Valid reports whether m is a mode the device understands.
func (m LoadBalancingMode) Valid() bool {
	return m >= LoadBalancingOff && m <= LoadBalancingGreen
}

func (m LoadBalancingMode) String() string {
	switch m {
	case LoadBalancingOff:
		return "Off"
	case LoadBalancingPower:
		return "Power"
	case LoadBalancingHybrid:
		return "Hybrid"
	case LoadBalancingGreen:
		return "Green"
	default:
		return fmt.Sprintf("LoadBalancingMode(%d)", int(m))
	}
}
