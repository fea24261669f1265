package types

import (
	"fmt"
	"strings"
)

// DeviceFamily is the product variant of a device. It decides which RPC
// endpoints apply and which record shape a read produces.
type DeviceFamily int

const (
	// FamilyAuto asks the client to detect the family before reading.
	FamilyAuto DeviceFamily = iota
	ChargerSinglePhase
	ChargerThreePhase
	EnergyMeterSinglePhase
	EnergyMeterThreePhase
)

var familyTags = map[DeviceFamily]string{
	ChargerSinglePhase:     "1p7k",
	ChargerThreePhase:      "3p22k",
	EnergyMeterSinglePhase: "em",
	EnergyMeterThreePhase:  "3em",
}

// familyPrefixes maps the prefix of a device identifier to its family. "m2w"
// is how energy meters name themselves in their identity string.
var familyPrefixes = map[string]DeviceFamily{
	"1p7k":  ChargerSinglePhase,
	"3p22k": ChargerThreePhase,
	"em":    EnergyMeterSinglePhase,
	"m2w":   EnergyMeterSinglePhase,
	"3em":   EnergyMeterThreePhase,
}

// String returns the family tag used by the devices, e.g. "3p22k".
func (f DeviceFamily) String() string {
	if f == FamilyAuto {
		return "auto"
	}
	if tag, ok := familyTags[f]; ok {
		return tag
	}
	return fmt.Sprintf("DeviceFamily(%d)", int(f))
}

// Valid reports whether f names a concrete family.
func (f DeviceFamily) Valid() bool {
	_, ok := familyTags[f]
	return ok
}

// IsCharger reports whether f is one of the charger families.
func (f DeviceFamily) IsCharger() bool {
	return f == ChargerSinglePhase || f == ChargerThreePhase
}

// IsMeter reports whether f is one of the energy meter families.
func (f DeviceFamily) IsMeter() bool {
	return f == EnergyMeterSinglePhase || f == EnergyMeterThreePhase
}

// MarshalText implements encoding.TextMarshaler.
func (f DeviceFamily) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *DeviceFamily) UnmarshalText(b []byte) error {
	fam, ok := FamilyFromPrefix(string(b))
	if !ok {
		return fmt.Errorf("unknown device family: %q", string(b))
	}
	*f = fam
	return nil
}

// FamilyFromPrefix looks up the family for a device identifier prefix. The
// lookup is case-insensitive.
func FamilyFromPrefix(prefix string) (DeviceFamily, bool) {
	f, ok := familyPrefixes[strings.ToLower(prefix)]
	return f, ok
}
