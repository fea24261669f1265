package lektrico

import "encoding/json"

// RPC methods exposed by the device firmware. Chargers use lower case names,
// energy meters capitalize theirs.
const (
	rpcChargerInfo    = "charger_info.get"
	rpcDynamicCurrent = "dynamic_current.get"
	rpcAppConfig      = "app_config.get"
	rpcCounters       = "counters_config.get"
	rpcSwVersion      = "sw_version.get"
	rpcActiveErrors   = "active_errors.get"
	rpcChargerConfig  = "charger_config.get"

	rpcMeterInfo      = "Meter_info.Get"
	rpcMeterAppConfig = "App_config.Get"
	rpcMeterSwVersion = "Sw_version.Get"
	rpcMeterConfig    = "M2w_config.Get"

	rpcDeviceID = "Device_id.Get"

	rpcChargeStart       = "charge.start"
	rpcChargeStop        = "charge.stop"
	rpcDeviceReset       = "device.reset"
	rpcAppConfigSet      = "app_config.set"
	rpcDynamicCurrentSet = "dynamic_current.set"
	rpcRelayModeSet      = "dynamic_current.Set"
)

// rpcRequest is the envelope POSTed for every control command.
type rpcRequest struct {
	Source string `json:"src"`
	ID     int    `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type configParams struct {
	Key   string `json:"config_key"`
	Value any    `json:"config_value"`
}

type dynamicCurrentParams struct {
	DynamicCurrent int  `json:"dynamic_current"`
	RelayMode      *int `json:"relay_mode,omitempty"`
}

// faultFields are the keys of active_errors.get.
var faultFields = []string{
	"state_e_activated",
	"overtemp",
	"critical_temp",
	"overcurrent",
	"meter_fault",
	"undervoltage_error",
	"overvoltage_error",
	"rcd_error",
	"cp_diode_failure",
	"contactor_failure",
}

// noFaults stands in for active_errors.get when the charger reports no
// active errors.
func noFaults() payload {
	p := make(payload, len(faultFields))
	for _, f := range faultFields {
		p[f] = boolJSON(false)
	}
	return p
}

// chargerCompat backfills fields older charger firmware does not send.
var chargerCompat = []compatRule{
	{field: "state_e_activated", from: "state_machine_e_activated"},
	{field: "relay_mode", def: json.RawMessage("-1")},
	{field: "current_limit_reason", def: json.RawMessage("0")},
}

var chargerRequired = append([]string{
	"extended_charger_state",
	"session_energy",
	"charging_time",
	"instant_power",
	"currents",
	"voltages",
	"temperature",
	"dynamic_current",
	"install_current",
	"user_current",
	"relay_mode",
	"headless",
	"led_max_brightness",
	"total_charged_energy",
	"fw_version",
	"has_active_errors",
	"current_limit_reason",
}, faultFields...)

type chargerWire struct {
	ExtendedChargerState string    `json:"extended_charger_state"`
	SessionEnergy        float64   `json:"session_energy"`
	ChargingTime         int       `json:"charging_time"`
	InstantPower         float64   `json:"instant_power"`
	Currents             []float64 `json:"currents"`
	Voltages             []float64 `json:"voltages"`
	Temperature          float64   `json:"temperature"`
	DynamicCurrent       int       `json:"dynamic_current"`
	InstallCurrent       int       `json:"install_current"`
	UserCurrent          int       `json:"user_current"`
	RelayMode            int       `json:"relay_mode"`
	Headless             bool      `json:"headless"`
	LEDMaxBrightness     int       `json:"led_max_brightness"`
	TotalChargedEnergy   float64   `json:"total_charged_energy"`
	FWVersion            string    `json:"fw_version"`
	HasActiveErrors      bool      `json:"has_active_errors"`
	CurrentLimitReason   int       `json:"current_limit_reason"`

	StateEActivated   bool `json:"state_e_activated"`
	Overtemp          bool `json:"overtemp"`
	CriticalTemp      bool `json:"critical_temp"`
	Overcurrent       bool `json:"overcurrent"`
	MeterFault        bool `json:"meter_fault"`
	UndervoltageError bool `json:"undervoltage_error"`
	OvervoltageError  bool `json:"overvoltage_error"`
	RCDError          bool `json:"rcd_error"`
	CPDiodeFailure    bool `json:"cp_diode_failure"`
	ContactorFailure  bool `json:"contactor_failure"`
}

var meterRequired = []string{
	"current",
	"voltage",
	"active_p",
	"power_factor",
	"breaker_rating",
	"load_balancing_mode",
	"fw_version",
}

type meterWire struct {
	Current           []float64 `json:"current"`
	Voltage           []float64 `json:"voltage"`
	ActivePower       []float64 `json:"active_p"`
	PowerFactor       []float64 `json:"power_factor"`
	BreakerRating     int       `json:"breaker_rating"`
	LoadBalancingMode int       `json:"load_balancing_mode"`
	FWVersion         string    `json:"fw_version"`
}

type deviceIDWire struct {
	DeviceID string `json:"device_id"`
}

type settingsWire struct {
	SerialNumber  int    `json:"serial_number"`
	BoardRevision string `json:"board_revision"`
}

// calibrationRequired are the charger_config.get fields every firmware that
// reports calibration sends. current_gain, calibration_temperature and
// rcd_enabled came later and read as zero when absent.
var calibrationRequired = []string{
	"overtemp_threshold",
	"critical_temp_threshold",
	"voltage_gain",
	"temp_offset",
}

type calibrationWire struct {
	OvertempThreshold      int     `json:"overtemp_threshold"`
	CriticalTempThreshold  int     `json:"critical_temp_threshold"`
	VoltageGain            float64 `json:"voltage_gain"`
	CurrentGain            float64 `json:"current_gain"`
	CalibrationTemperature float64 `json:"calibration_temperature"`
	RCDEnabled             bool    `json:"rcd_enabled"`
	TempOffset             float64 `json:"temp_offset"`
}

type swVersionWire struct {
	FWVersion string `json:"fw_version"`
}

type countersWire struct {
	TotalChargedEnergy float64 `json:"total_charged_energy"`
}
