// Package lektricotest provides a fake Lektrico device for tests.
package lektricotest

import (
	"encoding/json"
	"maps"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/NYTimes/gziphandler"
)

// Command is a control command the fake device received.
type Command struct {
	Source string          `json:"src"`
	ID     int             `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Device serves canned responses for GET /rpc/<method> and acknowledges
// POST /rpc commands. Responses are gzip compressed when the client accepts
// it, like the real firmware's web server.
type Device struct {
	mu        sync.Mutex
	id        string
	responses map[string]any
	acks      map[string]any
	calls     []string
	commands  []Command
}

// New returns a fake device identifying as id with no responses.
func New(id string) *Device {
	return &Device{
		id:        id,
		responses: make(map[string]any),
		acks:      make(map[string]any),
	}
}

// NewCharger returns a fake single phase charger with no active errors.
func NewCharger() *Device {
	d := New("1p7k_500006")
	d.Set("Device_id.Get", map[string]any{"device_id": "1p7k_500006"})
	d.Set("charger_info.get", map[string]any{
		"extended_charger_state": "A",
		"session_energy":         0.0,
		"charging_time":          0,
		"instant_power":          0.0,
		"currents":               []float64{0.015, 0.006, 0.011},
		"voltages":               []float64{238.53, 238.521, 236.852},
		"temperature":            39.8,
		"total_charged_energy":   18.0,
		"has_active_errors":      false,
		"fw_version":             "1.45_beta",
		"current_limit_reason":   1,
	})
	d.Set("app_config.get", map[string]any{
		"headless":           false,
		"led_max_brightness": 100,
		"install_current":    6,
		"user_current":       32,
		"relay_mode":         0,
		// stale value, dynamic_current.get is authoritative
		"dynamic_current": 10,
	})
	d.Set("dynamic_current.get", map[string]any{"dynamic_current": 32})
	d.Set("active_errors.get", map[string]any{
		"state_e_activated":  false,
		"overtemp":           false,
		"critical_temp":      false,
		"overcurrent":        false,
		"meter_fault":        false,
		"undervoltage_error": false,
		"overvoltage_error":  false,
		"rcd_error":          false,
		"cp_diode_failure":   false,
		"contactor_failure":  false,
	})
	d.Set("charger_config.get", map[string]any{
		"overtemp_threshold":      65,
		"critical_temp_threshold": 75,
		"voltage_gain":            1.0,
		"current_gain":            1.0,
		"calibration_temperature": 25.0,
		"rcd_enabled":             false,
		"serial_number":           500006,
		"board_revision":          "B",
		"temp_offset":             0.0,
	})
	d.Set("sw_version.get", map[string]any{"fw_version": "1.45_beta"})
	d.Set("counters_config.get", map[string]any{"total_charged_energy": 18.0})
	return d
}

// NewMeter returns a fake single phase energy meter.
func NewMeter() *Device {
	d := New("m2w_800000")
	d.Set("Device_id.Get", map[string]any{"device_id": "m2w_800000"})
	d.Set("Meter_info.Get", map[string]any{
		"current":      []float64{0.015, 0.006, 0.011},
		"voltage":      []float64{238.53, 238.521, 236.852},
		"active_p":     []float64{1.5, 2.5, 3.5},
		"power_factor": []float64{0.9, 0.8, 0.7},
	})
	d.Set("App_config.Get", map[string]any{
		"breaker_rating":      32,
		"load_balancing_mode": 0,
	})
	d.Set("Sw_version.Get", map[string]any{"fw_version": "1.15"})
	d.Set("M2w_config.Get", map[string]any{
		"serial_number":  800000,
		"board_revision": "A",
	})
	return d
}

// Set replaces the response for an RPC method. body is encoded as JSON.
func (d *Device) Set(method string, body any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responses[method] = body
}

// Update merges fields into an existing object response.
func (d *Device) Update(method string, fields map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cur, _ := d.responses[method].(map[string]any)
	next := make(map[string]any, len(cur)+len(fields))
	maps.Copy(next, cur)
	maps.Copy(next, fields)
	d.responses[method] = next
}

// Remove deletes fields from an existing object response.
func (d *Device) Remove(method string, fields ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cur, _ := d.responses[method].(map[string]any)
	next := maps.Clone(cur)
	for _, f := range fields {
		delete(next, f)
	}
	d.responses[method] = next
}

// Acknowledge replaces the acknowledgement body for a command method. The id,
// src and dst fields are filled in when ack is a map without them.
func (d *Device) Acknowledge(method string, ack any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acks[method] = ack
}

// Calls returns the RPC methods requested so far, in order.
func (d *Device) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Commands returns the commands received so far, in order.
func (d *Device) Commands() []Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Command(nil), d.commands...)
}

// Handler returns the device's HTTP handler. Every response is eligible for
// compression regardless of size.
func (d *Device) Handler() http.Handler {
	wrap, err := gziphandler.GzipHandlerWithOpts(gziphandler.MinSize(0))
	if err != nil {
		panic(err)
	}
	return wrap(http.HandlerFunc(d.serveHTTP))
}

// NewServer starts an httptest server for d that is closed when the test
// ends.
func (d *Device) NewServer(tb testing.TB) *httptest.Server {
	ts := httptest.NewServer(d.Handler())
	tb.Cleanup(ts.Close)
	return ts
}

func (d *Device) serveHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/rpc/"):
		d.serveGet(w, strings.TrimPrefix(r.URL.Path, "/rpc/"))
	case r.Method == http.MethodPost && r.URL.Path == "/rpc":
		d.serveCommand(w, r)
	default:
		http.Error(w, "not found: "+r.URL.Path, http.StatusNotFound)
	}
}

func (d *Device) serveGet(w http.ResponseWriter, method string) {
	d.mu.Lock()
	d.calls = append(d.calls, method)
	body, ok := d.responses[method]
	d.mu.Unlock()

	if !ok {
		http.Error(w, "unknown method: "+method, http.StatusNotFound)
		return
	}
	writeJSON(w, body)
}

func (d *Device) serveCommand(w http.ResponseWriter, r *http.Request) {
	var cmd Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d.mu.Lock()
	d.calls = append(d.calls, cmd.Method)
	d.commands = append(d.commands, cmd)
	ack, ok := d.acks[cmd.Method]
	d.mu.Unlock()

	if !ok {
		ack = map[string]any{"result": true}
	}
	if m, isMap := ack.(map[string]any); isMap {
		out := map[string]any{"id": cmd.ID, "src": d.id, "dst": cmd.Source}
		maps.Copy(out, m)
		ack = out
	}
	writeJSON(w, ack)
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
