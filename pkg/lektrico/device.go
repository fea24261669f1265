package lektrico

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lektrico/lektrico-go/pkg/log"
	"github.com/lektrico/lektrico-go/pkg/types"
)

// DefaultSource is the caller id sent in the src field of commands.
const DefaultSource = "GO"

// IDGenerator returns the correlation id for the next command.
type IDGenerator func() int

// RandomID returns a random 8-digit correlation id.
func RandomID() int {
	return 10_000_000 + rand.IntN(90_000_000)
}

// Device is a client for one Lektrico charger or energy meter. It keeps no
// state between calls besides the transport, and it is safe for concurrent
// use. It does not serialize calls: if the firmware cannot handle concurrent
// requests the caller must.
type Device struct {
	host      string
	transport Transport
	source    string
	newID     IDGenerator
}

type options struct {
	timeout   time.Duration
	client    *http.Client
	source    string
	newID     IDGenerator
	limiter   *rate.Limiter
	metrics   *Metrics
	transport Transport
}

// Option configures a Device.
type Option func(*options)

// WithTimeout bounds each round trip. The default is DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHTTPClient uses c for requests. The device never closes a client it was
// given.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithSource sets the caller id sent with commands.
func WithSource(src string) Option {
	return func(o *options) { o.source = src }
}

// WithIDGenerator replaces RandomID, mostly so tests get stable ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) { o.newID = g }
}

// WithRateLimiter paces requests to the device. Waiting counts against the
// request timeout.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(o *options) { o.limiter = l }
}

// WithMetrics records request metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTransport replaces the HTTP transport entirely. The timeout, client,
// limiter and metrics options are ignored when it is set.
func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}

// New returns a client for the device at host, which may be an IP, a
// hostname, host:port or an http URL.
func New(host string, opts ...Option) (*Device, error) {
	o := options{
		timeout: DefaultTimeout,
		source:  DefaultSource,
		newID:   RandomID,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout <= 0 {
		return nil, validationErrorf("timeout", "must be positive, got %s", o.timeout)
	}
	if o.source == "" {
		return nil, validationErrorf("source", "source is required")
	}
	if o.newID == nil {
		return nil, validationErrorf("id generator", "id generator is required")
	}

	t := o.transport
	if t == nil {
		ht, err := newHTTPTransport(host, o)
		if err != nil {
			return nil, err
		}
		t = ht
	} else if strings.TrimSpace(host) == "" {
		return nil, validationErrorf("host", "host is required")
	}

	return &Device{
		host:      host,
		transport: t,
		source:    o.source,
		newID:     o.newID,
	}, nil
}

// Host returns the host the device was created with.
func (d *Device) Host() string {
	return d.host
}

// Close releases the transport. It is safe to call more than once and should
// be deferred right after New.
func (d *Device) Close() error {
	if d.transport == nil {
		return nil
	}
	return d.transport.Close()
}

// configured fails for a Device that did not come from New, such as the one
// Configured returns before lflag.Configure has run.
func (d *Device) configured() error {
	if d.transport == nil || d.newID == nil {
		return validationErrorf("device", "not configured")
	}
	return nil
}

func (d *Device) ctx(ctx context.Context) context.Context {
	return log.WithDevice(ctx, d.host)
}

// get calls a read-only RPC method and returns its body as a payload.
func (d *Device) get(ctx context.Context, method string) (payload, error) {
	if err := d.configured(); err != nil {
		return nil, err
	}
	raw, err := d.transport.Invoke(ctx, http.MethodGet, "rpc/"+method, nil)
	if err != nil {
		return nil, err
	}
	p, err := decodeObject(raw)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "unexpected lektrico payload", slog.String("method", method), slog.String("body", string(raw)))
		return nil, err
	}
	return p, nil
}

// DetectFamily asks the device for its identifier, "<family>_<serial>", and
// maps the prefix to a family.
func (d *Device) DetectFamily(ctx context.Context) (types.DeviceFamily, error) {
	ctx = d.ctx(ctx)
	p, err := d.get(ctx, rpcDeviceID)
	if err != nil {
		return types.FamilyAuto, err
	}
	if err := p.require("device_id"); err != nil {
		return types.FamilyAuto, err
	}
	var w deviceIDWire
	if err := p.decode(&w); err != nil {
		return types.FamilyAuto, err
	}

	family, err := parseDeviceID(w.DeviceID)
	if err != nil {
		return types.FamilyAuto, err
	}
	log.Ctx(ctx).DebugContext(ctx, "detected lektrico device family", slog.String("id", w.DeviceID), slog.String("family", family.String()))
	return family, nil
}

func parseDeviceID(id string) (types.DeviceFamily, error) {
	prefix, _, ok := strings.Cut(id, "_")
	if !ok {
		return types.FamilyAuto, &ProtocolError{Reason: "malformed identifier " + strconv.Quote(id)}
	}
	family, ok := types.FamilyFromPrefix(prefix)
	if !ok {
		return types.FamilyAuto, &ProtocolError{Reason: "unknown device family " + strconv.Quote(prefix)}
	}
	return family, nil
}

// resolveFamily validates a caller supplied family and detects it when the
// caller passed FamilyAuto.
func (d *Device) resolveFamily(ctx context.Context, family types.DeviceFamily) (types.DeviceFamily, error) {
	if family == types.FamilyAuto {
		return d.DetectFamily(ctx)
	}
	if !family.Valid() {
		return family, validationErrorf("family", "unknown device family %s", family)
	}
	return family, nil
}

// Settings detects the family and reads the device configuration. Detection
// runs on every call.
func (d *Device) Settings(ctx context.Context) (types.DeviceSettings, error) {
	ctx = d.ctx(ctx)
	family, err := d.DetectFamily(ctx)
	if err != nil {
		return types.DeviceSettings{}, err
	}

	method := rpcChargerConfig
	if family.IsMeter() {
		method = rpcMeterConfig
	}
	p, err := d.get(ctx, method)
	if err != nil {
		return types.DeviceSettings{}, err
	}
	return decodeSettings(family, p)
}

func decodeSettings(family types.DeviceFamily, p payload) (types.DeviceSettings, error) {
	if err := p.require("serial_number", "board_revision"); err != nil {
		return types.DeviceSettings{}, err
	}
	var w settingsWire
	if err := p.decode(&w); err != nil {
		return types.DeviceSettings{}, err
	}
	s := types.DeviceSettings{
		Family:        family,
		SerialNumber:  w.SerialNumber,
		BoardRevision: w.BoardRevision,
	}

	// newer charger firmware no longer reports calibration at all
	if !family.IsCharger() || !p.has("overtemp_threshold") {
		return s, nil
	}
	if err := p.require(calibrationRequired...); err != nil {
		return types.DeviceSettings{}, err
	}
	var c calibrationWire
	if err := p.decode(&c); err != nil {
		return types.DeviceSettings{}, err
	}
	s.Charger = &types.ChargerCalibration{
		OverTempThreshold:      c.OvertempThreshold,
		CriticalTempThreshold:  c.CriticalTempThreshold,
		VoltageGain:            c.VoltageGain,
		CurrentGain:            c.CurrentGain,
		CalibrationTemperature: c.CalibrationTemperature,
		RCDEnabled:             c.RCDEnabled,
		TempOffset:             c.TempOffset,
	}
	return s, nil
}

// FirmwareVersion reads just the firmware version.
func (d *Device) FirmwareVersion(ctx context.Context, family types.DeviceFamily) (string, error) {
	ctx = d.ctx(ctx)
	family, err := d.resolveFamily(ctx, family)
	if err != nil {
		return "", err
	}
	method := rpcSwVersion
	if family.IsMeter() {
		method = rpcMeterSwVersion
	}
	p, err := d.get(ctx, method)
	if err != nil {
		return "", err
	}
	if err := p.require("fw_version"); err != nil {
		return "", err
	}
	var w swVersionWire
	if err := p.decode(&w); err != nil {
		return "", err
	}
	return w.FWVersion, nil
}

// Counters reads a charger's lifetime counters.
func (d *Device) Counters(ctx context.Context) (types.Counters, error) {
	ctx = d.ctx(ctx)
	p, err := d.get(ctx, rpcCounters)
	if err != nil {
		return types.Counters{}, err
	}
	if err := p.require("total_charged_energy"); err != nil {
		return types.Counters{}, err
	}
	var w countersWire
	if err := p.decode(&w); err != nil {
		return types.Counters{}, err
	}
	return types.Counters{TotalChargedEnergy: w.TotalChargedEnergy}, nil
}
