package lektrico

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lektrico/lektrico-go/pkg/lektrico/lektricotest"
	"github.com/lektrico/lektrico-go/pkg/types"
)

func TestNew(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		d, err := New("192.168.1.10")
		require.NoError(t, err)
		defer d.Close()
		assert.Equal(t, "192.168.1.10", d.Host())
		assert.Equal(t, DefaultSource, d.source)
		ht, ok := d.transport.(*HTTPTransport)
		require.True(t, ok)
		assert.Equal(t, DefaultTimeout, ht.timeout)
		assert.Equal(t, "http://192.168.1.10", ht.baseURL)
	})

	t.Run("Invalid", func(t *testing.T) {
		tests := map[string]struct {
			host string
			opts []Option
		}{
			"NoHost":      {host: ""},
			"ZeroTimeout": {host: "h", opts: []Option{WithTimeout(0)}},
			"NoSource":    {host: "h", opts: []Option{WithSource("")}},
			"NoIDs":       {host: "h", opts: []Option{WithIDGenerator(nil)}},
			"TransportNoHost": {
				host: "",
				opts: []Option{WithTransport(&fakeTransport{})},
			},
		}
		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				_, err := New(tt.host, tt.opts...)
				assert.ErrorIs(t, err, ErrValidation)
			})
		}
	})

	t.Run("Options", func(t *testing.T) {
		d, err := New("h", WithTimeout(time.Second), WithSource("HASS"))
		require.NoError(t, err)
		assert.Equal(t, "HASS", d.source)
		assert.Equal(t, time.Second, d.transport.(*HTTPTransport).timeout)
	})
}

func TestRandomID(t *testing.T) {
	for i := 0; i < 1000; i++ {
		id := RandomID()
		assert.GreaterOrEqual(t, id, 10_000_000)
		assert.Less(t, id, 100_000_000)
	}
}

func TestDetectFamily(t *testing.T) {
	tests := []struct {
		id   string
		want types.DeviceFamily
	}{
		{"1p7k_500006", types.ChargerSinglePhase},
		{"3p22k_500123", types.ChargerThreePhase},
		{"m2w_800000", types.EnergyMeterSinglePhase},
		{"em_800000", types.EnergyMeterSinglePhase},
		{"3em_810000", types.EnergyMeterThreePhase},
		// only the first separator splits
		{"3p22k_500_123", types.ChargerThreePhase},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			fake := lektricotest.New(tt.id)
			fake.Set("Device_id.Get", map[string]any{"device_id": tt.id})
			d := newTestDevice(t, fake)

			got, err := d.DetectFamily(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{"Device_id.Get"}, fake.Calls())
		})
	}

	t.Run("Malformed", func(t *testing.T) {
		fake := lektricotest.New("x")
		fake.Set("Device_id.Get", map[string]any{"device_id": "1p7k500006"})
		d := newTestDevice(t, fake)

		_, err := d.DetectFamily(context.Background())
		var pe *ProtocolError
		require.True(t, errors.As(err, &pe))
		assert.Contains(t, pe.Reason, "malformed identifier")
		assert.Contains(t, pe.Reason, "1p7k500006")
	})

	t.Run("UnknownFamily", func(t *testing.T) {
		fake := lektricotest.New("x")
		fake.Set("Device_id.Get", map[string]any{"device_id": "toaster_1"})
		d := newTestDevice(t, fake)

		_, err := d.DetectFamily(context.Background())
		var pe *ProtocolError
		require.True(t, errors.As(err, &pe))
		assert.Contains(t, pe.Reason, "unknown device family")
		assert.Contains(t, pe.Reason, "toaster")
	})

	t.Run("MissingField", func(t *testing.T) {
		fake := lektricotest.New("x")
		fake.Set("Device_id.Get", map[string]any{"id": "1p7k_1"})
		d := newTestDevice(t, fake)

		_, err := d.DetectFamily(context.Background())
		assert.ErrorIs(t, err, ErrProtocol)
	})
}

func TestSettings(t *testing.T) {
	t.Run("Charger", func(t *testing.T) {
		fake := lektricotest.NewCharger()
		d := newTestDevice(t, fake)

		s, err := d.Settings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.ChargerSinglePhase, s.Family)
		assert.Equal(t, 500006, s.SerialNumber)
		assert.Equal(t, "B", s.BoardRevision)
		require.NotNil(t, s.Charger)
		assert.Equal(t, 65, s.Charger.OverTempThreshold)
		assert.Equal(t, 75, s.Charger.CriticalTempThreshold)
		assert.Equal(t, 1.0, s.Charger.VoltageGain)
		assert.Equal(t, 1.0, s.Charger.CurrentGain)
		assert.Equal(t, 25.0, s.Charger.CalibrationTemperature)
		assert.False(t, s.Charger.RCDEnabled)
		assert.Equal(t, []string{"Device_id.Get", "charger_config.get"}, fake.Calls())
	})

	t.Run("ThreePhaseRoundTrip", func(t *testing.T) {
		fake := lektricotest.NewCharger()
		fake.Set("Device_id.Get", map[string]any{"device_id": "3p22k_500123"})
		fake.Update("charger_config.get", map[string]any{"serial_number": 500123})
		d := newTestDevice(t, fake)

		family, err := d.DetectFamily(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.ChargerThreePhase, family)

		s, err := d.Settings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, family, s.Family)
		assert.Equal(t, "3p22k", s.Family.String())
		assert.Equal(t, 500123, s.SerialNumber)

		// detection is repeated on every Settings call
		assert.Equal(t, []string{"Device_id.Get", "Device_id.Get", "charger_config.get"}, fake.Calls())
	})

	t.Run("ChargerWithoutCalibration", func(t *testing.T) {
		fake := lektricotest.NewCharger()
		fake.Set("charger_config.get", map[string]any{"serial_number": 500000, "board_revision": "E"})
		d := newTestDevice(t, fake)

		s, err := d.Settings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 500000, s.SerialNumber)
		assert.Nil(t, s.Charger)
	})

	t.Run("ChargerPartialCalibration", func(t *testing.T) {
		fake := lektricotest.NewCharger()
		fake.Remove("charger_config.get", "voltage_gain")
		d := newTestDevice(t, fake)

		_, err := d.Settings(context.Background())
		assert.ErrorIs(t, err, ErrProtocol)
	})

	t.Run("ChargerLegacyOptionalFields", func(t *testing.T) {
		fake := lektricotest.NewCharger()
		fake.Remove("charger_config.get", "current_gain", "calibration_temperature", "rcd_enabled")
		d := newTestDevice(t, fake)

		s, err := d.Settings(context.Background())
		require.NoError(t, err)
		require.NotNil(t, s.Charger)
		assert.Zero(t, s.Charger.CurrentGain)
	})

	t.Run("Meter", func(t *testing.T) {
		fake := lektricotest.NewMeter()
		d := newTestDevice(t, fake)

		s, err := d.Settings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.EnergyMeterSinglePhase, s.Family)
		assert.Equal(t, 800000, s.SerialNumber)
		assert.Equal(t, "A", s.BoardRevision)
		assert.Nil(t, s.Charger)
		assert.Equal(t, []string{"Device_id.Get", "M2w_config.Get"}, fake.Calls())
	})

	t.Run("MissingSerial", func(t *testing.T) {
		fake := lektricotest.NewMeter()
		fake.Remove("M2w_config.Get", "serial_number")
		d := newTestDevice(t, fake)

		_, err := d.Settings(context.Background())
		assert.ErrorIs(t, err, ErrProtocol)
	})
}

func TestFirmwareVersion(t *testing.T) {
	t.Run("Charger", func(t *testing.T) {
		fake := lektricotest.NewCharger()
		d := newTestDevice(t, fake)
		v, err := d.FirmwareVersion(context.Background(), types.ChargerSinglePhase)
		require.NoError(t, err)
		assert.Equal(t, "1.45_beta", v)
		assert.Equal(t, []string{"sw_version.get"}, fake.Calls())
	})

	t.Run("MeterAuto", func(t *testing.T) {
		fake := lektricotest.NewMeter()
		d := newTestDevice(t, fake)
		v, err := d.FirmwareVersion(context.Background(), types.FamilyAuto)
		require.NoError(t, err)
		assert.Equal(t, "1.15", v)
		assert.Equal(t, []string{"Device_id.Get", "Sw_version.Get"}, fake.Calls())
	})

	t.Run("InvalidFamily", func(t *testing.T) {
		fake := lektricotest.NewCharger()
		d := newTestDevice(t, fake)
		_, err := d.FirmwareVersion(context.Background(), types.DeviceFamily(99))
		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, fake.Calls())
	})
}

func TestCounters(t *testing.T) {
	fake := lektricotest.NewCharger()
	d := newTestDevice(t, fake)

	c, err := d.Counters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 18.0, c.TotalChargedEnergy)

	fake.Set("counters_config.get", map[string]any{})
	_, err = d.Counters(context.Background())
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestUnconfiguredDevice(t *testing.T) {
	// what Configured hands out before lflag.Configure runs
	d := &Device{}
	ctx := context.Background()

	_, err := d.DetectFamily(ctx)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = d.Info(ctx, types.ChargerSinglePhase)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = d.Settings(ctx)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = d.StartCharge(ctx)
	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, d.Close())
}

func TestDeviceClose(t *testing.T) {
	ft := &fakeTransport{}
	d, err := New("h", WithTransport(ft))
	require.NoError(t, err)
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	assert.Equal(t, 2, ft.closed)
}
