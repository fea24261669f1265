package lektrico

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/lektrico/lektrico-go/pkg/log"
	"github.com/lektrico/lektrico-go/pkg/types"
)

// SendCommand POSTs one JSON-RPC command and returns the device's raw
// acknowledgement. It does not interpret the result; see
// types.IsAcknowledgedSuccess.
func (d *Device) SendCommand(ctx context.Context, method string, params any) (types.CommandAck, error) {
	if err := d.configured(); err != nil {
		return types.CommandAck{}, err
	}
	ctx = d.ctx(ctx)
	req := rpcRequest{
		Source: d.source,
		ID:     d.newID(),
		Method: method,
		Params: params,
	}
	log.Ctx(ctx).DebugContext(ctx, "sending lektrico command", slog.String("method", method), slog.Int("id", req.ID))

	raw, err := d.transport.Invoke(ctx, http.MethodPost, "rpc", req)
	if err != nil {
		return types.CommandAck{}, err
	}

	var ack types.CommandAck
	if err := ack.UnmarshalJSON(raw); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to decode lektrico acknowledgement", slog.String("body", string(raw)))
		return types.CommandAck{}, protocolErrorf(err, "invalid acknowledgement")
	}
	if ack.Error != nil {
		log.Ctx(ctx).InfoContext(ctx, "lektrico command rejected",
			slog.String("method", method),
			slog.Int("code", ack.Error.Code),
			slog.String("message", ack.Error.Message),
		)
	}
	return ack, nil
}

func (d *Device) setConfig(ctx context.Context, key string, value any) (types.CommandAck, error) {
	return d.SendCommand(ctx, rpcAppConfigSet, configParams{Key: key, Value: value})
}

// StartCharge starts a charging session.
func (d *Device) StartCharge(ctx context.Context) (types.CommandAck, error) {
	return d.SendCommand(ctx, rpcChargeStart, nil)
}

// StopCharge stops the current charging session.
func (d *Device) StopCharge(ctx context.Context) (types.CommandAck, error) {
	return d.SendCommand(ctx, rpcChargeStop, nil)
}

// Reset reboots the device.
func (d *Device) Reset(ctx context.Context) (types.CommandAck, error) {
	return d.SendCommand(ctx, rpcDeviceReset, nil)
}

// SetAuthRequired toggles whether charging needs authentication. The firmware
// stores the inverse as "headless".
func (d *Device) SetAuthRequired(ctx context.Context, required bool) (types.CommandAck, error) {
	return d.setConfig(ctx, "headless", !required)
}

// SetLEDBrightness sets the LED brightness in percent.
func (d *Device) SetLEDBrightness(ctx context.Context, percent int) (types.CommandAck, error) {
	if percent < 0 || percent > 100 {
		return types.CommandAck{}, validationErrorf("led brightness", "%d not in [0,100]", percent)
	}
	return d.setConfig(ctx, "led_max_brightness", percent)
}

// SetDynamicCurrentLimit sets the dynamic current limit in amps.
func (d *Device) SetDynamicCurrentLimit(ctx context.Context, amps int) (types.CommandAck, error) {
	if amps < 0 {
		return types.CommandAck{}, validationErrorf("dynamic current", "%d is negative", amps)
	}
	return d.SendCommand(ctx, rpcDynamicCurrentSet, dynamicCurrentParams{DynamicCurrent: amps})
}

// SetUserCurrentLimit sets the user current limit in amps.
func (d *Device) SetUserCurrentLimit(ctx context.Context, amps int) (types.CommandAck, error) {
	if amps < 0 {
		return types.CommandAck{}, validationErrorf("user current", "%d is negative", amps)
	}
	return d.setConfig(ctx, "user_current", amps)
}

// SetLoadBalancingMode sets an energy meter's load balancing mode.
func (d *Device) SetLoadBalancingMode(ctx context.Context, mode types.LoadBalancingMode) (types.CommandAck, error) {
	if !mode.Valid() {
		return types.CommandAck{}, validationErrorf("load balancing mode", "unknown mode %d", int(mode))
	}
	return d.setConfig(ctx, "load_balancing_mode", int(mode))
}

// SetLocked locks or unlocks the charger.
func (d *Device) SetLocked(ctx context.Context, locked bool) (types.CommandAck, error) {
	return d.setConfig(ctx, "charger_locked", locked)
}

// SetRelayMode sets the dynamic current together with the relay mode on
// firmware that has a relay.
func (d *Device) SetRelayMode(ctx context.Context, dynamicCurrent, mode int) (types.CommandAck, error) {
	if dynamicCurrent < 0 {
		return types.CommandAck{}, validationErrorf("dynamic current", "%d is negative", dynamicCurrent)
	}
	return d.SendCommand(ctx, rpcRelayModeSet, dynamicCurrentParams{
		DynamicCurrent: dynamicCurrent,
		RelayMode:      &mode,
	})
}
