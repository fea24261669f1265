package lektrico

import (
	"context"
	"log/slog"

	"github.com/lektrico/lektrico-go/pkg/log"
	"github.com/lektrico/lektrico-go/pkg/types"
)

// Info reads the live status of the device. Passing types.FamilyAuto detects
// the family first; any other value must be a valid family.
func (d *Device) Info(ctx context.Context, family types.DeviceFamily) (types.DeviceInfo, error) {
	ctx = d.ctx(ctx)
	family, err := d.resolveFamily(ctx, family)
	if err != nil {
		return types.DeviceInfo{}, err
	}

	switch {
	case family.IsCharger():
		ci, err := d.chargerInfo(ctx)
		if err != nil {
			return types.DeviceInfo{}, err
		}
		return types.DeviceInfo{Family: family, Charger: &ci}, nil
	case family.IsMeter():
		mi, err := d.meterInfo(ctx)
		if err != nil {
			return types.DeviceInfo{}, err
		}
		return types.DeviceInfo{Family: family, Meter: &mi}, nil
	default:
		return types.DeviceInfo{}, validationErrorf("family", "unknown device family %s", family)
	}
}

// chargerInfo merges charger_info, app_config, active_errors and
// dynamic_current in that order. active_errors is only fetched when the
// charger says it has any.
func (d *Device) chargerInfo(ctx context.Context) (types.ChargerInfo, error) {
	status, err := d.get(ctx, rpcChargerInfo)
	if err != nil {
		return types.ChargerInfo{}, err
	}
	app, err := d.get(ctx, rpcAppConfig)
	if err != nil {
		return types.ChargerInfo{}, err
	}
	merged := mergePayloads(status, app)

	hasErrors, err := merged.boolField("has_active_errors")
	if err != nil {
		return types.ChargerInfo{}, err
	}
	if hasErrors {
		faults, err := d.get(ctx, rpcActiveErrors)
		if err != nil {
			return types.ChargerInfo{}, err
		}
		merged = mergePayloads(merged, faults)
	} else {
		merged = mergePayloads(merged, noFaults())
	}

	dyn, err := d.get(ctx, rpcDynamicCurrent)
	if err != nil {
		return types.ChargerInfo{}, err
	}
	// dynamic_current.get is the only source of truth for the dynamic limit
	merged = mergePayloads(merged.without("dynamic_current"), dyn)

	ci, err := decodeChargerInfo(applyCompat(merged, chargerCompat))
	if err != nil {
		return types.ChargerInfo{}, err
	}

	log.Ctx(ctx).DebugContext(ctx, "lektrico charger info",
		slog.String("state", ci.State.String()),
		slog.Float64("powerW", ci.InstantPower),
		slog.Int("dynamicCurrent", ci.DynamicCurrent),
		slog.String("limitReason", ci.LimitReason.String()),
		slog.Bool("faults", ci.Faults.Any()),
	)
	return ci, nil
}

func decodeChargerInfo(p payload) (types.ChargerInfo, error) {
	if err := p.require(chargerRequired...); err != nil {
		return types.ChargerInfo{}, err
	}
	var w chargerWire
	if err := p.decode(&w); err != nil {
		return types.ChargerInfo{}, err
	}

	currents, err := phases("currents", w.Currents)
	if err != nil {
		return types.ChargerInfo{}, err
	}
	voltages, err := phases("voltages", w.Voltages)
	if err != nil {
		return types.ChargerInfo{}, err
	}
	reason, err := types.LimitReasonFromIndex(w.CurrentLimitReason)
	if err != nil {
		return types.ChargerInfo{}, protocolErrorf(err, "invalid current_limit_reason")
	}

	return types.ChargerInfo{
		State:              types.ParseChargingState(w.ExtendedChargerState),
		SessionEnergy:      w.SessionEnergy,
		ChargingTime:       w.ChargingTime,
		InstantPower:       w.InstantPower,
		CurrentL1:          currents[0],
		CurrentL2:          currents[1],
		CurrentL3:          currents[2],
		VoltageL1:          voltages[0],
		VoltageL2:          voltages[1],
		VoltageL3:          voltages[2],
		Temperature:        w.Temperature,
		DynamicCurrent:     w.DynamicCurrent,
		InstallCurrent:     w.InstallCurrent,
		UserCurrent:        w.UserCurrent,
		RelayMode:          w.RelayMode,
		FirmwareVersion:    w.FWVersion,
		RequireAuth:        !w.Headless,
		LEDMaxBrightness:   w.LEDMaxBrightness,
		TotalChargedEnergy: w.TotalChargedEnergy,
		HasActiveErrors:    w.HasActiveErrors,
		Faults: types.FaultSet{
			StateEActivated:  w.StateEActivated,
			OverTemp:         w.Overtemp,
			CriticalTemp:     w.CriticalTemp,
			OverCurrent:      w.Overcurrent,
			MeterFault:       w.MeterFault,
			UnderVoltage:     w.UndervoltageError,
			OverVoltage:      w.OvervoltageError,
			RCDError:         w.RCDError,
			CPDiodeFailure:   w.CPDiodeFailure,
			ContactorFailure: w.ContactorFailure,
		},
		LimitReason: reason,
	}, nil
}

// meterInfo merges Meter_info, App_config and Sw_version in that order.
func (d *Device) meterInfo(ctx context.Context) (types.MeterInfo, error) {
	var parts []payload
	for _, method := range []string{rpcMeterInfo, rpcMeterAppConfig, rpcMeterSwVersion} {
		p, err := d.get(ctx, method)
		if err != nil {
			return types.MeterInfo{}, err
		}
		parts = append(parts, p)
	}

	mi, err := decodeMeterInfo(mergePayloads(parts...))
	if err != nil {
		return types.MeterInfo{}, err
	}

	log.Ctx(ctx).DebugContext(ctx, "lektrico meter info",
		slog.Int("breakerCurrent", mi.BreakerCurrent),
		slog.String("lbMode", mi.LBMode.String()),
	)
	return mi, nil
}

func decodeMeterInfo(p payload) (types.MeterInfo, error) {
	if err := p.require(meterRequired...); err != nil {
		return types.MeterInfo{}, err
	}
	var w meterWire
	if err := p.decode(&w); err != nil {
		return types.MeterInfo{}, err
	}

	current, err := phases("current", w.Current)
	if err != nil {
		return types.MeterInfo{}, err
	}
	voltage, err := phases("voltage", w.Voltage)
	if err != nil {
		return types.MeterInfo{}, err
	}
	power, err := phases("active_p", w.ActivePower)
	if err != nil {
		return types.MeterInfo{}, err
	}
	pf, err := phases("power_factor", w.PowerFactor)
	if err != nil {
		return types.MeterInfo{}, err
	}
	mode := types.LoadBalancingMode(w.LoadBalancingMode)
	if !mode.Valid() {
		return types.MeterInfo{}, protocolErrorf(nil, "invalid load_balancing_mode %d", w.LoadBalancingMode)
	}

	return types.MeterInfo{
		CurrentL1:       current[0],
		CurrentL2:       current[1],
		CurrentL3:       current[2],
		VoltageL1:       voltage[0],
		VoltageL2:       voltage[1],
		VoltageL3:       voltage[2],
		ActivePowerL1:   power[0],
		ActivePowerL2:   power[1],
		ActivePowerL3:   power[2],
		PowerFactorL1:   pf[0],
		PowerFactorL2:   pf[1],
		PowerFactorL3:   pf[2],
		BreakerCurrent:  w.BreakerRating,
		LBMode:          mode,
		FirmwareVersion: w.FWVersion,
	}, nil
}
