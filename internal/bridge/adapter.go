package bridge

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/webdeck/homebridge-indigo/internal/indigo"
	"github.com/webdeck/homebridge-indigo/internal/infrastructure/config"
)

// deviceClient is the slice of the Indigo client the adapter needs.
type deviceClient interface {
	Request(ctx context.Context, method, path string, query url.Values) ([]byte, error)
	Execute(ctx context.Context, path string) error
	GetDevice(ctx context.Context, restURL string) (*indigo.Detail, error)
}

// Options configures a new Adapter.
type Options struct {
	ID      string
	Name    string
	RestURL string
	Variant Variant
	Flags   CapabilityFlags

	Client deviceClient
	Logger Logger

	// NativeUnit is the temperature unit the Indigo server speaks,
	// config.UnitFahrenheit or config.UnitCelsius.
	NativeUnit string

	// MirrorDelay is how long to wait after a confirmed user write before
	// mirroring the resulting state back into the framework.
	MirrorDelay time.Duration

	// Initial is the property snapshot from the discovery-time detail fetch.
	Initial indigo.Properties
}

// Adapter binds one Indigo device or action group to one framework accessory.
//
// All value translation between the two sides happens here. The adapter owns
// the device's property snapshot and is the only writer of it.
type Adapter struct {
	id      string
	restURL string
	variant Variant
	flags   CapabilityFlags
	profile profile
	exposed map[Trait]bool

	client      deviceClient
	logger      Logger
	nativeUnit  string
	mirrorDelay time.Duration

	// refreshMu serialises every fetch-diff-mirror-replace cycle so the
	// snapshot is only ever observed whole.
	refreshMu sync.Mutex
	props     indigo.Properties

	mu          sync.RWMutex
	name        string
	displayUnit int
	updateFn    UpdateFunc
}

// NewAdapter builds an adapter for one discovered device.
//
// Returns:
//   - error: ErrUnknownVariant if the variant has no profile
func NewAdapter(opts Options) (*Adapter, error) {
	prof, ok := profiles[opts.Variant]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, opts.Variant)
	}

	exposed := make(map[Trait]bool)
	for _, t := range prof.traits(opts.Flags) {
		exposed[t] = true
	}

	displayUnit := DisplayUnitFahrenheit
	if opts.NativeUnit == config.UnitCelsius {
		displayUnit = DisplayUnitCelsius
	}

	props := opts.Initial
	if props == nil {
		props = indigo.Properties{}
	}

	return &Adapter{
		id:          opts.ID,
		restURL:     opts.RestURL,
		variant:     opts.Variant,
		flags:       opts.Flags,
		profile:     prof,
		exposed:     exposed,
		client:      opts.Client,
		logger:      opts.Logger,
		nativeUnit:  opts.NativeUnit,
		mirrorDelay: opts.MirrorDelay,
		props:       props,
		name:        opts.Name,
		displayUnit: displayUnit,
	}, nil
}

// ID returns the adapter's stable identifier.
func (a *Adapter) ID() string { return a.id }

// Name returns the accessory display name.
func (a *Adapter) Name() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.name
}

// Variant returns the capability variant chosen at discovery.
func (a *Adapter) Variant() Variant { return a.variant }

// Traits returns the traits this accessory exposes, in profile order.
func (a *Adapter) Traits() []Trait {
	return a.profile.traits(a.flags)
}

// SetUpdateFunc registers the callback that receives mirrored trait updates.
func (a *Adapter) SetUpdateFunc(fn UpdateFunc) {
	a.mu.Lock()
	a.updateFn = fn
	a.mu.Unlock()
}

// Get reads one trait's current value.
//
// The device's status is fetched fresh. A fetch failure surfaces as an error
// and leaves the snapshot untouched; a stale value is never substituted.
func (a *Adapter) Get(ctx context.Context, trait Trait) (any, error) {
	if !a.exposed[trait] {
		return nil, fmt.Errorf("%w: %s %s", ErrUnsupportedTrait, a.variant, trait)
	}

	// Purely local state, no server round trip.
	if trait == TraitTemperatureDisplayUnits {
		a.mu.RLock()
		defer a.mu.RUnlock()
		return a.displayUnit, nil
	}

	// Momentary switches are constant-off; no point occupying the queue.
	if a.variant == VariantAction {
		return a.readTrait(trait, nil), nil
	}

	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	detail, err := a.client.GetDevice(ctx, a.restURL)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", trait, err)
	}
	a.props = detail.Properties

	return a.readTrait(trait, a.props), nil
}

// Set writes one trait value.
//
// Mirror-origin writes only adjust local state and never reach the server.
// User-origin writes are translated to a device PUT (or action execution)
// through the serialized request queue.
func (a *Adapter) Set(ctx context.Context, trait Trait, value any, origin Origin) error {
	if !a.exposed[trait] {
		return fmt.Errorf("%w: %s %s", ErrUnsupportedTrait, a.variant, trait)
	}

	// Display units never leave the bridge regardless of origin.
	if trait == TraitTemperatureDisplayUnits {
		unit, err := intArg(value)
		if err != nil || (unit != DisplayUnitCelsius && unit != DisplayUnitFahrenheit) {
			return fmt.Errorf("%w: display unit %v", ErrInvalidValue, value)
		}
		a.mu.Lock()
		a.displayUnit = unit
		a.mu.Unlock()
		return nil
	}

	// A mirror write exists only to keep the framework in step with state
	// the server already confirmed. Writing it back would echo forever.
	if origin == OriginMirror {
		return nil
	}

	if a.variant == VariantAction {
		on, err := boolArg(value)
		if err != nil {
			return fmt.Errorf("%w: on %v", ErrInvalidValue, value)
		}
		// Only an on write fires the action; off is the switch returning
		// to rest and must not re-execute the group.
		if !on {
			return nil
		}
		return a.fireAction(ctx)
	}

	// Translation reads the snapshot (setpoint writes depend on the current
	// mode), so it happens under the same lock that guards replacement.
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	query, followups, err := a.translateWrite(trait, value)
	if err != nil {
		return err
	}

	if _, err := a.client.Request(ctx, http.MethodPut, a.restURL, query); err != nil {
		return fmt.Errorf("writing %s: %w", trait, err)
	}

	for _, u := range followups {
		a.scheduleMirror(u.trait, u.value)
	}

	// Best-effort resync so the next read reflects any server-side
	// adjustment of the written value.
	if detail, err := a.client.GetDevice(ctx, a.restURL); err == nil {
		a.props = detail.Properties
	}
	return nil
}

// fireAction executes an action group. Execution failures are logged rather
// than surfaced so a flaky action cannot wedge the accessory in the on
// position; the switch always snaps back off after the mirror delay.
func (a *Adapter) fireAction(ctx context.Context) error {
	if err := a.client.Execute(ctx, a.restURL); err != nil {
		a.logf().Error("action execution failed", "device", a.id, "error", err)
	}
	a.scheduleMirror(TraitOn, false)
	return nil
}

// translateWrite converts one user-origin trait write into device query
// parameters plus the mirror updates to schedule after the write succeeds.
func (a *Adapter) translateWrite(trait Trait, value any) (url.Values, []traitUpdate, error) {
	query := url.Values{}

	switch trait {
	case TraitOn:
		on, err := boolArg(value)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: on %v", ErrInvalidValue, value)
		}
		query.Set(indigo.FieldIsOn, formatOnOff(on))
		return query, nil, nil

	case TraitBrightness:
		level, err := intArg(value)
		if err != nil || level < 0 || level > 100 {
			return nil, nil, fmt.Errorf("%w: brightness %v", ErrInvalidValue, value)
		}
		if !a.flags.Dim {
			return nil, nil, fmt.Errorf("%w: %s brightness", ErrUnsupportedTrait, a.variant)
		}
		query.Set(indigo.FieldBrightness, strconv.Itoa(level))
		return query, nil, nil

	case TraitRotationSpeed:
		percent, err := floatArg(value)
		if err != nil || percent < 0 || percent > 100 {
			return nil, nil, fmt.Errorf("%w: rotation speed %v", ErrInvalidValue, value)
		}
		query.Set(indigo.FieldSpeedIndex, strconv.Itoa(speedIndexForPercent(percent)))
		return query, nil, nil

	case TraitTargetPosition:
		pos, err := intArg(value)
		if err != nil || pos < 0 || pos > 100 {
			return nil, nil, fmt.Errorf("%w: position %v", ErrInvalidValue, value)
		}
		if a.flags.Dim {
			query.Set(indigo.FieldBrightness, strconv.Itoa(pos))
		} else {
			query.Set(indigo.FieldIsOn, formatOnOff(pos > 0))
		}
		return query, []traitUpdate{{TraitCurrentPosition, pos}}, nil

	case TraitLockTargetState:
		state, err := intArg(value)
		if err != nil || (state != LockUnsecured && state != LockSecured) {
			return nil, nil, fmt.Errorf("%w: lock state %v", ErrInvalidValue, value)
		}
		query.Set(indigo.FieldIsOn, formatOnOff(state == LockSecured))
		return query, []traitUpdate{{TraitLockCurrentState, state}}, nil

	case TraitTargetDoorState:
		state, err := intArg(value)
		if err != nil || (state != DoorOpen && state != DoorClosed) {
			return nil, nil, fmt.Errorf("%w: door state %v", ErrInvalidValue, value)
		}
		query.Set(indigo.FieldIsOn, formatOnOff(state == DoorOpen))
		return query, []traitUpdate{{TraitCurrentDoorState, state}}, nil

	case TraitTargetHeatingCooling:
		return a.translateModeWrite(value)

	case TraitTargetTemperature:
		return a.translateSetpointWrite(value)

	default:
		return nil, nil, fmt.Errorf("%w: %s is read-only", ErrUnsupportedTrait, trait)
	}
}

// translateModeWrite maps a target mode to exactly one operating-mode flag.
func (a *Adapter) translateModeWrite(value any) (url.Values, []traitUpdate, error) {
	mode, err := intArg(value)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: mode %v", ErrInvalidValue, value)
	}

	var field string
	switch mode {
	case ModeOff:
		field = indigo.FieldModeIsOff
	case ModeHeat:
		field = indigo.FieldModeIsHeat
	case ModeCool:
		field = indigo.FieldModeIsCool
	case ModeAuto:
		field = indigo.FieldModeIsAuto
	default:
		return nil, nil, fmt.Errorf("%w: mode %d", ErrInvalidValue, mode)
	}

	query := url.Values{}
	query.Set(field, "true")
	return query, nil, nil
}

// translateSetpointWrite maps a Celsius target temperature onto the device's
// native-unit setpoints. Heat and cool modes each write their own setpoint.
// Auto has no single setpoint on the device, so both are written in one
// request, straddling the target.
func (a *Adapter) translateSetpointWrite(value any) (url.Values, []traitUpdate, error) {
	celsius, err := floatArg(value)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: temperature %v", ErrInvalidValue, value)
	}
	native := toNativeTemperature(celsius, a.nativeUnit)

	query := url.Values{}
	switch targetHeatingCooling(a.props) {
	case ModeHeat:
		query.Set(indigo.FieldSetpointHeat, formatTemperature(native))
	case ModeCool:
		query.Set(indigo.FieldSetpointCool, formatTemperature(native))
	default:
		offset := autoSetpointOffset(a.nativeUnit)
		query.Set(indigo.FieldSetpointHeat, formatTemperature(native-offset))
		query.Set(indigo.FieldSetpointCool, formatTemperature(native+offset))
	}
	return query, nil, nil
}

// Reconcile fetches the device's current state, mirrors every changed field
// into the framework, and installs the new snapshot. A failed fetch leaves
// the snapshot untouched.
func (a *Adapter) Reconcile(ctx context.Context) error {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	detail, err := a.client.GetDevice(ctx, a.restURL)
	if err != nil {
		return fmt.Errorf("reconciling %s: %w", a.id, err)
	}

	changed := a.props.ChangedFields(detail.Properties)
	a.props = detail.Properties

	if len(changed) == 0 {
		return nil
	}

	// Several fields can feed one trait; collapse to one update per trait.
	seen := make(map[Trait]bool)
	var updates []traitUpdate
	for _, field := range changed {
		mirror, ok := a.profile.mirrors[field]
		if !ok {
			continue
		}
		for _, u := range mirror(a, a.props) {
			if seen[u.trait] {
				continue
			}
			seen[u.trait] = true
			updates = append(updates, u)
		}
	}

	for _, u := range updates {
		a.logf().Debug("mirroring state change",
			"device", a.id, "trait", string(u.trait), "value", u.value)
		a.notify(u.trait, u.value)
	}
	return nil
}

// readTrait translates one trait read from a property snapshot.
// Callers have already verified the trait is exposed.
func (a *Adapter) readTrait(trait Trait, props indigo.Properties) any {
	switch trait {
	case TraitOn:
		// Action switches are momentary; they always read off.
		if a.variant == VariantAction {
			return false
		}
		return props.Bool(indigo.FieldIsOn)
	case TraitBrightness:
		return clampPercent(int(props.Float(indigo.FieldBrightness)))
	case TraitRotationSpeed:
		return percentForSpeedIndex(int(props.Float(indigo.FieldSpeedIndex)))
	case TraitCurrentPosition, TraitTargetPosition:
		return positionFromProps(a.flags, props)
	case TraitLockCurrentState, TraitLockTargetState:
		return lockStateFor(props.Bool(indigo.FieldIsOn))
	case TraitCurrentDoorState, TraitTargetDoorState:
		return doorStateFor(props.Bool(indigo.FieldIsOn))
	case TraitObstructionDetected:
		// The device model has no obstruction sensing.
		return false
	case TraitCurrentHeatingCooling:
		return currentHeatingCooling(props)
	case TraitTargetHeatingCooling:
		return targetHeatingCooling(props)
	case TraitCurrentTemperature:
		return toDisplayTemperature(props.Float(indigo.FieldTemperature), a.nativeUnit)
	case TraitTargetTemperature:
		return targetTemperature(props, a.nativeUnit)
	case TraitCurrentHumidity:
		return props.Float(indigo.FieldHumidity)
	default:
		return nil
	}
}

// scheduleMirror delivers a mirror update after the configured delay, giving
// the device time to settle before the framework re-reads it.
func (a *Adapter) scheduleMirror(trait Trait, value any) {
	time.AfterFunc(a.mirrorDelay, func() {
		a.notify(trait, value)
	})
}

// notify delivers one trait update to the registered callback, if any.
func (a *Adapter) notify(trait Trait, value any) {
	a.mu.RLock()
	fn := a.updateFn
	a.mu.RUnlock()
	if fn != nil {
		fn(a.id, trait, value)
	}
}

// logf returns the adapter's logger, or a no-op stand-in.
func (a *Adapter) logf() Logger {
	if a.logger != nil {
		return a.logger
	}
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// boolArg coerces a framework value to bool. Accepts bool and 0/1 numerics.
func boolArg(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case int:
		return val != 0, nil
	case float64:
		return val != 0, nil
	default:
		return false, fmt.Errorf("not a boolean: %T", v)
	}
}

// intArg coerces a framework value to int.
func intArg(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case float64:
		return int(val), nil
	default:
		return 0, fmt.Errorf("not an integer: %T", v)
	}
}

// floatArg coerces a framework value to float64.
func floatArg(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
