package bridge

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/webdeck/homebridge-indigo/internal/indigo"
	"github.com/webdeck/homebridge-indigo/internal/infrastructure/config"
)

// maxAccessories is the accessory framework's per-bridge limit. Devices past
// the cap are dropped at discovery with a single warning.
const maxAccessories = 99

// Client is the slice of the Indigo client the registry and its adapters use.
type Client interface {
	deviceClient
	ListDevices(ctx context.Context, listingPath string) ([]indigo.Summary, error)
}

// Registry discovers Indigo devices and owns one adapter per qualifying one.
//
// Adapters are keyed by device identifier, which is the Indigo device name.
// A configured name prefix changes only the accessory display name, never
// the identifier.
type Registry struct {
	cfg        config.BridgeConfig
	nativeUnit string
	client     Client
	logger     Logger

	mu       sync.RWMutex
	adapters map[string]*Adapter
	ordered  []*Adapter
}

// NewRegistry creates an empty registry. Call Discover() to populate it.
func NewRegistry(cfg config.BridgeConfig, nativeUnit string, client Client, logger Logger) *Registry {
	return &Registry{
		cfg:        cfg,
		nativeUnit: nativeUnit,
		client:     client,
		logger:     logger,
		adapters:   make(map[string]*Adapter),
	}
}

// Discover walks the Indigo listing resources and rebuilds the adapter set.
//
// A listing fetch failure is fatal and leaves the registry unchanged. A
// single device's detail fetch failing only skips that device.
func (r *Registry) Discover(ctx context.Context) error {
	summaries, err := r.client.ListDevices(ctx, indigo.DeviceListingPath)
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}

	if r.cfg.IncludeActions {
		actions, err := r.client.ListDevices(ctx, indigo.ActionListingPath)
		if err != nil {
			return fmt.Errorf("listing actions: %w", err)
		}
		summaries = append(summaries, actions...)
	}

	include := stringSet(r.cfg.IncludeIDs)
	exclude := stringSet(r.cfg.ExcludeIDs)

	var adapters []*Adapter
	for _, summary := range summaries {
		// Exclusion always wins, even over an explicit include.
		if exclude[summary.Name] {
			continue
		}
		if len(include) > 0 && !include[summary.Name] {
			continue
		}

		detail, err := r.client.GetDevice(ctx, summary.RestURL)
		if err != nil {
			r.logger.Warn("skipping device, detail fetch failed",
				"device", summary.Name, "error", err)
			continue
		}

		variant, ok := r.classify(summary.Name, detail)
		if !ok {
			continue
		}

		adapter, err := NewAdapter(Options{
			ID:          summary.Name,
			Name:        r.cfg.NamePrefix + summary.Name,
			RestURL:     summary.RestURL,
			Variant:     variant,
			Flags:       FlagsFromDetail(detail),
			Client:      r.client,
			Logger:      r.logger,
			NativeUnit:  r.nativeUnit,
			MirrorDelay: r.cfg.GetMirrorDelay(),
			Initial:     detail.Properties,
		})
		if err != nil {
			r.logger.Warn("skipping device", "device", summary.Name, "error", err)
			continue
		}
		adapters = append(adapters, adapter)
	}

	sort.Slice(adapters, func(i, j int) bool {
		return adapters[i].Name() < adapters[j].Name()
	})

	if len(adapters) > maxAccessories {
		r.logger.Warn("accessory limit exceeded, dropping overflow",
			"limit", maxAccessories, "discovered", len(adapters),
			"dropped", len(adapters)-maxAccessories)
		adapters = adapters[:maxAccessories]
	}

	lookup := make(map[string]*Adapter, len(adapters))
	for _, a := range adapters {
		lookup[a.ID()] = a
	}

	r.mu.Lock()
	r.adapters = lookup
	r.ordered = adapters
	r.mu.Unlock()

	r.logger.Info("discovery complete", "accessories", len(adapters))
	return nil
}

// classify picks the capability variant for one device. Explicit treat-as
// overrides take priority, then declared capabilities in fixed order.
func (r *Registry) classify(name string, detail *indigo.Detail) (Variant, bool) {
	if detail.IsAction() {
		return VariantAction, true
	}

	treatAs := r.cfg.TreatAs
	overrides := []struct {
		ids     []string
		variant Variant
	}{
		{treatAs.Switches, VariantSwitch},
		{treatAs.Locks, VariantLock},
		{treatAs.Doors, VariantDoor},
		{treatAs.GarageDoors, VariantGarageDoor},
		{treatAs.Windows, VariantWindow},
		{treatAs.WindowCoverings, VariantWindowCovering},
	}
	for _, o := range overrides {
		if !stringSet(o.ids)[name] {
			continue
		}
		if !detail.SupportsOnOff {
			r.logger.Warn("treat-as override requires on/off support, ignoring",
				"device", name, "variant", string(o.variant))
			break
		}
		return o.variant, true
	}

	switch {
	case detail.SupportsHVAC:
		return VariantThermostat, true
	case detail.SupportsSpeedControl:
		return VariantFan, true
	case detail.SupportsDim, detail.SupportsOnOff:
		return VariantLight, true
	default:
		r.logger.Warn("device has no mappable capabilities, dropping", "device", name)
		return "", false
	}
}

// Lookup returns the adapter for a device identifier.
func (r *Registry) Lookup(id string) (*Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAdapterNotFound, id)
	}
	return adapter, nil
}

// Adapters returns the discovered adapters in display-name order.
func (r *Registry) Adapters() []*Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Adapter, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Count returns the number of discovered adapters.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

// SetUpdateFunc registers the mirror callback on every discovered adapter.
func (r *Registry) SetUpdateFunc(fn UpdateFunc) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.ordered {
		a.SetUpdateFunc(fn)
	}
}

// stringSet builds a membership set from a slice.
func stringSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
