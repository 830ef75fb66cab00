package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/contact"
	"github.com/san-kum/demsim/internal/dynamo"
	"github.com/san-kum/demsim/internal/integrators"
	"github.com/san-kum/demsim/internal/metrics"
	"github.com/san-kum/demsim/internal/sim"
)

// Registry maps persisted model keys and display names to constructors.
type Registry struct {
	models      map[string]func() contact.Model
	infos       map[string]modelEntry
	integrators map[string]func() sim.Integrator
}

type modelEntry struct {
	info contact.Info
	kind collision.Kind
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func() contact.Model),
		infos:       make(map[string]modelEntry),
		integrators: make(map[string]func() sim.Integrator),
	}

	for _, ctor := range []func() contact.Model{
		contact.NewPWPopovJKR,
		contact.NewPWHertzMindlin,
		contact.NewPPHertzMindlin,
		contact.NewPPPopovJKR,
		contact.NewPPLinearElastic,
	} {
		if err := r.Register(ctor); err != nil {
			panic(err)
		}
	}

	r.integrators["euler"] = func() sim.Integrator { return integrators.NewEuler() }
	r.integrators["leapfrog"] = func() sim.Integrator { return integrators.NewLeapfrog() }

	return r
}

// Register adds a model constructor. Keys must be unique.
func (r *Registry) Register(ctor func() contact.Model) error {
	m := ctor()
	info := m.Info()
	if info.Key == "" {
		return fmt.Errorf("model %q has no key: %w", info.Name, dynamo.ErrInvalidParameter)
	}
	if prev, ok := r.infos[info.Key]; ok {
		return fmt.Errorf("key %s of %q already used by %q: %w", info.Key, info.Name, prev.info.Name, dynamo.ErrInvalidParameter)
	}
	r.models[info.Key] = ctor
	r.infos[info.Key] = modelEntry{info: info, kind: m.Kind()}
	return nil
}

// GetModel resolves a key, or a display name within the given kind, to a
// new model instance.
func (r *Registry) GetModel(keyOrName string, kind collision.Kind) (contact.Model, error) {
	if e, ok := r.infos[keyOrName]; ok {
		if e.kind != kind {
			return nil, fmt.Errorf("model %s is a %s model, need %s: %w", keyOrName, e.kind, kind, dynamo.ErrUnknownModel)
		}
		return r.models[keyOrName](), nil
	}
	for key, e := range r.infos {
		if e.kind == kind && e.info.Name == keyOrName {
			return r.models[key](), nil
		}
	}
	return nil, fmt.Errorf("%s model %q: %w", kind, keyOrName, dynamo.ErrUnknownModel)
}

// ModelInfo pairs a model identity with its kind and parameters for listings.
type ModelInfo struct {
	contact.Info
	Kind       collision.Kind
	Parameters []contact.Parameter
}

// ListModels returns every registered model, particle-particle first, then by name.
func (r *Registry) ListModels() []ModelInfo {
	out := make([]ModelInfo, 0, len(r.infos))
	for key, e := range r.infos {
		out = append(out, ModelInfo{Info: e.info, Kind: e.kind, Parameters: r.models[key]().Parameters()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (r *Registry) GetIntegrator(name string) (sim.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator %q: %w", name, dynamo.ErrInvalidParameter)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return metrics.Defaults()
}
