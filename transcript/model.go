package transcript

import (
	"context"
	"maps"

	"github.com/kbukum/voxkit/errors"
	"github.com/kbukum/voxkit/provider"
	"github.com/kbukum/voxkit/transcription"
	"github.com/kbukum/voxkit/transcription/whisper"
)

// ModelRef names the speech recognition model a Pipeline uses. It is either
// Unloaded, a model still to be created through a provider manager, or
// Loaded, a ready provider.
type ModelRef interface {
	modelRef()
}

// Unloaded refers to a model by name. It is turned into a provider the first
// time a Pipeline needs it.
type Unloaded struct {
	// Name is the model size or checkpoint, e.g. "base".
	Name string
	// Provider is the registered factory name. Defaults to whisper.
	Provider string
	// Config is passed to the factory; Name overrides its "model" key.
	Config map[string]any
}

// Loaded wraps a provider that is ready for use.
type Loaded struct {
	Provider transcription.Provider
}

func (Unloaded) modelRef() {}
func (Loaded) modelRef()   {}

// Resolve returns ref as a Loaded model. An Unloaded ref is created and
// initialized through m unless m already holds a provider under that name.
func Resolve(ctx context.Context, ref ModelRef, m *provider.Manager[transcription.Provider]) (Loaded, error) {
	switch r := ref.(type) {
	case Loaded:
		if r.Provider == nil {
			return Loaded{}, errors.MissingField("provider")
		}
		return r, nil
	case Unloaded:
		if m == nil {
			return Loaded{}, errors.MissingField("manager")
		}
		name := r.Provider
		if name == "" {
			name = whisper.ProviderName
		}
		if p, ok := m.Lookup(name); ok {
			return Loaded{Provider: p}, nil
		}
		cfg := maps.Clone(r.Config)
		if cfg == nil {
			cfg = make(map[string]any)
		}
		if r.Name != "" {
			cfg["model"] = r.Name
		}
		p, err := m.Initialize(ctx, name, cfg)
		if err != nil {
			if _, ok := errors.AsAppError(err); ok {
				return Loaded{}, err
			}
			return Loaded{}, errors.DependencyUnavailable("speech recognition model", err)
		}
		return Loaded{Provider: p}, nil
	default:
		return Loaded{}, errors.InvalidInput("model", "unknown model reference")
	}
}
