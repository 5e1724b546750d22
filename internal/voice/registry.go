package voice

import "sort"

// Registry maps provider names to adapters. It is constructed at startup and
// injected into the webhook ingress handler; there is no ambient global state.
//
// Unknown provider names resolve to nil. Callers must treat that as a client
// error: the system has to know which signature scheme applies before it can
// trust any payload.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	m := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		if a == nil || a.Name() == "" {
			continue
		}
		m[a.Name()] = a
	}
	return &Registry{adapters: m}
}

func (r *Registry) Resolve(provider string) Adapter {
	if r == nil {
		return nil
	}
	return r.adapters[provider]
}

func (r *Registry) Providers() []string {
	out := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
