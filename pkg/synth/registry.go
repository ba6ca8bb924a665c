package synth

import "github.com/attilammagyar/js80p-sub000/pkg/dsp/param"

// ParamID is a dense, stable index assigned to every registered param in
// registration order, the "closed enum" spec §4.12/§6 describes.
type ParamID uint32

// ParamRegistry maps every synth param's stable name (3-5 uppercase
// letters/digits, e.g. "MVOL", "N1ATK") to its ParamID and *param.Param,
// the orchestrator's single source of truth for name/ID lookups. Modeled
// on pkg/framework/param/registry.go's id->Parameter map plus insertion-
// order slice, generalized here to a name-keyed hash table rather than a
// numeric VST3 parameter tag.
type ParamRegistry struct {
	byName map[string]ParamID
	order  []*param.Param
}

// NewParamRegistry creates an empty registry.
func NewParamRegistry() *ParamRegistry {
	return &ParamRegistry{byName: make(map[string]ParamID)}
}

// Register assigns p a stable ParamID under name. Registering the same
// name twice is a no-op, matching pkg/framework/param/registry.go's
// duplicate-skip behavior.
func (r *ParamRegistry) Register(name string, p *param.Param) ParamID {
	if id, ok := r.byName[name]; ok {
		return id
	}
	id := ParamID(len(r.order))
	r.byName[name] = id
	r.order = append(r.order, p)
	return id
}

// ByName looks up a param by its stable name. Returns nil if name is
// unknown (spec §7 "Unknown param id -> Ignored; no dirty flag change").
func (r *ParamRegistry) ByName(name string) *param.Param {
	id, ok := r.byName[name]
	if !ok {
		return nil
	}
	return r.order[id]
}

// ByID looks up a param by its dense ParamID.
func (r *ParamRegistry) ByID(id ParamID) *param.Param {
	if int(id) < 0 || int(id) >= len(r.order) {
		return nil
	}
	return r.order[id]
}

// Count reports how many params are registered.
func (r *ParamRegistry) Count() int { return len(r.order) }

// All returns every registered param in registration order.
func (r *ParamRegistry) All() []*param.Param {
	out := make([]*param.Param, len(r.order))
	copy(out, r.order)
	return out
}
