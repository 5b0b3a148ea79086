package catalog

// Copy returns a deep copy of e. Nil slices and maps stay nil so presence
// information survives the copy.
func (e *Entity) Copy() *Entity {
	if e == nil {
		return nil
	}

	out := *e
	out.Metadata = e.Metadata.Copy()
	out.Extra = copyAnyMap(e.Extra)
	if e.Spec != nil {
		spec := *e.Spec
		spec.Extra = copyAnyMap(e.Spec.Extra)
		out.Spec = &spec
	}
	return &out
}

// Copy returns a deep copy of m.
func (m Metadata) Copy() Metadata {
	out := m
	out.Labels = copyStringMap(m.Labels)
	out.Annotations = copyStringMap(m.Annotations)
	if m.Tags != nil {
		out.Tags = make([]string, len(m.Tags))
		copy(out.Tags, m.Tags)
	}
	out.Extra = copyAnyMap(m.Extra)
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

// copyValue copies the container types produced by JSON and YAML decoding.
func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyAnyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}
