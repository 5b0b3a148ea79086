// Package catalog models Backstage-style software catalog entities as they are
// read from catalog-info files and sent to the maturity platform.
//
// Entities keep every key they were decoded with. Fields the package does not
// model explicitly are preserved in the Extra maps of Entity, Metadata and
// EntitySpec, so top-level relations and status as well as custom metadata
// and spec keys survive a load and export unchanged.
package catalog

import (
	"encoding/json"
)

// Entity is a catalog entity.
type Entity struct {
	APIVersion string      `json:"apiVersion" yaml:"apiVersion" validate:"required"`
	Kind       string      `json:"kind" yaml:"kind" validate:"required"`
	Metadata   Metadata    `json:"metadata" yaml:"metadata"`
	Spec       *EntitySpec `json:"spec,omitempty" yaml:"spec,omitempty"`

	// Extra holds top-level keys not listed above, e.g. relations or status.
	Extra map[string]any `json:"-"`
}

// Metadata holds the identifying fields of an entity.
//
// A nil Tags slice means the entity carries no tags key at all, while an empty
// slice means the key is present with no values. The same holds for the maps.
type Metadata struct {
	Name        string            `json:"name" validate:"required,max=63,entityname"`
	Namespace   string            `json:"namespace,omitempty" validate:"omitempty,max=63,entityname"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
	Tags        []string          `json:"tags,omitempty"`

	// Extra holds metadata keys not listed above.
	Extra map[string]any `json:"-"`
}

// EntitySpec is the kind specific part of an entity.
type EntitySpec struct {
	Type      string `json:"type,omitempty"`
	Lifecycle string `json:"lifecycle,omitempty"`
	Owner     string `json:"owner,omitempty"`
	System    string `json:"system,omitempty"`

	// Extra holds spec keys not listed above, e.g. providesApis or dependsOn.
	Extra map[string]any `json:"-"`
}

var (
	entityKeys   = []string{"apiVersion", "kind", "metadata", "spec"}
	metadataKeys = []string{"name", "namespace", "title", "description", "labels", "annotations", "tags"}
	specKeys     = []string{"type", "lifecycle", "owner", "system"}
)

// MarshalJSON merges Extra into the encoded object.
func (e Entity) MarshalJSON() ([]byte, error) {
	type plain Entity
	return marshalWithExtra(plain(e), e.Extra)
}

// UnmarshalJSON decodes known fields and keeps the rest in Extra.
func (e *Entity) UnmarshalJSON(data []byte) error {
	type plain Entity
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, entityKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*e = Entity(p)
	return nil
}

// MarshalYAML renders the entity with its extra keys for YAML output.
func (e Entity) MarshalYAML() (any, error) {
	return toMap(e)
}

// Annotation returns the annotation value for key and whether the key is set.
func (m Metadata) Annotation(key string) (string, bool) {
	if m.Annotations == nil {
		return "", false
	}
	v, ok := m.Annotations[key]
	return v, ok
}

// HasTags reports whether the tags key is present, even if empty.
func (m Metadata) HasTags() bool {
	return m.Tags != nil
}

// MarshalJSON merges Extra into the encoded object.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type plain Metadata
	return marshalWithExtra(plain(m), m.Extra)
}

// UnmarshalJSON decodes known fields and keeps the rest in Extra.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	type plain Metadata
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, metadataKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*m = Metadata(p)
	return nil
}

// MarshalYAML renders metadata with its extra keys for YAML output.
func (m Metadata) MarshalYAML() (any, error) {
	return toMap(m)
}

// MarshalJSON merges Extra into the encoded object.
func (s EntitySpec) MarshalJSON() ([]byte, error) {
	type plain EntitySpec
	return marshalWithExtra(plain(s), s.Extra)
}

// UnmarshalJSON decodes known fields and keeps the rest in Extra.
func (s *EntitySpec) UnmarshalJSON(data []byte) error {
	type plain EntitySpec
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, specKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*s = EntitySpec(p)
	return nil
}

// MarshalYAML renders the spec with its extra keys for YAML output.
func (s EntitySpec) MarshalYAML() (any, error) {
	return toMap(s)
}

func marshalWithExtra(known any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(known)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	merged := make(map[string]any, len(fields)+len(extra))
	for k, v := range extra {
		merged[k] = v
	}
	// declared fields win over extra keys with the same name
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func splitExtra(data []byte, known []string) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
