package catalog

import (
	"fmt"
	"strings"

	"github.com/agentstation/opslevel/pkg/constants"
	"github.com/agentstation/opslevel/pkg/errors"
)

// EntityRef identifies an entity by kind, namespace and name.
type EntityRef struct {
	Kind      string
	Namespace string
	Name      string
}

// String returns the canonical kind:namespace/name form. Kind and namespace
// are lowercased; an empty namespace becomes "default".
func (r EntityRef) String() string {
	ns := r.Namespace
	if ns == "" {
		ns = constants.DefaultNamespace
	}
	return fmt.Sprintf("%s:%s/%s", strings.ToLower(r.Kind), strings.ToLower(ns), r.Name)
}

// Ref returns the reference of e.
func (e *Entity) Ref() EntityRef {
	return EntityRef{
		Kind:      e.Kind,
		Namespace: e.Metadata.Namespace,
		Name:      e.Metadata.Name,
	}
}

// StringifyEntityRef returns the canonical reference string for e.
func StringifyEntityRef(e *Entity) string {
	if e == nil {
		return ""
	}
	return e.Ref().String()
}

// ParseEntityRef parses a reference of the form [kind:][namespace/]name.
// Missing parts are filled from defaultKind and the default namespace.
func ParseEntityRef(ref, defaultKind string) (EntityRef, error) {
	out := EntityRef{Kind: defaultKind, Namespace: constants.DefaultNamespace}
	rest := strings.TrimSpace(ref)
	if kind, after, ok := strings.Cut(rest, ":"); ok {
		out.Kind = kind
		rest = after
	}
	if ns, after, ok := strings.Cut(rest, "/"); ok {
		out.Namespace = ns
		rest = after
	}
	out.Name = rest
	if out.Kind == "" || out.Namespace == "" || out.Name == "" {
		return EntityRef{}, errors.NewValidationError("entityRef", ref, "is incomplete")
	}
	return out, nil
}
