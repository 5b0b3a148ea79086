package catalog

import (
	"encoding/json"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntity() *Entity {
	return &Entity{
		APIVersion: "backstage.io/v1alpha1",
		Kind:       "Component",
		Metadata: Metadata{
			Name:        "svc-a",
			Tags:        []string{"ruby", "rails"},
			Annotations: map[string]string{"opslevel.com/framework": "rails"},
			Extra:       map[string]any{"links": []any{map[string]any{"url": "https://example.com"}}},
		},
		Spec: &EntitySpec{
			Type:  "api",
			Owner: "team-a",
			Extra: map[string]any{"providesApis": []any{"orders"}},
		},
		Extra: map[string]any{
			"relations": []any{map[string]any{"type": "ownedBy", "targetRef": "group:default/team-a"}},
		},
	}
}

func TestEntityJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(sampleEntity())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	spec := raw["spec"].(map[string]any)
	assert.Equal(t, "api", spec["type"])
	assert.Equal(t, []any{"orders"}, spec["providesApis"])
	metadata := raw["metadata"].(map[string]any)
	assert.Contains(t, metadata, "links")
	assert.Contains(t, raw, "relations")

	var back Entity
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "svc-a", back.Metadata.Name)
	assert.Equal(t, []string{"ruby", "rails"}, back.Metadata.Tags)
	require.NotNil(t, back.Spec)
	assert.Equal(t, []any{"orders"}, back.Spec.Extra["providesApis"])
	assert.NotContains(t, back.Spec.Extra, "type")
	assert.Len(t, back.Extra["relations"], 1)
	assert.NotContains(t, back.Extra, "metadata")
}

func TestEntityKeepsTopLevelKeys(t *testing.T) {
	in := `{"apiVersion":"v1","kind":"Component","metadata":{"name":"svc-a"},` +
		`"relations":[{"type":"ownedBy","targetRef":"group:default/team-a"}],` +
		`"status":{"items":[{"type":"backstage.io/catalog-processing","level":"error"}]}}`

	var e Entity
	require.NoError(t, json.Unmarshal([]byte(in), &e))
	assert.Equal(t, "svc-a", e.Metadata.Name)
	assert.Contains(t, e.Extra, "relations")
	assert.Contains(t, e.Extra, "status")

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestEntityJSONWithoutSpec(t *testing.T) {
	var e Entity
	require.NoError(t, json.Unmarshal([]byte(`{"apiVersion":"v1","kind":"Group","metadata":{"name":"team-a"}}`), &e))
	assert.Nil(t, e.Spec)
	assert.Nil(t, e.Metadata.Tags)
	assert.False(t, e.Metadata.HasTags())
	assert.Nil(t, e.Metadata.Extra)
	assert.Nil(t, e.Extra)
}

func TestDeclaredFieldsWinOverExtra(t *testing.T) {
	spec := EntitySpec{Type: "service", Extra: map[string]any{"type": "api"}}
	data, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"service"}`, string(data))
}

func TestEntityYAMLOutput(t *testing.T) {
	out, err := yaml.Marshal(sampleEntity())
	require.NoError(t, err)
	assert.Contains(t, string(out), "providesApis")
	assert.Contains(t, string(out), "svc-a")
}

func TestAnnotation(t *testing.T) {
	var m Metadata
	_, ok := m.Annotation("opslevel.com/framework")
	assert.False(t, ok)

	m.Annotations = map[string]string{"opslevel.com/framework": ""}
	v, ok := m.Annotation("opslevel.com/framework")
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestCopy(t *testing.T) {
	orig := sampleEntity()
	cp := orig.Copy()
	require.Equal(t, orig, cp)

	cp.Metadata.Tags = append(cp.Metadata.Tags, "type:api")
	cp.Metadata.Tags[0] = "go"
	cp.Metadata.Annotations["x"] = "y"
	cp.Spec.Type = "service"
	cp.Spec.Extra["providesApis"].([]any)[0] = "changed"
	cp.Metadata.Extra["links"].([]any)[0].(map[string]any)["url"] = "changed"
	cp.Extra["relations"].([]any)[0].(map[string]any)["type"] = "partOf"

	assert.Equal(t, []string{"ruby", "rails"}, orig.Metadata.Tags)
	assert.NotContains(t, orig.Metadata.Annotations, "x")
	assert.Equal(t, "api", orig.Spec.Type)
	assert.Equal(t, []any{"orders"}, orig.Spec.Extra["providesApis"])
	assert.Equal(t, "https://example.com", orig.Metadata.Extra["links"].([]any)[0].(map[string]any)["url"])
	assert.Equal(t, "ownedBy", orig.Extra["relations"].([]any)[0].(map[string]any)["type"])
}

func TestCopyPreservesAbsence(t *testing.T) {
	e := &Entity{Kind: "Component", Metadata: Metadata{Name: "svc"}}
	cp := e.Copy()
	assert.Nil(t, cp.Spec)
	assert.Nil(t, cp.Metadata.Tags)
	assert.Nil(t, cp.Metadata.Annotations)

	e.Metadata.Tags = []string{}
	assert.NotNil(t, e.Copy().Metadata.Tags)

	var nilEntity *Entity
	assert.Nil(t, nilEntity.Copy())
}
