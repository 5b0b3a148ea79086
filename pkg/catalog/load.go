package catalog

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/opslevel/pkg/errors"
)

// LoadFile reads every entity document in the file at path. Both YAML
// (catalog-info.yaml, "---" separated) and JSON files are accepted.
func LoadFile(path string) ([]*Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	entities, err := Parse(data)
	if err != nil {
		var perr *errors.ParseError
		if errors.As(err, &perr) && perr.File == "" {
			perr.File = path
		}
		return nil, err
	}
	return entities, nil
}

// Load decodes every entity document read from r.
func Load(r io.Reader) ([]*Entity, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", "", err)
	}
	return Parse(data)
}

// Parse decodes and validates every entity document in data. Empty
// documents are skipped.
func Parse(data []byte) ([]*Entity, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var entities []*Entity
	for {
		var doc any
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errors.WrapParse("yaml", "", err)
		}
		if doc == nil {
			continue
		}

		entity, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		if err := Validate(entity); err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	if len(entities) == 0 {
		return nil, &errors.ParseError{Format: "yaml", Message: "no entity documents found"}
	}
	return entities, nil
}

// ParseJSON decodes a single JSON encoded entity and validates it.
func ParseJSON(data []byte) (*Entity, error) {
	var e Entity
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	if err := Validate(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// fromDocument routes a generic YAML document through encoding/json so the
// Extra capture in Entity, Metadata and EntitySpec applies to YAML input too.
func fromDocument(doc any) (*Entity, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}
	var e Entity
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	return &e, nil
}
