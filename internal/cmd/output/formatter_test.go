package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/opslevel/internal/cmd/table"
	"github.com/agentstation/opslevel/pkg/errors"
)

type versionInfo struct {
	Version string `json:"version"`
	BuiltBy string `json:"built_by"`
	secret  string
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"wide", FormatWide, false},
		{"", "", false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				assert.Contains(t, err.Error(), "table, json, yaml, wide")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestYAMLFormatterRawMessage(t *testing.T) {
	var buf bytes.Buffer
	raw := json.RawMessage(`{"service":{"htmlUrl":"https://x"}}`)
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, raw))
	assert.Contains(t, buf.String(), "htmlUrl")
	assert.Contains(t, buf.String(), "https://x")
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	data := table.Data{
		Headers:         []string{"Category", "Services"},
		Rows:            [][]string{{"Security", "3"}},
		ColumnAlignment: []table.Align{table.AlignLeft, table.AlignRight},
	}
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, data))

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "CATEGORY")
	assert.Contains(t, out, "Security")
	assert.Contains(t, out, "3")
}

func TestTableFormatterStruct(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, &versionInfo{Version: "1.2.3", BuiltBy: "goreleaser"}))

	out := buf.String()
	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "goreleaser")
	assert.NotContains(t, out, "secret")
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, []string{"a"}))
	assert.JSONEq(t, `["a"]`, buf.String())
}

func TestRender(t *testing.T) {
	value := map[string]string{"alias": "svc-a"}
	toTable := func(wide bool) table.Data {
		rows := [][]string{{"alias", "svc-a"}}
		if wide {
			rows = append(rows, []string{"detail", "extra"})
		}
		return table.Data{Headers: []string{"Property", "Value"}, Rows: rows}
	}

	t.Run("json ignores table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, FormatJSON, value, toTable))
		assert.JSONEq(t, `{"alias":"svc-a"}`, buf.String())
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, FormatTable, value, toTable))
		assert.Contains(t, buf.String(), "svc-a")
		assert.NotContains(t, buf.String(), "extra")
	})

	t.Run("wide", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, FormatWide, value, toTable))
		assert.Contains(t, buf.String(), "extra")
	})
}
