package schema

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, name string) map[string]any {
	t.Helper()
	out, err := For(name)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	return m
}

func TestDocuments(t *testing.T) {
	assert.Equal(t, []string{"collaboration", "frontmatter", "pitfalls", "rules"}, Documents())
}

func TestRulesSchema(t *testing.T) {
	m := decode(t, "rules")

	assert.Equal(t, "rules.yaml", m["title"])
	assert.Equal(t, "object", m["type"])
	assert.Equal(t, false, m["additionalProperties"])
	assert.Contains(t, m["required"], "rules")

	props := m["properties"].(map[string]any)
	assert.Contains(t, props, "summary")

	items := props["rules"].(map[string]any)["items"].(map[string]any)
	itemProps := items["properties"].(map[string]any)
	assert.Equal(t, []any{"must", "should", "may"}, itemProps["severity"].(map[string]any)["enum"])
	assert.ElementsMatch(t, []any{"id", "rule"}, items["required"])
}

func TestFrontmatterSchema(t *testing.T) {
	m := decode(t, "frontmatter")

	assert.NotContains(t, m, "additionalProperties")
	assert.ElementsMatch(t, []any{"name", "description"}, m["required"])

	props := m["properties"].(map[string]any)
	for _, key := range []string{"name", "description", "kind", "user-invocable", "allowed-tools", "hooks"} {
		assert.Contains(t, props, key)
	}
	assert.Equal(t, "^[a-z0-9]+(-[a-z0-9]+)*$", props["name"].(map[string]any)["pattern"])
	assert.Equal(t, "boolean", props["user-invocable"].(map[string]any)["type"])

	oneOf := props["allowed-tools"].(map[string]any)["oneOf"].([]any)
	require.Len(t, oneOf, 2)
	list := oneOf[0].(map[string]any)
	assert.Equal(t, "array", list["type"])
	assert.Equal(t, "string", list["items"].(map[string]any)["type"])
	assert.Equal(t, "string", oneOf[1].(map[string]any)["type"])
}

func TestLookupByFileName(t *testing.T) {
	byFile, err := For("SKILL.md")
	require.NoError(t, err)
	byName, err := For("frontmatter")
	require.NoError(t, err)
	assert.Equal(t, byName, byFile)

	m := decode(t, "collaboration.yaml")
	assert.Equal(t, "collaboration.yaml", m["title"])
}

func TestUnknownDocument(t *testing.T) {
	_, err := For("recipes")
	assert.True(t, errors.Is(err, ErrUnknownDocument))
}
