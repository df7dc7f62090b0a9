package venues

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "venues.yaml")
	content := `
venues:
  - name: "Main Auditorium"
    type: "Auditorium"
    capacity: 500
    location: "Block A"
  - name: "Seminar Hall 1"
    type: "Seminar Hall"
    capacity: 120
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	list := c.List()
	assert.Equal(t, "Main Auditorium", list[0].Name())
	assert.Equal(t, 500, list[0]["capacity"])
	assert.Equal(t, "Block A", list[0]["location"])
	assert.Equal(t, "Seminar Hall 1", list[1].Name())

	list[0] = nil
	assert.Equal(t, "Main Auditorium", c.List()[0].Name())
}

func TestParseJSONList(t *testing.T) {
	c, err := Parse([]byte(`[{"name": "Lab 3", "type": "Lab", "capacity": 40}, {"name": "Open Ground"}]`))
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "Lab", c.List()[0]["type"])
	assert.Equal(t, "Open Ground", c.List()[1].Name())
}

func TestParseKeepsEveryKey(t *testing.T) {
	data := `[{"id": 7, "name": "Hall1", "capacity": 0, "facilities": ["projector", "ac"], "building": "A",
		"hours": {"open": "08:00", "close": "20:00"}}]`
	c, err := Parse([]byte(data))
	require.NoError(t, err)

	out, err := json.Marshal(c.List())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id": 7, "name": "Hall1", "capacity": 0, "facilities": ["projector", "ac"], "building": "A",
		"hours": {"open": "08:00", "close": "20:00"}}]`, string(out))
}

func TestParseDuplicateNamesServed(t *testing.T) {
	c, err := Parse([]byte(`[{"name": "Lab"}, {"name": "Lab", "floor": 2}]`))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestParseEmpty(t *testing.T) {
	c, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.NotNil(t, c.List())
	assert.Equal(t, 0, c.Len())

	out, err := json.Marshal(c.List())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"garbage":     "venues: [{name: Lab",
		"no name":     `[{"type": "Lab"}]`,
		"blank name":  `[{"name": "  "}]`,
		"number name": `[{"name": 12}]`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
